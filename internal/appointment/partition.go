package appointment

import (
	"sort"
	"time"
)

// ClassifyAll classifies every record against now, preserving order.
func ClassifyAll(records []Record, c *Classifier, now time.Time) []ClassifiedRecord {
	out := make([]ClassifiedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, ClassifiedRecord{Record: r, Classification: c.ClassifyRecord(r, now)})
	}
	return out
}

// Partition splits records into upcoming (soonest first) and past (latest first).
// Appointments without a usable timestamp are kept with the upcoming ones.
func Partition(records []Record, c *Classifier, now time.Time) (upcoming, past []ClassifiedRecord) {
	upcoming = make([]ClassifiedRecord, 0)
	past = make([]ClassifiedRecord, 0)

	for _, cr := range ClassifyAll(records, c, now) {
		if cr.Expired {
			past = append(past, cr)
		} else {
			upcoming = append(upcoming, cr)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		a, b := upcoming[i].At, upcoming[j].At
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].At.After(*past[j].At)
	})

	return upcoming, past
}
