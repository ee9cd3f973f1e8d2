package appointment

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// clockPattern accepts "14:30", "2:30 PM", "2 pm", "09:15:20am".
var clockPattern = regexp.MustCompile(`^\s*(\d{1,2})(?::(\d{2}))?(?::(\d{2}))?\s*([AaPp][Mm])?\s*$`)

var fallbackLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 3:04PM",
	"2006-01-02 3:04 PM",
	"2006-01-02 15.04",
}

// Classifier composes appointment timestamps and decides expiry. Dates and clock
// times are read as wall time in loc; no zone conversion is applied.
type Classifier struct {
	loc *time.Location
}

func NewClassifier(loc *time.Location) *Classifier {
	if loc == nil {
		loc = time.Local
	}
	return &Classifier{loc: loc}
}

func (c *Classifier) Location() *time.Location {
	return c.loc
}

// Classify never fails: an unknown date or time yields a nil timestamp and a
// non-expired appointment.
func (c *Classifier) Classify(date, clock string, now time.Time) Classification {
	day, ok := ParseDay(date, c.loc)
	if !ok {
		return Classification{}
	}
	return c.classifyDay(day, clock, now)
}

func (c *Classifier) ClassifyRecord(r Record, now time.Time) Classification {
	if r.Day.IsZero() {
		return c.Classify(r.Date, r.Time, now)
	}
	return c.classifyDay(r.Day, r.Time, now)
}

func (c *Classifier) classifyDay(day time.Time, clock string, now time.Time) Classification {
	at, ok := composeClock(day, clock, c.loc)
	if !ok {
		at, ok = composeFallback(day, clock, c.loc)
	}
	if !ok {
		return Classification{}
	}
	return Classification{At: &at, Expired: at.Before(now)}
}

func composeClock(day time.Time, clock string, loc *time.Location) (time.Time, bool) {
	m := clockPattern.FindStringSubmatch(clock)
	if m == nil {
		return time.Time{}, false
	}

	hour, _ := strconv.Atoi(m[1])
	minute := atoiOrZero(m[2])
	second := atoiOrZero(m[3])
	meridiem := strings.ToUpper(m[4])

	if minute > 59 || second > 59 {
		return time.Time{}, false
	}

	// Meridiem only shifts 1-11 PM and 12 AM; "13 PM" stays 13:00.
	switch {
	case meridiem == "PM" && hour < 12:
		hour += 12
	case meridiem == "AM" && hour == 12:
		hour = 0
	}
	if hour > 23 {
		return time.Time{}, false
	}

	y, mo, d := day.Date()
	return time.Date(y, mo, d, hour, minute, second, 0, loc), true
}

func composeFallback(day time.Time, clock string, loc *time.Location) (time.Time, bool) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		clock = "00:00"
	}
	value := day.Format("2006-01-02") + " " + clock

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
