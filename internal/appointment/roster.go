package appointment

import (
	"sort"
	"strings"
)

// BuildRoster collapses appointments into one entry per patient, in first-seen order.
// Identity fields come from the first appointment seen for a patient.
func BuildRoster(records []Record) []RosterEntry {
	index := make(map[string]int)
	roster := make([]RosterEntry, 0)

	for _, r := range records {
		if r.PatientRef == "" {
			continue
		}

		i, seen := index[r.PatientRef]
		if !seen {
			index[r.PatientRef] = len(roster)
			roster = append(roster, RosterEntry{
				Key:          r.PatientRef,
				Name:         r.PatientName,
				Email:        r.PatientEmail,
				Phone:        r.PatientPhone,
				LastVisit:    r.Day,
				LastVisitRaw: r.Date,
				VisitCount:   1,
			})
			continue
		}

		entry := &roster[i]
		entry.VisitCount++
		// A zero LastVisit is older than any parseable day.
		if !r.Day.IsZero() && r.Day.After(entry.LastVisit) {
			entry.LastVisit = r.Day
			entry.LastVisitRaw = r.Date
		}
	}

	return roster
}

// SortRosterByName orders entries alphabetically, case-insensitively, ties broken by key.
func SortRosterByName(entries []RosterEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if a != b {
			return a < b
		}
		return entries[i].Key < entries[j].Key
	})
}

// SortRosterByLastVisit puts the most recently seen patients first.
func SortRosterByLastVisit(entries []RosterEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].LastVisit.Equal(entries[j].LastVisit) {
			return entries[i].LastVisit.After(entries[j].LastVisit)
		}
		return entries[i].Key < entries[j].Key
	})
}
