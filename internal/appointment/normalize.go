package appointment

import (
	"strings"
	"time"
)

var dayLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ParseDay reads a backend date into its calendar day at midnight in loc.
// Timestamps keep the day as written in their own offset.
func ParseDay(date string, loc *time.Location) (time.Time, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range dayLayouts {
		t, err := time.Parse(layout, date)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}

// CanonicalStatus maps a status to its canonical spelling, case-insensitively.
// Statuses outside the known set are returned trimmed but otherwise untouched.
func CanonicalStatus(raw string) Status {
	raw = strings.TrimSpace(raw)
	for _, s := range knownStatuses {
		if strings.EqualFold(raw, string(s)) {
			return s
		}
	}
	return Status(raw)
}

// Normalize converts the backend list into records. Entries without an id are dropped;
// entries without a resolvable patient keep an empty PatientRef. Flat patient emails
// that match a user email elsewhere in the same load resolve to that user's id.
func Normalize(raw []RawAppointment, loc *time.Location) []Record {
	userByEmail := indexUserEmails(raw)

	records := make([]Record, 0, len(raw))
	for _, r := range raw {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			continue
		}

		rec := Record{
			ID:          id,
			PatientRef:  patientRef(r, userByEmail),
			DoctorName:  strings.TrimSpace(r.DoctorName),
			Department:  strings.TrimSpace(r.Department),
			Date:        strings.TrimSpace(r.Date),
			Time:        strings.TrimSpace(r.Time),
			Status:      CanonicalStatus(r.Status),
			Reason:      r.Reason,
			Notes:       r.Notes,
			PatientName: strings.TrimSpace(r.PatientName),
		}

		if r.User != nil {
			rec.PatientName = firstNonEmpty(r.User.Name, r.PatientName)
			rec.PatientEmail = firstNonEmpty(r.User.Email, r.PatientEmail, r.Email)
			rec.PatientPhone = firstNonEmpty(r.User.Phone, r.Phone)
		} else {
			rec.PatientEmail = firstNonEmpty(r.PatientEmail, r.Email)
			rec.PatientPhone = strings.TrimSpace(r.Phone)
		}

		if day, ok := ParseDay(rec.Date, loc); ok {
			rec.Day = day
		}

		records = append(records, rec)
	}
	return records
}

func patientRef(r RawAppointment, userByEmail map[string]string) string {
	if r.User != nil {
		if ref := firstNonEmpty(r.User.ID, r.User.Email); ref != "" {
			return ref
		}
	}

	email := firstNonEmpty(r.PatientEmail, r.Email)
	if id, ok := userByEmail[strings.ToLower(email)]; ok {
		return id
	}
	return email
}

// indexUserEmails maps each lowercased user email to the user id it belongs to.
func indexUserEmails(raw []RawAppointment) map[string]string {
	index := make(map[string]string)
	for _, r := range raw {
		if r.User == nil {
			continue
		}
		id := strings.TrimSpace(r.User.ID)
		email := strings.ToLower(strings.TrimSpace(r.User.Email))
		if id == "" || email == "" {
			continue
		}
		if _, dup := index[email]; !dup {
			index[email] = id
		}
	}
	return index
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
