package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrUnknownSort = errors.New("unknown roster sort")

const (
	SortFirstSeen = ""
	SortName      = "name"
	SortLastVisit = "last_visit"
)

// Source fetches the raw appointment list from the hospital backend.
type Source interface {
	FetchAppointments(ctx context.Context) ([]RawAppointment, error)
}

// Filter narrows a classified listing. Zero values match everything.
type Filter struct {
	Status     Status
	PatientRef string
	Expired    *bool
}

func (f Filter) match(cr ClassifiedRecord) bool {
	if f.Status != "" && cr.Status != f.Status {
		return false
	}
	if f.PatientRef != "" && cr.PatientRef != f.PatientRef {
		return false
	}
	if f.Expired != nil && cr.Expired != *f.Expired {
		return false
	}
	return true
}

type Service struct {
	source     Source
	classifier *Classifier
	now        func() time.Time
}

func NewService(source Source, classifier *Classifier) *Service {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &Service{
		source:     source,
		classifier: classifier,
		now:        time.Now,
	}
}

// WithClock replaces the service clock, mostly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Load fetches and normalizes the current appointment list.
func (s *Service) Load(ctx context.Context) ([]Record, error) {
	raw, err := s.source.FetchAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}
	return Normalize(raw, s.classifier.Location()), nil
}

// ListClassified returns the current appointments with their expiry, filtered.
func (s *Service) ListClassified(ctx context.Context, f Filter) ([]ClassifiedRecord, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	all := ClassifyAll(records, s.classifier, s.now())
	out := make([]ClassifiedRecord, 0, len(all))
	for _, cr := range all {
		if f.match(cr) {
			out = append(out, cr)
		}
	}
	return out, nil
}

// Roster rebuilds the patient roster from the current appointment list.
func (s *Service) Roster(ctx context.Context, sortBy string) ([]RosterEntry, error) {
	switch sortBy {
	case SortFirstSeen, SortName, SortLastVisit:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSort, sortBy)
	}

	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	roster := BuildRoster(records)
	switch sortBy {
	case SortName:
		SortRosterByName(roster)
	case SortLastVisit:
		SortRosterByLastVisit(roster)
	}
	return roster, nil
}

// Upcoming splits one patient's appointments (or everyone's when patientRef is empty)
// into upcoming and past.
func (s *Service) Upcoming(ctx context.Context, patientRef string) (upcoming, past []ClassifiedRecord, err error) {
	records, err := s.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	if patientRef != "" {
		mine := records[:0]
		for _, r := range records {
			if r.PatientRef == patientRef {
				mine = append(mine, r)
			}
		}
		records = mine
	}

	upcoming, past = Partition(records, s.classifier, s.now())
	return upcoming, past, nil
}
