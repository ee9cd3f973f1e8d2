package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-dashboard/internal/appointment"
)

// Notification announces that an appointment moved into Confirmed between two polls.
type Notification struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	DoctorName    string    `json:"doctor_name"`
	PatientName   string    `json:"patient_name,omitempty"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	DetectedAt    time.Time `json:"detected_at"`
}

// StatusStore holds the last status observed per appointment id.
type StatusStore interface {
	Load(ctx context.Context) (map[string]appointment.Status, error)
	Save(ctx context.Context, statuses map[string]appointment.Status) error
	Reset(ctx context.Context) error
}

// Detector diffs each poll against the statuses seen on earlier polls.
type Detector struct {
	store StatusStore
	now   func() time.Time
}

func NewDetector(store StatusStore) *Detector {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Detector{store: store, now: time.Now}
}

// Observe records the statuses in records and returns one notification per record
// that was seen before, was not Confirmed, and is Confirmed now.
func (d *Detector) Observe(ctx context.Context, records []appointment.Record) ([]Notification, error) {
	changes, notes, err := d.Diff(ctx, records)
	if err != nil {
		return nil, err
	}
	if err := d.Commit(ctx, changes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Diff computes notifications without touching the store. The returned statuses
// are what Commit should persist.
func (d *Detector) Diff(ctx context.Context, records []appointment.Record) (map[string]appointment.Status, []Notification, error) {
	prev, err := d.store.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load observed statuses: %w", err)
	}

	next := make(map[string]appointment.Status, len(records))
	var notes []Notification
	detectedAt := d.now()

	for _, r := range records {
		if r.ID == "" {
			continue
		}
		next[r.ID] = r.Status

		old, seen := prev[r.ID]
		if !seen {
			continue
		}
		if old != appointment.StatusConfirmed && r.Status == appointment.StatusConfirmed {
			notes = append(notes, Notification{
				ID:            uuid.New(),
				AppointmentID: r.ID,
				DoctorName:    r.DoctorName,
				PatientName:   r.PatientName,
				Date:          r.Date,
				Time:          r.Time,
				DetectedAt:    detectedAt,
			})
		}
	}

	return next, notes, nil
}

func (d *Detector) Commit(ctx context.Context, statuses map[string]appointment.Status) error {
	if len(statuses) == 0 {
		return nil
	}
	if err := d.store.Save(ctx, statuses); err != nil {
		return fmt.Errorf("save observed statuses: %w", err)
	}
	return nil
}

// Reset forgets every observed status.
func (d *Detector) Reset(ctx context.Context) error {
	return d.store.Reset(ctx)
}

// MemoryStore keeps observed statuses in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	statuses map[string]appointment.Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{statuses: make(map[string]appointment.Status)}
}

func (m *MemoryStore) Load(ctx context.Context) (map[string]appointment.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]appointment.Status, len(m.statuses))
	for k, v := range m.statuses {
		out[k] = v
	}
	return out, nil
}

// Save merges statuses into the store; ids missing from statuses are kept.
func (m *MemoryStore) Save(ctx context.Context, statuses map[string]appointment.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range statuses {
		m.statuses[k] = v
	}
	return nil
}

func (m *MemoryStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statuses = make(map[string]appointment.Status)
	return nil
}
