package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hackgods/clinic-dashboard/internal/poller"
)

// Sink records every confirmation notification in the event log.
type Sink struct {
	repo *PgRepository
}

var _ poller.Sink = (*Sink)(nil)

func NewSink(repo *PgRepository) *Sink {
	return &Sink{repo: repo}
}

func (s *Sink) Notify(ctx context.Context, n poller.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification %s: %w", n.AppointmentID, err)
	}

	apptID := n.AppointmentID
	return s.repo.InsertEvent(ctx, EventLog{
		EventType:     EventAppointmentConfirmed,
		AppointmentID: &apptID,
		Payload:       payload,
		CreatedAt:     n.DetectedAt,
	})
}
