package events

import (
	"encoding/json"
	"time"
)

const (
	EventAppointmentConfirmed = "APPOINTMENT_CONFIRMED"
)

type EventLog struct {
	ID            int64           `json:"id"`
	EventType     string          `json:"event_type"`
	AppointmentID *string         `json:"appointment_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
