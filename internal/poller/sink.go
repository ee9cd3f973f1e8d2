package poller

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Sink receives confirmation notifications.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notification) error

func (f SinkFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// LogSink writes each notification as a structured log line.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, n Notification) error {
	s.logger.Info().
		Str("notification_id", n.ID.String()).
		Str("appointment_id", n.AppointmentID).
		Str("doctor", n.DoctorName).
		Str("date", n.Date).
		Str("time", n.Time).
		Msg("appointment confirmed")
	return nil
}

// MultiSink delivers to every sink even when one fails, joining the errors.
type MultiSink []Sink

func (m MultiSink) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
