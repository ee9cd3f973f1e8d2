package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it too.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool PgxPool
}

func NewPgRepository(pool PgxPool) *PgRepository {
	return &PgRepository{pool: pool}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS event_logs (
	id             BIGSERIAL PRIMARY KEY,
	event_type     TEXT        NOT NULL,
	appointment_id TEXT,
	payload        JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_event_logs_created_at ON event_logs (created_at DESC)`

func (r *PgRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure event_logs schema: %w", err)
	}
	return nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, []byte(ev.Payload), nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

// ListRecent returns the newest events first. limit defaults to 20 and is capped at 100.
func (r *PgRepository) ListRecent(ctx context.Context, eventType string, limit int) ([]EventLog, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, event_type, appointment_id, payload, created_at
		FROM event_logs
		WHERE ($1::text = '' OR event_type = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, eventType, limit)
	if err != nil {
		return nil, fmt.Errorf("list event logs: %w", err)
	}
	defer rows.Close()

	result := make([]EventLog, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list event logs: %w", err)
	}

	return result, nil
}

func scanEvent(row pgx.Row) (*EventLog, error) {
	var ev EventLog
	var payload []byte

	if err := row.Scan(&ev.ID, &ev.EventType, &ev.AppointmentID, &payload, &ev.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan event log: %w", err)
	}

	ev.Payload = payload
	return &ev, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
