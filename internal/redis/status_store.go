package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinic-dashboard/internal/appointment"
	"github.com/hackgods/clinic-dashboard/internal/poller"
)

// StatusStore keeps observed appointment statuses in one Redis hash per scope,
// so replicas of the watcher share what has already been seen.
type StatusStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ poller.StatusStore = (*StatusStore)(nil)

func NewStatusStore(client *redis.Client, scope string, ttl time.Duration) *StatusStore {
	return &StatusStore{
		client: client,
		key:    fmt.Sprintf("dashboard:status:%s", scope),
		ttl:    ttl,
	}
}

func (s *StatusStore) Load(ctx context.Context) (map[string]appointment.Status, error) {
	vals, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", s.key, err)
	}

	out := make(map[string]appointment.Status, len(vals))
	for id, status := range vals {
		out[id] = appointment.Status(status)
	}
	return out, nil
}

func (s *StatusStore) Save(ctx context.Context, statuses map[string]appointment.Status) error {
	if len(statuses) == 0 {
		return nil
	}

	fields := make(map[string]any, len(statuses))
	for id, status := range statuses {
		fields[id] = string(status)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key, fields)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save statuses %s: %w", s.key, err)
	}
	return nil
}

func (s *StatusStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", s.key, err)
	}
	return nil
}
