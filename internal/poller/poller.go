package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-dashboard/internal/appointment"
	"github.com/hackgods/clinic-dashboard/internal/metrics"
)

const DefaultInterval = 10 * time.Second

var (
	ErrAlreadyRunning  = errors.New("poller already running")
	ErrPollInFlight    = errors.New("previous poll still in flight")
	ErrLockNotAcquired = errors.New("poll lock not acquired")
	errStale           = errors.New("poll result arrived after stop")
)

// Locker serialises polls across watcher replicas.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type Config struct {
	Source       appointment.Source
	Classifier   *appointment.Classifier
	Detector     *Detector
	Sink         Sink
	Interval     time.Duration
	FetchTimeout time.Duration
	Locker       Locker // optional
	LockKey      string
	Logger       zerolog.Logger
	Metrics      *metrics.PollMetrics // optional
}

// Poller re-fetches appointments on a fixed interval and forwards confirmation
// notifications to its sink. Ticks that land while a poll is running are skipped.
type Poller struct {
	cfg Config

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	inFlight atomic.Bool
	gen      atomic.Uint64
	wg       sync.WaitGroup
}

func New(cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Classifier == nil {
		cfg.Classifier = appointment.NewClassifier(nil)
	}
	if cfg.Detector == nil {
		cfg.Detector = NewDetector(nil)
	}
	if cfg.Sink == nil {
		cfg.Sink = NewLogSink(cfg.Logger)
	}
	if cfg.LockKey == "" {
		cfg.LockKey = "default"
	}
	return &Poller{cfg: cfg}
}

// Start runs one poll immediately and then one per interval until Stop or ctx ends.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		select {
		case <-p.done:
			// The parent context ended the previous run without a Stop.
			p.wg.Wait()
			p.running = false
			if err := p.cfg.Detector.Reset(ctx); err != nil {
				return fmt.Errorf("reset observed statuses: %w", err)
			}
		default:
			return ErrAlreadyRunning
		}
	}

	gen := p.gen.Add(1)
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	go p.loop(runCtx, gen, p.done)

	p.cfg.Logger.Info().Dur("interval", p.cfg.Interval).Msg("poller started")
	return nil
}

// Stop cancels the timer and any in-flight fetch, waits for the running tick and
// any PollOnce call to return, then forgets all observed statuses. Stopping an
// idle poller is a no-op.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}

	p.gen.Add(1)
	p.cancel()

	finished := make(chan struct{})
	go func(done chan struct{}) {
		<-done
		p.wg.Wait()
		close(finished)
	}(p.done)

	select {
	case <-finished:
	case <-ctx.Done():
		return fmt.Errorf("wait for poller: %w", ctx.Err())
	}

	p.running = false
	p.cancel = nil
	p.done = nil

	if err := p.cfg.Detector.Reset(ctx); err != nil {
		return fmt.Errorf("reset observed statuses: %w", err)
	}

	p.cfg.Logger.Info().Msg("poller stopped")
	return nil
}

// PollOnce runs a single fetch and compare cycle on the caller's goroutine.
func (p *Poller) PollOnce(ctx context.Context) error {
	if !p.inFlight.CompareAndSwap(false, true) {
		return ErrPollInFlight
	}
	defer p.inFlight.Store(false)

	// Registered under mu so Stop never waits on the group while it grows.
	p.mu.Lock()
	p.wg.Add(1)
	gen := p.gen.Load()
	p.mu.Unlock()
	defer p.wg.Done()

	return p.poll(ctx, gen)
}

func (p *Poller) loop(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	p.dispatch(ctx, gen)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.dispatch(ctx, gen)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, gen uint64) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.cfg.Metrics.ObserveSkipped("overlap")
		p.cfg.Logger.Debug().Msg("previous poll still running, skipping tick")
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)

		if err := p.poll(ctx, gen); err != nil && !errors.Is(err, errStale) && ctx.Err() == nil {
			p.cfg.Logger.Error().Err(err).Msg("poll failed")
		}
	}()
}

func (p *Poller) poll(ctx context.Context, gen uint64) error {
	if p.cfg.Locker == nil {
		return p.pollLocked(ctx, gen)
	}

	err := p.cfg.Locker.WithLock(ctx, p.cfg.LockKey, func(lockCtx context.Context) error {
		return p.pollLocked(lockCtx, gen)
	})
	if errors.Is(err, ErrLockNotAcquired) {
		p.cfg.Metrics.ObserveSkipped("locked")
		p.cfg.Logger.Debug().Str("lock_key", p.cfg.LockKey).Msg("another watcher holds the poll lock, skipping tick")
		return nil
	}
	return err
}

func (p *Poller) pollLocked(ctx context.Context, gen uint64) error {
	start := time.Now()

	records, err := p.fetch(ctx)
	if err != nil {
		p.cfg.Metrics.ObservePoll("error", time.Since(start).Seconds())
		return err
	}
	if !p.current(gen) {
		return errStale
	}

	p.observeExpiry(records)

	statuses, notes, err := p.cfg.Detector.Diff(ctx, records)
	if err != nil {
		p.cfg.Metrics.ObservePoll("error", time.Since(start).Seconds())
		return err
	}
	if !p.current(gen) {
		return errStale
	}
	if err := p.cfg.Detector.Commit(ctx, statuses); err != nil {
		p.cfg.Metrics.ObservePoll("error", time.Since(start).Seconds())
		return err
	}

	var sinkErrs []error
	for _, n := range notes {
		if !p.current(gen) {
			return errStale
		}
		if err := p.cfg.Sink.Notify(ctx, n); err != nil {
			sinkErrs = append(sinkErrs, fmt.Errorf("notify %s: %w", n.AppointmentID, err))
			continue
		}
		p.cfg.Metrics.ObserveNotification()
	}

	p.cfg.Metrics.ObservePoll("ok", time.Since(start).Seconds())
	p.cfg.Logger.Debug().
		Int("appointments", len(records)).
		Int("notifications", len(notes)).
		Dur("duration", time.Since(start)).
		Msg("poll complete")

	return errors.Join(sinkErrs...)
}

func (p *Poller) fetch(ctx context.Context) ([]appointment.Record, error) {
	fetchCtx := ctx
	if p.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.cfg.FetchTimeout)
		defer cancel()
	}

	raw, err := p.cfg.Source.FetchAppointments(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}
	return appointment.Normalize(raw, p.cfg.Classifier.Location()), nil
}

func (p *Poller) observeExpiry(records []appointment.Record) {
	if p.cfg.Metrics == nil {
		return
	}
	var expired, active, unknown int
	now := time.Now()
	for _, r := range records {
		c := p.cfg.Classifier.ClassifyRecord(r, now)
		switch {
		case c.At == nil:
			unknown++
		case c.Expired:
			expired++
		default:
			active++
		}
	}
	p.cfg.Metrics.SetObserved(expired, active, unknown)
}

func (p *Poller) current(gen uint64) bool {
	return p.gen.Load() == gen
}
