package notifier

import (
	"context"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/notification"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/logging"
)

type DispatcherConfig struct {
	Workers     int
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	QueueSize   int
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:     4,
		Timeout:     5 * time.Second,
		MaxAttempts: 5,
		BaseBackoff: 5 * time.Second,
		MaxBackoff:  5 * time.Minute,
		QueueSize:   1024,
	}
}

func normalizeDispatcherConfig(cfg DispatcherConfig) DispatcherConfig {
	defaults := DefaultDispatcherConfig()
	if cfg.Workers < 1 {
		cfg.Workers = defaults.Workers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = defaults.BaseBackoff
	}
	if cfg.MaxBackoff < cfg.BaseBackoff {
		cfg.MaxBackoff = cfg.BaseBackoff
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = defaults.QueueSize
	}
	return cfg
}

type pendingDelivery struct {
	ctx      context.Context
	event    notification.Event
	attempts int
	nextAt   time.Time
}

// Dispatcher sends events through a sink on a bounded worker pool. Publish
// never waits for the sink. Transient failures wait in a retry queue until
// Redeliver picks them up.
type Dispatcher struct {
	sink   notification.Sink
	pool   *ants.Pool
	clock  clockwork.Clock
	logger *logging.Logger
	cfg    DispatcherConfig

	inflight sync.WaitGroup
	mu       sync.Mutex
	pending  []pendingDelivery
}

func NewDispatcher(sink notification.Sink, cfg DispatcherConfig, clock clockwork.Clock, logger *logging.Logger) (*Dispatcher, error) {
	if sink == nil {
		return nil, crerr.New("notification sink is required")
	}
	cfg = normalizeDispatcherConfig(cfg)
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, crerr.Wrap(err, "create notification worker pool")
	}

	return &Dispatcher{
		sink:   sink,
		pool:   pool,
		clock:  clock,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// Publish schedules one send per event and returns without waiting. The
// caller's cancellation does not reach the send; its values do.
func (d *Dispatcher) Publish(ctx context.Context, events ...notification.Event) error {
	base := context.WithoutCancel(ctx)
	for _, ev := range events {
		if err := d.submit(base, ev, 1); err != nil {
			return err
		}
	}
	return nil
}

// Redeliver resends every queued event whose backoff elapsed and waits for
// those sends. It returns how many were attempted.
func (d *Dispatcher) Redeliver(ctx context.Context) (int, error) {
	due := d.takeDue(d.clock.Now())
	if len(due) == 0 {
		return 0, nil
	}

	var batch sync.WaitGroup
	for i, item := range due {
		if err := ctx.Err(); err != nil {
			d.requeue(due[i:])
			return i, err
		}

		item := item
		batch.Add(1)
		d.inflight.Add(1)
		if err := d.pool.Submit(func() {
			defer d.inflight.Done()
			defer batch.Done()
			d.deliver(item.ctx, item.event, item.attempts+1)
		}); err != nil {
			batch.Done()
			d.inflight.Done()
			d.requeue(due[i:])
			batch.Wait()
			return i, crerr.Wrap(err, "submit notification redelivery")
		}
	}
	batch.Wait()
	return len(due), nil
}

// Pending returns how many events wait for redelivery.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Wait blocks until every submitted send has finished.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

// Close waits for in-flight sends and releases the pool. Queued retries are
// dropped and logged.
func (d *Dispatcher) Close() {
	d.inflight.Wait()
	d.pool.Release()

	d.mu.Lock()
	dropped := len(d.pending)
	d.pending = nil
	d.mu.Unlock()
	if dropped > 0 {
		d.logger.Warn("notification dispatcher closed with pending redeliveries", "dropped", dropped)
	}
}

func (d *Dispatcher) submit(ctx context.Context, ev notification.Event, attempt int) error {
	d.inflight.Add(1)
	if err := d.pool.Submit(func() {
		defer d.inflight.Done()
		d.deliver(ctx, ev, attempt)
	}); err != nil {
		d.inflight.Done()
		return crerr.Wrapf(err, "submit notification %s", ev.ID)
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, ev notification.Event, attempt int) {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	err := d.sink.Send(sendCtx, ev)
	cancel()
	if err == nil {
		return
	}

	switch {
	case !IsTransient(err):
		d.logger.ErrorContext(ctx, "notification rejected",
			"event_id", ev.ID,
			"recipient_user_id", ev.RecipientUserID,
			"attempt", attempt,
			"error", err,
		)
	case attempt >= d.cfg.MaxAttempts:
		d.logger.ErrorContext(ctx, "notification dropped after max attempts",
			"event_id", ev.ID,
			"recipient_user_id", ev.RecipientUserID,
			"attempts", attempt,
			"error", err,
		)
	default:
		d.enqueue(ctx, ev, attempt, err)
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, ev notification.Event, attempt int, cause error) {
	nextAt := d.clock.Now().Add(d.backoff(attempt))

	d.mu.Lock()
	if len(d.pending) >= d.cfg.QueueSize {
		d.mu.Unlock()
		d.logger.ErrorContext(ctx, "notification retry queue full, dropping event",
			"event_id", ev.ID,
			"queue_size", d.cfg.QueueSize,
			"error", cause,
		)
		return
	}
	d.pending = append(d.pending, pendingDelivery{ctx: ctx, event: ev, attempts: attempt, nextAt: nextAt})
	d.mu.Unlock()

	d.logger.WarnContext(ctx, "notification send failed, queued for redelivery",
		"event_id", ev.ID,
		"attempt", attempt,
		"next_at", nextAt,
		"error", cause,
	)
}

func (d *Dispatcher) takeDue(now time.Time) []pendingDelivery {
	d.mu.Lock()
	defer d.mu.Unlock()

	var due []pendingDelivery
	kept := d.pending[:0]
	for _, item := range d.pending {
		if !item.nextAt.After(now) {
			due = append(due, item)
			continue
		}
		kept = append(kept, item)
	}
	d.pending = kept
	return due
}

func (d *Dispatcher) requeue(items []pendingDelivery) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, items...)
}

// backoff doubles from BaseBackoff per failed attempt, capped at MaxBackoff.
func (d *Dispatcher) backoff(attempt int) time.Duration {
	wait := d.cfg.BaseBackoff
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= d.cfg.MaxBackoff {
			return d.cfg.MaxBackoff
		}
	}
	return wait
}
