package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
)

// Config holds dispatcher configuration
type Config struct {
	WorkerCount     int           // default: 2
	QueueSize       int           // default: 1000
	DeliveryTimeout time.Duration // default: 30 seconds
}

// Dispatcher queues notifications and fans each one out to every sink from
// a fixed pool of workers. Notify never blocks; a full queue drops.
type Dispatcher struct {
	sinks  []notification.Sink
	config Config
	queue  chan notification.Notification
	now    func() time.Time

	dropped   atomic.Int64
	delivered atomic.Int64
}

// NewDispatcher creates a dispatcher. Workers start with Run.
func NewDispatcher(cfg Config, sinks ...notification.Sink) *Dispatcher {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 30 * time.Second
	}
	return &Dispatcher{
		sinks:  sinks,
		config: cfg,
		queue:  make(chan notification.Notification, cfg.QueueSize),
		now:    time.Now,
	}
}

// Notify queues n for delivery.
func (d *Dispatcher) Notify(ctx context.Context, n notification.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now().UTC()
	}
	select {
	case d.queue <- n:
	default:
		d.dropped.Add(1)
		slog.WarnContext(ctx, "Dropping notification",
			"type", n.Type,
			"recipient_id", n.RecipientID,
			"error", notification.ErrQueueFull,
		)
	}
}

// Run processes the queue until ctx is done, then drains what is already
// queued and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Notification dispatcher started",
		"workers", d.config.WorkerCount,
		"queue_size", d.config.QueueSize,
		"sinks", len(d.sinks),
	)

	var wg sync.WaitGroup
	for i := 0; i < d.config.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d.worker(ctx, id)
		}(i)
	}
	wg.Wait()

	d.drain()
	slog.InfoContext(ctx, "Notification dispatcher stopped",
		"delivered", d.delivered.Load(),
		"dropped", d.dropped.Load(),
	)
	return nil
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.queue:
			d.deliver(ctx, id, n)
		}
	}
}

func (d *Dispatcher) drain() {
	ctx := context.Background()
	for {
		select {
		case n := <-d.queue:
			d.deliver(ctx, -1, n)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, worker int, n notification.Notification) {
	for _, sink := range d.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, d.config.DeliveryTimeout)
		err := sink.Deliver(sinkCtx, n)
		cancel()

		switch {
		case err == nil:
			d.delivered.Add(1)
		case errors.Is(err, notification.ErrNoRecipientAddr):
			slog.DebugContext(ctx, "Notification sink skipped",
				"sink", sink.Name(),
				"type", n.Type,
				"recipient_id", n.RecipientID,
			)
		default:
			slog.ErrorContext(ctx, "Failed to deliver notification",
				"worker", worker,
				"sink", sink.Name(),
				"type", n.Type,
				"recipient_id", n.RecipientID,
				"error", err,
			)
		}
	}
}

// Dropped returns how many notifications were discarded on a full queue.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Delivered returns the count of successful sink deliveries.
func (d *Dispatcher) Delivered() int64 {
	return d.delivered.Load()
}
