package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrDispatcherStarted = errors.New("dispatcher already started")

type Config struct {
	Workers         int
	BufferSize      int
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	AttemptTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:         2,
		BufferSize:      256,
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		AttemptTimeout:  5 * time.Second,
	}
}

// Dispatcher delivers stock signals to notifiers from a bounded buffer drained by worker
// goroutines. Dispatch never blocks: a signal that does not fit into the buffer is dropped.
// Each notifier is retried independently so one failing target does not repeat deliveries
// to the others.
type Dispatcher struct {
	cfg       Config
	notifiers []port.StockNotifier
	logger    *zap.Logger

	queue chan domain.StockSignal
	group *errgroup.Group

	mu      sync.RWMutex
	started bool
	closed  bool

	dropped   prometheus.Counter
	delivered *prometheus.CounterVec
}

var _ port.SignalDispatcher = (*Dispatcher)(nil)

// NewDispatcher builds a dispatcher; a nil reg leaves its counters unregistered.
func NewDispatcher(cfg Config, logger *zap.Logger, reg prometheus.Registerer, notifiers ...port.StockNotifier) *Dispatcher {
	def := DefaultConfig()
	if cfg.Workers < 1 {
		cfg.Workers = def.Workers
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = def.AttemptTimeout
	}

	factory := promauto.With(reg)

	return &Dispatcher{
		cfg:       cfg,
		notifiers: notifiers,
		logger:    logger.Named("notification"),
		queue:     make(chan domain.StockSignal, cfg.BufferSize),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_notifications_dropped_total",
			Help: "Stock signals dropped because the dispatch buffer was full",
		}),
		delivered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_notifications_delivered_total",
			Help: "Stock signal deliveries by result",
		}, []string{"result"}),
	}
}

// Start launches the workers. They run until Close, delivering with ctx; cancelling ctx
// abandons retries but buffered signals are still attempted once.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return ErrDispatcherStarted
	}
	d.started = true

	d.group = &errgroup.Group{}
	for range d.cfg.Workers {
		d.group.Go(func() error {
			for signal := range d.queue {
				d.deliver(ctx, signal)
			}
			return nil
		})
	}

	d.logger.Info("dispatcher started",
		zap.Int("workers", d.cfg.Workers),
		zap.Int("buffer", d.cfg.BufferSize),
		zap.Int("notifiers", len(d.notifiers)),
	)

	return nil
}

func (d *Dispatcher) Dispatch(signals ...domain.StockSignal) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, signal := range signals {
		if d.closed {
			d.drop(signal, "dispatcher closed")
			continue
		}

		select {
		case d.queue <- signal:
		default:
			d.drop(signal, "buffer full")
		}
	}
}

// Close stops accepting signals and waits for the workers to drain the buffer.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	group := d.group
	d.mu.Unlock()

	if group == nil {
		return nil
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("group.Wait: %w", err)
	}

	return nil
}

func (d *Dispatcher) drop(signal domain.StockSignal, reason string) {
	d.dropped.Inc()
	d.logger.Warn("stock signal dropped",
		zap.String("reason", reason),
		zap.String("kind", string(signal.Kind)),
		zap.Stringer("product_id", signal.ProductID),
	)
}

func (d *Dispatcher) deliver(ctx context.Context, signal domain.StockSignal) {
	for _, notifier := range d.notifiers {
		attempts := 0

		err := backoff.RetryNotify(func() error {
			attempts++
			attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.AttemptTimeout)
			defer cancel()

			return notifier.NotifyStock(attemptCtx, signal)
		}, d.retryPolicy(ctx), func(err error, wait time.Duration) {
			d.logger.Debug("stock notification retry",
				zap.String("notifier", fmt.Sprintf("%T", notifier)),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		})
		if err != nil {
			d.delivered.WithLabelValues("failed").Inc()
			d.logger.Error("stock notification failed",
				zap.String("notifier", fmt.Sprintf("%T", notifier)),
				zap.String("kind", string(signal.Kind)),
				zap.Stringer("product_id", signal.ProductID),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
			continue
		}

		d.delivered.WithLabelValues("ok").Inc()
	}
}

func (d *Dispatcher) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.cfg.InitialInterval
	b.MaxInterval = d.cfg.MaxInterval
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, d.cfg.MaxRetries), ctx)
}
