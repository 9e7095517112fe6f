// Package sender runs outbound Bot API calls on a small worker pool with
// retries.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m3rciful/gameclub/core/logger"
	"github.com/m3rciful/gameclub/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the chat's queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

const tracerName = "github.com/m3rciful/gameclub/core/telegram/sender"

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls with retries. Jobs for the same
// chat always land on the same worker, so replies keep their order.
type Dispatcher struct {
	opts   Options
	tracer trace.Tracer

	mu     sync.RWMutex
	closed bool
	queues []chan job
	wg     sync.WaitGroup

	errs atomic.Uint64
}

// NewDispatcher starts the workers. Zero options get defaults.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts:   opts,
		tracer: otel.Tracer(tracerName),
		queues: make([]chan job, opts.Workers),
	}
	perWorker := max(opts.QueueSize/opts.Workers, 1)
	d.wg.Add(opts.Workers)
	for i := range d.queues {
		d.queues[i] = make(chan job, perWorker)
		go func(q <-chan job) {
			defer d.wg.Done()
			for j := range q {
				_ = d.execute(j)
			}
		}(d.queues[i])
	}
	return d
}

// Enqueue schedules run on the worker owning the chat in ctx. run may be
// called several times, so it must be safe to repeat.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.queueFor(ctx) <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Do runs the call on the caller's goroutine with the same retry policy and
// returns the final error. Broadcast loops use it to count deliveries.
func (d *Dispatcher) Do(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	return d.execute(job{ctx: ctx, action: action, endpoint: endpoint, run: run})
}

// ErrorCount returns the number of jobs that failed for good.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close rejects new jobs and waits until queued ones are done.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.queues {
			close(q)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) queueFor(ctx context.Context) chan job {
	chatID := logger.ChatIDFrom(ctx)
	if chatID < 0 {
		chatID = -chatID
	}
	return d.queues[chatID%int64(len(d.queues))]
}

// execute runs j until it succeeds, fails permanently, runs out of attempts
// or exceeds MaxDuration.
func (d *Dispatcher) execute(j job) error {
	parent := j.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, span := d.tracer.Start(parent, "tg.send "+j.endpoint,
		trace.WithAttributes(attribute.String("tg.action", j.action)))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	maxAttempts := d.opts.MaxRetries + 1
	attempt := 0
	var err error
	for attempt < maxAttempts {
		attempt++
		if err = j.run(); err == nil {
			break
		}
		if attempt == maxAttempts || !netutil.ShouldRetry(err) {
			break
		}
		delay := max(d.opts.RetryBackoff*time.Duration(attempt), netutil.RetryAfter(err))
		logger.Debug(ctx, logger.CompSender, "send.retry.backoff",
			append(jobAttrs(j), slog.Int("attempt", attempt), slog.Duration("delay", delay))...)
		if werr := sleepCtx(ctx, delay); werr != nil {
			err = werr
			break
		}
	}

	span.SetAttributes(attribute.Int("tg.attempts", attempt))
	took := time.Since(start)
	if err != nil {
		d.errs.Add(1)
		kind := Classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		logger.Error(ctx, logger.CompSender, "send.fail", append(jobAttrs(j),
			slog.String("err", logger.RedactSecrets(err.Error())),
			slog.String("err_code", kind),
			slog.Int("attempts", attempt),
			slog.Duration("duration", took),
		)...)
		return err
	}
	level := slog.LevelDebug
	if attempt > 1 {
		level = slog.LevelInfo
	}
	logger.LogEvent(ctx, logger.Component(logger.CompSender), level, "send.ok", append(jobAttrs(j),
		slog.Int("attempts", attempt),
		slog.Duration("duration", took),
	)...)
	return nil
}

func jobAttrs(j job) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return attrs
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
