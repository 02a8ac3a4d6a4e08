// Package worker runs the consumer loop driving the detection pipeline:
// history append, anomaly evaluation, scoring, and alerting.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/marpol/driftwatch/internal/adapters/mq/queue"
	"github.com/marpol/driftwatch/internal/domain/model"
	"github.com/marpol/driftwatch/pkg/logger"
	"github.com/marpol/driftwatch/pkg/metrics"
)

// workerShutdownTimeout bounds the wait for one worker during pool shutdown.
const workerShutdownTimeout = 5 * time.Second

// History is the slice of the repository contract the worker needs.
type History interface {
	Append(ctx context.Context, mmsi string, r model.PositionReport)
	Previous(ctx context.Context, mmsi string) (model.PositionReport, bool)
}

// Detector evaluates a (current, previous) pair for anomalies.
type Detector interface {
	Evaluate(ctx context.Context, mmsi string, current, previous model.PositionReport) model.Evidence
}

// Alerter decides whether evidence becomes an emitted alert.
type Alerter interface {
	MaybeAlert(ctx context.Context, ev model.Evidence, now time.Time) (bool, model.Alert)
}

// Queue defines how the worker receives updates.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Update
}

// Worker drains the queue and processes each update to completion. A panic
// while handling one vessel's report is recovered so it cannot take the
// stream down with it.
type Worker struct {
	queue    Queue
	history  History
	detector Detector
	alerter  Alerter
	name     string
	now      func() time.Time

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(log logger.Logger) Option {
	return func(w *Worker) {
		if log != nil {
			w.log = log
		}
	}
}

// WithClock injects the wall clock used for cooldown decisions; tests
// substitute a fake.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// New creates a worker over the given pipeline stages.
func New(q Queue, history History, detector Detector, alerter Alerter, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		history:  history,
		detector: detector,
		alerter:  alerter,
		name:     "worker",
		now:      time.Now,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.log == nil {
		w.log = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the consumer loop until ctx is canceled, the queue closes, or
// Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	updates := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			w.process(ctx, u)
		}
	}
}

// Shutdown stops the worker and waits for the in-flight report to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.log.Warn(ctx, "worker shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process handles a single update end to end.
func (w *Worker) process(ctx context.Context, u queue.Update) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error(ctx, "panic while processing report",
				logger.String("mmsi", u.MMSI),
				logger.Any("panic", r),
			)
		}
	}()

	start := w.now()

	w.history.Append(ctx, u.MMSI, u.Report)

	previous, ok := w.history.Previous(ctx, u.MMSI)
	if !ok {
		// First observation for this vessel; nothing to compare yet.
		return
	}

	ev := w.detector.Evaluate(ctx, u.MMSI, u.Report, previous)
	metrics.RecordEvaluationLatency(float64(w.now().Sub(start).Microseconds()) / 1000.0)
	if ev.Empty() {
		return
	}

	for _, kind := range ev.Anomalies {
		metrics.RecordAnomaly(string(kind))
	}

	emitted, alert := w.alerter.MaybeAlert(ctx, ev, w.now())
	if emitted {
		w.log.Debug(ctx, "alert emitted",
			logger.String("mmsi", u.MMSI),
			logger.String("danger_level", alert.DangerLevel),
			logger.Int("danger_score", alert.DangerScore),
		)
	}
}

// Pool manages a fixed set of workers over one queue. The engine defaults to
// a single worker so all state mutation is serialized; larger pools stay
// correct because the stores are mutex-guarded.
type Pool struct {
	workers []*Worker
	log     logger.Logger
}

// NewPool creates count workers over the shared pipeline stages.
func NewPool(count int, q Queue, history History, detector Detector, alerter Alerter, opts ...Option) *Pool {
	if count < 1 {
		count = 1
	}

	p := &Pool{
		workers: make([]*Worker, count),
		log:     logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = New(q, history, detector, alerter, workerOpts...)
	}
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers and waits briefly for each to finish.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
			p.log.Warn(context.Background(), "worker stop timed out", logger.String("worker", w.name))
		}
	}
}
