// Package app wires the detection pipeline together and owns its lifecycle.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/marpol/driftwatch/internal/adapters/mq/queue"
	"github.com/marpol/driftwatch/internal/adapters/mq/worker"
	"github.com/marpol/driftwatch/internal/adapters/mqtt"
	"github.com/marpol/driftwatch/internal/adapters/repository"
	"github.com/marpol/driftwatch/internal/alerting"
	"github.com/marpol/driftwatch/internal/domain/detect"
	"github.com/marpol/driftwatch/internal/domain/model"
	"github.com/marpol/driftwatch/internal/domain/scoring"
	"github.com/marpol/driftwatch/pkg/logger"
	"github.com/marpol/driftwatch/pkg/metrics"
)

// Service owns every component of the anomaly engine: history store, queue,
// workers, detector, scorer, alert manager, and the optional feed
// subscription.
type Service struct {
	mu sync.RWMutex

	history  repository.Store
	detector *detect.Detector
	scorer   *scoring.Scorer
	alerter  *alerting.Manager
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	recorder *alerting.Recorder
	feed     *mqtt.Subscriber

	// Configuration
	queueSize       int
	workerCount     int
	historyLength   int
	speedDropPct    float64
	courseChangeDeg float64
	driftSpeedMS    float64
	cooldown        time.Duration
	alertLogSize    int
	extraSinks      []alerting.Sink

	feedEnabled bool
	brokerURL   string
	topic       string

	started bool
	log     logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithQueueSize bounds the report queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of pipeline consumers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithHistoryLength sets the per-vessel sliding window capacity.
func WithHistoryLength(n int) Option {
	return func(s *Service) {
		if n >= 2 {
			s.historyLength = n
		}
	}
}

// WithThresholds sets the three anomaly rule thresholds. Non-positive values
// keep their defaults.
func WithThresholds(speedDropPct, courseChangeDeg, driftSpeedMS float64) Option {
	return func(s *Service) {
		if speedDropPct > 0 {
			s.speedDropPct = speedDropPct
		}
		if courseChangeDeg > 0 {
			s.courseChangeDeg = courseChangeDeg
		}
		if driftSpeedMS > 0 {
			s.driftSpeedMS = driftSpeedMS
		}
	}
}

// WithCooldown sets the per-vessel alert cooldown window.
func WithCooldown(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cooldown = d
		}
	}
}

// WithAlertLogSize bounds the recent-alert buffer behind /alerts.
func WithAlertLogSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.alertLogSize = n
		}
	}
}

// WithFeed configures the MQTT subscription. Disabled services only receive
// reports through Ingest.
func WithFeed(enabled bool, brokerURL, topic string) Option {
	return func(s *Service) {
		s.feedEnabled = enabled
		if brokerURL != "" {
			s.brokerURL = brokerURL
		}
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithSinks adds delivery sinks beyond the built-in log sink and recorder.
func WithSinks(sinks ...alerting.Sink) Option {
	return func(s *Service) {
		s.extraSinks = append(s.extraSinks, sinks...)
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:       10_000,
		workerCount:     1,
		historyLength:   5,
		speedDropPct:    50,
		courseChangeDeg: 45,
		driftSpeedMS:    0.5,
		cooldown:        10 * time.Minute,
		alertLogSize:    100,
		feedEnabled:     false,
		brokerURL:       mqtt.DefaultBrokerURL,
		topic:           mqtt.DefaultTopic,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the pipeline and begins consuming.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.log == nil {
		s.log = logger.Get().Named("engine")
	}

	s.history = repository.NewMemoryStore(
		repository.WithCapacity(s.historyLength),
	)
	s.detector = detect.NewDetector(
		detect.WithSpeedDropThreshold(s.speedDropPct),
		detect.WithCourseChangeThreshold(s.courseChangeDeg),
		detect.WithDriftSpeedThreshold(s.driftSpeedMS),
	)
	s.scorer = scoring.NewScorer()
	s.recorder = alerting.NewRecorder(s.alertLogSize)

	sinks := append([]alerting.Sink{alerting.NewLogSink(s.log.Named("alerts")), s.recorder}, s.extraSinks...)
	s.alerter = alerting.NewManager(
		alerting.WithScorer(s.scorer),
		alerting.WithCooldownWindow(s.cooldown),
		alerting.WithSinks(sinks...),
		alerting.WithLogger(s.log.Named("alerting")),
	)

	s.queue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
	)
	s.pool = worker.NewPool(s.workerCount, s.queue, s.history, s.detector, s.alerter)
	s.pool.Start(ctx)

	if s.feedEnabled {
		s.feed = mqtt.NewSubscriber(s.queue,
			mqtt.WithBrokerURL(s.brokerURL),
			mqtt.WithTopic(s.topic),
			mqtt.WithLogger(s.log.Named("mqtt")),
		)
		if err := s.feed.Start(ctx); err != nil {
			return err
		}
	}

	s.started = true
	s.log.Info(ctx, "anomaly engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("history_length", s.historyLength),
		logger.Bool("feed", s.feedEnabled),
	)
	return nil
}

// Stop shuts the pipeline down: feed first, then queue, then workers drain.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if s.feed != nil {
		s.feed.Stop()
	}
	_ = s.queue.Close()
	s.pool.Stop()

	s.started = false
	s.log.Info(context.Background(), "anomaly engine stopped")
}

// Ingest validates and enqueues one report, bypassing the feed. The
// simulator and tests drive the engine through this path. Returns false when
// the report was rejected or dropped.
func (s *Service) Ingest(ctx context.Context, mmsi string, r model.PositionReport) bool {
	if mmsi == "" {
		metrics.RecordReportRejected("vessel_id")
		return false
	}
	if !r.ValidPosition() {
		metrics.RecordReportRejected("coordinates")
		s.log.Warn(ctx, "invalid coordinates",
			logger.String("mmsi", mmsi),
			logger.Float64("lat", r.Lat),
			logger.Float64("lon", r.Lon),
		)
		return false
	}
	r.Lat = model.Round6(r.Lat)
	r.Lon = model.Round6(r.Lon)
	if r.Time == 0 {
		r.Time = time.Now().Unix()
	}

	if !s.queue.Enqueue(ctx, model.PositionUpdate{MMSI: mmsi, Report: r}) {
		return false
	}
	metrics.RecordReportIngested()
	return true
}

// RecentAlerts returns up to limit recorded alerts, newest first.
func (s *Service) RecentAlerts(limit int) []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.recorder == nil {
		return nil
	}
	return s.recorder.Recent(limit)
}

// GetStats returns engine statistics for the ops surface and refreshes the
// matching gauges.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"feedEnabled":  s.feedEnabled,
		"cooldownSecs": int(s.cooldown.Seconds()),
	}

	if s.started {
		ctx := context.Background()
		vessels := s.history.Vessels(ctx)
		stats["vesselsTracked"] = vessels
		stats["queueLength"] = s.queue.Len(ctx)
		stats["alertsEmitted"] = s.alerter.Emitted()
		stats["alertsSuppressed"] = s.alerter.Suppressed()
		stats["alertsRetained"] = s.recorder.Len()

		metrics.UpdateVesselsTracked(vessels)
	}

	return stats
}
