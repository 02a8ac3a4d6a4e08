// Package alerting owns alert construction, per-vessel cooldown state, and
// delivery to sinks.
package alerting

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/marpol/driftwatch/internal/domain/model"
	"github.com/marpol/driftwatch/internal/domain/scoring"
	"github.com/marpol/driftwatch/pkg/logger"
	"github.com/marpol/driftwatch/pkg/metrics"
)

// defaultCooldown is the minimum spacing between alerts for one vessel.
const defaultCooldown = 10 * time.Minute

// Manager decides whether an anomaly event becomes an alert. Emissions for a
// given vessel are at least one cooldown window apart; anomalies inside the
// window are dropped, not queued. The next qualifying event after expiry is
// what gets reported, even if weaker than a suppressed one.
type Manager struct {
	cooldown CooldownStore
	scorer   *scoring.Scorer
	sinks    []Sink
	window   time.Duration
	log      logger.Logger

	emitted    atomic.Int64
	suppressed atomic.Int64
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithCooldownWindow sets the minimum spacing between alerts per vessel.
func WithCooldownWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.window = d
		}
	}
}

// WithCooldownStore injects a cooldown store, mainly for tests.
func WithCooldownStore(s CooldownStore) Option {
	return func(m *Manager) {
		if s != nil {
			m.cooldown = s
		}
	}
}

// WithScorer injects a danger scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(m *Manager) {
		if s != nil {
			m.scorer = s
		}
	}
}

// WithSinks sets the delivery sinks.
func WithSinks(sinks ...Sink) Option {
	return func(m *Manager) {
		m.sinks = sinks
	}
}

// WithLogger sets a custom logger for the manager.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a Manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		window: defaultCooldown,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.cooldown == nil {
		m.cooldown = NewMemoryCooldown()
	}
	if m.scorer == nil {
		m.scorer = scoring.NewScorer()
	}
	if m.log == nil {
		m.log = logger.Get().Named("alerting")
	}
	if len(m.sinks) == 0 {
		m.sinks = []Sink{NewLogSink(m.log)}
	}

	return m
}

// MaybeAlert scores the evidence, builds the alert record, and either emits
// it to the sinks or suppresses it when the vessel is inside its cooldown
// window. now must come from the same clock for every call; it drives both
// the cooldown check and the recorded last-alert time.
func (m *Manager) MaybeAlert(ctx context.Context, ev model.Evidence, now time.Time) (bool, model.Alert) {
	level, label := m.scorer.Score(ev.Anomalies)
	alert := m.buildAlert(ev, level, label)

	if last, ok := m.cooldown.LastAlert(ctx, ev.MMSI); ok && now.Sub(last) < m.window {
		m.suppressed.Add(1)
		metrics.RecordAlertSuppressed()
		m.log.Info(ctx, "alert suppressed in cooldown",
			logger.String("vessel_id", ev.MMSI),
			logger.String("danger_level", label),
		)
		return false, alert
	}

	for _, sink := range m.sinks {
		if err := sink.Deliver(ctx, alert); err != nil {
			m.log.Error(ctx, "alert delivery failed",
				logger.String("vessel_id", ev.MMSI),
				logger.Error(err),
			)
		}
	}
	m.cooldown.RecordAlert(ctx, ev.MMSI, now)
	m.emitted.Add(1)
	metrics.RecordAlertEmitted(label)

	return true, alert
}

// Emitted returns the number of alerts delivered to sinks.
func (m *Manager) Emitted() int64 { return m.emitted.Load() }

// Suppressed returns the number of alerts dropped by the cooldown window.
func (m *Manager) Suppressed() int64 { return m.suppressed.Load() }

// buildAlert assembles the record handed to sinks.
func (m *Manager) buildAlert(ev model.Evidence, level int, label string) model.Alert {
	a := model.Alert{
		ID:          uuid.NewString(),
		VesselID:    ev.MMSI,
		Timestamp:   ev.Timestamp,
		DangerScore: level,
		DangerLevel: label,
		Reason:      reason(ev.Anomalies),
		Indicators:  ev.Anomalies,
		Location: model.Location{
			Coordinates: model.Position{
				Lat: model.Round6(ev.Current.Lat),
				Lon: model.Round6(ev.Current.Lon),
			},
			GoogleMaps:     MapLink(ev.Current.Lat, ev.Current.Lon),
			ApproxLocation: "At sea",
		},
		Metrics: model.AlertMetrics{
			Speed:  model.Reading{Current: ev.Current.SOG, Previous: ev.Previous.SOG},
			Course: model.Reading{Current: ev.Current.COG, Previous: ev.Previous.COG},
		},
	}

	if ev.Has(model.AnomalySpeedDrop) {
		v := ev.SpeedDropPct
		a.Metrics.SpeedDropPct = &v
	}
	if ev.Has(model.AnomalyCourseChange) {
		v := ev.CourseChangeDeg
		a.Metrics.CourseChangeDeg = &v
	}
	if ev.Has(model.AnomalyDrifting) {
		v := ev.DriftSpeedMS
		a.Metrics.DriftSpeedMS = &v
	}

	return a
}

// MapLink renders a Google Maps search link with 6-decimal coordinates.
func MapLink(lat, lon float64) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%.6f,%.6f", lat, lon)
}

// reason renders the anomaly kinds as a human-readable summary,
// e.g. "Speed Drop, Drifting".
func reason(anomalies []model.Anomaly) string {
	parts := make([]string, 0, len(anomalies))
	for _, a := range anomalies {
		words := strings.Split(string(a), "_")
		for i, w := range words {
			if w != "" {
				words[i] = strings.ToUpper(w[:1]) + w[1:]
			}
		}
		parts = append(parts, strings.Join(words, " "))
	}
	return strings.Join(parts, ", ")
}
