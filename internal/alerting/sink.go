package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/marpol/driftwatch/internal/domain/model"
	"github.com/marpol/driftwatch/pkg/logger"
)

// Sink receives emitted alert records. The manager hands over structured
// data; formatting for a particular destination is the sink's concern.
type Sink interface {
	Deliver(ctx context.Context, a model.Alert) error
}

// LogSink is the reference sink: a structured warning log carrying the
// severity, reason, map link, and the full JSON record.
type LogSink struct {
	log logger.Logger
}

// NewLogSink creates a LogSink writing through the given logger.
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{log: log}
}

// Deliver logs the alert at warning level.
func (s *LogSink) Deliver(ctx context.Context, a model.Alert) error {
	dump, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliver, err)
	}

	s.log.Warn(ctx, "vessel alert",
		logger.String("vessel_id", a.VesselID),
		logger.String("danger_level", a.DangerLevel),
		logger.String("reason", a.Reason),
		logger.String("location", a.Location.GoogleMaps),
		logger.String("coordinates", fmt.Sprintf("%.6f°N, %.6f°E", a.Location.Coordinates.Lat, a.Location.Coordinates.Lon)),
		logger.String("alert", string(dump)),
	)
	return nil
}

// defaultRecorderSize bounds the recorder when no option is given.
const defaultRecorderSize = 100

// Recorder is a sink retaining the most recent alerts in memory. It backs
// the GET /alerts ops endpoint.
type Recorder struct {
	mu     sync.RWMutex
	alerts []model.Alert
	size   int
}

// NewRecorder creates a Recorder retaining up to size alerts.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = defaultRecorderSize
	}
	return &Recorder{size: size}
}

// Deliver appends the alert, evicting the oldest at capacity.
func (r *Recorder) Deliver(_ context.Context, a model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.alerts = append(r.alerts, a)
	if len(r.alerts) > r.size {
		copy(r.alerts, r.alerts[1:])
		r.alerts = r.alerts[:r.size]
	}
	return nil
}

// Recent returns up to limit alerts, newest first. A non-positive limit
// returns everything retained.
func (r *Recorder) Recent(limit int) []model.Alert {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.alerts)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]model.Alert, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.alerts[i])
	}
	return out
}

// Len returns the number of alerts currently retained.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.alerts)
}
