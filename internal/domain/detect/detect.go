// Package detect implements the per-pair anomaly rules: speed drop, course
// change, and unpowered drift.
package detect

import (
	"context"

	"github.com/marpol/driftwatch/internal/domain/geo"
	"github.com/marpol/driftwatch/internal/domain/model"
)

// Default rule thresholds.
const (
	defaultSpeedDropPct    = 50.0 // percent of previous SOG
	defaultCourseChangeDeg = 45.0 // degrees
	defaultDriftSpeedMS    = 0.5  // m/s, roughly one knot
)

// Detector evaluates the anomaly rules over consecutive report pairs.
// It holds only thresholds and is safe for concurrent use.
type Detector struct {
	speedDropPct    float64
	courseChangeDeg float64
	driftSpeedMS    float64
}

// NewDetector creates a Detector with the default thresholds.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		speedDropPct:    defaultSpeedDropPct,
		courseChangeDeg: defaultCourseChangeDeg,
		driftSpeedMS:    defaultDriftSpeedMS,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Evaluate runs the three rules over a (current, previous) pair and returns
// the evidence bundle. The returned Evidence is empty when:
//   - the vessel is not under way using its engine (navStat != 0), or
//   - elapsed time between the reports is non-positive (stale or
//     out-of-order delivery; never a divisor), or
//   - no rule triggered.
//
// The rules are independent: a single pair may carry multiple kinds.
func (d *Detector) Evaluate(_ context.Context, mmsi string, current, previous model.PositionReport) model.Evidence {
	ev := model.Evidence{
		MMSI:      mmsi,
		Timestamp: current.Time,
		Current:   current,
		Previous:  previous,
	}

	if current.NavStat != model.NavStatUnderWayEngine {
		return ev
	}

	timeDiff := current.Time - previous.Time
	if timeDiff <= 0 {
		return ev
	}

	// Speed drop: only meaningful when the vessel was actually moving.
	// A previous SOG of zero would make the percentage undefined.
	if previous.SOG > 0 {
		dropPct := (previous.SOG - current.SOG) / previous.SOG * 100
		if dropPct >= d.speedDropPct {
			ev.Anomalies = append(ev.Anomalies, model.AnomalySpeedDrop)
			ev.SpeedDropPct = dropPct
		}
	}

	// Course change: evaluated unconditionally once the guards pass.
	delta := geo.CourseDiffDeg(current.COG, previous.COG)
	if delta >= d.courseChangeDeg {
		ev.Anomalies = append(ev.Anomalies, model.AnomalyCourseChange)
		ev.CourseChangeDeg = delta
	}

	// Drift: a vessel reporting zero speed in both samples that still
	// displaces meaningfully is moving under wind or current.
	if current.SOG == 0 && previous.SOG == 0 {
		distance := geo.DistanceMeters(previous.Lat, previous.Lon, current.Lat, current.Lon)
		driftSpeed := distance / float64(timeDiff)
		if driftSpeed > d.driftSpeedMS {
			ev.Anomalies = append(ev.Anomalies, model.AnomalyDrifting)
			ev.DriftSpeedMS = driftSpeed
		}
	}

	return ev
}
