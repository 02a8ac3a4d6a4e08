// Package simulator generates synthetic vessel tracks for exercising the
// engine without a live feed.
package simulator

import (
	"math"

	"github.com/marpol/driftwatch/internal/domain/model"
)

// Scenario names a synthetic track shape.
type Scenario string

// Available scenarios. Cruise is the control: it should never alert.
const (
	ScenarioCruise     Scenario = "cruise"
	ScenarioSuddenStop Scenario = "sudden_stop"
	ScenarioHardTurn   Scenario = "hard_turn"
	ScenarioDrift      Scenario = "drift"
)

// Scenarios lists every known scenario.
func Scenarios() []Scenario {
	return []Scenario{ScenarioCruise, ScenarioSuddenStop, ScenarioHardTurn, ScenarioDrift}
}

// Track generation defaults. The base position sits in the Gulf of Finland,
// matching the feed the engine normally watches.
const (
	baseLat = 59.62
	baseLon = 24.51

	cruiseSOG = 12.0 // knots
	cruiseCOG = 45.0

	metersPerDegreeLat = 111320.0
	knotToMS           = 0.514444

	driftSpeedMS = 0.8 // above the 0.5 m/s rule threshold
)

// Generator builds deterministic position report sequences.
type Generator struct {
	startTime int64
	interval  int64 // seconds between reports
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithStartTime sets the timestamp of the first report.
func WithStartTime(unix int64) Option {
	return func(g *Generator) {
		if unix > 0 {
			g.startTime = unix
		}
	}
}

// WithInterval sets the spacing between reports in seconds.
func WithInterval(seconds int64) Option {
	return func(g *Generator) {
		if seconds > 0 {
			g.interval = seconds
		}
	}
}

// NewGenerator creates a Generator with defaults (60 s spacing).
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		startTime: 1_700_000_000,
		interval:  60,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Track returns n reports following the scenario. The anomaly, when the
// scenario has one, happens at the midpoint of the track.
func (g *Generator) Track(s Scenario, n int) []model.PositionReport {
	reports := make([]model.PositionReport, 0, n)
	lat, lon := baseLat, baseLon
	mid := n / 2

	for i := 0; i < n; i++ {
		sog, cog := cruiseSOG, cruiseCOG
		moveMS := sog * knotToMS

		switch s {
		case ScenarioSuddenStop:
			if i >= mid {
				sog = 2.0
				moveMS = sog * knotToMS
			}
		case ScenarioHardTurn:
			if i >= mid {
				cog = math.Mod(cruiseCOG+90, 360)
			}
		case ScenarioDrift:
			sog = 0
			cog = 0
			moveMS = driftSpeedMS
		case ScenarioCruise:
			// steady state
		}

		reports = append(reports, model.PositionReport{
			Time:    g.startTime + int64(i)*g.interval,
			SOG:     sog,
			COG:     cog,
			NavStat: model.NavStatUnderWayEngine,
			Lat:     model.Round6(lat),
			Lon:     model.Round6(lon),
		})

		// Dead-reckon the next position along the course.
		distance := moveMS * float64(g.interval)
		heading := cog * math.Pi / 180
		lat += distance * math.Cos(heading) / metersPerDegreeLat
		lon += distance * math.Sin(heading) / (metersPerDegreeLat * math.Cos(lat*math.Pi/180))
	}

	return reports
}
