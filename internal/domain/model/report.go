// Package model contains domain types passed between layers.
package model

import "math"

// Navigation status codes from the AIS position report.
const (
	// NavStatUnderWayEngine means the vessel is under way using its engine.
	// Anomaly evaluation only applies to reports carrying this status.
	NavStatUnderWayEngine = 0
)

// PositionReport is one decoded AIS observation for a vessel at an instant.
// Field names follow the Digitraffic vessels-v2 location payload.
type PositionReport struct {
	Time    int64   `json:"time"`    // unix seconds; receipt time when the feed omits it
	SOG     float64 `json:"sog"`     // speed over ground, knots
	COG     float64 `json:"cog"`     // course over ground, degrees [0,360)
	NavStat int     `json:"navStat"` // navigation status code
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// ValidPosition reports whether lat/lon are inside the WGS84 ranges.
// Out-of-range reports never enter vessel history.
func (r PositionReport) ValidPosition() bool {
	return r.Lat >= -90 && r.Lat <= 90 && r.Lon >= -180 && r.Lon <= 180
}

// Round6 rounds a coordinate to 6 decimal places (~0.1 m precision).
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// PositionUpdate pairs a report with the vessel it belongs to.
// This is the payload type flowing through the ingest queue.
type PositionUpdate struct {
	MMSI   string
	Report PositionReport
}
