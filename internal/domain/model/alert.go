package model

// Position is a lat/lon pair as rendered in alert records.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is the derived location presentation attached to an alert.
type Location struct {
	Coordinates Position `json:"coordinates"`
	GoogleMaps  string   `json:"google_maps"`
	// ApproxLocation is a coarse textual hint. Always "At sea" for now;
	// a geocoding integration could refine it.
	ApproxLocation string `json:"approx_location"`
}

// Reading holds a current/previous pair for one metric.
type Reading struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
}

// AlertMetrics is the metrics snapshot carried by an alert record.
type AlertMetrics struct {
	Speed  Reading `json:"speed"`
	Course Reading `json:"course"`

	SpeedDropPct    *float64 `json:"speed_drop_percent,omitempty"`
	CourseChangeDeg *float64 `json:"course_change_deg,omitempty"`
	DriftSpeedMS    *float64 `json:"drifting_speed,omitempty"`
}

// Alert is the structured record handed to alert sinks. The engine does not
// retain it beyond updating the vessel's cooldown timestamp.
type Alert struct {
	ID          string       `json:"id"`
	VesselID    string       `json:"vessel_id"`
	Timestamp   int64        `json:"timestamp"`
	DangerScore int          `json:"danger_score"` // ordinal 1-4
	DangerLevel string       `json:"danger_level"` // Low, Medium, High, Critical
	Reason      string       `json:"reason"`
	Indicators  []Anomaly    `json:"indicators"`
	Location    Location     `json:"location"`
	Metrics     AlertMetrics `json:"metrics"`
}
