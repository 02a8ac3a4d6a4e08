package model

// Anomaly identifies one behavioral anomaly kind.
type Anomaly string

// Anomaly kinds, in increasing order of operational severity.
const (
	AnomalySpeedDrop    Anomaly = "speed_drop"
	AnomalyCourseChange Anomaly = "course_change"
	AnomalyDrifting     Anomaly = "drifting"
)

// Evidence is the outcome of evaluating one (current, previous) report pair.
// It is transient: consumed immediately by scoring and alerting, never stored.
type Evidence struct {
	MMSI      string
	Timestamp int64 // current report's timestamp
	Anomalies []Anomaly

	Current  PositionReport
	Previous PositionReport

	// Per-rule supporting values; meaningful only when the matching
	// anomaly kind is present.
	SpeedDropPct    float64
	CourseChangeDeg float64
	DriftSpeedMS    float64
}

// Empty reports whether no rule triggered.
func (e Evidence) Empty() bool { return len(e.Anomalies) == 0 }

// Has reports whether the given anomaly kind triggered.
func (e Evidence) Has(kind Anomaly) bool {
	for _, a := range e.Anomalies {
		if a == kind {
			return true
		}
	}
	return false
}
