package detect

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithSpeedDropThreshold sets the percentage drop in SOG that triggers the
// speed-drop rule.
func WithSpeedDropThreshold(pct float64) Option {
	return func(d *Detector) {
		if pct > 0 {
			d.speedDropPct = pct
		}
	}
}

// WithCourseChangeThreshold sets the course deviation in degrees that
// triggers the course-change rule.
func WithCourseChangeThreshold(deg float64) Option {
	return func(d *Detector) {
		if deg > 0 {
			d.courseChangeDeg = deg
		}
	}
}

// WithDriftSpeedThreshold sets the displacement speed in m/s above which a
// zero-SOG vessel counts as drifting.
func WithDriftSpeedThreshold(ms float64) Option {
	return func(d *Detector) {
		if ms > 0 {
			d.driftSpeedMS = ms
		}
	}
}
