// Package scoring maps a set of anomaly kinds to an ordinal danger level.
package scoring

import "github.com/marpol/driftwatch/internal/domain/model"

// Danger level bounds.
const (
	MinLevel = 1
	MaxLevel = 4
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides the per-anomaly weights. Unknown kinds score zero.
func WithWeights(weights map[model.Anomaly]int) Option {
	return func(s *Scorer) {
		if len(weights) == 0 {
			return
		}
		s.weights = make(map[model.Anomaly]int, len(weights))
		for k, w := range weights {
			s.weights[k] = w
		}
	}
}

// WithLabels overrides the level labels. The map is indexed by level 1-4;
// missing levels keep their defaults.
func WithLabels(labels map[int]string) Option {
	return func(s *Scorer) {
		for lvl, label := range labels {
			if lvl >= MinLevel && lvl <= MaxLevel && label != "" {
				s.labels[lvl-1] = label
			}
		}
	}
}

// tier is one row of the ordered threshold table: the lowest total score
// that maps to a level. Evaluated highest first; map iteration order is
// never relied on.
type tier struct {
	minTotal int
	level    int
}

// Scorer computes danger levels from anomaly sets. It is a pure component
// with no side effects, total over every reachable non-empty anomaly set.
type Scorer struct {
	weights map[model.Anomaly]int
	labels  [MaxLevel]string
	tiers   []tier
}

// NewScorer creates a Scorer with the default weights and labels.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights: map[model.Anomaly]int{
			model.AnomalySpeedDrop:    1,
			model.AnomalyCourseChange: 2,
			model.AnomalyDrifting:     3,
		},
		labels: [MaxLevel]string{"Low", "Medium", "High", "Critical"},
		tiers: []tier{
			{minTotal: 4, level: 4},
			{minTotal: 3, level: 3},
			{minTotal: 2, level: 2},
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score returns the danger level and label for a set of anomaly kinds.
// Each rule fires at most once per event, so duplicates cannot occur; the
// maximum reachable total is 6, which still maps to level 4.
func (s *Scorer) Score(anomalies []model.Anomaly) (int, string) {
	total := 0
	for _, a := range anomalies {
		total += s.weights[a]
	}

	for _, t := range s.tiers {
		if total >= t.minTotal {
			return t.level, s.labels[t.level-1]
		}
	}
	return MinLevel, s.labels[MinLevel-1]
}

// Label returns the label for a level, or the lowest label when out of range.
func (s *Scorer) Label(level int) string {
	if level < MinLevel || level > MaxLevel {
		level = MinLevel
	}
	return s.labels[level-1]
}
