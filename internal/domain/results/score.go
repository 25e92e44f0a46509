package results

import (
	"errors"
	"math"
)

// ErrNoResults is returned when a score is requested for a report with no
// persisted results.
var ErrNoResults = errors.New("no results to score")

// Default penalty weights, tunable via configuration.
const (
	DefaultAbnormalPenalty = 20.0
	DefaultCriticalPenalty = 40.0
)

// Penalties are the score deductions applied per abnormal/critical share.
type Penalties struct {
	Abnormal float64
	Critical float64
}

// DefaultPenalties returns the standard weights.
func DefaultPenalties() Penalties {
	return Penalties{Abnormal: DefaultAbnormalPenalty, Critical: DefaultCriticalPenalty}
}

// Score folds classified results into a single 0-100 health score:
// normal share of 100, minus the abnormal (high/low) share of the abnormal
// penalty, minus the critical share of the critical penalty, clamped and
// rounded. Order-independent; identity of the biomarkers never matters.
func Score(rs []*Result, p Penalties) (int, error) {
	if len(rs) == 0 {
		return 0, ErrNoResults
	}
	if p.Abnormal <= 0 {
		p.Abnormal = DefaultAbnormalPenalty
	}
	if p.Critical <= 0 {
		p.Critical = DefaultCriticalPenalty
	}

	var normal, abnormal, critical int
	for _, r := range rs {
		switch r.Status {
		case StatusCritical:
			critical++
		case StatusLow, StatusHigh:
			abnormal++
		default:
			normal++
		}
	}

	total := float64(len(rs))
	score := float64(normal)/total*100 -
		float64(abnormal)/total*p.Abnormal -
		float64(critical)/total*p.Critical
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score)), nil
}
