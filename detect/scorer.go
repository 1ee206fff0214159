package detect

import (
	"github.com/yairfalse/vakta/config"
	"github.com/yairfalse/vakta/types"
)

// Scorer combines factor findings into a verdict. The score is the sum
// of triggered weights clamped to [0,100]; an alert level is assigned
// if and only if the score reaches the LOW boundary.
type Scorer struct {
	levels config.Levels
}

// NewScorer creates a scorer with the given alert level boundaries
func NewScorer(levels config.Levels) *Scorer {
	return &Scorer{levels: levels}
}

// factorOrder is the canonical reason order. Findings are aggregated
// in this order no matter which order the factors ran in, so the
// verdict is identical under any permutation of the checks.
var factorOrder = []string{FactorPolicy, FactorSchedule, FactorVolume, FactorFrequency}

// Score aggregates findings into a verdict. Known factors contribute
// in canonical order; findings from additional factors follow in the
// order given, so new factors extend the scorer without touching its
// combination logic.
func (s *Scorer) Score(findings []Finding) types.Verdict {
	verdict := types.Verdict{
		Level:   types.LevelNone,
		Reasons: []string{},
	}

	for _, f := range s.canonicalize(findings) {
		if f.Triggered {
			verdict.Score += f.Weight
			verdict.Reasons = append(verdict.Reasons, f.Reason)
		}
		s.markFactor(&verdict.Factors, f)
	}

	if verdict.Score > 100 {
		verdict.Score = 100
	}
	verdict.Level = s.levelFor(verdict.Score)
	return verdict
}

func (s *Scorer) canonicalize(findings []Finding) []Finding {
	ordered := make([]Finding, 0, len(findings))
	seen := make(map[string]bool, len(findings))

	for _, name := range factorOrder {
		for _, f := range findings {
			if f.Factor == name && !seen[name] {
				ordered = append(ordered, f)
				seen[name] = true
			}
		}
	}
	for _, f := range findings {
		if !seen[f.Factor] {
			ordered = append(ordered, f)
			seen[f.Factor] = true
		}
	}
	return ordered
}

func (s *Scorer) markFactor(factors *types.Factors, f Finding) {
	switch f.Factor {
	case FactorPolicy:
		factors.PolicyViolation = f.Triggered
	case FactorSchedule:
		factors.OffHourAccess = f.Triggered
	case FactorVolume:
		factors.ExcessiveRecords = f.Triggered
	case FactorFrequency:
		factors.HighFrequency = f.Triggered
	}
}

func (s *Scorer) levelFor(score int) types.AlertLevel {
	switch {
	case score >= s.levels.High:
		return types.LevelHigh
	case score >= s.levels.Medium:
		return types.LevelMedium
	case score >= s.levels.Low:
		return types.LevelLow
	default:
		return types.LevelNone
	}
}
