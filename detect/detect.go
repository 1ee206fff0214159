// Package detect scores individual activity events for insider-threat
// risk against per-role baselines and policy sets.
//
// The engine is pure computation over already-resolved inputs: it
// performs no I/O, holds no mutable state, and is safe for concurrent
// use once constructed. Context resolution (subject to role, policy
// set, baseline, trailing count) is the ingestion layer's job.
package detect

import (
	"github.com/yairfalse/vakta/config"
	"github.com/yairfalse/vakta/types"
)

// Factor names, also the fixed evaluation order. Reasons in a verdict
// always appear in this order regardless of which factors fired.
const (
	FactorPolicy    = "policy_violation"
	FactorSchedule  = "off_hour_access"
	FactorVolume    = "excessive_records"
	FactorFrequency = "high_frequency"
)

// Input is the resolved context for scoring one event. Baseline is nil
// when the role has no behavioral profile; baseline-driven factors then
// degrade to "not triggered" rather than manufacturing false positives.
// TrailingCount is the subject's access count within the analysis
// window, excluding this event.
type Input struct {
	Event         types.ActivityEvent
	Role          types.Role
	Policies      []types.Policy
	Baseline      *types.Baseline
	TrailingCount int
}

// Finding is one factor's outcome: whether it fired, the weight it
// contributes when it does, and its fixed human-readable reason.
type Finding struct {
	Factor    string
	Triggered bool
	Weight    int
	Reason    string
}

// Factor evaluates one risk signal. Implementations are pure functions
// of the input; the engine never short-circuits so every contributing
// factor shows up in the explanation.
type Factor interface {
	Name() string
	Evaluate(in Input) Finding
}

// Detector drives the fixed factor list and the scorer.
type Detector struct {
	factors []Factor
	scorer  *Scorer
}

// New builds a detector from validated detection configuration.
// Config is read once here; the detector never reads it again.
func New(cfg config.Detection) *Detector {
	return &Detector{
		factors: []Factor{
			&policyFactor{weight: cfg.Weights.PolicyViolation},
			&scheduleFactor{weight: cfg.Weights.OffHourAccess},
			&volumeFactor{weight: cfg.Weights.ExcessiveRecords, multiplier: cfg.RecordsMultiplier},
			&frequencyFactor{weight: cfg.Weights.HighFrequency, multiplier: cfg.FrequencyMultiplier},
		},
		scorer: NewScorer(cfg.Levels),
	}
}

// Evaluate runs all four factors over the input and combines their
// findings into a verdict. All factors run unconditionally; permuting
// their order would yield an identical verdict.
func (d *Detector) Evaluate(in Input) types.Verdict {
	findings := make([]Finding, 0, len(d.factors))
	for _, f := range d.factors {
		findings = append(findings, f.Evaluate(in))
	}
	return d.scorer.Score(findings)
}
