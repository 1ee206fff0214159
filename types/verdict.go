package types

import "fmt"

// AlertLevel classifies a verdict's severity
type AlertLevel string

const (
	LevelNone   AlertLevel = "NONE"
	LevelLow    AlertLevel = "LOW"
	LevelMedium AlertLevel = "MEDIUM"
	LevelHigh   AlertLevel = "HIGH"
)

// ParseAlertLevel converts a level string to an AlertLevel.
// Only the three alerting levels are accepted; NONE never appears
// in persisted alerts or query filters.
func ParseAlertLevel(s string) (AlertLevel, error) {
	switch AlertLevel(s) {
	case LevelLow, LevelMedium, LevelHigh:
		return AlertLevel(s), nil
	}
	return "", fmt.Errorf("invalid alert level %q, must be LOW, MEDIUM, or HIGH", s)
}

// Factors records which risk factor fired for an event
type Factors struct {
	PolicyViolation  bool `json:"policy_violation"`
	OffHourAccess    bool `json:"off_hour_access"`
	ExcessiveRecords bool `json:"excessive_records"`
	HighFrequency    bool `json:"high_frequency"`
}

// Verdict is the engine's output for one event: a bounded score,
// the derived alert level, the reasons in fixed factor order, and
// the per-factor outcomes that produced them.
type Verdict struct {
	Score   int        `json:"risk_score"`
	Level   AlertLevel `json:"alert_level"`
	Reasons []string   `json:"reasons"`
	Factors Factors    `json:"factors"`
}

// Alertable reports whether the caller should persist an alert record
func (v *Verdict) Alertable() bool {
	return v.Level != LevelNone
}

// Validate ensures the verdict holds the engine's invariants
func (v *Verdict) Validate() error {
	if v.Score < 0 || v.Score > 100 {
		return fmt.Errorf("verdict score %d outside 0-100", v.Score)
	}
	if v.Level == "" {
		return fmt.Errorf("verdict level cannot be empty")
	}
	return nil
}
