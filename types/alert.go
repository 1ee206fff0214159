package types

import (
	"fmt"
	"strings"
	"time"
)

// Alert is the persisted record of a verdict that crossed the alert
// threshold. Reasons are joined with "; " so the stored row matches
// the documented alert shape; Score serializes with two decimals.
type Alert struct {
	ID          string     `json:"alert_id"`
	SubjectID   string     `json:"subject_id"`
	Score       float64    `json:"risk_score"`
	Level       AlertLevel `json:"alert_level"`
	Reasons     string     `json:"reasons"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// NewAlert builds an alert record from a verdict. The verdict must be
// alertable; callers check Verdict.Alertable first.
func NewAlert(id, subjectID string, verdict Verdict, generatedAt time.Time) Alert {
	return Alert{
		ID:          id,
		SubjectID:   subjectID,
		Score:       float64(verdict.Score),
		Level:       verdict.Level,
		Reasons:     strings.Join(verdict.Reasons, "; "),
		GeneratedAt: generatedAt,
	}
}

// ScoreString renders the score the way alert consumers expect it
func (a *Alert) ScoreString() string {
	return fmt.Sprintf("%.2f", a.Score)
}

// Validate ensures the alert has required fields
func (a *Alert) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("alert ID cannot be empty")
	}
	if a.SubjectID == "" {
		return fmt.Errorf("alert subject ID cannot be empty")
	}
	if a.Level == LevelNone || a.Level == "" {
		return fmt.Errorf("alert level must be LOW, MEDIUM, or HIGH")
	}
	if a.GeneratedAt.IsZero() {
		return fmt.Errorf("alert generation time cannot be zero")
	}
	return nil
}

// AlertFilter selects alerts in queries. Zero values mean "no filter".
type AlertFilter struct {
	SubjectID string     `json:"subject_id,omitempty"`
	Level     AlertLevel `json:"level,omitempty"`
	From      time.Time  `json:"from,omitempty"`
	To        time.Time  `json:"to,omitempty"`
}

// Matches checks an alert against the filter criteria
func (f *AlertFilter) Matches(a *Alert) bool {
	if f.SubjectID != "" && a.SubjectID != f.SubjectID {
		return false
	}
	if f.Level != "" && a.Level != f.Level {
		return false
	}
	if !f.From.IsZero() && a.GeneratedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && a.GeneratedAt.After(f.To) {
		return false
	}
	return true
}
