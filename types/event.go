package types

import (
	"fmt"
	"time"
)

// Actions recognized in activity events and policies
const (
	ActionRead   = "READ"
	ActionWrite  = "WRITE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// ActivityEvent is one observed user action, as handed in by the
// ingestion layer. OriginAddr is informational only and never scored.
type ActivityEvent struct {
	SubjectID   string    `json:"subject_id"`
	Action      string    `json:"action"`
	Resource    string    `json:"resource"`
	RecordCount int       `json:"record_count"`
	Timestamp   time.Time `json:"timestamp"`
	OriginAddr  string    `json:"origin_addr,omitempty"`
}

// Validate rejects malformed events before they reach the detection engine
func (e *ActivityEvent) Validate() error {
	if e.SubjectID == "" {
		return fmt.Errorf("event subject ID cannot be empty")
	}
	if e.Action == "" {
		return fmt.Errorf("event action cannot be empty")
	}
	if !validAction(e.Action) {
		return fmt.Errorf("event action %q is not a known action", e.Action)
	}
	if e.Resource == "" {
		return fmt.Errorf("event resource cannot be empty")
	}
	if e.RecordCount < 0 {
		return fmt.Errorf("event record count cannot be negative")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("event timestamp cannot be zero")
	}
	return nil
}

func validAction(action string) bool {
	switch action {
	case ActionRead, ActionWrite, ActionUpdate, ActionDelete:
		return true
	}
	return false
}
