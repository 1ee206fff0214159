package storage

import (
	"time"

	"github.com/yairfalse/vakta/types"
)

// ContextReader resolves the scoring context for one event: the
// subject, its role, the role's policy set and baseline, and the
// subject's trailing access count
type ContextReader interface {
	GetUser(id string) (*types.User, error)
	GetRole(id string) (*types.Role, error)
	PoliciesForRole(roleID string) ([]types.Policy, error)
	// BaselineForRole returns (nil, nil) when the role has no
	// baseline; absence is a defined state, not an error
	BaselineForRole(roleID string) (*types.Baseline, error)
	// CountActivityBetween counts a subject's events with
	// since <= timestamp < before
	CountActivityBetween(subjectID string, since, before time.Time) (int, error)
}

// ActivityWriter appends processed events to the activity history
type ActivityWriter interface {
	AppendActivity(event types.ActivityEvent) (seq int64, err error)
}

// AlertStore persists and queries generated alerts
type AlertStore interface {
	AppendAlert(alert types.Alert) error
	QueryAlerts(filter types.AlertFilter) ([]types.Alert, error)
	// LatestAlertForSubject returns (nil, nil) when the subject has
	// never alerted
	LatestAlertForSubject(subjectID string) (*types.Alert, error)
}

// Provisioner writes the reference data the detection engine scores
// against. Used by seeding and administrative tooling.
type Provisioner interface {
	PutRole(role types.Role) error
	PutUser(user types.User) error
	PutPolicy(policy types.Policy) error
	PutBaseline(baseline types.Baseline) error
}

// StorageStats provides operational metrics
type StorageStats interface {
	Stats() (activityCount int, alertCount int, currentSeq int64)
}

// Lifecycle manages storage lifecycle
type Lifecycle interface {
	Close() error
}

// Storage is the complete interface combining all capabilities
type Storage interface {
	ContextReader
	ActivityWriter
	AlertStore
	Provisioner
	StorageStats
	Lifecycle
}
