package types

import "fmt"

// User status values. Only active users have their events scored.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDisabled  = "disabled"
)

// Role groups users under one behavioral profile and policy set.
// Immutable once referenced by users, policies, or baselines.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// User is a scored subject. The role is fixed context for every
// event the user generates.
type User struct {
	ID     string `json:"id"`
	RoleID string `json:"role_id"`
	Status string `json:"status"`
}

// IsActive reports whether the user's events should be processed at all
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// Policy states that an action is permitted on a resource for a role.
// Absence of a matching policy means the action is unauthorized.
type Policy struct {
	RoleID   string `json:"role_id"`
	Action   string `json:"action"`
	Resource string `json:"resource"`
}

// Allows reports whether this policy authorizes the (action, resource)
// pair. Matching is exact and case-sensitive on both fields.
func (p *Policy) Allows(action, resource string) bool {
	return p.Action == action && p.Resource == resource
}

// Baseline is a role's statistical profile of normal behavior:
// volume per access, accesses per day, and the normal-hours window.
// A window with StartHour > EndHour wraps past midnight.
type Baseline struct {
	RoleID              string  `json:"role_id"`
	AvgRecordsPerAccess float64 `json:"avg_records_per_access"`
	AvgAccessPerDay     float64 `json:"avg_access_per_day"`
	StartHour           int     `json:"normal_start_hour"`
	EndHour             int     `json:"normal_end_hour"`
}

// Validate ensures hour bounds are sane before the baseline is stored
func (b *Baseline) Validate() error {
	if b.RoleID == "" {
		return fmt.Errorf("baseline role ID cannot be empty")
	}
	if b.StartHour < 0 || b.StartHour > 23 {
		return fmt.Errorf("baseline start hour %d outside 0-23", b.StartHour)
	}
	if b.EndHour < 0 || b.EndHour > 23 {
		return fmt.Errorf("baseline end hour %d outside 0-23", b.EndHour)
	}
	if b.AvgRecordsPerAccess < 0 {
		return fmt.Errorf("baseline avg records per access cannot be negative")
	}
	if b.AvgAccessPerDay < 0 {
		return fmt.Errorf("baseline avg access per day cannot be negative")
	}
	return nil
}

// Wraps reports whether the normal-hours window crosses midnight,
// e.g. a night-shift role with start=22, end=6.
func (b *Baseline) Wraps() bool {
	return b.StartHour > b.EndHour
}
