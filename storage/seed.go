package storage

import (
	"fmt"

	"github.com/yairfalse/vakta/types"
)

// Seed provisions the sample roles, users, policies, and baselines
// used for local development and demos. Idempotent: existing rows are
// overwritten with the same values.
func Seed(p Provisioner) error {
	roles := []types.Role{
		{ID: "admin", Name: "admin", Description: "System administrator with full access"},
		{ID: "manager", Name: "manager", Description: "Manager with elevated privileges"},
		{ID: "staff", Name: "staff", Description: "Regular staff member"},
	}

	users := []types.User{
		{ID: "admin001", RoleID: "admin", Status: types.StatusActive},
		{ID: "manager001", RoleID: "manager", Status: types.StatusActive},
		{ID: "staff001", RoleID: "staff", Status: types.StatusActive},
		{ID: "staff002", RoleID: "staff", Status: types.StatusActive},
	}

	policies := []types.Policy{
		// Admins have full access to everything
		{RoleID: "admin", Action: types.ActionRead, Resource: "*"},
		{RoleID: "admin", Action: types.ActionWrite, Resource: "*"},
		{RoleID: "admin", Action: types.ActionUpdate, Resource: "*"},
		{RoleID: "admin", Action: types.ActionDelete, Resource: "*"},

		// Managers are elevated but limited
		{RoleID: "manager", Action: types.ActionRead, Resource: "Finance_Reports"},
		{RoleID: "manager", Action: types.ActionRead, Resource: "Employee_Records"},
		{RoleID: "manager", Action: types.ActionWrite, Resource: "Finance_Reports"},
		{RoleID: "manager", Action: types.ActionUpdate, Resource: "Finance_Reports"},

		// Staff have limited access
		{RoleID: "staff", Action: types.ActionRead, Resource: "General_Documents"},
		{RoleID: "staff", Action: types.ActionRead, Resource: "Public_Reports"},
		{RoleID: "staff", Action: types.ActionWrite, Resource: "Own_Work"},
	}

	baselines := []types.Baseline{
		// Admins work around the clock
		{RoleID: "admin", AvgRecordsPerAccess: 100.0, AvgAccessPerDay: 50, StartHour: 0, EndHour: 23},
		// Managers: 7 AM - 7 PM
		{RoleID: "manager", AvgRecordsPerAccess: 50.0, AvgAccessPerDay: 30, StartHour: 7, EndHour: 19},
		// Staff: 9 AM - 5 PM
		{RoleID: "staff", AvgRecordsPerAccess: 5.0, AvgAccessPerDay: 20, StartHour: 9, EndHour: 17},
	}

	for _, role := range roles {
		if err := p.PutRole(role); err != nil {
			return fmt.Errorf("seeding role %s: %w", role.ID, err)
		}
	}
	for _, user := range users {
		if err := p.PutUser(user); err != nil {
			return fmt.Errorf("seeding user %s: %w", user.ID, err)
		}
	}
	for _, policy := range policies {
		if err := p.PutPolicy(policy); err != nil {
			return fmt.Errorf("seeding policy %s/%s/%s: %w", policy.RoleID, policy.Action, policy.Resource, err)
		}
	}
	for _, baseline := range baselines {
		if err := p.PutBaseline(baseline); err != nil {
			return fmt.Errorf("seeding baseline %s: %w", baseline.RoleID, err)
		}
	}
	return nil
}
