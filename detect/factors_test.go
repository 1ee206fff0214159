package detect

import (
	"testing"
	"time"

	"github.com/yairfalse/vakta/types"
)

var staffPolicies = []types.Policy{
	{RoleID: "staff", Action: types.ActionRead, Resource: "General_Documents"},
	{RoleID: "staff", Action: types.ActionRead, Resource: "Public_Reports"},
	{RoleID: "staff", Action: types.ActionWrite, Resource: "Own_Work"},
}

func TestPolicyFactor(t *testing.T) {
	factor := &policyFactor{weight: 40}

	tests := []struct {
		name      string
		action    string
		resource  string
		policies  []types.Policy
		triggered bool
	}{
		{
			name:      "authorized pair",
			action:    types.ActionRead,
			resource:  "General_Documents",
			policies:  staffPolicies,
			triggered: false,
		},
		{
			name:      "unauthorized resource",
			action:    types.ActionRead,
			resource:  "Finance_Reports",
			policies:  staffPolicies,
			triggered: true,
		},
		{
			name:      "action matches but resource does not",
			action:    types.ActionWrite,
			resource:  "General_Documents",
			policies:  staffPolicies,
			triggered: true,
		},
		{
			name:      "resource matches but action does not",
			action:    types.ActionDelete,
			resource:  "Own_Work",
			policies:  staffPolicies,
			triggered: true,
		},
		{
			name:     "resource match is case-sensitive",
			action:   types.ActionRead,
			resource: "general_documents",
			policies: staffPolicies, triggered: true,
		},
		{
			name:      "empty policy set",
			action:    types.ActionRead,
			resource:  "General_Documents",
			policies:  nil,
			triggered: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				Event: types.ActivityEvent{
					SubjectID: "staff001",
					Action:    tt.action,
					Resource:  tt.resource,
					Timestamp: time.Now(),
				},
				Policies: tt.policies,
			}

			finding := factor.Evaluate(in)
			if finding.Triggered != tt.triggered {
				t.Errorf("triggered = %v, want %v", finding.Triggered, tt.triggered)
			}
			if finding.Weight != 40 {
				t.Errorf("weight = %d, want 40", finding.Weight)
			}
			if finding.Reason != ReasonPolicyViolation {
				t.Errorf("reason = %q", finding.Reason)
			}
		})
	}
}

func TestPolicyFactor_RunsWithoutBaseline(t *testing.T) {
	factor := &policyFactor{weight: 40}

	in := Input{
		Event: types.ActivityEvent{
			SubjectID: "staff001",
			Action:    types.ActionRead,
			Resource:  "Finance_Reports",
			Timestamp: time.Now(),
		},
		Policies: staffPolicies,
		Baseline: nil,
	}

	if finding := factor.Evaluate(in); !finding.Triggered {
		t.Error("policy check must run even when the role has no baseline")
	}
}

func TestVolumeFactor(t *testing.T) {
	factor := &volumeFactor{weight: 20, multiplier: 10.0}

	baseline := &types.Baseline{RoleID: "staff", AvgRecordsPerAccess: 5.0}

	tests := []struct {
		name      string
		count     int
		baseline  *types.Baseline
		triggered bool
	}{
		{name: "within threshold", count: 50, baseline: baseline, triggered: false},
		{name: "exactly at threshold", count: 50, baseline: baseline, triggered: false},
		{name: "just above threshold", count: 51, baseline: baseline, triggered: true},
		{name: "far above threshold", count: 5200, baseline: baseline, triggered: true},
		{name: "zero records", count: 0, baseline: baseline, triggered: false},
		{name: "missing baseline", count: 5200, baseline: nil, triggered: false},
		{
			name:      "baseline without average",
			count:     5200,
			baseline:  &types.Baseline{RoleID: "staff"},
			triggered: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				Event: types.ActivityEvent{
					SubjectID:   "staff001",
					Action:      types.ActionRead,
					Resource:    "General_Documents",
					RecordCount: tt.count,
					Timestamp:   time.Now(),
				},
				Baseline: tt.baseline,
			}

			finding := factor.Evaluate(in)
			if finding.Triggered != tt.triggered {
				t.Errorf("count %d: triggered = %v, want %v", tt.count, finding.Triggered, tt.triggered)
			}
		})
	}
}

func TestFrequencyFactor(t *testing.T) {
	factor := &frequencyFactor{weight: 15, multiplier: 3.0}

	baseline := &types.Baseline{RoleID: "staff", AvgAccessPerDay: 20}

	tests := []struct {
		name      string
		trailing  int
		baseline  *types.Baseline
		triggered bool
	}{
		{name: "normal frequency", trailing: 10, baseline: baseline, triggered: false},
		{name: "exactly at threshold", trailing: 60, baseline: baseline, triggered: false},
		{name: "just above threshold", trailing: 61, baseline: baseline, triggered: true},
		{name: "zero trailing count", trailing: 0, baseline: baseline, triggered: false},
		{name: "missing baseline", trailing: 500, baseline: nil, triggered: false},
		{
			name:      "baseline without daily average",
			trailing:  500,
			baseline:  &types.Baseline{RoleID: "staff"},
			triggered: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				Event: types.ActivityEvent{
					SubjectID: "staff001",
					Action:    types.ActionRead,
					Resource:  "General_Documents",
					Timestamp: time.Now(),
				},
				Baseline:      tt.baseline,
				TrailingCount: tt.trailing,
			}

			finding := factor.Evaluate(in)
			if finding.Triggered != tt.triggered {
				t.Errorf("trailing %d: triggered = %v, want %v", tt.trailing, finding.Triggered, tt.triggered)
			}
		})
	}
}
