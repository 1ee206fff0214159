package detect

// ReasonPolicyViolation explains a fired policy factor
const ReasonPolicyViolation = "Unauthorized resource access"

// policyFactor checks whether the event's (action, resource) pair is
// authorized for the subject's role. Matching is exact and
// case-sensitive on both fields; a policy matching the action but not
// the resource is still a violation. This check runs even when the
// role has no baseline.
type policyFactor struct {
	weight int
}

func (f *policyFactor) Name() string { return FactorPolicy }

func (f *policyFactor) Evaluate(in Input) Finding {
	finding := Finding{Factor: FactorPolicy, Weight: f.weight, Reason: ReasonPolicyViolation}

	for i := range in.Policies {
		if in.Policies[i].Allows(in.Event.Action, in.Event.Resource) {
			return finding
		}
	}

	finding.Triggered = true
	return finding
}
