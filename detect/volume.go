package detect

// ReasonExcessiveRecords explains a fired volume factor
const ReasonExcessiveRecords = "Excessive records accessed"

// volumeFactor flags events whose record count exceeds the role's
// average records per access by the configured multiplier. Missing
// baseline, or a baseline with no average yet, means no trigger.
type volumeFactor struct {
	weight     int
	multiplier float64
}

func (f *volumeFactor) Name() string { return FactorVolume }

func (f *volumeFactor) Evaluate(in Input) Finding {
	finding := Finding{Factor: FactorVolume, Weight: f.weight, Reason: ReasonExcessiveRecords}

	if in.Baseline == nil || in.Baseline.AvgRecordsPerAccess <= 0 {
		return finding
	}

	threshold := in.Baseline.AvgRecordsPerAccess * f.multiplier
	finding.Triggered = float64(in.Event.RecordCount) > threshold
	return finding
}
