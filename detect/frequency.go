package detect

// ReasonHighFrequency explains a fired frequency factor
const ReasonHighFrequency = "Abnormal access frequency"

// frequencyFactor flags subjects whose trailing access count exceeds
// the role's expected daily rate by the configured multiplier. The
// trailing count is supplied by the caller from persisted history; the
// engine never queries storage itself.
type frequencyFactor struct {
	weight     int
	multiplier float64
}

func (f *frequencyFactor) Name() string { return FactorFrequency }

func (f *frequencyFactor) Evaluate(in Input) Finding {
	finding := Finding{Factor: FactorFrequency, Weight: f.weight, Reason: ReasonHighFrequency}

	if in.Baseline == nil || in.Baseline.AvgAccessPerDay <= 0 {
		return finding
	}

	threshold := in.Baseline.AvgAccessPerDay * f.multiplier
	finding.Triggered = float64(in.TrailingCount) > threshold
	return finding
}
