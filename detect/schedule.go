package detect

// ReasonOffHour explains a fired schedule factor
const ReasonOffHour = "Off-hour access"

// scheduleFactor checks whether the event's hour falls outside the
// role's normal operating window.
//
// Two regimes:
//   - start <= end: off-hour when hour < start or hour > end. With
//     start == end only that exact hour is in-window.
//   - start > end (window wraps past midnight, e.g. a night shift
//     with start=22, end=6): in-window is [start,23] plus [0,end].
type scheduleFactor struct {
	weight int
}

func (f *scheduleFactor) Name() string { return FactorSchedule }

func (f *scheduleFactor) Evaluate(in Input) Finding {
	finding := Finding{Factor: FactorSchedule, Weight: f.weight, Reason: ReasonOffHour}

	if in.Baseline == nil {
		return finding
	}

	hour := in.Event.Timestamp.Hour()
	b := in.Baseline

	if b.Wraps() {
		finding.Triggered = hour < b.StartHour && hour > b.EndHour
	} else {
		finding.Triggered = hour < b.StartHour || hour > b.EndHour
	}
	return finding
}
