package mix

import (
	"fmt"
	"math"
)

// DefaultSafetyMargin is the number of extra cycles added on top of
// floor(target/cycle).
const DefaultSafetyMargin = 2

// RepeatPlan records how many cycles are concatenated and why.
type RepeatPlan struct {
	Cycle       float64
	Target      float64
	Base        int
	Margin      int
	Repeats     int
	Segments    int
	RawDuration float64
	// Extended is set when the margin alone could not cover the overlap
	// consumed at repeat seams and Repeats was raised.
	Extended bool
}

// PlanRepeats computes the number of full cycles needed so that the
// flattened chain is longer than target.
func PlanRepeats(p Playlist, cycle, target, overlap float64, margin int) (RepeatPlan, error) {
	if target <= 0 || math.IsNaN(target) {
		return RepeatPlan{}, &TargetTooSmallError{Target: target, Reason: "must be positive"}
	}
	if margin < DefaultSafetyMargin {
		return RepeatPlan{}, &InvalidConfigError{
			Field:  "safety_margin",
			Value:  fmt.Sprint(margin),
			Reason: fmt.Sprintf("must be at least %d", DefaultSafetyMargin),
		}
	}
	if cycle <= 0 {
		return RepeatPlan{}, &InvalidPlaylistError{Reason: "cycle duration is not positive", Overlap: overlap}
	}
	if math.IsInf(target, 1) {
		return RepeatPlan{}, &InvalidConfigError{Field: "target", Value: "+Inf", Reason: "must be a finite number of seconds"}
	}

	k := p.Len()
	if k < 1 {
		return RepeatPlan{}, &InvalidPlaylistError{Reason: "playlist is empty", Overlap: overlap}
	}
	maxRepeats := math.MaxInt/k - margin
	if target/cycle >= float64(maxRepeats) {
		return RepeatPlan{}, tooManyRepeats(target, cycle)
	}

	base := int(math.Floor(target / cycle))
	plan := RepeatPlan{
		Cycle:   cycle,
		Target:  target,
		Base:    base,
		Margin:  margin,
		Repeats: base + margin,
	}
	if plan.Repeats < 1 {
		return RepeatPlan{}, &TargetTooSmallError{Target: target, Reason: "no repeat count reaches it"}
	}

	total := p.TotalDuration()
	plan.RawDuration = FlattenedDuration(total, k, plan.Repeats, overlap)

	if plan.RawDuration <= target {
		gain := total - overlap*float64(k)
		if gain <= 0 {
			return RepeatPlan{}, &TargetTooSmallError{
				Target: target,
				Reason: "each repeat consumes at least as much overlap as it adds",
			}
		}
		needed := (target - overlap) / gain
		if needed >= float64(math.MaxInt/k-1) {
			return RepeatPlan{}, tooManyRepeats(target, cycle)
		}
		plan.Repeats = int(math.Floor(needed)) + 1
		plan.RawDuration = FlattenedDuration(total, k, plan.Repeats, overlap)
		plan.Extended = true
	}

	plan.Segments = plan.Repeats * k
	return plan, nil
}

func tooManyRepeats(target, cycle float64) *ProgramTooLargeError {
	return &ProgramTooLargeError{
		Reason: fmt.Sprintf("target %ss over a %ss cycle needs more repeats than can be counted",
			formatSeconds(target), formatSeconds(cycle)),
	}
}

// FlattenedDuration is the raw length of repeats cycles chained with one
// overlap removed at every transition, seams included.
func FlattenedDuration(cycleTotal float64, clips, repeats int, overlap float64) float64 {
	n := clips * repeats
	if n <= 0 {
		return 0
	}
	return roundSeconds(float64(repeats)*cycleTotal - overlap*float64(n-1))
}
