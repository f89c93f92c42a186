package mix

import "fmt"

// Fade is a gain ramp on the trimmed timeline.
type Fade struct {
	Start    float64
	Duration float64
}

// End returns where the fade finishes.
func (f Fade) End() float64 { return roundSeconds(f.Start + f.Duration) }

// Timeline is a program cut to its exact target with edge fades applied.
type Timeline struct {
	Program  Program
	Duration float64
	FadeIn   Fade
	FadeOut  Fade
	// Audible is the number of leading segments that start before the cut.
	Audible  int
	Warnings []string
}

// Trim cuts the program to [0, target] and positions the edge fades. The
// fade-out always ends exactly at target.
func Trim(p Program, target float64, edge EdgeFadeParams) (Timeline, error) {
	if target <= 0 {
		return Timeline{}, &TargetTooSmallError{Target: target, Reason: "must be positive"}
	}
	if err := edge.Validate(); err != nil {
		return Timeline{}, err
	}
	if edge.FadeIn > target {
		return Timeline{}, &InvalidConfigError{
			Field:  "fade_in",
			Value:  formatSeconds(edge.FadeIn),
			Reason: fmt.Sprintf("exceeds target duration %ss", formatSeconds(target)),
		}
	}
	if edge.FadeOut > target {
		return Timeline{}, &InvalidConfigError{
			Field:  "fade_out",
			Value:  formatSeconds(edge.FadeOut),
			Reason: fmt.Sprintf("exceeds target duration %ss", formatSeconds(target)),
		}
	}
	if p.Duration < target {
		return Timeline{}, &TargetTooSmallError{
			Target: target,
			Reason: fmt.Sprintf("raw program is only %ss long", formatSeconds(p.Duration)),
		}
	}

	tl := Timeline{
		Program:  p,
		Duration: target,
		FadeIn:   Fade{Start: 0, Duration: edge.FadeIn},
		FadeOut:  Fade{Start: roundSeconds(target - edge.FadeOut), Duration: edge.FadeOut},
	}

	for _, seg := range p.Segments {
		if seg.Start >= target {
			break
		}
		tl.Audible++
	}

	if len(p.Transitions) > 0 && edge.FadeOut < p.Crossfade.Overlap {
		tl.Warnings = append(tl.Warnings, fmt.Sprintf(
			"fade-out %ss is shorter than crossfade overlap %ss; the last audible transition may interact with it",
			formatSeconds(edge.FadeOut), formatSeconds(p.Crossfade.Overlap)))
	}
	if tr, ok := tl.CutTransition(); ok && tr.Index == len(p.Transitions) {
		tl.Warnings = append(tl.Warnings, fmt.Sprintf(
			"cut at %ss falls inside the final crossfade [%ss, %ss]",
			formatSeconds(target), formatSeconds(tr.Start), formatSeconds(tr.End)))
	}
	if edge.FadeIn+edge.FadeOut > target {
		tl.Warnings = append(tl.Warnings, fmt.Sprintf(
			"fade-in %ss and fade-out %ss overlap within the %ss target",
			formatSeconds(edge.FadeIn), formatSeconds(edge.FadeOut), formatSeconds(target)))
	}

	return tl, nil
}

// CutTransition returns the transition whose overlap window contains the
// cut point, if any.
func (t Timeline) CutTransition() (Transition, bool) {
	for _, tr := range t.Program.Transitions {
		if tr.Start < t.Duration && t.Duration < tr.End {
			return tr, true
		}
	}
	return Transition{}, false
}
