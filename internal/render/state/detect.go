package state

import "os"

const (
	ActionBuild = "build"
	ActionSkip  = "skip"

	ReasonForced        = "forced"
	ReasonNew           = "new output"
	ReasonInputChanged  = "input changed"
	ReasonOutputMissing = "output missing"
	ReasonUpToDate      = "up to date"
)

// Decision describes whether an output needs rebuilding.
type Decision struct {
	Output string
	Action string
	Reason string
}

// Detect compares the current input hash for output against the stored
// build state.
func Detect(bs *BuildState, output, inputHash string, force bool) Decision {
	d := Decision{Output: output, Action: ActionBuild}
	if force {
		d.Reason = ReasonForced
		return d
	}

	prior, exists := bs.Builds[output]
	if !exists {
		d.Reason = ReasonNew
		return d
	}
	if prior.InputHash != inputHash {
		d.Reason = ReasonInputChanged
		return d
	}
	if _, err := os.Stat(output); os.IsNotExist(err) {
		d.Reason = ReasonOutputMissing
		return d
	}

	d.Action = ActionSkip
	d.Reason = ReasonUpToDate
	return d
}

// PruneMissing removes entries whose output file no longer exists.
func PruneMissing(bs *BuildState) int {
	removed := 0
	for key := range bs.Builds {
		if _, err := os.Stat(key); os.IsNotExist(err) {
			delete(bs.Builds, key)
			removed++
		}
	}
	return removed
}
