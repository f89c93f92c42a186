package mix

import (
	"fmt"
	"time"
)

// ProbeError reports a clip whose duration could not be determined.
type ProbeError struct {
	Clip string
	Err  error
}

func (e *ProbeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("probe %s: duration unavailable", e.Clip)
	}
	return fmt.Sprintf("probe %s: %v", e.Clip, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// InvalidPlaylistError reports a playlist that cannot be crossfaded.
// Clip and Duration are set when a specific clip caused the failure.
type InvalidPlaylistError struct {
	Reason   string
	Clip     string
	Position int
	Duration float64
	Overlap  float64
}

func (e *InvalidPlaylistError) Error() string {
	if e.Clip != "" {
		return fmt.Sprintf("invalid playlist: clip %d %q (%ss) %s (overlap %ss)",
			e.Position+1, e.Clip, formatSeconds(e.Duration), e.Reason, formatSeconds(e.Overlap))
	}
	return "invalid playlist: " + e.Reason
}

// TargetTooSmallError reports a target duration that cannot be produced
// from the given inputs.
type TargetTooSmallError struct {
	Target float64
	Reason string
}

func (e *TargetTooSmallError) Error() string {
	return fmt.Sprintf("target duration %ss: %s", formatSeconds(e.Target), e.Reason)
}

// ProgramTooLargeError reports a degenerate configuration whose flattened
// chain would exceed the segment ceiling.
type ProgramTooLargeError struct {
	Segments int
	Repeats  int
	Limit    int
	// Reason is set when the repeat count itself cannot be represented.
	Reason string
}

func (e *ProgramTooLargeError) Error() string {
	if e.Reason != "" {
		return "program too large: " + e.Reason
	}
	return fmt.Sprintf("program needs %d segments (%d repeats), limit is %d", e.Segments, e.Repeats, e.Limit)
}

// InvalidConfigError reports a malformed static parameter rejected before
// any probing or planning work starts.
type InvalidConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// TranscodeError reports a failure of the external render boundary.
type TranscodeError struct {
	Output  string
	LogPath string
	Err     error
}

func (e *TranscodeError) Error() string {
	if e.LogPath != "" {
		return fmt.Sprintf("transcode %s: %v (see %s)", e.Output, e.Err, e.LogPath)
	}
	return fmt.Sprintf("transcode %s: %v", e.Output, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// TimeoutError reports a transcode that exceeded its time budget.
type TimeoutError struct {
	Output  string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transcode %s exceeded timeout %s", e.Output, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
