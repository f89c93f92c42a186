package mix

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TestTargetSeconds is the length of a quick test render.
const TestTargetSeconds = 300

// TargetMode selects how the target duration is derived.
type TargetMode string

const (
	TargetAuto     TargetMode = "auto"
	TargetExplicit TargetMode = "explicit"
)

// TargetSpec is the parsed form of the target option.
type TargetSpec struct {
	Mode    TargetMode
	Seconds float64
	Raw     string
}

// ParseTarget accepts "auto", "test", a number of seconds, or a Go duration
// string such as "3h" or "90m".
func ParseTarget(value string) (TargetSpec, error) {
	raw := strings.TrimSpace(value)
	switch strings.ToLower(raw) {
	case "", "auto":
		return TargetSpec{Mode: TargetAuto, Raw: "auto"}, nil
	case "test":
		return TargetSpec{Mode: TargetExplicit, Seconds: TestTargetSeconds, Raw: raw}, nil
	}

	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return explicitTarget(secs, raw)
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return explicitTarget(d.Seconds(), raw)
	}
	return TargetSpec{}, &InvalidConfigError{
		Field:  "target",
		Value:  raw,
		Reason: `expected "auto", "test", seconds, or a duration like "3h"`,
	}
}

func explicitTarget(secs float64, raw string) (TargetSpec, error) {
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return TargetSpec{}, &InvalidConfigError{Field: "target", Value: raw, Reason: "must be a finite number of seconds"}
	}
	if secs <= 0 {
		return TargetSpec{}, &TargetTooSmallError{Target: secs, Reason: "must be positive"}
	}
	return TargetSpec{Mode: TargetExplicit, Seconds: secs, Raw: raw}, nil
}

// Resolve returns the target in seconds for a probed playlist. Auto targets
// use the plain sum of clip durations.
func (t TargetSpec) Resolve(p Playlist) (float64, error) {
	switch t.Mode {
	case TargetAuto:
		total := roundSeconds(p.TotalDuration())
		if total <= 0 {
			return 0, &TargetTooSmallError{Target: total, Reason: "auto target from an empty playlist"}
		}
		return total, nil
	case TargetExplicit:
		if t.Seconds <= 0 {
			return 0, &TargetTooSmallError{Target: t.Seconds, Reason: "must be positive"}
		}
		return t.Seconds, nil
	default:
		return 0, &InvalidConfigError{Field: "target", Value: string(t.Mode), Reason: "unknown mode"}
	}
}

// Describe renders the target for humans.
func (t TargetSpec) Describe() string {
	if t.Mode == TargetAuto {
		return "auto (sum of clip durations)"
	}
	return fmt.Sprintf("%ss (%s)", formatSeconds(t.Seconds), HumanDuration(t.Seconds))
}

// HumanDuration formats seconds as 1h02m03s style text.
func HumanDuration(secs float64) string {
	total := int(secs + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
