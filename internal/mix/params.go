package mix

import (
	"fmt"
	"sort"
	"strings"
)

// Curve names an ffmpeg acrossfade curve. The same curve is applied to the
// outgoing and incoming clip.
type Curve string

const (
	CurveTriangular  Curve = "tri"
	CurveQuarterSine Curve = "qsin"
	CurveHalfSine    Curve = "hsin"
	CurveExpSine     Curve = "esin"
	CurveLog         Curve = "log"
	CurveInvParabola Curve = "ipar"
	CurveQuadratic   Curve = "qua"
	CurveCubic       Curve = "cub"
	CurveSquareRoot  Curve = "squ"
	CurveCubeRoot    Curve = "cbr"
	CurveParabola    Curve = "par"
	CurveExponential Curve = "exp"
)

var knownCurves = map[Curve]struct{}{
	CurveTriangular:  {},
	CurveQuarterSine: {},
	CurveHalfSine:    {},
	CurveExpSine:     {},
	CurveLog:         {},
	CurveInvParabola: {},
	CurveQuadratic:   {},
	CurveCubic:       {},
	CurveSquareRoot:  {},
	CurveCubeRoot:    {},
	CurveParabola:    {},
	CurveExponential: {},
}

// ParseCurve normalizes a curve name. An empty name selects the triangular
// curve.
func ParseCurve(name string) (Curve, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "triangular" {
		return CurveTriangular, nil
	}
	c := Curve(name)
	if _, ok := knownCurves[c]; !ok {
		return "", &InvalidConfigError{
			Field:  "curve",
			Value:  name,
			Reason: "unknown curve (known: " + strings.Join(KnownCurves(), ", ") + ")",
		}
	}
	return c, nil
}

// KnownCurves lists the accepted curve names in sorted order.
func KnownCurves() []string {
	names := make([]string, 0, len(knownCurves))
	for c := range knownCurves {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}

// CrossfadeParams configures every transition in a program.
type CrossfadeParams struct {
	Overlap float64
	Curve   Curve
}

// Validate checks the parameters without reference to any clip.
func (p CrossfadeParams) Validate() error {
	if p.Overlap <= 0 {
		return &InvalidConfigError{Field: "overlap", Value: formatSeconds(p.Overlap), Reason: "must be positive"}
	}
	if _, err := ParseCurve(string(p.Curve)); err != nil {
		return err
	}
	return nil
}

// EdgeFadeParams configures the fades applied to the trimmed timeline.
type EdgeFadeParams struct {
	FadeIn  float64
	FadeOut float64
}

// Validate checks fade lengths that do not depend on the target.
func (p EdgeFadeParams) Validate() error {
	if p.FadeIn < 0 {
		return &InvalidConfigError{Field: "fade_in", Value: formatSeconds(p.FadeIn), Reason: "must not be negative"}
	}
	if p.FadeOut < 0 {
		return &InvalidConfigError{Field: "fade_out", Value: formatSeconds(p.FadeOut), Reason: "must not be negative"}
	}
	return nil
}

// SampleFormat is the single format every clip instance is converted to
// before blending.
type SampleFormat struct {
	SampleFmt     string
	SampleRate    int
	ChannelLayout string
}

// DefaultSampleFormat matches the planar float stereo format used for
// blending.
func DefaultSampleFormat() SampleFormat {
	return SampleFormat{SampleFmt: "fltp", SampleRate: 48000, ChannelLayout: "stereo"}
}

// Validate rejects incomplete formats.
func (f SampleFormat) Validate() error {
	if strings.TrimSpace(f.SampleFmt) == "" {
		return &InvalidConfigError{Field: "sample_fmt", Reason: "must not be empty"}
	}
	if f.SampleRate <= 0 {
		return &InvalidConfigError{Field: "sample_rate", Value: fmt.Sprint(f.SampleRate), Reason: "must be positive"}
	}
	if strings.TrimSpace(f.ChannelLayout) == "" {
		return &InvalidConfigError{Field: "channel_layout", Reason: "must not be empty"}
	}
	return nil
}

func (f SampleFormat) String() string {
	return fmt.Sprintf("%s/%d/%s", f.SampleFmt, f.SampleRate, f.ChannelLayout)
}

// ValidateGain rejects non-positive linear gain factors.
func ValidateGain(gain float64) error {
	if gain <= 0 {
		return &InvalidConfigError{Field: "gain", Value: formatSeconds(gain), Reason: "must be positive"}
	}
	return nil
}
