package render

import (
	"errors"
	"fmt"
	"strings"

	"loopmix/internal/config"
	"loopmix/internal/mix"
)

// Visual is the background clip looped for the whole program.
type Visual struct {
	Path   string
	Width  int
	Height int
}

// Encoding holds the encoder settings passed to ffmpeg.
type Encoding struct {
	VideoCodec       string
	Preset           string
	CRF              int
	PixFmt           string
	AudioCodec       string
	AudioBitrateKbps int
}

// EncodingFromConfig copies encoder settings out of the project config.
func EncodingFromConfig(cfg config.Config) Encoding {
	return Encoding{
		VideoCodec:       cfg.Video.Codec,
		Preset:           cfg.Video.Preset,
		CRF:              cfg.Video.CRF,
		PixFmt:           cfg.Video.PixFmt,
		AudioCodec:       cfg.Audio.ACodec,
		AudioBitrateKbps: cfg.Audio.BitrateKbps,
	}
}

// RenderSpec is everything needed to turn a timeline into one output file.
type RenderSpec struct {
	Visual   Visual
	Timeline mix.Timeline
	// Inputs are the distinct clip paths in playlist order; clip at
	// position p is ffmpeg input p+1.
	Inputs   []string
	Duration float64
	Output   string
	Encoding Encoding
}

// EvenDimension rounds a frame dimension down to an even number. Unknown or
// degenerate sizes return 0.
func EvenDimension(n int) int {
	if n < 2 {
		return 0
	}
	return n - n%2
}

// Compose pairs the looped visual with the timeline for exactly the
// timeline's duration.
func Compose(visual Visual, tl mix.Timeline, output string, enc Encoding) (RenderSpec, error) {
	if strings.TrimSpace(visual.Path) == "" {
		return RenderSpec{}, errors.New("compose: visual path is required")
	}
	if strings.TrimSpace(output) == "" {
		return RenderSpec{}, errors.New("compose: output path is required")
	}
	if tl.Duration <= 0 {
		return RenderSpec{}, &mix.TargetTooSmallError{Target: tl.Duration, Reason: "must be positive"}
	}
	prog := tl.Program
	if prog.Clips < 1 || len(prog.Segments) < prog.Clips {
		return RenderSpec{}, fmt.Errorf("compose: program has %d segments for %d clips", len(prog.Segments), prog.Clips)
	}
	if enc.VideoCodec == "" || enc.AudioCodec == "" {
		return RenderSpec{}, &mix.InvalidConfigError{Field: "codec", Reason: "video and audio codecs are required"}
	}
	if enc.PixFmt == "" {
		enc.PixFmt = "yuv420p"
	}

	inputs := make([]string, prog.Clips)
	for _, seg := range prog.Segments[:prog.Clips] {
		inputs[seg.PlaylistPosition] = seg.Clip.Path
	}

	visual.Width = EvenDimension(visual.Width)
	visual.Height = EvenDimension(visual.Height)
	if visual.Width == 0 || visual.Height == 0 {
		visual.Width, visual.Height = 0, 0
	}

	return RenderSpec{
		Visual:   visual,
		Timeline: tl,
		Inputs:   inputs,
		Duration: tl.Duration,
		Output:   output,
		Encoding: enc,
	}, nil
}
