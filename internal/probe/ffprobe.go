// Package probe measures clip durations and visual dimensions with ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"loopmix/internal/mix"
	"loopmix/internal/runner"
)

// Prober returns the playable duration of a clip in seconds.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// VisualInfo describes the background clip.
type VisualInfo struct {
	Path     string
	Width    int
	Height   int
	Duration float64
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

// FFProbe runs ffprobe through a Runner.
type FFProbe struct {
	Runner runner.Runner
	Binary string
	Logger zerolog.Logger
}

// New returns an FFProbe using the given binary, defaulting to "ffprobe".
func New(r runner.Runner, binary string, logger zerolog.Logger) FFProbe {
	if r == nil {
		r = runner.CmdRunner{}
	}
	if binary == "" {
		binary = "ffprobe"
	}
	return FFProbe{Runner: r, Binary: binary, Logger: logger}
}

func (p FFProbe) run(ctx context.Context, path string) (ffprobeOutput, error) {
	args := []string{
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-print_format", "json",
		path,
	}

	p.Logger.Debug().Str("path", path).Msg("ffprobe")
	result, runErr := p.Runner.Run(ctx, p.Binary, args, runner.RunOptions{})
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ffprobeOutput{}, ctxErr
		}
		if msg := strings.TrimSpace(string(result.Stderr)); msg != "" {
			return ffprobeOutput{}, fmt.Errorf("ffprobe: %w: %s", runErr, firstLine(msg))
		}
		return ffprobeOutput{}, fmt.Errorf("ffprobe: %w", runErr)
	}
	if len(result.Stdout) == 0 {
		return ffprobeOutput{}, errors.New("ffprobe produced no output")
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(result.Stdout, &parsed); err != nil {
		return ffprobeOutput{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	return parsed, nil
}

// Probe returns the container duration of an audio clip. Clips without an
// audio stream or without a positive duration are rejected.
func (p FFProbe) Probe(ctx context.Context, path string) (float64, error) {
	parsed, err := p.run(ctx, path)
	if err != nil {
		return 0, &mix.ProbeError{Clip: path, Err: err}
	}

	var audio *ffprobeStream
	for i := range parsed.Streams {
		if parsed.Streams[i].CodecType == "audio" {
			audio = &parsed.Streams[i]
			break
		}
	}
	if audio == nil {
		return 0, &mix.ProbeError{Clip: path, Err: errors.New("no audio stream")}
	}

	duration := parseSeconds(parsed.Format.Duration)
	if duration <= 0 {
		duration = parseSeconds(audio.Duration)
	}
	if duration <= 0 {
		return 0, &mix.ProbeError{Clip: path, Err: errors.New("duration missing or not positive")}
	}
	return duration, nil
}

// ProbeVisual reads the first video stream's frame size.
func (p FFProbe) ProbeVisual(ctx context.Context, path string) (VisualInfo, error) {
	parsed, err := p.run(ctx, path)
	if err != nil {
		return VisualInfo{}, fmt.Errorf("probe visual %s: %w", path, err)
	}
	for _, s := range parsed.Streams {
		if s.CodecType != "video" {
			continue
		}
		return VisualInfo{
			Path:     path,
			Width:    s.Width,
			Height:   s.Height,
			Duration: parseSeconds(parsed.Format.Duration),
		}, nil
	}
	return VisualInfo{}, fmt.Errorf("probe visual %s: no video stream", path)
}

func parseSeconds(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "N/A" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

var _ Prober = FFProbe{}
