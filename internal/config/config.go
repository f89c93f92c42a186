package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"loopmix/internal/mix"
)

// Config captures the playlist, mix and encoding configuration for a project.
type Config struct {
	Version  int            `yaml:"version"`
	Playlist PlaylistConfig `yaml:"playlist"`
	Mix      MixConfig      `yaml:"mix"`
	Visual   VisualConfig   `yaml:"visual"`
	Audio    AudioConfig    `yaml:"audio"`
	Video    VideoConfig    `yaml:"video"`
	Render   RenderConfig   `yaml:"render"`
	Tools    ToolsConfig    `yaml:"tools,omitempty"`
}

// PlaylistConfig selects where clips come from. File and Dir are mutually
// exclusive; Halves switches Dir to the half_1/half_2 layout.
type PlaylistConfig struct {
	File       string   `yaml:"file,omitempty"`
	Dir        string   `yaml:"dir,omitempty"`
	Halves     bool     `yaml:"halves,omitempty"`
	Extensions []string `yaml:"extensions,omitempty"`
}

// MixConfig holds the crossfade chain parameters.
type MixConfig struct {
	Target       string  `yaml:"target"`
	OverlapSec   float64 `yaml:"overlap_s"`
	Curve        string  `yaml:"curve"`
	FadeInSec    float64 `yaml:"fade_in_s"`
	FadeOutSec   float64 `yaml:"fade_out_s"`
	Gain         float64 `yaml:"gain"`
	SafetyMargin int     `yaml:"safety_margin"`
	MaxSegments  int     `yaml:"max_segments"`
}

// VisualConfig points at the background clip looped under the audio.
type VisualConfig struct {
	File string `yaml:"file"`
}

// AudioConfig describes the blend format and the audio encoder.
type AudioConfig struct {
	SampleRate    int    `yaml:"sample_rate"`
	ChannelLayout string `yaml:"channel_layout"`
	SampleFmt     string `yaml:"sample_fmt"`
	ACodec        string `yaml:"acodec"`
	BitrateKbps   int    `yaml:"bitrate_kbps"`
}

// VideoConfig describes the video encoder.
type VideoConfig struct {
	Codec  string `yaml:"codec"`
	Preset string `yaml:"preset,omitempty"`
	CRF    int    `yaml:"crf,omitempty"`
	PixFmt string `yaml:"pix_fmt"`
}

// RenderConfig controls where output goes and how long a render may run.
type RenderConfig struct {
	OutputDir        string `yaml:"output_dir"`
	Output           string `yaml:"output"`
	Timeout          string `yaml:"timeout"`
	ProbeConcurrency int    `yaml:"probe_concurrency"`
}

// ToolsConfig overrides binary locations.
type ToolsConfig struct {
	FFmpeg  string `yaml:"ffmpeg,omitempty"`
	FFprobe string `yaml:"ffprobe,omitempty"`
}

// DefaultClipsDir is scanned when no playlist source is configured.
const DefaultClipsDir = "clips"

// DefaultExtensions are the audio file types picked up by directory scans.
var DefaultExtensions = []string{".mp3", ".wav", ".flac", ".m4a", ".ogg", ".opus"}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Mix: MixConfig{
			Target:       "auto",
			OverlapSec:   5,
			Curve:        string(mix.CurveTriangular),
			FadeInSec:    3,
			FadeOutSec:   10,
			Gain:         1.75,
			SafetyMargin: mix.DefaultSafetyMargin,
			MaxSegments:  mix.DefaultMaxSegments,
		},
		Visual: VisualConfig{
			File: "visual.mp4",
		},
		Audio: AudioConfig{
			SampleRate:    48000,
			ChannelLayout: "stereo",
			SampleFmt:     "fltp",
			ACodec:        "aac",
			BitrateKbps:   192,
		},
		Video: VideoConfig{
			Codec:  "libx264",
			Preset: "veryfast",
			CRF:    23,
			PixFmt: "yuv420p",
		},
		Render: RenderConfig{
			OutputDir:        "rendered",
			Output:           "output.mp4",
			Timeout:          "6h",
			ProbeConcurrency: 4,
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills in fields whose zero value means "unset". Mix numbers
// are left alone so that an explicit zero reaches validation.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Playlist.File == "" && c.Playlist.Dir == "" {
		c.Playlist.Dir = DefaultClipsDir
	}
	if len(c.Playlist.Extensions) == 0 {
		c.Playlist.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if strings.TrimSpace(c.Mix.Target) == "" {
		c.Mix.Target = defaults.Mix.Target
	}
	if strings.TrimSpace(c.Mix.Curve) == "" {
		c.Mix.Curve = defaults.Mix.Curve
	}
	if c.Mix.SafetyMargin == 0 {
		c.Mix.SafetyMargin = defaults.Mix.SafetyMargin
	}
	if c.Mix.MaxSegments == 0 {
		c.Mix.MaxSegments = defaults.Mix.MaxSegments
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if c.Audio.ChannelLayout == "" {
		c.Audio.ChannelLayout = defaults.Audio.ChannelLayout
	}
	if c.Audio.SampleFmt == "" {
		c.Audio.SampleFmt = defaults.Audio.SampleFmt
	}
	if c.Audio.ACodec == "" {
		c.Audio.ACodec = defaults.Audio.ACodec
	}
	if c.Audio.BitrateKbps == 0 {
		c.Audio.BitrateKbps = defaults.Audio.BitrateKbps
	}
	if c.Video.Codec == "" {
		c.Video.Codec = defaults.Video.Codec
	}
	if c.Video.PixFmt == "" {
		c.Video.PixFmt = defaults.Video.PixFmt
	}
	if c.Render.OutputDir == "" {
		c.Render.OutputDir = defaults.Render.OutputDir
	}
	if c.Render.Output == "" {
		c.Render.Output = defaults.Render.Output
	}
	if c.Render.Timeout == "" {
		c.Render.Timeout = defaults.Render.Timeout
	}
	if c.Render.ProbeConcurrency == 0 {
		c.Render.ProbeConcurrency = defaults.Render.ProbeConcurrency
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

// Crossfade returns the chain parameters with the curve normalized.
func (c Config) Crossfade() (mix.CrossfadeParams, error) {
	curve, err := mix.ParseCurve(c.Mix.Curve)
	if err != nil {
		return mix.CrossfadeParams{}, err
	}
	xf := mix.CrossfadeParams{Overlap: c.Mix.OverlapSec, Curve: curve}
	if err := xf.Validate(); err != nil {
		return mix.CrossfadeParams{}, err
	}
	return xf, nil
}

// EdgeFades returns the fade-in/fade-out parameters.
func (c Config) EdgeFades() mix.EdgeFadeParams {
	return mix.EdgeFadeParams{FadeIn: c.Mix.FadeInSec, FadeOut: c.Mix.FadeOutSec}
}

// SampleFormat returns the blend format.
func (c Config) SampleFormat() mix.SampleFormat {
	return mix.SampleFormat{
		SampleFmt:     c.Audio.SampleFmt,
		SampleRate:    c.Audio.SampleRate,
		ChannelLayout: c.Audio.ChannelLayout,
	}
}

// Target parses the configured target.
func (c Config) Target() (mix.TargetSpec, error) {
	return mix.ParseTarget(c.Mix.Target)
}

// TimeoutDuration parses render.timeout. Zero means no limit.
func (c Config) TimeoutDuration() (time.Duration, error) {
	raw := strings.TrimSpace(c.Render.Timeout)
	if raw == "" || raw == "0" || strings.EqualFold(raw, "none") {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &mix.InvalidConfigError{Field: "timeout", Value: raw, Reason: "expected a duration like 6h"}
	}
	if d < 0 {
		return 0, &mix.InvalidConfigError{Field: "timeout", Value: raw, Reason: "must not be negative"}
	}
	return d, nil
}

// ResolvePath returns path as-is if absolute, otherwise joins it with root.
func ResolvePath(root, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
