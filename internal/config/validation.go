package config

import (
	"fmt"
	"os"
	"strings"

	"loopmix/internal/mix"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// ValidateStrict runs all validations against the config and returns
// structured results. File checks resolve relative paths against projectRoot.
func (c Config) ValidateStrict(projectRoot string) []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateMix()...)
	results = append(results, c.validateEncoding()...)
	results = append(results, c.validatePlaylistSource(projectRoot)...)
	results = append(results, c.validateVisual(projectRoot)...)
	return results
}

// Validate returns the first static parameter error as a typed error, or nil.
// It performs no filesystem access.
func (c Config) Validate() error {
	if _, err := c.Crossfade(); err != nil {
		return err
	}
	if err := c.EdgeFades().Validate(); err != nil {
		return err
	}
	if err := mix.ValidateGain(c.Mix.Gain); err != nil {
		return err
	}
	if c.Mix.SafetyMargin < mix.DefaultSafetyMargin {
		return &mix.InvalidConfigError{
			Field:  "safety_margin",
			Value:  fmt.Sprint(c.Mix.SafetyMargin),
			Reason: fmt.Sprintf("must be at least %d", mix.DefaultSafetyMargin),
		}
	}
	if c.Mix.MaxSegments < 1 {
		return &mix.InvalidConfigError{Field: "max_segments", Value: fmt.Sprint(c.Mix.MaxSegments), Reason: "must be positive"}
	}
	if err := c.SampleFormat().Validate(); err != nil {
		return err
	}
	target, err := c.Target()
	if err != nil {
		return err
	}
	if target.Mode == mix.TargetExplicit {
		if c.Mix.FadeInSec > target.Seconds || c.Mix.FadeOutSec > target.Seconds {
			return &mix.InvalidConfigError{
				Field:  "fade",
				Reason: fmt.Sprintf("edge fades must not exceed the %ss target", mix.FormatSeconds(target.Seconds)),
			}
		}
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if c.Render.ProbeConcurrency < 1 {
		return &mix.InvalidConfigError{Field: "probe_concurrency", Value: fmt.Sprint(c.Render.ProbeConcurrency), Reason: "must be at least 1"}
	}
	return nil
}

func (c Config) validateMix() []ValidationResult {
	var results []ValidationResult
	if err := c.Validate(); err != nil {
		results = append(results, ValidationResult{Level: "error", Message: err.Error()})
	}
	if c.Mix.OverlapSec > 0 && c.Mix.FadeOutSec > 0 && c.Mix.FadeOutSec < c.Mix.OverlapSec {
		results = append(results, ValidationResult{
			Level: "warning",
			Message: fmt.Sprintf("fade_out_s %s is shorter than overlap_s %s",
				mix.FormatSeconds(c.Mix.FadeOutSec), mix.FormatSeconds(c.Mix.OverlapSec)),
		})
	}
	if c.Mix.Gain > 4 {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("gain %s is high and may clip", mix.FormatSeconds(c.Mix.Gain)),
		})
	}
	return results
}

func (c Config) validateEncoding() []ValidationResult {
	var results []ValidationResult
	if strings.TrimSpace(c.Audio.ACodec) == "" {
		results = append(results, ValidationResult{Level: "error", Message: "audio.acodec is required"})
	}
	if c.Audio.BitrateKbps <= 0 {
		results = append(results, ValidationResult{Level: "error", Message: "audio.bitrate_kbps must be positive"})
	}
	if strings.TrimSpace(c.Video.Codec) == "" {
		results = append(results, ValidationResult{Level: "error", Message: "video.codec is required"})
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("video.crf %d outside 0-51", c.Video.CRF),
		})
	}
	return results
}

func (c Config) validatePlaylistSource(projectRoot string) []ValidationResult {
	file := strings.TrimSpace(c.Playlist.File)
	dir := strings.TrimSpace(c.Playlist.Dir)

	switch {
	case file != "" && dir != "":
		return []ValidationResult{{Level: "error", Message: "playlist.file and playlist.dir are mutually exclusive"}}
	case file == "" && dir == "":
		return []ValidationResult{{Level: "error", Message: "one of playlist.file or playlist.dir is required"}}
	case file != "":
		if _, err := os.Stat(ResolvePath(projectRoot, file)); err != nil {
			return []ValidationResult{{Level: "error", Message: fmt.Sprintf("playlist file %q not found", file)}}
		}
		if c.Playlist.Halves {
			return []ValidationResult{{Level: "warning", Message: "playlist.halves is ignored with playlist.file"}}
		}
	default:
		info, err := os.Stat(ResolvePath(projectRoot, dir))
		if err != nil || !info.IsDir() {
			return []ValidationResult{{Level: "error", Message: fmt.Sprintf("playlist dir %q not found", dir)}}
		}
	}
	return nil
}

func (c Config) validateVisual(projectRoot string) []ValidationResult {
	file := strings.TrimSpace(c.Visual.File)
	if file == "" {
		return []ValidationResult{{Level: "error", Message: "visual.file is required"}}
	}
	if _, err := os.Stat(ResolvePath(projectRoot, file)); err != nil {
		return []ValidationResult{{Level: "error", Message: fmt.Sprintf("visual file %q not found", file)}}
	}
	return nil
}

// HasErrors reports whether any result is error level.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}
