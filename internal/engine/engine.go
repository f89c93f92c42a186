// Package engine wires playlist loading, probing, planning and transcoding
// into a single build.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"loopmix/internal/config"
	"loopmix/internal/mix"
	"loopmix/internal/paths"
	"loopmix/internal/probe"
	"loopmix/internal/render"
	"loopmix/pkg/playlist"
)

// Prober probes clips and the looping visual.
type Prober interface {
	probe.Prober
	ProbeVisual(ctx context.Context, path string) (probe.VisualInfo, error)
}

// Transcoder runs a planned ffmpeg invocation.
type Transcoder interface {
	Transcode(ctx context.Context, inv render.Invocation, opts render.Options) (render.Result, error)
}

// Engine builds one mix for a project.
type Engine struct {
	Config     config.Config
	Paths      paths.ProjectPaths
	Prober     Prober
	Transcoder Transcoder
	FFmpeg     string
	Logger     zerolog.Logger

	ProbeReporter  probe.Reporter
	RenderReporter render.ProgressReporter

	// Now is used for stamped output folders and tracklists.
	Now func() time.Time
}

// PlanOptions selects where the output goes.
type PlanOptions struct {
	// Output overrides render.output; relative names land in the output dir.
	Output string
	// Stamp writes into a fresh output_YYYYmmdd_HHMMSS folder.
	Stamp bool
}

// Plan is everything decided before ffmpeg runs.
type Plan struct {
	Target      mix.TargetSpec
	Playlist    mix.Playlist
	Cycle       float64
	Repeats     mix.RepeatPlan
	Timeline    mix.Timeline
	Spec        render.RenderSpec
	Invocation  render.Invocation
	Output      string
	DiagDir     string
	Description string
}

// Warnings returns planning warnings such as a cut inside a crossfade.
func (p *Plan) Warnings() []string {
	return p.Timeline.Warnings
}

// Plan validates the configuration, probes every clip and the visual, and
// assembles the ffmpeg invocation. Nothing is written to disk.
func (e *Engine) Plan(ctx context.Context, opts PlanOptions) (*Plan, error) {
	if e.Prober == nil {
		return nil, errors.New("engine: no prober configured")
	}
	cfg := e.Config

	// Static parameters and explicit targets fail before any probe runs.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	xf, err := cfg.Crossfade()
	if err != nil {
		return nil, err
	}
	target, err := cfg.Target()
	if err != nil {
		return nil, err
	}

	start := e.now()
	clips, err := e.LoadClips()
	if err != nil {
		return nil, err
	}
	e.Logger.Info().Int("clips", len(clips)).Msg("playlist loaded")

	clips, err = probe.ProbeAll(ctx, e.Prober, clips, probe.Options{
		Concurrency: cfg.Render.ProbeConcurrency,
		Reporter:    e.ProbeReporter,
		ReadTags:    true,
	})
	if err != nil {
		e.Logger.Error().Err(err).Msg("probe failed")
		return nil, err
	}
	e.Logger.Info().Int("clips", len(clips)).Dur("elapsed", time.Since(start)).Msg("probe complete")

	pl, err := mix.NewPlaylist(clips)
	if err != nil {
		return nil, err
	}
	targetSecs, err := target.Resolve(pl)
	if err != nil {
		return nil, err
	}
	cycle, err := mix.CycleDuration(pl, xf.Overlap)
	if err != nil {
		return nil, err
	}
	repeats, err := mix.PlanRepeats(pl, cycle, targetSecs, xf.Overlap, cfg.Mix.SafetyMargin)
	if err != nil {
		return nil, err
	}
	prog, err := mix.BuildProgram(pl, repeats.Repeats, xf, cfg.Mix.Gain, cfg.SampleFormat(), cfg.Mix.MaxSegments)
	if err != nil {
		return nil, err
	}
	tl, err := mix.Trim(prog, targetSecs, cfg.EdgeFades())
	if err != nil {
		return nil, err
	}
	e.Logger.Info().
		Float64("cycle_s", cycle).
		Float64("target_s", targetSecs).
		Int("repeats", repeats.Repeats).
		Bool("extended", repeats.Extended).
		Int("segments", len(prog.Segments)).
		Int("audible", tl.Audible).
		Msg("program planned")
	for _, w := range tl.Warnings {
		e.Logger.Warn().Msg(w)
	}

	visual, err := e.Prober.ProbeVisual(ctx, e.Paths.VisualFile)
	if err != nil {
		return nil, fmt.Errorf("visual: %w", err)
	}

	name := strings.TrimSpace(opts.Output)
	if name == "" {
		name = cfg.Render.Output
	}
	var stamp time.Time
	if opts.Stamp {
		stamp = e.now()
	}
	output := e.Paths.OutputPath(name, stamp)
	diagDir := DiagnosticsDir(output)

	spec, err := render.Compose(
		render.Visual{Path: visual.Path, Width: visual.Width, Height: visual.Height},
		tl, output, render.EncodingFromConfig(cfg),
	)
	if err != nil {
		return nil, err
	}
	inv := render.Plan(e.FFmpeg, spec, diagDir)

	return &Plan{
		Target:      target,
		Playlist:    pl,
		Cycle:       cycle,
		Repeats:     repeats,
		Timeline:    tl,
		Spec:        spec,
		Invocation:  inv,
		Output:      output,
		DiagDir:     diagDir,
		Description: mix.Describe(tl),
	}, nil
}

// DiagnosticsDir is where graph.txt, ffmpeg_command.txt, filter_complex.txt
// and tracklist.json are written for output.
func DiagnosticsDir(output string) string {
	return filepath.Dir(output)
}

// LoadClips resolves the configured playlist source into unprobed clips.
func (e *Engine) LoadClips() ([]mix.Clip, error) {
	entries, err := playlist.Load(playlist.Source{
		File:       e.Paths.PlaylistFile,
		Dir:        e.Paths.ClipsDir,
		Halves:     e.Config.Playlist.Halves,
		Extensions: e.Config.Playlist.Extensions,
	})
	if err != nil {
		var verrs playlist.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, &mix.InvalidPlaylistError{Reason: verrs.Error()}
		}
		return nil, &mix.InvalidPlaylistError{Reason: err.Error()}
	}

	clips := make([]mix.Clip, len(entries))
	for i, entry := range entries {
		clips[i] = mix.Clip{
			Path:   entry.Path,
			Title:  entry.Title,
			Artist: entry.Artist,
			Group:  groupLabel(entry),
		}
	}
	return clips, nil
}

func groupLabel(entry playlist.Entry) string {
	if entry.Group == "" {
		return ""
	}
	return entry.Label()
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
