package engine

import (
	"context"
	"errors"
	"time"

	"loopmix/internal/render"
	"loopmix/internal/render/state"
)

// BuildOptions controls a build.
type BuildOptions struct {
	PlanOptions
	// Force rebuilds even when the output is up to date.
	Force bool
	// DryRun plans and writes diagnostics without running ffmpeg.
	DryRun bool
}

// BuildResult summarizes a build.
type BuildResult struct {
	Plan          *Plan
	Decision      state.Decision
	Diagnostics   render.Diagnostics
	Transcode     render.Result
	TracklistPath string
	BuildID       string
	Skipped       bool
}

// Build plans the mix, writes diagnostics and renders it unless the ledger
// says the output is already current.
func (e *Engine) Build(ctx context.Context, opts BuildOptions) (BuildResult, error) {
	plan, err := e.Plan(ctx, opts.PlanOptions)
	if err != nil {
		return BuildResult{}, err
	}
	return e.Render(ctx, plan, opts)
}

// Render writes diagnostics for a finished plan and transcodes it. The
// tracklist and ledger entry are written only after ffmpeg succeeds.
func (e *Engine) Render(ctx context.Context, plan *Plan, opts BuildOptions) (BuildResult, error) {
	if plan == nil {
		return BuildResult{}, errors.New("engine: nil plan")
	}
	result := BuildResult{Plan: plan}

	diag, err := render.WriteDiagnostics(plan.DiagDir, plan.Timeline, plan.Invocation)
	if err != nil {
		return result, err
	}
	result.Diagnostics = diag
	e.Logger.Info().Str("dir", diag.Dir).Msg("diagnostics written")

	if opts.DryRun {
		result.Skipped = true
		result.Decision = state.Decision{Output: plan.Output, Action: state.ActionSkip, Reason: "dry run"}
		return result, nil
	}

	inputs := append([]string{plan.Spec.Visual.Path}, plan.Spec.Inputs...)
	fingerprints, err := state.Fingerprints(inputs)
	if err != nil {
		return result, err
	}
	hash := state.InputHash(plan.Description, plan.Invocation, fingerprints)

	ledger, err := state.Load(e.Paths.StateFile)
	if err != nil {
		return result, err
	}
	result.Decision = state.Detect(ledger, plan.Output, hash, opts.Force)
	if result.Decision.Action == state.ActionSkip {
		result.Skipped = true
		e.Logger.Info().Str("output", plan.Output).Str("reason", result.Decision.Reason).Msg("build skipped")
		return result, nil
	}

	if e.Transcoder == nil {
		return result, errors.New("engine: no transcoder configured")
	}
	timeout, err := e.Config.TimeoutDuration()
	if err != nil {
		return result, err
	}
	res, err := e.Transcoder.Transcode(ctx, plan.Invocation, render.Options{
		Timeout:  timeout,
		Reporter: e.RenderReporter,
	})
	result.Transcode = res
	if err != nil {
		return result, err
	}

	// The artifact is in place; bookkeeping failures are only logged.
	tracklist := render.NewTracklist(plan.Timeline, plan.Output, e.now())
	result.BuildID = tracklist.BuildID
	if path, err := render.WriteTracklist(plan.DiagDir, tracklist); err != nil {
		e.Logger.Warn().Err(err).Str("output", plan.Output).Msg("write tracklist")
	} else {
		result.TracklistPath = path
	}

	state.PruneMissing(ledger)
	ledger.Record(plan.Output, state.BuildEntry{
		InputHash:  hash,
		BuildID:    tracklist.BuildID,
		RenderedAt: e.now().UTC().Truncate(time.Second),
		DurationS:  plan.Timeline.Duration,
		Segments:   len(plan.Timeline.Program.Segments),
	})
	if err := ledger.Save(e.Paths.StateFile); err != nil {
		e.Logger.Warn().Err(err).Str("state", e.Paths.StateFile).Msg("save build state")
	}
	e.Logger.Info().Str("output", plan.Output).Str("build_id", tracklist.BuildID).Msg("build complete")
	return result, nil
}
