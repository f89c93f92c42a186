package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"loopmix/internal/engine"
	"loopmix/internal/mix"
	"loopmix/internal/render"
	"loopmix/internal/tui"
)

type buildFlags struct {
	mixFlags
	force  bool
	dryRun bool
}

func newBuildCmd() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Probe clips, plan the mix and render it with ffmpeg",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, &flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.force, "force", false, "Rebuild even if the output is up to date")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Write diagnostics without running ffmpeg")
	return cmd
}

type buildJSON struct {
	Project     string             `json:"project"`
	Output      string             `json:"output,omitempty"`
	Action      string             `json:"action,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	BuildID     string             `json:"build_id,omitempty"`
	Target      float64            `json:"target_s,omitempty"`
	Repeats     int                `json:"repeats,omitempty"`
	Segments    int                `json:"segments,omitempty"`
	Diagnostics render.Diagnostics `json:"diagnostics"`
	Tracklist   string             `json:"tracklist,omitempty"`
	LogPath     string             `json:"log,omitempty"`
	ElapsedMs   int64              `json:"elapsed_ms,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
	Error       string             `json:"error,omitempty"`
}

func runBuild(cmd *cobra.Command, flags *buildFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	defer p.Close()
	flags.apply(cmd, &p.config)

	eng, err := newEngine(ctx, p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	mode := tui.DetectMode(out, flags.noProgress, outputJSON)
	opts := engine.BuildOptions{
		PlanOptions: flags.planOptions(),
		Force:       flags.force,
		DryRun:      flags.dryRun,
	}

	plan, err := planWithProgress(ctx, cmd, eng, mode, opts.PlanOptions)
	if err != nil {
		if outputJSON {
			_ = writeJSON(cmd, buildJSON{Project: p.paths.Root, Error: err.Error()})
		}
		return err
	}
	if mode != tui.ModeJSON {
		printPlanSummary(cmd, plan)
	}

	var status *tui.StatusWriter
	switch mode {
	case tui.ModeTUI:
		status = tui.NewStatusWriter(out)
		eng.RenderReporter = status
	case tui.ModePlain:
		if svc, ok := eng.Transcoder.(*render.Service); ok {
			svc.SetWriters(out, nil)
		}
	}

	res, err := eng.Render(ctx, plan, opts)
	if status != nil {
		status.Stop()
	}

	if outputJSON {
		if jsonErr := writeJSON(cmd, newBuildJSON(p.paths.Root, res, err)); jsonErr != nil {
			return jsonErr
		}
		return err
	}
	if err != nil {
		if res.Diagnostics.Dir != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "diagnostics: %s\n", res.Diagnostics.Dir)
		}
		return err
	}

	switch {
	case flags.dryRun:
		fmt.Fprintf(out, "Dry run: diagnostics written to %s\n", res.Diagnostics.Dir)
	case res.Skipped:
		fmt.Fprintf(out, "Skipped %s (%s); use --force to rebuild\n", res.Plan.Output, res.Decision.Reason)
	default:
		fmt.Fprintf(out, "Built %s in %s\n", res.Plan.Output, res.Transcode.Elapsed.Round(time.Second))
		fmt.Fprintf(out, "  tracklist: %s\n", res.TracklistPath)
	}
	return nil
}

func newBuildJSON(root string, res engine.BuildResult, err error) buildJSON {
	payload := buildJSON{
		Project:     root,
		Action:      res.Decision.Action,
		Reason:      res.Decision.Reason,
		BuildID:     res.BuildID,
		Diagnostics: res.Diagnostics,
		Tracklist:   res.TracklistPath,
		LogPath:     res.Transcode.LogPath,
		ElapsedMs:   res.Transcode.Elapsed.Milliseconds(),
		Error:       errorString(err),
	}
	if res.Plan != nil {
		payload.Output = res.Plan.Output
		payload.Target = res.Plan.Timeline.Duration
		payload.Repeats = res.Plan.Repeats.Repeats
		payload.Segments = len(res.Plan.Timeline.Program.Segments)
		payload.Warnings = res.Plan.Warnings()
	}
	return payload
}

// planWithProgress runs eng.Plan, showing probe progress in the mode's style.
func planWithProgress(ctx context.Context, cmd *cobra.Command, eng *engine.Engine, mode tui.OutputMode, opts engine.PlanOptions) (*engine.Plan, error) {
	switch mode {
	case tui.ModePlain:
		eng.ProbeReporter = tui.NewLineReporter(cmd.OutOrStdout())
	case tui.ModeTUI:
		clips, err := eng.LoadClips()
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var plan *engine.Plan
		err = tui.RunWithWork(cmd.OutOrStdout(), tui.NewProbeModel(clips), func(send func(tea.Msg)) error {
			eng.ProbeReporter = tui.NewProbeReporter(send)
			var planErr error
			plan, planErr = eng.Plan(ctx, opts)
			return planErr
		})
		eng.ProbeReporter = nil
		if errors.Is(err, tui.ErrInterrupted) {
			cancel()
		}
		return plan, err
	}
	return eng.Plan(ctx, opts)
}

func printPlanSummary(cmd *cobra.Command, plan *engine.Plan) {
	out := cmd.OutOrStdout()
	tl := plan.Timeline
	fmt.Fprintf(out, "Clips: %d  cycle: %s  repeats: %d  segments: %d\n",
		plan.Playlist.Len(), mix.HumanDuration(plan.Cycle), plan.Repeats.Repeats, len(tl.Program.Segments))
	fmt.Fprintf(out, "Target: %s (%s)  output: %s\n", mix.HumanDuration(tl.Duration), plan.Target.Describe(), plan.Output)
	for _, w := range plan.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}
