package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"loopmix/internal/render"
	"loopmix/internal/tui"
)

type planFlags struct {
	mixFlags
	write bool
}

func newPlanCmd() *cobra.Command {
	var flags planFlags
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Probe clips and print the crossfade graph without rendering",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, &flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.write, "write", false, "Also write graph.txt, filter_complex.txt and ffmpeg_command.txt")
	return cmd
}

type planJSON struct {
	Project     string   `json:"project"`
	Output      string   `json:"output"`
	Target      float64  `json:"target_s"`
	TargetMode  string   `json:"target_mode"`
	Cycle       float64  `json:"cycle_s"`
	Repeats     int      `json:"repeats"`
	Extended    bool     `json:"extended"`
	Segments    int      `json:"segments"`
	Transitions int      `json:"transitions"`
	Audible     int      `json:"audible_segments"`
	RawDuration float64  `json:"raw_duration_s"`
	FilterBytes int      `json:"filter_complex_bytes"`
	FilterFile  string   `json:"filter_script,omitempty"`
	Args        []string `json:"args"`
	Warnings    []string `json:"warnings,omitempty"`
	Diagnostics string   `json:"diagnostics,omitempty"`
}

func runPlan(cmd *cobra.Command, flags *planFlags) error {
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

	mode := tui.DetectMode(cmd.OutOrStdout(), flags.noProgress, outputJSON)
	plan, err := planWithProgress(ctx, cmd, eng, mode, flags.planOptions())
	if err != nil {
		return err
	}

	var diagDir string
	if flags.write {
		diag, err := render.WriteDiagnostics(plan.DiagDir, plan.Timeline, plan.Invocation)
		if err != nil {
			return err
		}
		diagDir = diag.Dir
	}

	if outputJSON {
		tl := plan.Timeline
		return writeJSON(cmd, planJSON{
			Project:     p.paths.Root,
			Output:      plan.Output,
			Target:      tl.Duration,
			TargetMode:  string(plan.Target.Mode),
			Cycle:       plan.Cycle,
			Repeats:     plan.Repeats.Repeats,
			Extended:    plan.Repeats.Extended,
			Segments:    len(tl.Program.Segments),
			Transitions: len(tl.Program.Transitions),
			Audible:     tl.Audible,
			RawDuration: tl.Program.Duration,
			FilterBytes: len(plan.Invocation.Graph),
			FilterFile:  plan.Invocation.ScriptPath,
			Args:        plan.Invocation.Args,
			Warnings:    plan.Warnings(),
			Diagnostics: diagDir,
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), plan.Description)
	if diagDir != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\ndiagnostics written to %s\n", diagDir)
	}
	return nil
}
