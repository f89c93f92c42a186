package cli

import (
	"github.com/spf13/cobra"

	"loopmix/internal/config"
	"loopmix/internal/engine"
)

// mixFlags are the per-run overrides shared by build and plan.
type mixFlags struct {
	target     string
	overlap    float64
	curve      string
	fadeIn     float64
	fadeOut    float64
	gain       float64
	output     string
	timeout    string
	stamp      bool
	noProgress bool
}

func (f *mixFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.target, "target", "", "Target duration: auto, test, seconds or a duration like 3h")
	flags.Float64Var(&f.overlap, "overlap", 0, "Crossfade overlap in seconds")
	flags.StringVar(&f.curve, "curve", "", "Crossfade curve (tri, qsin, hsin, exp, log, ...)")
	flags.Float64Var(&f.fadeIn, "fade-in", 0, "Fade-in length in seconds")
	flags.Float64Var(&f.fadeOut, "fade-out", 0, "Fade-out length in seconds")
	flags.Float64Var(&f.gain, "gain", 0, "Linear gain applied to every clip")
	flags.StringVarP(&f.output, "output", "o", "", "Output file name or path")
	flags.StringVar(&f.timeout, "timeout", "", "Transcode timeout, e.g. 6h; none disables it")
	flags.BoolVar(&f.stamp, "stamp", false, "Write into a timestamped output folder")
	flags.BoolVar(&f.noProgress, "no-progress", false, "Disable interactive progress output")
}

// apply copies flags the user set onto cfg.
func (f *mixFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("target") {
		cfg.Mix.Target = f.target
	}
	if changed("overlap") {
		cfg.Mix.OverlapSec = f.overlap
	}
	if changed("curve") {
		cfg.Mix.Curve = f.curve
	}
	if changed("fade-in") {
		cfg.Mix.FadeInSec = f.fadeIn
	}
	if changed("fade-out") {
		cfg.Mix.FadeOutSec = f.fadeOut
	}
	if changed("gain") {
		cfg.Mix.Gain = f.gain
	}
	if changed("timeout") {
		cfg.Render.Timeout = f.timeout
	}
}

// planOptions returns the engine output options selected by the flags.
func (f *mixFlags) planOptions() engine.PlanOptions {
	return engine.PlanOptions{Output: f.output, Stamp: f.stamp}
}
