package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"loopmix/internal/mix"
	"loopmix/internal/probe"
	"loopmix/internal/tui"
)

var probeNoProgress bool

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe every playlist clip and report durations",
		RunE:  runProbe,
	}
	cmd.Flags().BoolVar(&probeNoProgress, "no-progress", false, "Disable interactive progress output")
	return cmd
}

type probeClipJSON struct {
	Position int     `json:"position"`
	Path     string  `json:"path"`
	Group    string  `json:"group,omitempty"`
	Title    string  `json:"title,omitempty"`
	Artist   string  `json:"artist,omitempty"`
	Duration float64 `json:"duration_s"`
}

type probeJSON struct {
	Project string          `json:"project"`
	Clips   []probeClipJSON `json:"clips"`
	Total   float64         `json:"total_s"`
	Cycle   float64         `json:"cycle_s,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func runProbe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	eng, err := newEngine(ctx, p)
	if err != nil {
		return err
	}
	clips, err := eng.LoadClips()
	if err != nil {
		return err
	}

	opts := probe.Options{Concurrency: p.config.Render.ProbeConcurrency, ReadTags: true}
	var probed []mix.Clip
	out := cmd.OutOrStdout()
	switch tui.DetectMode(out, probeNoProgress, outputJSON) {
	case tui.ModeTUI:
		err = tui.RunWithWork(out, tui.NewProbeModel(clips), func(send func(tea.Msg)) error {
			opts.Reporter = tui.NewProbeReporter(send)
			var probeErr error
			probed, probeErr = probe.ProbeAll(ctx, eng.Prober, clips, opts)
			return probeErr
		})
	case tui.ModePlain:
		opts.Reporter = tui.NewLineReporter(out)
		probed, err = probe.ProbeAll(ctx, eng.Prober, clips, opts)
	default:
		probed, err = probe.ProbeAll(ctx, eng.Prober, clips, opts)
	}
	if err != nil {
		if outputJSON {
			_ = writeJSON(cmd, probeJSON{Project: p.paths.Root, Error: err.Error()})
		}
		return err
	}

	pl, err := mix.NewPlaylist(probed)
	if err != nil {
		return err
	}
	var cycle float64
	var cycleErr error
	if xf, err := p.config.Crossfade(); err == nil {
		cycle, cycleErr = mix.CycleDuration(pl, xf.Overlap)
	}

	if outputJSON {
		payload := probeJSON{Project: p.paths.Root, Total: pl.TotalDuration(), Cycle: cycle}
		for _, c := range pl.Clips() {
			payload.Clips = append(payload.Clips, probeClipJSON{
				Position: c.Position,
				Path:     c.Path,
				Group:    c.Group,
				Title:    c.Title,
				Artist:   c.Artist,
				Duration: c.Duration,
			})
		}
		payload.Error = errorString(cycleErr)
		return writeJSON(cmd, payload)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tGROUP\tDURATION\tLABEL\tPATH")
	for _, c := range pl.Clips() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			c.Position+1, tui.NonEmptyOrDash(c.Group), mix.FormatSeconds(c.Duration)+"s", c.Label(), c.Path)
	}
	tw.Flush()

	fmt.Fprintf(out, "\nTotal: %s", mix.HumanDuration(pl.TotalDuration()))
	if cycle > 0 {
		fmt.Fprintf(out, "  cycle with overlap: %s", mix.HumanDuration(cycle))
	}
	fmt.Fprintln(out)
	if cycleErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", cycleErr)
	}
	return nil
}
