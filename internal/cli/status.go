package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"loopmix/internal/config"
	"loopmix/internal/mix"
	"loopmix/internal/paths"
	"loopmix/internal/render/state"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List recorded builds and whether their outputs still exist",
		RunE:  runStatus,
	}
}

type statusEntry struct {
	Output     string    `json:"output"`
	Exists     bool      `json:"exists"`
	BuildID    string    `json:"build_id"`
	RenderedAt time.Time `json:"rendered_at"`
	DurationS  float64   `json:"duration_s"`
	Segments   int       `json:"segments"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	if err := ensureProjectDirs(pp); err != nil {
		return err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}
	pp = paths.ApplyConfig(pp, cfg)

	entries, err := loadStatusEntries(pp)
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(cmd, struct {
			Project string        `json:"project"`
			Builds  []statusEntry `json:"builds"`
		}{pp.Root, entries})
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No builds recorded yet.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OUTPUT\tDURATION\tSEGMENTS\tRENDERED\tBUILD")
	for _, e := range entries {
		output := e.Output
		if !e.Exists {
			output += " (missing)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			output, mix.HumanDuration(e.DurationS), e.Segments,
			e.RenderedAt.Local().Format("2006-01-02 15:04"), e.BuildID)
	}
	return tw.Flush()
}

func loadStatusEntries(pp paths.ProjectPaths) ([]statusEntry, error) {
	ledger, err := state.Load(pp.StateFile)
	if err != nil {
		return nil, err
	}
	entries := make([]statusEntry, 0, len(ledger.Builds))
	for output, b := range ledger.Builds {
		exists, _ := paths.FileExists(output)
		entries = append(entries, statusEntry{
			Output:     output,
			Exists:     exists,
			BuildID:    b.BuildID,
			RenderedAt: b.RenderedAt,
			DurationS:  b.DurationS,
			Segments:   b.Segments,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RenderedAt.After(entries[j].RenderedAt)
	})
	return entries, nil
}
