package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"loopmix/internal/config"
	"loopmix/internal/paths"
	"loopmix/internal/tools"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Show resolved ffmpeg/ffprobe paths and versions",
		RunE:  runTools,
	}
}

func runTools(cmd *cobra.Command, _ []string) error {
	overrides := map[string]string{}
	if pp, err := paths.Resolve(projectDir); err == nil {
		if cfg, err := config.Load(pp.ConfigFile); err == nil {
			p := &project{paths: pp, config: cfg}
			overrides = p.toolOverrides()
		}
	}

	statuses, err := tools.Detect(cmd.Context(), overrides)
	if err != nil {
		return err
	}

	if outputJSON {
		if err := writeJSON(cmd, statuses); err != nil {
			return err
		}
	} else {
		printStatusTable(cmd, statuses)
	}

	for _, st := range statuses {
		if !st.Satisfied {
			return errors.New("required tools are missing or too old")
		}
	}
	return nil
}

func printStatusTable(cmd *cobra.Command, statuses []tools.Status) {
	out := cmd.OutOrStdout()
	if len(statuses) == 0 {
		fmt.Fprintln(out, "(no tool statuses)")
		return
	}

	rows := make([]tools.Status, len(statuses))
	copy(rows, statuses)
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Tool < rows[j].Tool
	})

	fmt.Fprintf(out, "%-10s %-8s %-12s %-9s %-7s %s\n", "Tool", "Source", "Version", "Minimum", "OK", "Path")
	for _, st := range rows {
		ok := "no"
		if st.Satisfied {
			ok = "yes"
		}
		path := st.Path
		if path == "" {
			path = "(missing)"
		}
		fmt.Fprintf(out, "%-10s %-8s %-12s %-9s %-7s %s\n", st.Tool, st.Source, st.Version, st.Minimum, ok, path)
		ids := make([]string, 0, len(st.Paths))
		for id := range st.Paths {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if p := st.Paths[id]; p != st.Path {
				fmt.Fprintf(out, "  %s: %s\n", id, p)
			}
		}
		if st.Error != "" {
			fmt.Fprintf(out, "  error: %s\n", st.Error)
		}
		for _, note := range st.Notes {
			fmt.Fprintf(out, "  hint: %s\n", note)
		}
	}
}
