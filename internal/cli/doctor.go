package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"loopmix/internal/config"
	"loopmix/internal/mix"
	"loopmix/internal/paths"
	"loopmix/internal/tools"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check project health",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	if err := ensureProjectDirs(pp); err != nil {
		return err
	}

	cfg, cfgErr := config.Load(pp.ConfigFile)
	if cfgErr == nil {
		pp = paths.ApplyConfig(pp, cfg)
	}

	p := &project{paths: pp, config: cfg}
	checks := []healthCheck{checkTools(cmd, p), checkConfig(pp, cfg, cfgErr)}
	if cfgErr != nil {
		return writeDoctorResult(cmd, pp.Root, checks)
	}
	checks = append(checks, checkPlaylist(pp, cfg), checkBuilds(pp))
	return writeDoctorResult(cmd, pp.Root, checks)
}

func checkTools(cmd *cobra.Command, p *project) healthCheck {
	statuses, err := tools.Detect(cmd.Context(), p.toolOverrides())
	if err != nil {
		return healthCheck{Name: "Tools", Status: "error", Summary: err.Error()}
	}
	var info, problems []string
	for _, st := range statuses {
		if st.Satisfied {
			info = append(info, strings.TrimSpace(st.Tool+" "+st.Version))
			continue
		}
		problems = append(problems, fmt.Sprintf("%s: %s", st.Tool, st.Error))
	}
	if len(problems) > 0 {
		return healthCheck{Name: "Tools", Status: "error", Summary: strings.Join(problems, ", ")}
	}
	return healthCheck{Name: "Tools", Status: "ok", Summary: strings.Join(info, ", ")}
}

func checkConfig(pp paths.ProjectPaths, cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}
	var warnings, errs int
	var first string
	for _, v := range cfg.ValidateStrict(pp.Root) {
		switch v.Level {
		case "warning":
			warnings++
		case "error":
			errs++
		}
		if first == "" {
			first = v.Message
		}
	}
	summary := fmt.Sprintf("target %s, overlap %ss, curve %s", cfg.Mix.Target, mix.FormatSeconds(cfg.Mix.OverlapSec), cfg.Mix.Curve)
	switch {
	case errs > 0:
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%d errors; %s", errs, first)}
	case warnings > 0:
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", summary, warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: summary}
}

func checkPlaylist(pp paths.ProjectPaths, cfg config.Config) healthCheck {
	entries, results := validatePlaylist(pp, cfg)
	if len(results) > 0 {
		return healthCheck{Name: "Playlist", Status: "error", Summary: fmt.Sprintf("%d problems; %s", len(results), results[0].Message)}
	}
	return healthCheck{Name: "Playlist", Status: "ok", Summary: fmt.Sprintf("%d clips", len(entries))}
}

func checkBuilds(pp paths.ProjectPaths) healthCheck {
	entries, err := loadStatusEntries(pp)
	if err != nil {
		return healthCheck{Name: "Builds", Status: "warning", Summary: "could not load build state"}
	}
	if len(entries) == 0 {
		return healthCheck{Name: "Builds", Status: "ok", Summary: "none recorded"}
	}
	missing := 0
	for _, e := range entries {
		if !e.Exists {
			missing++
		}
	}
	if missing > 0 {
		return healthCheck{Name: "Builds", Status: "warning", Summary: fmt.Sprintf("%d of %d outputs missing", missing, len(entries))}
	}
	return healthCheck{Name: "Builds", Status: "ok", Summary: fmt.Sprintf("%d recorded, latest %s", len(entries), entries[0].Output)}
}

func writeDoctorResult(cmd *cobra.Command, projectRoot string, checks []healthCheck) error {
	if outputJSON {
		return writeJSON(cmd, checks)
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("PROJECT HEALTH:")+" "+projectRoot)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-10s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}
	return nil
}
