package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"loopmix/internal/config"
	"loopmix/internal/paths"
	"loopmix/pkg/playlist"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check configuration, playlist and visual without probing",
		RunE:  runValidate,
	}
}

type validateJSON struct {
	Project string                    `json:"project"`
	Clips   int                       `json:"clips"`
	Results []config.ValidationResult `json:"results"`
	Valid   bool                      `json:"valid"`
}

func runValidate(cmd *cobra.Command, _ []string) error {
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

	results := cfg.ValidateStrict(pp.Root)
	entries, listResults := validatePlaylist(pp, cfg)
	results = append(results, listResults...)
	valid := !config.HasErrors(results)

	if outputJSON {
		if err := writeJSON(cmd, validateJSON{Project: pp.Root, Clips: len(entries), Results: results, Valid: valid}); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		for _, r := range results {
			fmt.Fprintf(out, "%-7s %s\n", r.Level, r.Message)
		}
		if valid {
			fmt.Fprintf(out, "ok: %d clips, configuration valid\n", len(entries))
		}
	}

	if !valid {
		return errors.New("validation failed")
	}
	return nil
}

// validatePlaylist loads the playlist source and reports each entry problem
// as its own result.
func validatePlaylist(pp paths.ProjectPaths, cfg config.Config) ([]playlist.Entry, []config.ValidationResult) {
	entries, err := playlist.Load(playlist.Source{
		File:       pp.PlaylistFile,
		Dir:        pp.ClipsDir,
		Halves:     cfg.Playlist.Halves,
		Extensions: cfg.Playlist.Extensions,
	})
	if err == nil {
		return entries, validateEntryFiles(entries)
	}

	var verrs playlist.ValidationErrors
	if errors.As(err, &verrs) {
		results := make([]config.ValidationResult, 0, len(verrs))
		for _, issue := range verrs.Issues() {
			results = append(results, config.ValidationResult{Level: "error", Message: "playlist: " + issue.Error()})
		}
		return entries, results
	}
	return nil, []config.ValidationResult{{Level: "error", Message: "playlist: " + err.Error()}}
}

func validateEntryFiles(entries []playlist.Entry) []config.ValidationResult {
	var results []config.ValidationResult
	for _, e := range entries {
		exists, err := paths.FileExists(e.Path)
		if err != nil || !exists {
			results = append(results, config.ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("playlist: clip %s not found: %s", e.Label(), e.Path),
			})
		}
	}
	return results
}
