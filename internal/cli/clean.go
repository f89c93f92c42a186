package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"loopmix/internal/cache"
	"loopmix/internal/config"
	"loopmix/internal/paths"
	"loopmix/internal/render/state"
)

var cleanDryRun bool

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove derived artifacts from the project",
	}

	cmd.PersistentFlags().BoolVar(&cleanDryRun, "dry-run", false, "List what would be removed without deleting")

	cmd.AddCommand(&cobra.Command{
		Use:   "logs",
		Short: "Remove all log files",
		RunE:  runCleanLogs,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "partials",
		Short: "Remove leftover .partial outputs from interrupted builds",
		RunE:  runCleanPartials,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "state",
		Short: "Drop build records whose output no longer exists",
		RunE:  runCleanState,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cache",
		Short: "Drop probe cache entries for clips that no longer exist",
		RunE:  runCleanCache,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Remove logs, partial outputs, the probe cache and the build ledger",
		RunE:  runCleanAll,
	})
	return cmd
}

type cleanResult struct {
	Removed    int   `json:"removed"`
	FreedBytes int64 `json:"freed_bytes"`
	Skipped    int   `json:"skipped"`
	Pruned     int   `json:"pruned,omitempty"`
	DryRun     bool  `json:"dry_run"`
}

func runCleanLogs(cmd *cobra.Command, _ []string) error {
	pp, err := resolveCleanPaths()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}
	removeMatching(pp.LogsDir, func(string) bool { return true }, out, &result)
	return writeCleanResult(out, "logs", result)
}

func runCleanPartials(cmd *cobra.Command, _ []string) error {
	pp, err := resolveCleanPaths()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}
	removeMatching(pp.OutputDir, isPartialOutput, out, &result)
	return writeCleanResult(out, "partials", result)
}

func runCleanState(cmd *cobra.Command, _ []string) error {
	pp, err := resolveCleanPaths()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}

	ledger, err := state.Load(pp.StateFile)
	if err != nil {
		return err
	}
	result.Pruned = state.PruneMissing(ledger)
	if !cleanDryRun && result.Pruned > 0 {
		if err := ledger.Save(pp.StateFile); err != nil {
			return fmt.Errorf("save build state: %w", err)
		}
	}
	return writeCleanResult(out, "state", result)
}

func runCleanCache(cmd *cobra.Command, _ []string) error {
	pp, err := resolveCleanPaths()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}

	idx, err := cache.Load(pp.ProbeCache)
	if err != nil {
		return err
	}
	result.Pruned = idx.PruneMissing()
	if !cleanDryRun && result.Pruned > 0 {
		if err := cache.Save(pp.ProbeCache, idx); err != nil {
			return err
		}
	}
	return writeCleanResult(out, "cache", result)
}

func runCleanAll(cmd *cobra.Command, _ []string) error {
	pp, err := resolveCleanPaths()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}

	removeMatching(pp.LogsDir, func(string) bool { return true }, out, &result)
	removeMatching(pp.OutputDir, isPartialOutput, out, &result)
	for _, file := range []string{pp.StateFile, pp.ProbeCache} {
		if exists, err := paths.FileExists(file); err == nil && exists {
			removeFileEntry(file, out, &result)
		}
	}
	return writeCleanResult(out, "all", result)
}

func resolveCleanPaths() (paths.ProjectPaths, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return pp, err
	}
	if err := ensureProjectDirs(pp); err != nil {
		return pp, err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return pp, err
	}
	return paths.ApplyConfig(pp, cfg), nil
}

func isPartialOutput(path string) bool {
	name := filepath.Base(path)
	return strings.Contains(name, ".partial.")
}

func removeMatching(root string, match func(string) bool, out io.Writer, result *cleanResult) {
	exists, err := paths.DirExists(root)
	if err != nil || !exists {
		return
	}
	var files []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if match(path) {
			files = append(files, path)
		}
		return nil
	})
	for _, path := range files {
		removeFileEntry(path, out, result)
	}
}

func removeFileEntry(path string, out io.Writer, result *cleanResult) {
	info, err := os.Stat(path)
	if err != nil {
		result.Skipped++
		return
	}
	size := info.Size()

	if cleanDryRun {
		if !outputJSON {
			fmt.Fprintf(out, "would remove %s (%s)\n", path, formatSize(size))
		}
		result.Removed++
		result.FreedBytes += size
		return
	}

	if err := os.Remove(path); err != nil {
		if !outputJSON {
			fmt.Fprintf(out, "error removing %s: %v\n", path, err)
		}
		result.Skipped++
		return
	}

	result.Removed++
	result.FreedBytes += size
	if !outputJSON {
		fmt.Fprintf(out, "removed %s (%s)\n", path, formatSize(size))
	}
}

func writeCleanResult(out io.Writer, label string, result cleanResult) error {
	if outputJSON {
		return json.NewEncoder(out).Encode(result)
	}

	action := "complete"
	if cleanDryRun {
		action = "(dry run)"
	}
	fmt.Fprintf(out, "\nClean %s %s: %d removed, %s freed, %d skipped", label, action, result.Removed, formatSize(result.FreedBytes), result.Skipped)
	if result.Pruned > 0 {
		fmt.Fprintf(out, ", %d %s records pruned", result.Pruned, label)
	}
	fmt.Fprintln(out)
	return nil
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
