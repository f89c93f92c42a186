package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"loopmix/internal/config"
	"loopmix/internal/logx"
	"loopmix/internal/paths"
	"loopmix/pkg/playlist"
)

const playlistTemplate = `# Clips play in this order and the whole list loops until the target.
# Entries are paths (relative to this file) or maps with extra labels.
clips:
#  - clips/first.mp3
#  - path: clips/second.mp3
#    title: Second Song
#    artist: Someone
`

var (
	initHalves   bool
	initPlaylist bool
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a loopmix project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
	cmd.Flags().BoolVar(&initHalves, "halves", false, "Use the clips/half_1 and clips/half_2 layout")
	cmd.Flags().BoolVar(&initPlaylist, "playlist", false, "Scaffold playlist.yaml instead of scanning clips/")
	return cmd
}

func resolveInitDir(projectFlag string, args []string) (string, error) {
	if projectFlag != "" {
		return projectFlag, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	if len(args) > 0 {
		if args[0] == "." {
			return cwd, nil
		}
		return filepath.Join(cwd, args[0]), nil
	}

	return nextAvailableDir(cwd)
}

func nextAvailableDir(base string) (string, error) {
	for i := 1; ; i++ {
		candidate := filepath.Join(base, fmt.Sprintf("loopmix-%d", i))
		exists, err := paths.DirExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	if initHalves && initPlaylist {
		return fmt.Errorf("--halves and --playlist are mutually exclusive")
	}
	dir, err := resolveInitDir(projectDir, args)
	if err != nil {
		return err
	}

	pp, err := paths.Resolve(dir)
	if err != nil {
		return err
	}
	if err := pp.EnsureRoot(); err != nil {
		return err
	}
	if err := pp.EnsureMetaDirs(); err != nil {
		return err
	}

	logger, closer, err := logx.New(pp, nil)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info().Str("project", pp.Root).Msg("init")

	cfg := config.Default()
	switch {
	case initPlaylist:
		cfg.Playlist.File = "playlist.yaml"
	case initHalves:
		cfg.Playlist.Halves = true
	}
	cfg.ApplyDefaults()

	var created []string
	if initPlaylist {
		if err := ensureFile(filepath.Join(pp.Root, cfg.Playlist.File), []byte(playlistTemplate), &created, logger); err != nil {
			return err
		}
	}
	if err := ensureClipDirs(pp, cfg, &created, logger); err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := ensureFile(pp.ConfigFile, data, &created, logger); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(created) == 0 {
		fmt.Fprintf(out, "Project already initialized at %s\n", pp.Root)
		return nil
	}
	fmt.Fprintf(out, "Initialized project at %s\n", pp.Root)
	for _, entry := range created {
		rel, err := filepath.Rel(pp.Root, entry)
		if err != nil {
			rel = entry
		}
		fmt.Fprintf(out, "  created %s\n", rel)
	}
	fmt.Fprintf(out, "Add audio files and a looping visual (%s), then run `loopmix build`.\n", cfg.Visual.File)
	return nil
}

func ensureClipDirs(pp paths.ProjectPaths, cfg config.Config, created *[]string, logger zerolog.Logger) error {
	base := filepath.Join(pp.Root, config.DefaultClipsDir)
	dirs := []string{base}
	if cfg.Playlist.Halves {
		dirs = append(dirs, filepath.Join(base, playlist.FirstHalfDir), filepath.Join(base, playlist.SecondHalfDir))
	}
	for _, dir := range dirs {
		exists, err := paths.DirExists(dir)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		logger.Info().Str("dir", dir).Msg("created clips dir")
		*created = append(*created, dir)
	}
	return nil
}

func ensureFile(path string, data []byte, created *[]string, logger zerolog.Logger) error {
	exists, err := paths.FileExists(path)
	if err != nil {
		return fmt.Errorf("check %s: %w", filepath.Base(path), err)
	}
	if exists {
		logger.Info().Str("file", path).Msg("exists")
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	logger.Info().Str("file", path).Msg("created")
	*created = append(*created, path)
	return nil
}
