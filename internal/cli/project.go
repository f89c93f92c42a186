package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"loopmix/internal/cache"
	"loopmix/internal/config"
	"loopmix/internal/engine"
	"loopmix/internal/logx"
	"loopmix/internal/paths"
	"loopmix/internal/probe"
	"loopmix/internal/render"
	"loopmix/internal/runner"
	"loopmix/internal/tools"
)

// project bundles the resolved paths, configuration and logger for a
// command invocation.
type project struct {
	paths  paths.ProjectPaths
	config config.Config
	logger zerolog.Logger
	closer io.Closer
}

func (p *project) Close() {
	if p != nil && p.closer != nil {
		p.closer.Close()
	}
}

func (p *project) toolOverrides() map[string]string {
	overrides := map[string]string{}
	if path := p.config.Tools.FFmpeg; path != "" {
		overrides["ffmpeg"] = config.ResolvePath(p.paths.Root, path)
	}
	if path := p.config.Tools.FFprobe; path != "" {
		overrides["ffprobe"] = config.ResolvePath(p.paths.Root, path)
	}
	return overrides
}

func loadProject(cmd *cobra.Command) (*project, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, err
	}
	if err := ensureProjectDirs(pp); err != nil {
		return nil, err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	pp = paths.ApplyConfig(pp, cfg)
	if err := pp.EnsureMetaDirs(); err != nil {
		return nil, err
	}

	var console io.Writer
	if verbose {
		console = cmd.ErrOrStderr()
	}
	logger, closer, err := logx.New(pp, console)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("command", cmd.CommandPath()).Msg("start")
	return &project{paths: pp, config: cfg, logger: logger, closer: closer}, nil
}

func ensureProjectDirs(pp paths.ProjectPaths) error {
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return fmt.Errorf("project directory does not exist: %s", pp.Root)
	}
	return nil
}

// boundaries resolves ffmpeg/ffprobe and wires the probe and transcode
// services. Tests replace it with fakes.
var boundaries = func(_ context.Context, p *project) (engine.Prober, engine.Transcoder, string, error) {
	det := tools.Detector{Runner: runner.CmdRunner{}, Overrides: p.toolOverrides()}
	ffmpeg, ffprobe, err := det.Require()
	if err != nil {
		return nil, nil, "", err
	}
	prober := cache.NewProber(probe.New(runner.CmdRunner{}, ffprobe, p.logger), p.paths.ProbeCache, p.logger)
	svc := render.NewService(runner.CmdRunner{}, p.paths.LogsDir, p.logger)
	return prober, svc, ffmpeg, nil
}

func newEngine(ctx context.Context, p *project) (*engine.Engine, error) {
	prober, transcoder, ffmpeg, err := boundaries(ctx, p)
	if err != nil {
		return nil, err
	}
	return &engine.Engine{
		Config:     p.config,
		Paths:      p.paths,
		Prober:     prober,
		Transcoder: transcoder,
		FFmpeg:     ffmpeg,
		Logger:     p.logger,
	}, nil
}
