package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"loopmix/internal/probe"
)

// Source is the underlying prober whose results are cached.
type Source interface {
	Probe(ctx context.Context, path string) (float64, error)
	ProbeVisual(ctx context.Context, path string) (probe.VisualInfo, error)
}

// Prober serves clip durations from the index when the file on disk is
// unchanged and falls back to Source otherwise. New results are written
// through to the index file. Safe for concurrent use.
type Prober struct {
	Source Source
	Path   string
	Logger zerolog.Logger
	Now    func() time.Time

	mu    sync.Mutex
	index *Index
}

// NewProber loads the index at path. An unreadable index is logged and
// replaced with an empty one.
func NewProber(src Source, path string, logger zerolog.Logger) *Prober {
	idx, err := Load(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("probe cache unreadable, starting empty")
		idx = newIndex()
	}
	return &Prober{Source: src, Path: path, Logger: logger, index: idx}
}

// Probe returns the clip duration, consulting the cache first.
func (p *Prober) Probe(ctx context.Context, path string) (float64, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}
	info, statErr := os.Stat(path)

	if statErr == nil {
		p.mu.Lock()
		entry, ok := p.index.Get(key)
		p.mu.Unlock()
		if ok && entry.Matches(info) {
			p.Logger.Debug().Str("clip", path).Float64("duration", entry.Duration).Msg("probe cache hit")
			return entry.Duration, nil
		}
	}

	duration, err := p.Source.Probe(ctx, path)
	if err != nil || statErr != nil {
		return duration, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.index.Set(Entry{
		Path:      key,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
		Duration:  duration,
		ProbedAt:  p.now(),
	})
	if err := Save(p.Path, p.index); err != nil {
		p.Logger.Warn().Err(err).Msg("save probe cache")
	}
	return duration, nil
}

// ProbeVisual is not cached.
func (p *Prober) ProbeVisual(ctx context.Context, path string) (probe.VisualInfo, error) {
	return p.Source.ProbeVisual(ctx, path)
}

// Len reports how many clips are cached.
func (p *Prober) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.index.Entries)
}

func (p *Prober) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
