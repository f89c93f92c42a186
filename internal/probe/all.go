package probe

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"loopmix/internal/mix"
)

// Reporter receives per-clip probe progress. Calls may arrive from several
// goroutines.
type Reporter interface {
	Start(index int, clip mix.Clip)
	Complete(index int, clip mix.Clip, err error)
}

// Options tune ProbeAll.
type Options struct {
	Concurrency int
	Reporter    Reporter
	// ReadTags fills missing Title/Artist labels from ID3 tags.
	ReadTags bool
}

// ProbeAll probes every clip in parallel and returns them in input order with
// Duration set. The first failure cancels outstanding probes and is returned.
func ProbeAll(ctx context.Context, prober Prober, clips []mix.Clip, opts Options) ([]mix.Clip, error) {
	if prober == nil {
		return nil, fmt.Errorf("probe: no prober configured")
	}
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	out := make([]mix.Clip, len(clips))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, clip := range clips {
		i, clip := i, clip
		g.Go(func() error {
			if opts.Reporter != nil {
				opts.Reporter.Start(i, clip)
			}
			duration, err := prober.Probe(ctx, clip.Path)
			if err == nil {
				clip.Duration = duration
				if opts.ReadTags && (clip.Title == "" || clip.Artist == "") {
					if tags, tagErr := ReadTags(clip.Path); tagErr == nil {
						clip = tags.Apply(clip)
					}
				}
				out[i] = clip
			}
			if opts.Reporter != nil {
				opts.Reporter.Complete(i, clip, err)
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
