package mix

// CycleDuration returns the net length of one pass through the playlist once
// the overlap of every internal transition is removed.
func CycleDuration(p Playlist, overlap float64) (float64, error) {
	if p.Len() == 0 {
		return 0, &InvalidPlaylistError{Reason: "playlist is empty"}
	}
	if err := ValidateClipDurations(p, overlap); err != nil {
		return 0, err
	}

	k := p.Len()
	if k == 1 {
		return p.Clip(0).Duration, nil
	}

	cycle := roundSeconds(p.TotalDuration() - overlap*float64(k-1))
	if cycle <= 0 {
		return 0, &InvalidPlaylistError{Reason: "cycle duration is not positive", Overlap: overlap}
	}
	return cycle, nil
}

// ValidateClipDurations rejects the first clip that is too short to carry
// the configured overlap.
func ValidateClipDurations(p Playlist, overlap float64) error {
	for _, c := range p.clips {
		if c.Duration <= overlap {
			return &InvalidPlaylistError{
				Reason:   "is not longer than the crossfade overlap",
				Clip:     c.Path,
				Position: c.Position,
				Duration: c.Duration,
				Overlap:  overlap,
			}
		}
	}
	return nil
}
