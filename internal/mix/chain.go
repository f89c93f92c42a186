package mix

// DefaultMaxSegments bounds the flattened chain length.
const DefaultMaxSegments = 5000

// Segment is one clip instance placed on the raw program timeline.
type Segment struct {
	Position         int
	Repeat           int
	PlaylistPosition int
	Clip             Clip
	Start            float64
	End              float64
}

// Transition is the overlap window where segment From blends into To.
type Transition struct {
	Index   int
	From    int
	To      int
	Start   float64
	End     float64
	Overlap float64
	Curve   Curve
}

// Program is the raw, untrimmed timeline produced by the crossfade chain.
type Program struct {
	Segments    []Segment
	Transitions []Transition
	Repeats     int
	Clips       int
	Crossfade   CrossfadeParams
	Gain        float64
	Format      SampleFormat
	Duration    float64
}

// BuildProgram folds repeats copies of the playlist into one continuous
// timeline. Each instance after the first starts one overlap before the end
// of everything already placed; repeat seams are treated like any other
// transition.
func BuildProgram(p Playlist, repeats int, xf CrossfadeParams, gain float64, format SampleFormat, limit int) (Program, error) {
	if p.Len() == 0 {
		return Program{}, &InvalidPlaylistError{Reason: "playlist is empty"}
	}
	if repeats < 1 {
		return Program{}, &TargetTooSmallError{Reason: "repeat count must be at least 1"}
	}
	if err := xf.Validate(); err != nil {
		return Program{}, err
	}
	if err := ValidateGain(gain); err != nil {
		return Program{}, err
	}
	if err := format.Validate(); err != nil {
		return Program{}, err
	}
	if err := ValidateClipDurations(p, xf.Overlap); err != nil {
		return Program{}, err
	}
	if limit <= 0 {
		limit = DefaultMaxSegments
	}

	k := p.Len()
	n := repeats * k
	if n > limit || n/k != repeats {
		return Program{}, &ProgramTooLargeError{Segments: n, Repeats: repeats, Limit: limit}
	}

	curve, _ := ParseCurve(string(xf.Curve))
	xf.Curve = curve

	segments := make([]Segment, 0, n)
	var transitions []Transition
	if n > 1 {
		transitions = make([]Transition, 0, n-1)
	}

	running := 0.0
	for i := 0; i < n; i++ {
		clip := p.Clip(i % k)
		start := 0.0
		if i > 0 {
			start = roundSeconds(running - xf.Overlap)
			transitions = append(transitions, Transition{
				Index:   i,
				From:    i - 1,
				To:      i,
				Start:   start,
				End:     roundSeconds(start + xf.Overlap),
				Overlap: xf.Overlap,
				Curve:   curve,
			})
		}
		end := roundSeconds(start + clip.Duration)
		segments = append(segments, Segment{
			Position:         i,
			Repeat:           i / k,
			PlaylistPosition: i % k,
			Clip:             clip,
			Start:            start,
			End:              end,
		})
		running = end
	}

	return Program{
		Segments:    segments,
		Transitions: transitions,
		Repeats:     repeats,
		Clips:       k,
		Crossfade:   xf,
		Gain:        gain,
		Format:      format,
		Duration:    running,
	}, nil
}

// Len returns the number of clip instances in the chain.
func (p Program) Len() int { return len(p.Segments) }
