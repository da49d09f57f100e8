// Package hysteresis grows the mask of a seed clip into the connected
// regions of a candidate clip.
//
// For every processed plane, each 8-connected component of set candidate
// pixels is copied to the output if and only if one of its pixels is also
// set in the seed plane. This is the classic hysteresis threshold: the seed
// is the strict mask, the candidate the loose one. Planes that are not
// processed are copied from the seed frame unchanged.
//
// Both clips are expected to hold bi-level masks: for float formats all
// planes are in the 0-1 range. Any value above zero counts as set.
package hysteresis

import (
	"fmt"

	"mask-hysteresis/internal/format"
	"mask-hysteresis/internal/frame"
)

// Stats holds the per-plane results of one processed frame. Entries for
// planes that were copied through are zero.
type Stats struct {
	Planes []PlaneStats
}

// Pixels returns the number of set output pixels across processed planes.
func (s Stats) Pixels() int {
	n := 0
	for _, p := range s.Planes {
		n += p.Pixels
	}
	return n
}

// Components returns the number of surviving components across processed planes.
func (s Stats) Components() int {
	n := 0
	for _, p := range s.Planes {
		n += p.Components
	}
	return n
}

// Filter holds the validated configuration for one seed/candidate clip pair.
// It is immutable after New and safe for concurrent use.
type Filter struct {
	seed      format.VideoInfo
	candidate format.VideoInfo
	peak      float64
	process   []bool
}

// New validates the two clips and the plane selection. All checks happen
// here; Process does not re-validate configuration.
func New(seed, candidate format.VideoInfo, planes []int) (*Filter, error) {
	if err := format.CheckSupported(seed); err != nil {
		return nil, fmt.Errorf("hysteresis: %w", err)
	}
	if err := format.CheckSame(seed, candidate); err != nil {
		return nil, fmt.Errorf("hysteresis: both clips must have the same dimensions and format: %w", err)
	}
	process, err := NormalizePlanes(planes, seed.Format.NumPlanes())
	if err != nil {
		return nil, fmt.Errorf("hysteresis: %w", err)
	}

	f := &Filter{
		seed:      seed,
		candidate: candidate,
		peak:      seed.Format.Peak(),
		process:   process,
	}
	Logger().Info("hysteresis: filter ready",
		"format", seed.Format.Name(),
		"width", seed.Width,
		"height", seed.Height,
		"frames", seed.NumFrames,
		"candidate_frames", candidate.NumFrames,
		"planes", process,
	)
	return f, nil
}

// Info returns the output clip description, which is the seed clip's.
func (f *Filter) Info() format.VideoInfo { return f.seed }

// Peak returns the value written for set output pixels.
func (f *Filter) Peak() float64 { return f.peak }

// Planes returns a copy of the per-plane processing flags.
func (f *Filter) Planes() []bool {
	out := make([]bool, len(f.process))
	copy(out, f.process)
	return out
}

// CandidateFrame returns the candidate frame that pairs with output frame n.
// A shorter candidate clip repeats its last frame.
func (f *Filter) CandidateFrame(n int) int {
	return min(max(n, 0), f.candidate.NumFrames-1)
}

// Process computes one output frame. seed and candidate must match the
// clips the filter was built for.
func (f *Filter) Process(seed, candidate *frame.Frame) (*frame.Frame, Stats, error) {
	if err := f.checkFrame("seed", seed); err != nil {
		return nil, Stats{}, err
	}
	if err := f.checkFrame("candidate", candidate); err != nil {
		return nil, Stats{}, err
	}

	dst := frame.New(f.seed.Format, f.seed.Width, f.seed.Height)
	var st Stats
	switch {
	case f.seed.Format.Sample == format.Float:
		st = processFrame[float32](f, seed, candidate, dst)
	case f.seed.Format.BytesPerSample() == 1:
		st = processFrame[uint8](f, seed, candidate, dst)
	default:
		st = processFrame[uint16](f, seed, candidate, dst)
	}
	return dst, st, nil
}

func (f *Filter) checkFrame(name string, fr *frame.Frame) error {
	if fr == nil {
		return fmt.Errorf("hysteresis: %w: nil %s frame", ErrFormatMismatch, name)
	}
	if fr.Format() != f.seed.Format || fr.Width() != f.seed.Width || fr.Height() != f.seed.Height {
		return fmt.Errorf("hysteresis: %w: %s frame is %s %dx%d, clip is %s %dx%d",
			ErrFormatMismatch, name, fr.Format().Name(), fr.Width(), fr.Height(),
			f.seed.Format.Name(), f.seed.Width, f.seed.Height)
	}
	return nil
}

func processFrame[T frame.Sample](f *Filter, seed, candidate, dst *frame.Frame) Stats {
	peak := T(f.peak)
	st := Stats{Planes: make([]PlaneStats, len(f.process))}
	for p, on := range f.process {
		out := frame.PlaneOf[T](dst, p)
		if !on {
			CopyPlane(out, frame.PlaneOf[T](seed, p))
			continue
		}
		st.Planes[p] = Fill(out, frame.PlaneOf[T](seed, p), frame.PlaneOf[T](candidate, p), peak)
		Logger().Debug("hysteresis: plane done",
			"plane", p,
			"components", st.Planes[p].Components,
			"pixels", st.Planes[p].Pixels,
		)
	}
	return st
}
