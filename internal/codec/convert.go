package codec

import (
	"math"

	"mask-hysteresis/internal/format"
	"mask-hysteresis/internal/frame"
)

// Convert returns fr with its samples rescaled to a new precision. Values
// map through the normalized range: v/peak in, n*peak out. Integer
// targets are rounded and clamped to [0, peak]; a value above zero never
// rounds down to zero, so set mask pixels stay set. fr is returned
// unchanged if it already has the requested precision.
func Convert(fr *frame.Frame, sample format.SampleType, bits int) *frame.Frame {
	src := fr.Format()
	dstFormat := src.WithDepth(sample, bits)
	if dstFormat == src {
		return fr
	}

	dst := frame.New(dstFormat, fr.Width(), fr.Height())
	for p := 0; p < fr.NumPlanes(); p++ {
		norm := readNorm(fr, p)
		writeNorm(dst, p, norm)
	}
	return dst
}

func readNorm(fr *frame.Frame, p int) []float64 {
	f := fr.Format()
	peak := f.Peak()
	switch {
	case f.Sample == format.Float:
		return planeNorm(frame.PlaneOf[float32](fr, p), peak)
	case f.BytesPerSample() == 1:
		return planeNorm(frame.PlaneOf[uint8](fr, p), peak)
	default:
		return planeNorm(frame.PlaneOf[uint16](fr, p), peak)
	}
}

func writeNorm(fr *frame.Frame, p int, norm []float64) {
	f := fr.Format()
	peak := f.Peak()
	switch {
	case f.Sample == format.Float:
		setNorm(frame.PlaneOf[float32](fr, p), peak, false, norm)
	case f.BytesPerSample() == 1:
		setNorm(frame.PlaneOf[uint8](fr, p), peak, true, norm)
	default:
		setNorm(frame.PlaneOf[uint16](fr, p), peak, true, norm)
	}
}

func planeNorm[T frame.Sample](pl frame.Plane[T], peak float64) []float64 {
	out := make([]float64, pl.Width*pl.Height)
	for y := 0; y < pl.Height; y++ {
		for x, v := range pl.Row(y) {
			out[y*pl.Width+x] = float64(v) / peak
		}
	}
	return out
}

func setNorm[T frame.Sample](pl frame.Plane[T], peak float64, integer bool, norm []float64) {
	for y := 0; y < pl.Height; y++ {
		row := pl.Row(y)
		for x := range row {
			n := norm[y*pl.Width+x]
			if !integer {
				row[x] = T(n * peak)
				continue
			}
			if math.IsNaN(n) {
				n = 0
			}
			v := math.Round(min(max(n, 0), 1) * peak)
			if v == 0 && n > 0 {
				v = 1
			}
			row[x] = T(v)
		}
	}
}

// ExpandGray returns a Gray frame as an RGB frame of the same precision
// with the gray plane copied into all three planes. Other frames are
// returned unchanged.
func ExpandGray(fr *frame.Frame) *frame.Frame {
	f := fr.Format()
	if f.Family != format.Gray {
		return fr
	}
	f.Family = format.RGB
	dst := frame.New(f, fr.Width(), fr.Height())
	for p := 0; p < dst.NumPlanes(); p++ {
		switch {
		case f.Sample == format.Float:
			copyPlane(frame.PlaneOf[float32](dst, p), frame.PlaneOf[float32](fr, 0))
		case f.BytesPerSample() == 1:
			copyPlane(frame.PlaneOf[uint8](dst, p), frame.PlaneOf[uint8](fr, 0))
		default:
			copyPlane(frame.PlaneOf[uint16](dst, p), frame.PlaneOf[uint16](fr, 0))
		}
	}
	return dst
}

func copyPlane[T frame.Sample](dst, src frame.Plane[T]) {
	for y := 0; y < dst.Height; y++ {
		copy(dst.Row(y), src.Row(y))
	}
}
