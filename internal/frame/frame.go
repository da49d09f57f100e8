package frame

import (
	"fmt"

	"mask-hysteresis/internal/format"
)

// rowAlign is the byte alignment of every plane row.
const rowAlign = 32

// Sample is the set of sample representations a plane can hold.
type Sample interface {
	uint8 | uint16 | float32
}

// Plane is a strided view of one plane of samples. Row y occupies
// Data[y*Stride : y*Stride+Width]; Stride is counted in samples.
type Plane[T Sample] struct {
	Data   []T
	Width  int
	Height int
	Stride int
}

// Row returns the visible samples of row y.
func (p Plane[T]) Row(y int) []T {
	off := y * p.Stride
	return p.Data[off : off+p.Width]
}

// At returns the sample at (x, y).
func (p Plane[T]) At(x, y int) T { return p.Data[y*p.Stride+x] }

// Set stores v at (x, y).
func (p Plane[T]) Set(x, y int, v T) { p.Data[y*p.Stride+x] = v }

// Fill sets every visible sample to v. Row padding is left untouched.
func (p Plane[T]) Fill(v T) {
	for y := 0; y < p.Height; y++ {
		row := p.Row(y)
		for x := range row {
			row[x] = v
		}
	}
}

// Frame owns the sample memory of one image: one slice per plane, in the
// representation selected by its format.
type Frame struct {
	format format.Format
	width  int
	height int
	planes []plane
}

type plane struct {
	u8     []uint8
	u16    []uint16
	f32    []float32
	width  int
	height int
	stride int
}

// New allocates a zeroed frame. Rows are padded to a 32-byte boundary, so
// the stride of a plane is usually larger than its width.
func New(f format.Format, width, height int) *Frame {
	bps := f.BytesPerSample()
	fr := &Frame{
		format: f,
		width:  width,
		height: height,
		planes: make([]plane, f.NumPlanes()),
	}
	for p := range fr.planes {
		w := f.PlaneWidth(p, width)
		h := f.PlaneHeight(p, height)
		rowBytes := (w*bps + rowAlign - 1) / rowAlign * rowAlign
		stride := rowBytes / bps
		pl := plane{width: w, height: h, stride: stride}
		switch bps {
		case 1:
			pl.u8 = make([]uint8, stride*h)
		case 2:
			pl.u16 = make([]uint16, stride*h)
		default:
			pl.f32 = make([]float32, stride*h)
		}
		fr.planes[p] = pl
	}
	return fr
}

// Format returns the frame's sample format.
func (f *Frame) Format() format.Format { return f.format }

// Width returns the width of plane 0.
func (f *Frame) Width() int { return f.width }

// Height returns the height of plane 0.
func (f *Frame) Height() int { return f.height }

// NumPlanes returns the number of planes.
func (f *Frame) NumPlanes() int { return len(f.planes) }

// Stride returns the stride of plane p in samples.
func (f *Frame) Stride(p int) int { return f.planes[p].stride }

// Info returns a single-frame VideoInfo describing f.
func (f *Frame) Info() format.VideoInfo {
	return format.VideoInfo{Format: f.format, Width: f.width, Height: f.height, NumFrames: 1}
}

// PlaneOf returns a typed view of plane p. T must match the frame's sample
// representation; a mismatch panics.
func PlaneOf[T Sample](f *Frame, p int) Plane[T] {
	pl := f.planes[p]
	var data []T
	switch d := any(&data).(type) {
	case *[]uint8:
		*d = pl.u8
	case *[]uint16:
		*d = pl.u16
	case *[]float32:
		*d = pl.f32
	}
	if data == nil {
		panic(fmt.Sprintf("frame: plane %d of %s is not %T", p, f.format.Name(), *new(T)))
	}
	return Plane[T]{Data: data, Width: pl.width, Height: pl.height, Stride: pl.stride}
}

// Equal reports whether a and b have the same format and geometry and
// identical visible samples. Row padding is ignored.
func Equal(a, b *Frame) bool {
	if a.format != b.format || a.width != b.width || a.height != b.height {
		return false
	}
	for p := range a.planes {
		var same bool
		switch a.format.BytesPerSample() {
		case 1:
			same = planesEqual(PlaneOf[uint8](a, p), PlaneOf[uint8](b, p))
		case 2:
			same = planesEqual(PlaneOf[uint16](a, p), PlaneOf[uint16](b, p))
		default:
			same = planesEqual(PlaneOf[float32](a, p), PlaneOf[float32](b, p))
		}
		if !same {
			return false
		}
	}
	return true
}

func planesEqual[T Sample](a, b Plane[T]) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	for y := 0; y < a.Height; y++ {
		ra, rb := a.Row(y), b.Row(y)
		for x := range ra {
			if ra[x] != rb[x] {
				return false
			}
		}
	}
	return true
}
