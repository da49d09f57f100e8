package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for precisions or color families the filter cannot process.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrFormatMismatch is returned when two clips or frames differ in format or geometry.
	ErrFormatMismatch = errors.New("format mismatch")
)

// ColorFamily identifies how the planes of a frame are interpreted.
type ColorFamily int

const (
	Undefined ColorFamily = iota
	Gray
	RGB
	YUV
)

func (c ColorFamily) String() string {
	switch c {
	case Gray:
		return "Gray"
	case RGB:
		return "RGB"
	case YUV:
		return "YUV"
	default:
		return "Undefined"
	}
}

// SampleType is the numeric kind of a sample.
type SampleType int

const (
	Integer SampleType = iota
	Float
)

func (s SampleType) String() string {
	if s == Float {
		return "float"
	}
	return "integer"
}

// Format describes the sample layout shared by every frame of a clip.
type Format struct {
	Family        ColorFamily
	Sample        SampleType
	BitsPerSample int
	SubSamplingW  int // log2 horizontal chroma subsampling
	SubSamplingH  int // log2 vertical chroma subsampling
}

// Common formats.
var (
	Gray8    = Format{Family: Gray, Sample: Integer, BitsPerSample: 8}
	Gray16   = Format{Family: Gray, Sample: Integer, BitsPerSample: 16}
	GrayS    = Format{Family: Gray, Sample: Float, BitsPerSample: 32}
	RGB24    = Format{Family: RGB, Sample: Integer, BitsPerSample: 8}
	RGB48    = Format{Family: RGB, Sample: Integer, BitsPerSample: 16}
	RGBS     = Format{Family: RGB, Sample: Float, BitsPerSample: 32}
	YUV444P8 = Format{Family: YUV, Sample: Integer, BitsPerSample: 8}
	YUV420P8 = Format{Family: YUV, Sample: Integer, BitsPerSample: 8, SubSamplingW: 1, SubSamplingH: 1}
)

// NumPlanes returns 1 for gray formats and 3 for everything else.
func (f Format) NumPlanes() int {
	if f.Family == Gray {
		return 1
	}
	return 3
}

// BytesPerSample returns the storage size of one sample.
func (f Format) BytesPerSample() int {
	switch {
	case f.BitsPerSample <= 8:
		return 1
	case f.BitsPerSample <= 16:
		return 2
	default:
		return 4
	}
}

// Peak returns the value of a fully set mask pixel: (1<<bits)-1 for
// integer formats and 1.0 for float.
func (f Format) Peak() float64 {
	if f.Sample == Float {
		return 1
	}
	return float64(uint32(1)<<uint(f.BitsPerSample) - 1)
}

// PlaneWidth returns the width of plane p for a frame of width w.
// Subsampling only applies to the chroma planes of YUV formats.
func (f Format) PlaneWidth(p, w int) int {
	if p == 0 || f.Family != YUV {
		return w
	}
	return w >> uint(f.SubSamplingW)
}

// PlaneHeight returns the height of plane p for a frame of height h.
func (f Format) PlaneHeight(p, h int) int {
	if p == 0 || f.Family != YUV {
		return h
	}
	return h >> uint(f.SubSamplingH)
}

// Name returns a short human readable format name such as Gray8, RGBS or YUV420P8.
func (f Format) Name() string {
	depth := strconv.Itoa(f.BitsPerSample)
	if f.Sample == Float {
		if f.BitsPerSample == 32 {
			depth = "S"
		} else {
			depth = "F" + depth
		}
	}
	switch f.Family {
	case Gray:
		return "Gray" + depth
	case RGB:
		if f.Sample == Integer {
			return "RGB" + strconv.Itoa(f.BitsPerSample*3)
		}
		return "RGB" + depth
	case YUV:
		sub := "444"
		switch {
		case f.SubSamplingW == 1 && f.SubSamplingH == 1:
			sub = "420"
		case f.SubSamplingW == 1 && f.SubSamplingH == 0:
			sub = "422"
		case f.SubSamplingW == 0 && f.SubSamplingH == 1:
			sub = "440"
		case f.SubSamplingW != 0 || f.SubSamplingH != 0:
			sub = fmt.Sprintf("%d%d", f.SubSamplingW, f.SubSamplingH)
		}
		return "YUV" + sub + "P" + depth
	default:
		return "Undefined"
	}
}

func (f Format) String() string { return f.Name() }

// WithDepth returns f with a different sample precision.
func (f Format) WithDepth(sample SampleType, bits int) Format {
	f.Sample = sample
	f.BitsPerSample = bits
	return f
}

// VideoInfo describes a clip: its format, frame geometry and length.
type VideoInfo struct {
	Format    Format
	Width     int
	Height    int
	NumFrames int
}

// Constant reports whether every frame of the clip shares one known format and size.
func (vi VideoInfo) Constant() bool {
	return vi.Width > 0 && vi.Height > 0 && vi.Format.Family != Undefined
}

// CheckSupported accepts constant clips with 8-16 bit integer or 32 bit float samples.
func CheckSupported(vi VideoInfo) error {
	f := vi.Format
	if !vi.Constant() {
		return fmt.Errorf("%w: only constant format input supported", ErrUnsupportedFormat)
	}
	switch f.Sample {
	case Integer:
		if f.BitsPerSample < 8 || f.BitsPerSample > 16 {
			return fmt.Errorf("%w: %d bit integer input, want 8-16", ErrUnsupportedFormat, f.BitsPerSample)
		}
	case Float:
		if f.BitsPerSample != 32 {
			return fmt.Errorf("%w: %d bit float input, want 32", ErrUnsupportedFormat, f.BitsPerSample)
		}
	default:
		return fmt.Errorf("%w: unknown sample type %d", ErrUnsupportedFormat, f.Sample)
	}
	if f.SubSamplingW < 0 || f.SubSamplingW > 4 || f.SubSamplingH < 0 || f.SubSamplingH > 4 {
		return fmt.Errorf("%w: subsampling %d/%d", ErrUnsupportedFormat, f.SubSamplingW, f.SubSamplingH)
	}
	return nil
}

// CheckSame fails unless a and b have identical formats and dimensions and
// both contain frames.
func CheckSame(a, b VideoInfo) error {
	if a.Format != b.Format {
		return fmt.Errorf("%w: %s vs %s", ErrFormatMismatch, a.Format.Name(), b.Format.Name())
	}
	if a.Width != b.Width || a.Height != b.Height {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrFormatMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	if a.NumFrames <= 0 || b.NumFrames <= 0 {
		return fmt.Errorf("%w: empty clip (%d and %d frames)", ErrFormatMismatch, a.NumFrames, b.NumFrames)
	}
	return nil
}

// ParseDepth parses a depth option: an integer bit count ("8", "16")
// or "32f"/"s" for 32 bit float.
func ParseDepth(s string) (SampleType, int, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "s", "f", "32f", "f32", "float":
		return Float, 32, nil
	}
	bits, err := strconv.Atoi(v)
	if err != nil {
		return Integer, 0, fmt.Errorf("depth %q: %w", s, err)
	}
	if bits < 1 || bits > 16 {
		return Integer, 0, fmt.Errorf("depth %q: integer depth must be 1-16", s)
	}
	return Integer, bits, nil
}
