package codec

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"mask-hysteresis/internal/format"
	"mask-hysteresis/internal/frame"
)

// FromImage copies img into a new frame.
//
//   - *image.Gray becomes Gray8 and *image.Gray16 becomes Gray16.
//   - *image.YCbCr with 4:4:4, 4:2:2, 4:2:0 or 4:4:0 sampling and even
//     dimensions becomes an 8 bit YUV frame with the same subsampling.
//   - 16 bit color images become RGB48.
//   - Everything else is drawn into NRGBA and becomes RGB24, or Gray8 when
//     every pixel has R == G == B. Alpha is dropped.
func FromImage(img image.Image) *frame.Frame {
	fr, _ := fromImage(img)
	return fr
}

// fromImage also reports whether a color image was reduced to Gray8.
func fromImage(img image.Image) (*frame.Frame, bool) {
	switch src := img.(type) {
	case *image.Gray:
		return fromGray(src), false
	case *image.Gray16:
		return fromGray16(src), false
	case *image.YCbCr:
		if fr := fromYCbCr(src); fr != nil {
			return fr, false
		}
	case *image.NRGBA64, *image.RGBA64:
		return fromNRGBA64(toNRGBA64(src)), false
	}
	return fromNRGBA(toNRGBA(img))
}

func fromGray(src *image.Gray) *frame.Frame {
	b := src.Bounds()
	fr := frame.New(format.Gray8, b.Dx(), b.Dy())
	p := frame.PlaneOf[uint8](fr, 0)
	for y := 0; y < p.Height; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(p.Row(y), src.Pix[off:off+p.Width])
	}
	return fr
}

func fromGray16(src *image.Gray16) *frame.Frame {
	b := src.Bounds()
	fr := frame.New(format.Gray16, b.Dx(), b.Dy())
	p := frame.PlaneOf[uint16](fr, 0)
	for y := 0; y < p.Height; y++ {
		row := p.Row(y)
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := range row {
			i := off + 2*x
			row[x] = uint16(src.Pix[i])<<8 | uint16(src.Pix[i+1])
		}
	}
	return fr
}

func subsampling(r image.YCbCrSubsampleRatio) (w, h int, ok bool) {
	switch r {
	case image.YCbCrSubsampleRatio444:
		return 0, 0, true
	case image.YCbCrSubsampleRatio422:
		return 1, 0, true
	case image.YCbCrSubsampleRatio420:
		return 1, 1, true
	case image.YCbCrSubsampleRatio440:
		return 0, 1, true
	}
	return 0, 0, false
}

func ratio(ssw, ssh int) (image.YCbCrSubsampleRatio, bool) {
	switch {
	case ssw == 0 && ssh == 0:
		return image.YCbCrSubsampleRatio444, true
	case ssw == 1 && ssh == 0:
		return image.YCbCrSubsampleRatio422, true
	case ssw == 1 && ssh == 1:
		return image.YCbCrSubsampleRatio420, true
	case ssw == 0 && ssh == 1:
		return image.YCbCrSubsampleRatio440, true
	}
	return 0, false
}

// fromYCbCr returns nil when the sampling cannot be represented exactly.
func fromYCbCr(src *image.YCbCr) *frame.Frame {
	ssw, ssh, ok := subsampling(src.SubsampleRatio)
	b := src.Bounds()
	if !ok || b.Dx()%(1<<ssw) != 0 || b.Dy()%(1<<ssh) != 0 ||
		b.Min.X%(1<<ssw) != 0 || b.Min.Y%(1<<ssh) != 0 {
		return nil
	}

	f := format.YUV444P8
	f.SubSamplingW, f.SubSamplingH = ssw, ssh
	fr := frame.New(f, b.Dx(), b.Dy())

	y := frame.PlaneOf[uint8](fr, 0)
	for row := 0; row < y.Height; row++ {
		off := src.YOffset(b.Min.X, b.Min.Y+row)
		copy(y.Row(row), src.Y[off:off+y.Width])
	}
	cb := frame.PlaneOf[uint8](fr, 1)
	cr := frame.PlaneOf[uint8](fr, 2)
	for row := 0; row < cb.Height; row++ {
		off := src.COffset(b.Min.X, b.Min.Y+row<<ssh)
		copy(cb.Row(row), src.Cb[off:off+cb.Width])
		copy(cr.Row(row), src.Cr[off:off+cr.Width])
	}
	return fr
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

func toNRGBA64(src image.Image) *image.NRGBA64 {
	if n, ok := src.(*image.NRGBA64); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA64(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

func fromNRGBA(src *image.NRGBA) (*frame.Frame, bool) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	gray := true
	for y := 0; y < h && gray; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			s := src.Pix[off+4*x : off+4*x+3]
			if s[0] != s[1] || s[1] != s[2] {
				gray = false
				break
			}
		}
	}

	f := format.RGB24
	if gray {
		f = format.Gray8
	}
	fr := frame.New(f, w, h)
	for p := 0; p < fr.NumPlanes(); p++ {
		pl := frame.PlaneOf[uint8](fr, p)
		for y := 0; y < h; y++ {
			row := pl.Row(y)
			off := src.PixOffset(b.Min.X, b.Min.Y+y) + p
			for x := range row {
				row[x] = src.Pix[off+4*x]
			}
		}
	}
	return fr, gray
}

func fromNRGBA64(src *image.NRGBA64) *frame.Frame {
	b := src.Bounds()
	fr := frame.New(format.RGB48, b.Dx(), b.Dy())
	for p := 0; p < 3; p++ {
		pl := frame.PlaneOf[uint16](fr, p)
		for y := 0; y < pl.Height; y++ {
			row := pl.Row(y)
			off := src.PixOffset(b.Min.X, b.Min.Y+y) + 2*p
			for x := range row {
				i := off + 8*x
				row[x] = uint16(src.Pix[i])<<8 | uint16(src.Pix[i+1])
			}
		}
	}
	return fr
}

// ToImage converts fr into a standard library image. Gray frames become
// *image.Gray or *image.Gray16, RGB frames *image.NRGBA or *image.NRGBA64
// and YUV frames *image.YCbCr. Precisions other than 8 and 16 bit integer
// are converted first: to 8 bit for YUV, to 16 bit otherwise.
func ToImage(fr *frame.Frame) (image.Image, error) {
	f := fr.Format()
	switch f.Family {
	case format.Gray:
		if f.Sample == format.Integer && f.BitsPerSample == 8 {
			return toGray(fr), nil
		}
		return toGray16(Convert(fr, format.Integer, 16)), nil
	case format.RGB:
		if f.Sample == format.Integer && f.BitsPerSample == 8 {
			return rgbToNRGBA(fr), nil
		}
		return rgbToNRGBA64(Convert(fr, format.Integer, 16)), nil
	case format.YUV:
		return toYCbCr(Convert(fr, format.Integer, 8))
	}
	return nil, fmt.Errorf("codec: %w: cannot convert %s to an image", format.ErrUnsupportedFormat, f.Name())
}

func toGray(fr *frame.Frame) *image.Gray {
	p := frame.PlaneOf[uint8](fr, 0)
	img := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		copy(img.Pix[y*img.Stride:], p.Row(y))
	}
	return img
}

func toGray16(fr *frame.Frame) *image.Gray16 {
	p := frame.PlaneOf[uint16](fr, 0)
	img := image.NewGray16(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		for x, v := range p.Row(y) {
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	return img
}

func rgbToNRGBA(fr *frame.Frame) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fr.Width(), fr.Height()))
	for p := 0; p < 3; p++ {
		pl := frame.PlaneOf[uint8](fr, p)
		for y := 0; y < pl.Height; y++ {
			off := y*img.Stride + p
			for x, v := range pl.Row(y) {
				img.Pix[off+4*x] = v
			}
		}
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

func rgbToNRGBA64(fr *frame.Frame) *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, fr.Width(), fr.Height()))
	r := frame.PlaneOf[uint16](fr, 0)
	g := frame.PlaneOf[uint16](fr, 1)
	b := frame.PlaneOf[uint16](fr, 2)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			img.SetNRGBA64(x, y, color.NRGBA64{R: r.At(x, y), G: g.At(x, y), B: b.At(x, y), A: 0xffff})
		}
	}
	return img
}

func toYCbCr(fr *frame.Frame) (*image.YCbCr, error) {
	f := fr.Format()
	r, ok := ratio(f.SubSamplingW, f.SubSamplingH)
	if !ok {
		return nil, fmt.Errorf("codec: %w: no image type for %s", format.ErrUnsupportedFormat, f.Name())
	}
	img := image.NewYCbCr(image.Rect(0, 0, fr.Width(), fr.Height()), r)
	y := frame.PlaneOf[uint8](fr, 0)
	for row := 0; row < y.Height; row++ {
		copy(img.Y[row*img.YStride:], y.Row(row))
	}
	cb := frame.PlaneOf[uint8](fr, 1)
	cr := frame.PlaneOf[uint8](fr, 2)
	for row := 0; row < cb.Height; row++ {
		copy(img.Cb[row*img.CStride:], cb.Row(row))
		copy(img.Cr[row*img.CStride:], cr.Row(row))
	}
	return img, nil
}
