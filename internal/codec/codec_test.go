package codec

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"mask-hysteresis/internal/format"
	"mask-hysteresis/internal/frame"
)

func grayMask() *frame.Frame {
	fr := frame.New(format.Gray8, 7, 5)
	p := frame.PlaneOf[uint8](fr, 0)
	for y := 1; y < 4; y++ {
		for x := 1; x < 6; x++ {
			p.Set(x, y, 255)
		}
	}
	p.Set(0, 4, 17)
	return fr
}

func rgbMask() *frame.Frame {
	fr := frame.New(format.RGB24, 6, 4)
	for c := 0; c < 3; c++ {
		p := frame.PlaneOf[uint8](fr, c)
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				if (x+y+c)%3 == 0 {
					p.Set(x, y, 255)
				}
			}
		}
	}
	return fr
}

func gray16Mask() *frame.Frame {
	fr := frame.New(format.Gray16, 5, 3)
	p := frame.PlaneOf[uint16](fr, 0)
	p.Set(0, 0, 65535)
	p.Set(2, 1, 1234)
	p.Set(4, 2, 1)
	return fr
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		fr   *frame.Frame
	}{
		{"gray png", ".png", grayMask()},
		{"gray webp", ".webp", grayMask()},
		{"gray tga", ".tga", grayMask()},
		{"gray bmp", ".bmp", grayMask()},
		{"gray tiff", ".tiff", grayMask()},
		{"rgb png", ".png", rgbMask()},
		{"rgb webp", ".webp", rgbMask()},
		{"rgb tga", ".tga", rgbMask()},
		{"rgb bmp", ".bmp", rgbMask()},
		{"rgb tif", ".tif", rgbMask()},
		{"gray16 png", ".png", gray16Mask()},
		{"gray16 tiff", ".tiff", gray16Mask()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "mask"+tt.ext)
			if err := Save(path, tt.fr); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Format() != tt.fr.Format() {
				t.Fatalf("format = %s, want %s", got.Format().Name(), tt.fr.Format().Name())
			}
			if !frame.Equal(got, tt.fr) {
				t.Fatal("decoded frame differs from the encoded one")
			}
		})
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, "jpg", grayMask()); err == nil {
		t.Fatal("expected error for lossy output format")
	}
	if CanWrite("jpg") || !CanWrite("webp") || !CanWrite(".TIFF") {
		t.Fatal("CanWrite disagrees with Encode")
	}
	if !CanRead("a/b/c.JPG") || CanRead("notes.txt") {
		t.Fatal("CanRead misclassifies paths")
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	if _, err := Decode(bytes.NewReader(nil), ".xcf"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFromImageYCbCr420(t *testing.T) {
	img := image.NewYCbCr(image.Rect(0, 0, 4, 2), image.YCbCrSubsampleRatio420)
	for i := range img.Y {
		img.Y[i] = uint8(i)
	}
	img.Cb[1] = 200
	img.Cr[0] = 100

	fr := FromImage(img)

	if fr.Format() != format.YUV420P8 {
		t.Fatalf("format = %s, want YUV420P8", fr.Format().Name())
	}
	y := frame.PlaneOf[uint8](fr, 0)
	if y.At(3, 1) != img.Y[img.YOffset(3, 1)] {
		t.Fatalf("luma mismatch")
	}
	cb := frame.PlaneOf[uint8](fr, 1)
	cr := frame.PlaneOf[uint8](fr, 2)
	if cb.Width != 2 || cb.Height != 1 || cb.At(1, 0) != 200 || cr.At(0, 0) != 100 {
		t.Fatalf("chroma = %dx%d cb=%d cr=%d", cb.Width, cb.Height, cb.At(1, 0), cr.At(0, 0))
	}

	back, err := ToImage(fr)
	if err != nil {
		t.Fatal(err)
	}
	ycc, ok := back.(*image.YCbCr)
	if !ok || ycc.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		t.Fatalf("ToImage returned %T", back)
	}
	if !frame.Equal(FromImage(ycc), fr) {
		t.Fatal("YCbCr round trip differs")
	}
}

func TestFromImageOddYCbCrFallsBackToRGB(t *testing.T) {
	img := image.NewYCbCr(image.Rect(0, 0, 3, 3), image.YCbCrSubsampleRatio420)
	if got := FromImage(img).Format().Family; got == format.YUV {
		t.Fatal("odd sized 4:2:0 image should not load as YUV")
	}
}

func TestFromImageColorKeepsRGB(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 9, G: 9, B: 9, A: 255})

	fr := FromImage(img)

	if fr.Format() != format.RGB24 {
		t.Fatalf("format = %s, want RGB24", fr.Format().Name())
	}
	if g := frame.PlaneOf[uint8](fr, 1); g.At(0, 0) != 0 || g.At(1, 0) != 9 {
		t.Fatal("green plane mismatch")
	}
}

func TestFromImageRGBA64(t *testing.T) {
	img := image.NewRGBA64(image.Rect(0, 0, 2, 1))
	img.SetRGBA64(1, 0, color.RGBA64{R: 1000, G: 2000, B: 3000, A: 0xffff})

	fr := FromImage(img)

	if fr.Format() != format.RGB48 {
		t.Fatalf("format = %s, want RGB48", fr.Format().Name())
	}
	if b := frame.PlaneOf[uint16](fr, 2); b.At(1, 0) != 3000 {
		t.Fatalf("blue = %d, want 3000", b.At(1, 0))
	}
}

func TestConvert(t *testing.T) {
	src := grayMask()

	wide := Convert(src, format.Integer, 16)
	if wide.Format() != format.Gray16 {
		t.Fatalf("format = %s", wide.Format().Name())
	}
	if v := frame.PlaneOf[uint16](wide, 0).At(1, 1); v != 65535 {
		t.Fatalf("255 -> %d, want 65535", v)
	}

	fl := Convert(src, format.Float, 32)
	if v := frame.PlaneOf[float32](fl, 0).At(1, 1); v != 1 {
		t.Fatalf("255 -> %v, want 1", v)
	}
	if v := frame.PlaneOf[float32](fl, 0).At(0, 0); v != 0 {
		t.Fatalf("0 -> %v, want 0", v)
	}

	frame.PlaneOf[float32](fl, 0).Set(0, 0, 2.5)
	frame.PlaneOf[float32](fl, 0).Set(1, 0, -1)
	back := Convert(fl, format.Integer, 8)
	p := frame.PlaneOf[uint8](back, 0)
	if p.At(0, 0) != 255 || p.At(1, 0) != 0 || p.At(1, 1) != 255 || p.At(0, 4) != 17 {
		t.Fatalf("float -> 8 bit gave %d %d %d %d", p.At(0, 0), p.At(1, 0), p.At(1, 1), p.At(0, 4))
	}

	if Convert(src, format.Integer, 8) != src {
		t.Fatal("same-depth conversion should return the input")
	}
}

func TestConvertKeepsSmallValuesSet(t *testing.T) {
	src := gray16Mask()
	frame.PlaneOf[uint16](src, 0).Set(1, 0, 100)

	narrow := Convert(src, format.Integer, 8)
	p := frame.PlaneOf[uint8](narrow, 0)
	if p.At(1, 0) != 1 || p.At(4, 2) != 1 {
		t.Fatalf("small 16 bit values -> %d %d, want 1 1", p.At(1, 0), p.At(4, 2))
	}
	if p.At(0, 0) != 255 || p.At(2, 1) != 5 || p.At(3, 0) != 0 {
		t.Fatalf("16 -> 8 bit gave %d %d %d", p.At(0, 0), p.At(2, 1), p.At(3, 0))
	}

	fl := frame.New(format.GrayS, 2, 1)
	frame.PlaneOf[float32](fl, 0).Set(0, 0, 1e-6)
	if v := frame.PlaneOf[uint8](Convert(fl, format.Integer, 8), 0).At(0, 0); v != 1 {
		t.Fatalf("tiny float -> %d, want 1", v)
	}
}

func TestLoadInfoReportsGrayFromColor(t *testing.T) {
	dir := t.TempDir()

	black := filepath.Join(dir, "black.png")
	if err := Save(black, frame.New(format.RGB24, 4, 4)); err != nil {
		t.Fatal(err)
	}
	fr, info, err := LoadInfo(black)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Format() != format.Gray8 || !info.GrayFromColor {
		t.Fatalf("black RGB png = %s, %+v", fr.Format().Name(), info)
	}

	gray := filepath.Join(dir, "gray.png")
	if err := Save(gray, grayMask()); err != nil {
		t.Fatal(err)
	}
	fr, info, err = LoadInfo(gray)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Format() != format.Gray8 || info.GrayFromColor {
		t.Fatalf("gray png = %s, %+v", fr.Format().Name(), info)
	}
}

func TestExpandGray(t *testing.T) {
	src := grayMask()

	rgb := ExpandGray(src)
	if rgb.Format() != format.RGB24 || rgb.Width() != src.Width() || rgb.Height() != src.Height() {
		t.Fatalf("expanded = %s %dx%d", rgb.Format().Name(), rgb.Width(), rgb.Height())
	}
	for c := 0; c < 3; c++ {
		p := frame.PlaneOf[uint8](rgb, c)
		if p.At(1, 1) != 255 || p.At(0, 4) != 17 || p.At(0, 0) != 0 {
			t.Fatalf("plane %d not a copy of the gray plane", c)
		}
	}

	if wide := ExpandGray(gray16Mask()); wide.Format() != format.RGB48 {
		t.Fatalf("expanded Gray16 = %s, want RGB48", wide.Format().Name())
	}
	if colored := rgbMask(); ExpandGray(colored) != colored {
		t.Fatal("RGB frame should be returned unchanged")
	}
}

func TestSaveFloatAsGray16(t *testing.T) {
	fr := frame.New(format.GrayS, 3, 1)
	frame.PlaneOf[float32](fr, 0).Set(1, 0, 1)

	path := filepath.Join(t.TempDir(), "f.png")
	if err := Save(path, fr); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Format() != format.Gray16 {
		t.Fatalf("format = %s, want Gray16", got.Format().Name())
	}
	if v := frame.PlaneOf[uint16](got, 0).At(1, 0); v != 65535 {
		t.Fatalf("value = %d, want 65535", v)
	}
}
