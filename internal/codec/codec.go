// Package codec reads and writes mask frames as image files.
package codec

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"mask-hysteresis/internal/frame"
)

// readable lists the extensions Load accepts, writable those Save accepts.
var (
	readable = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
		".tga": true, ".webp": true, ".bmp": true, ".tif": true, ".tiff": true,
	}
	writable = map[string]bool{
		".png": true, ".webp": true, ".tga": true, ".bmp": true, ".tif": true, ".tiff": true,
	}
)

// CanRead reports whether path has an extension Load understands.
func CanRead(path string) bool {
	return readable[strings.ToLower(filepath.Ext(path))]
}

// CanWrite reports whether ext (with or without the leading dot) is an
// output format Save supports.
func CanWrite(ext string) bool {
	return writable[normExt(ext)]
}

func normExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Info describes how an image file was turned into a frame.
type Info struct {
	// GrayFromColor is set when a color image had R == G == B at every
	// pixel and was loaded as Gray8. ExpandGray restores the RGB24 form.
	GrayFromColor bool
}

// Decode reads one image in the format named by ext and converts it with
// FromImage. The format is chosen by extension rather than sniffed because
// TGA has no signature.
func Decode(r io.Reader, ext string) (*frame.Frame, error) {
	fr, _, err := DecodeInfo(r, ext)
	return fr, err
}

// DecodeInfo is Decode that also reports how the frame was derived.
func DecodeInfo(r io.Reader, ext string) (*frame.Frame, Info, error) {
	var (
		img image.Image
		err error
	)
	switch normExt(ext) {
	case ".png":
		img, err = png.Decode(r)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(r)
	case ".gif":
		img, err = gif.Decode(r)
	case ".tga":
		img, err = tga.Decode(r)
	case ".webp":
		img, err = nativewebp.Decode(r)
	case ".bmp":
		img, err = bmp.Decode(r)
	case ".tif", ".tiff":
		img, err = tiff.Decode(r)
	default:
		return nil, Info{}, fmt.Errorf("codec: unsupported input format %q", ext)
	}
	if err != nil {
		return nil, Info{}, err
	}
	fr, gray := fromImage(img)
	return fr, Info{GrayFromColor: gray}, nil
}

// Load reads and decodes the image file at path.
func Load(path string) (*frame.Frame, error) {
	fr, _, err := LoadInfo(path)
	return fr, err
}

// LoadInfo is Load that also reports how the frame was derived.
func LoadInfo(path string) (*frame.Frame, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("codec: open %s: %w", path, err)
	}
	defer f.Close()

	fr, info, err := DecodeInfo(bufio.NewReader(f), filepath.Ext(path))
	if err != nil {
		return nil, Info{}, fmt.Errorf("codec: decode %s: %w", path, err)
	}
	return fr, info, nil
}

// Encode writes fr to w in the format named by ext (".png", "webp", ...).
// WebP output is always lossless.
func Encode(w io.Writer, ext string, fr *frame.Frame) error {
	ext = normExt(ext)
	if !writable[ext] {
		return fmt.Errorf("codec: unsupported output format %q", ext)
	}
	img, err := ToImage(fr)
	if err != nil {
		return err
	}

	switch ext {
	case ".png":
		return png.Encode(w, img)
	case ".webp":
		return nativewebp.Encode(w, img, nil)
	case ".tga":
		return tga.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	default:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
}

// Save encodes fr into the file at path, choosing the format from the
// path's extension. Parent directories are created as needed.
func Save(path string, fr *frame.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("codec: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("codec: create %s: %w", path, err)
	}

	bw := bufio.NewWriter(f)
	if err := Encode(bw, filepath.Ext(path), fr); err != nil {
		f.Close()
		return fmt.Errorf("codec: encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("codec: write %s: %w", path, err)
	}
	return f.Close()
}
