package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mask-hysteresis/internal/codec"
	"mask-hysteresis/internal/format"
	"mask-hysteresis/internal/frame"
)

// Clip is an ordered sequence of frame files.
type Clip struct {
	Path   string
	Frames []string

	// color is set by Inspect when the clip holds RGB frames. Frames whose
	// color image had R == G == B everywhere are then loaded as RGB too.
	color bool
}

// OpenClip opens path as a clip. A file is a one-frame clip; a directory
// holds one frame per readable image file, ordered by file name. Two
// frames with the same name but different extensions are rejected since
// they would be written to the same output file.
func OpenClip(path string) (Clip, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Clip{}, fmt.Errorf("batch: open clip: %w", err)
	}
	if !info.IsDir() {
		if !codec.CanRead(path) {
			return Clip{}, fmt.Errorf("batch: %s: not a readable image", path)
		}
		return Clip{Path: path, Frames: []string{path}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return Clip{}, fmt.Errorf("batch: read clip %s: %w", path, err)
	}
	clip := Clip{Path: path}
	for _, e := range entries {
		if e.IsDir() || !codec.CanRead(e.Name()) {
			continue
		}
		clip.Frames = append(clip.Frames, filepath.Join(path, e.Name()))
	}
	sort.Strings(clip.Frames)
	if len(clip.Frames) == 0 {
		return Clip{}, fmt.Errorf("batch: clip %s has no image files", path)
	}

	stems := make(map[string]string, len(clip.Frames))
	for _, f := range clip.Frames {
		stem := frameStem(f)
		if prev, ok := stems[stem]; ok {
			return Clip{}, fmt.Errorf("batch: clip %s: %s and %s share the output name %q",
				path, filepath.Base(prev), filepath.Base(f), stem)
		}
		stems[stem] = f
	}
	return clip, nil
}

func frameStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Len returns the number of frames.
func (c Clip) Len() int { return len(c.Frames) }

// Depth selects the sample precision frames are converted to after
// loading. The zero value keeps each frame's own precision.
type Depth struct {
	Sample format.SampleType
	Bits   int
}

// ParseDepth parses a depth option; an empty string keeps the source depth.
func ParseDepth(s string) (Depth, error) {
	if s == "" {
		return Depth{}, nil
	}
	sample, bits, err := format.ParseDepth(s)
	if err != nil {
		return Depth{}, err
	}
	return Depth{Sample: sample, Bits: bits}, nil
}

// Apply converts fr to the selected precision.
func (d Depth) Apply(fr *frame.Frame) *frame.Frame {
	if d.Bits == 0 {
		return fr
	}
	return codec.Convert(fr, d.Sample, d.Bits)
}

// LoadFrame reads frame n of the clip and applies depth. In a color clip
// a frame that decoded to gray from a color image is expanded back to RGB.
func (c Clip) LoadFrame(n int, depth Depth) (*frame.Frame, error) {
	fr, info, err := codec.LoadInfo(c.Frames[n])
	if err != nil {
		return nil, err
	}
	if c.color && info.GrayFromColor {
		fr = codec.ExpandGray(fr)
	}
	return depth.Apply(fr), nil
}

// Inspect describes the clip and fixes the format every frame is loaded in.
// The first frame decides it, unless that frame is a color image with
// equal channels: then the clip is RGB if any later frame is.
func (c *Clip) Inspect(depth Depth) (format.VideoInfo, error) {
	fr, info, err := codec.LoadInfo(c.Frames[0])
	if err != nil {
		return format.VideoInfo{}, fmt.Errorf("batch: inspect %s: %w", c.Path, err)
	}
	c.color = fr.Format().Family == format.RGB
	if info.GrayFromColor {
		c.color = c.hasColorFrame()
		if c.color {
			fr = codec.ExpandGray(fr)
		}
	}
	vi := depth.Apply(fr).Info()
	vi.NumFrames = c.Len()
	return vi, nil
}

// hasColorFrame reports whether any frame after the first decodes to RGB.
// Frames that fail to load are left for processing to report.
func (c Clip) hasColorFrame() bool {
	for _, path := range c.Frames[1:] {
		fr, err := codec.Load(path)
		if err == nil && fr.Format().Family == format.RGB {
			return true
		}
	}
	return false
}
