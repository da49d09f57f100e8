package main

import (
	"fmt"
	"os"

	"mask-hysteresis/internal/codec"
	"mask-hysteresis/internal/format"
	"mask-hysteresis/internal/frame"
	"mask-hysteresis/internal/hysteresis"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: maskinfo FILE...")
		os.Exit(2)
	}

	failed := false
	for _, path := range os.Args[1:] {
		if err := inspect(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func inspect(path string) error {
	fr, err := codec.Load(path)
	if err != nil {
		return err
	}
	f := fr.Format()
	fmt.Printf("%s: %s %dx%d, peak %g\n", path, f.Name(), fr.Width(), fr.Height(), f.Peak())
	if err := format.CheckSupported(fr.Info()); err != nil {
		fmt.Printf("  not processable: %v\n", err)
		return nil
	}

	for p := 0; p < fr.NumPlanes(); p++ {
		var st planeInfo
		switch {
		case f.Sample == format.Float:
			st = planeStats(frame.PlaneOf[float32](fr, p), f)
		case f.BytesPerSample() == 1:
			st = planeStats(frame.PlaneOf[uint8](fr, p), f)
		default:
			st = planeStats(frame.PlaneOf[uint16](fr, p), f)
		}
		fmt.Printf("  Plane[%d]: %dx%d stride=%d set=%d (%.1f%%) components=%d\n",
			p, st.width, st.height, fr.Stride(p), st.set, st.percent(), st.components)
	}
	return nil
}

type planeInfo struct {
	width, height int
	set           int
	components    int
}

func (s planeInfo) percent() float64 {
	if s.width*s.height == 0 {
		return 0
	}
	return 100 * float64(s.set) / float64(s.width*s.height)
}

// planeStats counts the set pixels and their 8-connected components by
// filling the plane with itself as seed: every component survives.
func planeStats[T frame.Sample](pl frame.Plane[T], f format.Format) planeInfo {
	scratch := frame.PlaneOf[T](frame.New(format.Format{
		Family:        format.Gray,
		Sample:        f.Sample,
		BitsPerSample: f.BitsPerSample,
	}, pl.Width, pl.Height), 0)
	st := hysteresis.Fill(scratch, pl, pl, T(f.Peak()))
	return planeInfo{
		width:      pl.Width,
		height:     pl.Height,
		set:        st.Pixels,
		components: st.Components,
	}
}
