package hysteresis

import "mask-hysteresis/internal/frame"

// PlaneStats summarizes one flood-filled plane.
type PlaneStats struct {
	Components int // candidate components that touched a seed pixel
	Pixels     int // pixels set to peak
}

// Fill writes into dst every 8-connected component of candidate that
// contains at least one pixel that is also set in seed. A pixel is set
// when its value is above zero; surviving pixels are written as peak and
// everything else as zero.
//
// Only the pixel that starts a component needs seed backing. Growth from
// there follows candidate alone.
//
// All three planes must have the same width and height; strides may differ.
func Fill[T frame.Sample](dst, seed, candidate frame.Plane[T], peak T) PlaneStats {
	var lower T
	w, h := dst.Width, dst.Height
	dst.Fill(lower)

	var st PlaneStats
	if w == 0 || h == 0 {
		return st
	}

	visited := make([]bool, w*h)
	stack := make([]int, 0, 1024)

	for y := 0; y < h; y++ {
		srow := seed.Row(y)
		crow := candidate.Row(y)
		for x := 0; x < w; x++ {
			idx := y*w + x
			if visited[idx] || !(srow[x] > lower && crow[x] > lower) {
				continue
			}

			visited[idx] = true
			dst.Set(x, y, peak)
			stack = append(stack[:0], idx)
			st.Components++
			st.Pixels++

			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx, cy := cur%w, cur/w

				y0, y1 := max(cy-1, 0), min(cy+1, h-1)
				x0, x1 := max(cx-1, 0), min(cx+1, w-1)
				for ny := y0; ny <= y1; ny++ {
					for nx := x0; nx <= x1; nx++ {
						ni := ny*w + nx
						if visited[ni] || !(candidate.At(nx, ny) > lower) {
							continue
						}
						visited[ni] = true
						dst.Set(nx, ny, peak)
						stack = append(stack, ni)
						st.Pixels++
					}
				}
			}
		}
	}
	return st
}

// CopyPlane copies the visible samples of src into dst row by row.
func CopyPlane[T frame.Sample](dst, src frame.Plane[T]) {
	for y := 0; y < dst.Height; y++ {
		copy(dst.Row(y), src.Row(y))
	}
}
