package analyzer

import (
	"image"
	"math"
)

// borderFollower implements ContourFinder using Suzuki-Abe border following.
// Every outer border and hole border is returned, with parent links forming
// the containment tree.
type borderFollower struct{}

// NewContourFinder creates a ContourFinder
func NewContourFinder() ContourFinder {
	return borderFollower{}
}

// chain directions, counter-clockwise as displayed (y grows downwards)
var chainDirs = [8]image.Point{
	{1, 0}, {1, -1}, {0, -1}, {-1, -1},
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1},
}

type borderInfo struct {
	hole   bool
	parent int // NBD of the parent border, 1 is the image frame
}

// FindContours traces edges in raster order. Pixels outside the map count
// as background, so regions touching the image border are still closed.
func (borderFollower) FindContours(edges *image.Gray) []Contour {
	b := edges.Bounds()
	w, h := b.Dx()+2, b.Dy()+2
	f := make([]int32, w*h)
	for y := 0; y < b.Dy(); y++ {
		row := edges.Pix[(y+b.Min.Y-edges.Rect.Min.Y)*edges.Stride+(b.Min.X-edges.Rect.Min.X):]
		for x := 0; x < b.Dx(); x++ {
			if row[x] != 0 {
				f[(y+1)*w+x+1] = 1
			}
		}
	}

	// borders[0] is unused, borders[1] is the frame
	borders := []borderInfo{{}, {hole: true, parent: 0}}
	chains := [][]image.Point{nil, nil}
	nbd := int32(1)

	for y := 1; y < h-1; y++ {
		lnbd := int32(1)
		for x := 1; x < w-1; x++ {
			i := y*w + x
			v := f[i]
			if v == 0 {
				continue
			}

			var from int
			var hole bool
			switch {
			case v == 1 && f[i-1] == 0:
				from = 4
			case v >= 1 && f[i+1] == 0:
				from = 0
				hole = true
				if v > 1 {
					lnbd = v
				}
			default:
				if v != 1 {
					lnbd = absInt32(v)
				}
				continue
			}

			nbd++
			prev := borders[lnbd]
			parent := int(lnbd)
			if hole == prev.hole {
				parent = prev.parent
			}
			borders = append(borders, borderInfo{hole: hole, parent: parent})
			chains = append(chains, followBorder(f, w, image.Point{x, y}, from, nbd))

			if f[i] != 1 {
				lnbd = absInt32(f[i])
			}
		}
	}

	contours := make([]Contour, 0, len(chains)-2)
	for n := 2; n < len(chains); n++ {
		parent := borders[n].parent - 2
		if parent < 0 {
			parent = -1
		}
		pts := compressChain(chains[n])
		for k := range pts {
			// undo the one-pixel frame
			pts[k] = pts[k].Sub(image.Point{1, 1})
		}
		contours = append(contours, Contour{Points: pts, Hole: borders[n].hole, Parent: parent})
	}
	return contours
}

// followBorder traces one border starting at start, whose background
// neighbour lies in direction from. It marks visited pixels with nbd or
// -nbd and returns the traversed chain.
func followBorder(f []int32, w int, start image.Point, from int, nbd int32) []image.Point {
	idx := func(p image.Point) int { return p.Y*w + p.X }

	// clockwise search for the first non-zero neighbour
	first := -1
	for k := 0; k < 8; k++ {
		d := (from - k + 8) % 8
		if f[idx(start.Add(chainDirs[d]))] != 0 {
			first = d
			break
		}
	}
	if first < 0 {
		f[idx(start)] = -nbd
		return []image.Point{start}
	}

	p1 := start.Add(chainDirs[first])
	p2, p3 := p1, start
	var chain []image.Point
	for {
		// counter-clockwise search starting after p2
		back := dirBetween(p3, p2)
		var p4 image.Point
		rightZero := false
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			q := p3.Add(chainDirs[d])
			if f[idx(q)] != 0 {
				p4 = q
				break
			}
			if d == 0 {
				rightZero = true
			}
		}

		i3 := idx(p3)
		if rightZero {
			f[i3] = -nbd
		} else if f[i3] == 1 {
			f[i3] = nbd
		}
		chain = append(chain, p3)

		if p4 == start && p3 == p1 {
			return chain
		}
		p2, p3 = p3, p4
	}
}

// dirBetween returns the chain direction from a to its 8-neighbour b.
func dirBetween(a, b image.Point) int {
	d := b.Sub(a)
	for k, c := range chainDirs {
		if c == d {
			return k
		}
	}
	return 0
}

// compressChain keeps the first point and every point where the step
// direction changes. The chain is closed: the last point connects to the first.
func compressChain(chain []image.Point) []image.Point {
	n := len(chain)
	if n <= 2 {
		out := make([]image.Point, n)
		copy(out, chain)
		return out
	}
	out := []image.Point{chain[0]}
	for k := 1; k < n; k++ {
		in := chain[k].Sub(chain[k-1])
		next := chain[(k+1)%n].Sub(chain[k])
		if in != next {
			out = append(out, chain[k])
		}
	}
	return out
}

// ContourArea returns the absolute polygon area of points (shoelace formula).
func ContourArea(points []image.Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := points[i]
		c := points[(i+1)%n]
		sum += float64(a.X)*float64(c.Y) - float64(c.X)*float64(a.Y)
	}
	return math.Abs(sum) / 2
}

// LargestContour returns the index of the contour with the largest area and
// that area. Ties keep the earliest contour. It returns -1 for an empty slice.
func LargestContour(contours []Contour) (int, float64) {
	best, bestArea := -1, 0.0
	for i, c := range contours {
		area := ContourArea(c.Points)
		if best < 0 || area > bestArea {
			best, bestArea = i, area
		}
	}
	return best, bestArea
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
