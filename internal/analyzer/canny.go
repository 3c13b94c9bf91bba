package analyzer

import (
	"image"
	"math"
)

// cannyDetector implements EdgeDetector with Sobel gradients, non-maximum
// suppression and hysteresis linking.
type cannyDetector struct {
	low, high int
}

// NewCannyDetector creates an edge detector with the given hysteresis
// thresholds. Thresholds apply to |gx| + |gy| of the 3x3 Sobel response.
func NewCannyDetector(low, high float64) EdgeDetector {
	if low > high {
		low, high = high, low
	}
	return &cannyDetector{low: int(math.Floor(low)), high: int(math.Floor(high))}
}

// tan(22.5°) and tan(67.5°) in 15-bit fixed point
const (
	tg22 = 13573
	tg67 = 79109
)

const (
	pixNone = iota
	pixWeak
	pixStrong
)

// DetectEdges returns a binary map with the same size as gray, origin (0, 0).
//
// A pixel is a candidate when its magnitude exceeds the low threshold and it
// is a local maximum along its quantized gradient direction. Candidates above
// the high threshold are strong edges; the remaining candidates are kept only
// when 8-connected to a strong edge through other candidates.
func (d *cannyDetector) DetectEdges(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	// mag and state carry a one-pixel zero frame so border pixels take part
	// in suppression and linking
	pw := w + 2
	dx := make([]int, w*h)
	dy := make([]int, w*h)
	mag := make([]int, pw*(h+2))
	at := func(x, y int) int {
		x = clamp(x, 0, w-1)
		y = clamp(y, 0, h-1)
		return int(gray.Pix[(y+b.Min.Y-gray.Rect.Min.Y)*gray.Stride+(x+b.Min.X-gray.Rect.Min.X)])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			i := y*w + x
			dx[i], dy[i] = gx, gy
			mag[(y+1)*pw+x+1] = abs(gx) + abs(gy)
		}
	}

	state := make([]uint8, len(mag))
	stack := make([]int, 0, 256)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			pi := (y+1)*pw + x + 1
			m := mag[pi]
			if m <= d.low || !d.isLocalMax(mag, dx[i], dy[i], pi, pw) {
				continue
			}
			if m > d.high {
				state[pi] = pixStrong
				stack = append(stack, pi)
			} else {
				state[pi] = pixWeak
			}
		}
	}

	neighbours := [8]int{-pw - 1, -pw, -pw + 1, -1, 1, pw - 1, pw, pw + 1}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, off := range neighbours {
			j := i + off
			if state[j] == pixWeak {
				state[j] = pixStrong
				stack = append(stack, j)
			}
		}
	}

	for y := 0; y < h; y++ {
		row := state[(y+1)*pw+1:]
		for x := 0; x < w; x++ {
			if row[x] == pixStrong {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// isLocalMax compares the magnitude at i with its two neighbours across the
// edge. mag is framed, so w is the padded row width. The comparison is strict on one side so plateaus two pixels wide
// produce a single edge pixel.
func (d *cannyDetector) isLocalMax(mag []int, gx, gy, i, w int) bool {
	m := mag[i]
	xs, ys := abs(gx), abs(gy)
	tg22x := xs * tg22
	y15 := ys << 15

	switch {
	case y15 < tg22x:
		return m > mag[i-1] && m >= mag[i+1]
	case y15 > xs*tg67:
		return m > mag[i-w] && m >= mag[i+w]
	default:
		s := 1
		if (gx < 0) != (gy < 0) {
			s = -1
		}
		return m > mag[i-w-s] && m > mag[i+w+s]
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
