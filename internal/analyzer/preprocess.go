package analyzer

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// binomial5 is the 5-tap kernel used when sigma is derived from the kernel size.
var binomial5 = [5]float64{1, 4, 6, 4, 1}

// toGray converts img to 8-bit luma using 0.299 R + 0.587 G + 0.114 B.
func toGray(img image.Image) *image.Gray {
	return redChannel(imaging.Grayscale(img))
}

// gaussianBlur smooths gray with a separable 5x5 Gaussian. Border pixels
// are replicated.
func gaussianBlur(gray *image.Gray, sigma float64) *image.Gray {
	k := gaussianKernel5(sigma)
	var kernel [25]float64
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			kernel[y*5+x] = k[y] * k[x]
		}
	}
	return redChannel(imaging.Convolve5x5(gray, kernel, &imaging.ConvolveOptions{Normalize: true}))
}

func gaussianKernel5(sigma float64) [5]float64 {
	if sigma <= 0 {
		return binomial5
	}
	var k [5]float64
	for i := range k {
		d := float64(i - 2)
		k[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
	}
	return k
}

// redChannel copies the R channel of an image whose channels are equal
// into a single-channel buffer with origin (0, 0).
func redChannel(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		srow := src.Pix[y*src.Stride:]
		drow := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			drow[x] = srow[x*4]
		}
	}
	return dst
}
