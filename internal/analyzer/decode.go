package analyzer

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

var errEmptyInput = errors.New("empty input")

// decodeImage decodes data with EXIF orientation applied, so a photo taken
// in portrait mode is analyzed the way it is displayed.
func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &ImageDecodeError{Cause: errEmptyInput}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &ImageDecodeError{Cause: err}
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, &ImageDecodeError{Cause: errors.New("image has no pixels")}
	}
	return img, nil
}
