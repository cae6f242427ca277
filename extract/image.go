package extract

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/segment"
)

// DefaultThreshold keeps pixels brighter than 127 after optional inversion.
const DefaultThreshold = 128

// Load decodes the image at path and binarizes it with Binarize.
func Load(path string, threshold uint8, invert bool) (*image.Gray, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: open %s: %w", path, err)
	}
	return Binarize(img, threshold, invert), nil
}

// Binarize turns img into a mask where foreground pixels are 0xFF. With
// invert set, dark shapes on a light background become foreground.
func Binarize(img image.Image, threshold uint8, invert bool) *image.Gray {
	if invert {
		img = effect.Invert(img)
	}
	return segment.Threshold(img, threshold)
}
