package photostamp

import "math"

// Geometry sizes the stamp band and its text for one image.
type Geometry struct {
	// Margin is the height of the white band added below the image.
	Margin      int
	CaptionSize int
	DateSize    int
	// DateOffset is the distance from the canvas bottom to the date line.
	DateOffset int
}

// SizingFunc derives the stamp geometry from the source image size.
type SizingFunc func(width, height int) Geometry

// ScaledSizing scales the band and fonts with image height so stamps look
// alike across resolutions.
func ScaledSizing(_, height int) Geometry {
	margin := int(math.Round(float64(height)/10)) + 10
	return Geometry{
		Margin:      margin,
		CaptionSize: margin / 2,
		DateSize:    margin / 4,
		DateOffset:  int(float64(margin) / 2.5),
	}
}

// FixedSizing uses the same geometry for every image.
func FixedSizing(g Geometry) SizingFunc {
	return func(int, int) Geometry { return g }
}
