package model

// Twips is the base length unit: 1/20 of a point, 1/1440 of an inch.
// Word-processing layout is done in integral twips so that positions
// round-trip exactly through the persisted layout cache.
type Twips int32

// Conversion factors for Twips.
const (
	TwipsPerPoint Twips = 20
	TwipsPerInch  Twips = 1440
)

// FromPoints converts a length in points to twips.
func FromPoints(pt float64) Twips {
	return Twips(pt * float64(TwipsPerPoint))
}

// FromInches converts a length in inches to twips.
func FromInches(in float64) Twips {
	return Twips(in * float64(TwipsPerInch))
}

// FromPixels converts a pixel count at the given DPI to twips.
// A dpi of 0 is treated as 96, the conventional screen resolution.
func FromPixels(px int, dpi float64) Twips {
	if dpi <= 0 {
		dpi = 96
	}
	return Twips(float64(px) / dpi * float64(TwipsPerInch))
}

// Points converts twips back to points.
func (t Twips) Points() float64 {
	return float64(t) / float64(TwipsPerPoint)
}

// Point represents a 2D position in twips.
type Point struct {
	X, Y Twips
}

// Size represents a 2D extent in twips.
type Size struct {
	W, H Twips
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool {
	return s.W == 0 && s.H == 0
}
