package vmath

import "math"

// NormalizeDegrees folds any angle into [0, 360)
func NormalizeDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	// -1e-15 + 360 rounds to 360
	if d >= 360 {
		d = 0
	}
	return d
}

// Step returns the displacement of moving n units along heading
// Heading convention: 0 = up (+y), 90 = right (+x), clockwise positive
func Step(heading, n float64) (dx, dy float64) {
	rad := heading * math.Pi / 180
	return n * math.Sin(rad), n * math.Cos(rad)
}

// HeadingTowards returns the heading from (x0,y0) pointing at (x1,y1), normalized
func HeadingTowards(x0, y0, x1, y1 float64) float64 {
	dx, dy := x1-x0, y1-y0
	if dx == 0 && dy == 0 {
		return 90
	}
	return NormalizeDegrees(90 - math.Atan2(dy, dx)*180/math.Pi)
}

// Distance between two points
func Distance(x0, y0, x1, y1 float64) float64 {
	return math.Hypot(x1-x0, y1-y0)
}

// RotatedExtent returns the axis-aligned size of a w*h box rotated by heading
// Heading 90 is the unrotated pose
func RotatedExtent(w, h, heading float64) (float64, float64) {
	rad := (heading - 90) * math.Pi / 180
	s, c := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))
	return w*c + h*s, w*s + h*c
}
