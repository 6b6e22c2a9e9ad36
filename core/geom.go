package core

import "math"

// Point is a position in either logical or output space
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned box; Min is inclusive, Max is exclusive
type Rect struct {
	Min, Max Point
}

// RectFromCenter builds a box of the given size centered on c
func RectFromCenter(c Point, width, height float64) Rect {
	return Rect{
		Min: Point{X: c.X - width/2, Y: c.Y - height/2},
		Max: Point{X: c.X + width/2, Y: c.Y + height/2},
	}
}

// Width of the box
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height of the box
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Empty reports whether the box has no area
func (r Rect) Empty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

// Canon returns r with Min/Max swapped where inverted
func (r Rect) Canon() Rect {
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Overlaps reports whether two boxes share any area
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X &&
		r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Intersect returns the shared area of two boxes, empty if disjoint
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Min: Point{X: math.Max(r.Min.X, o.Min.X), Y: math.Max(r.Min.Y, o.Min.Y)},
		Max: Point{X: math.Min(r.Max.X, o.Max.X), Y: math.Min(r.Max.Y, o.Max.Y)},
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Contains reports whether o lies entirely inside r
func (r Rect) Contains(o Rect) bool {
	return o.Min.X >= r.Min.X && o.Max.X <= r.Max.X &&
		o.Min.Y >= r.Min.Y && o.Max.Y <= r.Max.Y
}

// ContainsPoint checks whether p is inside r
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Center point of the box
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}
