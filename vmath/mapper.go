// Package vmath holds the coordinate and heading math shared by the engine and hosts
package vmath

import (
	"math"

	"github.com/lixenwraith/scratchrun/core"
)

// Space describes a rectangular coordinate space by the values at its edges
// Left/Right are the X values of the left and right edges, Bottom/Top the Y values of the
// bottom and top edges; a space with Top < Bottom has Y growing downward
type Space struct {
	Left, Right float64
	Bottom, Top float64
}

// Logical is the centered stage space: +x right, +y up
var Logical = Space{Left: -240, Right: 240, Bottom: -180, Top: 180}

// Canvas returns a top-left origin pixel space of the given size
func Canvas(width, height int) Space {
	return Space{Left: 0, Right: float64(width), Bottom: float64(height), Top: 0}
}

// Width is the signed extent along X
func (s Space) Width() float64 { return s.Right - s.Left }

// Height is the signed extent along Y, bottom to top
func (s Space) Height() float64 { return s.Top - s.Bottom }

// Bounds returns the space as a canonical rectangle
func (s Space) Bounds() core.Rect {
	return core.Rect{
		Min: core.Point{X: s.Left, Y: s.Bottom},
		Max: core.Point{X: s.Right, Y: s.Top},
	}.Canon()
}

// Mapper is a linear transform from one space to another
// Zero-size spaces are rejected by NewMapper
type Mapper struct {
	from, to       Space
	scaleX, scaleY float64
}

// NewMapper builds the transform from -> to; ok is false for degenerate spaces
func NewMapper(from, to Space) (Mapper, bool) {
	if from.Width() == 0 || from.Height() == 0 || to.Width() == 0 || to.Height() == 0 {
		return Mapper{}, false
	}
	return Mapper{
		from:   from,
		to:     to,
		scaleX: to.Width() / from.Width(),
		scaleY: to.Height() / from.Height(),
	}, true
}

// MustMapper is NewMapper for compile-time known spaces
func MustMapper(from, to Space) Mapper {
	m, ok := NewMapper(from, to)
	if !ok {
		panic("vmath: degenerate coordinate space")
	}
	return m
}

// From returns the source space
func (m Mapper) From() Space { return m.from }

// To returns the destination space
func (m Mapper) To() Space { return m.to }

// Map converts a point from the source to the destination space
func (m Mapper) Map(x, y float64) (float64, float64) {
	return m.to.Left + (x-m.from.Left)*m.scaleX,
		m.to.Bottom + (y-m.from.Bottom)*m.scaleY
}

// MapPoint is Map for core.Point
func (m Mapper) MapPoint(p core.Point) core.Point {
	x, y := m.Map(p.X, p.Y)
	return core.Point{X: x, Y: y}
}

// MapInt converts and rounds to the nearest integer cell/pixel
func (m Mapper) MapInt(x, y float64) (int, int) {
	fx, fy := m.Map(x, y)
	return int(math.Round(fx)), int(math.Round(fy))
}

// Scale returns the absolute per-axis magnification
func (m Mapper) Scale() (float64, float64) {
	return math.Abs(m.scaleX), math.Abs(m.scaleY)
}

// MapRect converts a rectangle and returns it canonical
func (m Mapper) MapRect(r core.Rect) core.Rect {
	return core.Rect{Min: m.MapPoint(r.Min), Max: m.MapPoint(r.Max)}.Canon()
}

// Inverse returns the transform back to the source space
func (m Mapper) Inverse() Mapper {
	return MustMapper(m.to, m.from)
}
