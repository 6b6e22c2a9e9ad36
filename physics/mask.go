// Package physics implements the two-phase collision test used by touching blocks
package physics

import "math/bits"

// Mask is a 1-bit occupancy bitmap, row-major, one bit per output pixel
// Row 0 is the top edge of the owning bounding box
type Mask struct {
	w, h   int
	stride int // words per row
	words  []uint64
}

// NewMask allocates an empty w*h mask; non-positive sizes yield an empty mask
func NewMask(w, h int) *Mask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	stride := (w + 63) / 64
	return &Mask{w: w, h: h, stride: stride, words: make([]uint64, stride*h)}
}

// FullMask returns a w*h mask with every bit set
func FullMask(w, h int) *Mask {
	m := NewMask(w, h)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			m.Set(x, y)
		}
	}
	return m
}

// MaskFromRows parses rows of '#'/'.' runes; any rune other than '.' and ' ' is solid
func MaskFromRows(rows ...string) *Mask {
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	m := NewMask(w, len(rows))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			if r[x] != '.' && r[x] != ' ' {
				m.Set(x, y)
			}
		}
	}
	return m
}

// Size returns the mask dimensions
func (m *Mask) Size() (int, int) { return m.w, m.h }

// Set marks (x,y) solid; out-of-range writes are ignored
func (m *Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return
	}
	m.words[y*m.stride+x/64] |= 1 << (uint(x) % 64)
}

// Get reports whether (x,y) is solid; out of range reads are empty
func (m *Mask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.words[y*m.stride+x/64]&(1<<(uint(x)%64)) != 0
}

// Count returns the number of solid bits
func (m *Mask) Count() int {
	n := 0
	for _, w := range m.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Scaled returns a nearest-neighbour resample to w*h
func (m *Mask) Scaled(w, h int) *Mask {
	if w == m.w && h == m.h {
		return m
	}
	out := NewMask(w, h)
	if m.w == 0 || m.h == 0 {
		return out
	}
	for y := 0; y < out.h; y++ {
		sy := y * m.h / out.h
		for x := 0; x < out.w; x++ {
			if m.Get(x*m.w/out.w, sy) {
				out.Set(x, y)
			}
		}
	}
	return out
}

// Overlaps reports whether any solid bit of o, placed with its origin at (dx,dy)
// in m's coordinates, coincides with a solid bit of m
func (m *Mask) Overlaps(o *Mask, dx, dy int) bool {
	x0, x1 := max(0, dx), min(m.w, dx+o.w)
	y0, y1 := max(0, dy), min(m.h, dy+o.h)
	if x0 >= x1 || y0 >= y1 {
		return false
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if m.Get(x, y) && o.Get(x-dx, y-dy) {
				return true
			}
		}
	}
	return false
}
