package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Cell is one terminal cell
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Buffer is the frame compositor; renderers write here and the orchestrator flushes once
type Buffer struct {
	cells  []Cell
	width  int
	height int
	blank  Cell
}

// NewBuffer creates a cleared buffer
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{blank: Cell{Rune: ' ', Style: tcell.StyleDefault.Background(RgbBackground)}}
	b.Resize(width, height)
	return b
}

// Resize adjusts dimensions, reallocating only if capacity is insufficient
func (b *Buffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.width, b.height = width, height
	b.Clear()
}

// Clear resets all cells using exponential copy
func (b *Buffer) Clear() {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = b.blank
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
}

// Bounds returns width and height
func (b *Buffer) Bounds() (int, int) { return b.width, b.height }

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// ===== COMPOSITOR API =====

// Set writes one cell; out of bounds writes are dropped
func (b *Buffer) Set(x, y int, r rune, style tcell.Style) {
	if !b.inBounds(x, y) {
		return
	}
	b.cells[y*b.width+x] = Cell{Rune: r, Style: style}
}

// Get returns a cell, or a blank one out of bounds
func (b *Buffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return b.blank
	}
	return b.cells[y*b.width+x]
}

// Text writes s from (x, y) clipped to maxWidth columns and returns the columns used
func (b *Buffer) Text(x, y int, s string, style tcell.Style, maxWidth int) int {
	col := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > maxWidth {
			break
		}
		b.Set(x+col, y, r, style)
		for i := 1; i < w; i++ {
			b.Set(x+col+i, y, 0, style)
		}
		col += w
	}
	return col
}

// Fill paints a rectangle of cells
func (b *Buffer) Fill(x, y, w, h int, r rune, style tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			b.Set(col, row, r, style)
		}
	}
}

// Box draws a single-line frame; boxes narrower than 2 cells degrade to a filled block
func (b *Buffer) Box(x, y, w, h int, style tcell.Style) {
	if w <= 0 || h <= 0 {
		return
	}
	if w < 2 || h < 2 {
		b.Fill(x, y, w, h, '█', style)
		return
	}
	right, bottom := x+w-1, y+h-1
	for col := x + 1; col < right; col++ {
		b.Set(col, y, '─', style)
		b.Set(col, bottom, '─', style)
	}
	for row := y + 1; row < bottom; row++ {
		b.Set(x, row, '│', style)
		b.Set(right, row, '│', style)
	}
	b.Set(x, y, '┌', style)
	b.Set(right, y, '┐', style)
	b.Set(x, bottom, '└', style)
	b.Set(right, bottom, '┘', style)
}

// Flush copies every cell to the screen
func (b *Buffer) Flush(s Screen) {
	for y := 0; y < b.height; y++ {
		row := b.cells[y*b.width : (y+1)*b.width]
		for x, c := range row {
			s.SetContent(x, y, c.Rune, nil, c.Style)
		}
	}
}
