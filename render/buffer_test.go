package render

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

// fakeScreen records flushed cells
type fakeScreen struct {
	cells map[[2]int]rune
	shows int
	syncs int
}

func newFakeScreen() *fakeScreen { return &fakeScreen{cells: map[[2]int]rune{}} }

func (s *fakeScreen) SetContent(x, y int, r rune, _ []rune, _ tcell.Style) {
	s.cells[[2]int{x, y}] = r
}
func (s *fakeScreen) Show() { s.shows++ }
func (s *fakeScreen) Sync() { s.syncs++ }

// row reads a buffer row as a string
func row(b *Buffer, y int) string {
	w, _ := b.Bounds()
	out := make([]rune, 0, w)
	for x := 0; x < w; x++ {
		if r := b.Get(x, y).Rune; r != 0 {
			out = append(out, r)
		}
	}
	return string(out)
}

func TestBufferSetGet(t *testing.T) {
	b := NewBuffer(4, 2)
	b.Set(1, 1, 'x', tcell.StyleDefault)
	b.Set(-1, 0, 'y', tcell.StyleDefault)
	b.Set(4, 0, 'y', tcell.StyleDefault)

	if got := b.Get(1, 1).Rune; got != 'x' {
		t.Errorf("Get(1,1) = %q", got)
	}
	if got := b.Get(9, 9).Rune; got != ' ' {
		t.Errorf("out of bounds Get = %q, want blank", got)
	}
	if row(b, 0) != "    " {
		t.Errorf("row 0 = %q, out of bounds writes leaked", row(b, 0))
	}

	b.Clear()
	if row(b, 1) != "    " {
		t.Errorf("row 1 after clear = %q", row(b, 1))
	}
}

func TestBufferText(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxWidth int
		wantUsed int
		wantRow  string
	}{
		{"fits", "abc", 10, 3, "abc       "},
		{"clipped", "abcdef", 4, 4, "abcd      "},
		{"wide runes", "日本", 10, 4, "日本      "},
		{"wide rune clipped", "日本", 3, 2, "日        "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(10, 1)
			if used := b.Text(0, 0, tt.s, tcell.StyleDefault, tt.maxWidth); used != tt.wantUsed {
				t.Errorf("used = %d, want %d", used, tt.wantUsed)
			}
			if got := row(b, 0); got != tt.wantRow {
				t.Errorf("row = %q, want %q", got, tt.wantRow)
			}
		})
	}
}

func TestBufferBox(t *testing.T) {
	b := NewBuffer(5, 3)
	b.Box(0, 0, 5, 3, tcell.StyleDefault)
	want := []string{"┌───┐", "│   │", "└───┘"}
	for y, w := range want {
		if got := row(b, y); got != w {
			t.Errorf("row %d = %q, want %q", y, got, w)
		}
	}

	small := NewBuffer(3, 1)
	small.Box(1, 0, 1, 1, tcell.StyleDefault)
	if got := row(small, 0); got != " █ " {
		t.Errorf("degenerate box = %q", got)
	}
}

func TestBufferResizeAndFlush(t *testing.T) {
	b := NewBuffer(2, 2)
	b.Set(0, 0, 'a', tcell.StyleDefault)
	b.Resize(3, 1)
	if w, h := b.Bounds(); w != 3 || h != 1 {
		t.Fatalf("bounds = %dx%d", w, h)
	}
	if row(b, 0) != "   " {
		t.Errorf("resize did not clear: %q", row(b, 0))
	}

	b.Set(2, 0, 'z', tcell.StyleDefault)
	s := newFakeScreen()
	b.Flush(s)
	if len(s.cells) != 3 || s.cells[[2]int{2, 0}] != 'z' {
		t.Errorf("flushed %v", s.cells)
	}

	b.Resize(-1, 5)
	if w, h := b.Bounds(); w != 0 || h != 5 {
		t.Errorf("negative resize bounds = %dx%d", w, h)
	}
}
