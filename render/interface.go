package render

import "github.com/gdamore/tcell/v2"

// SystemRenderer draws one layer of the frame
type SystemRenderer interface {
	Render(ctx Context, buf *Buffer)
}

// VisibilityToggle is optionally implemented for runtime enable/disable
type VisibilityToggle interface {
	IsVisible() bool
}

// Screen is the subset of tcell.Screen the orchestrator writes to
type Screen interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Show()
	Sync()
}
