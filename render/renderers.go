package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/scratchrun/core"
	"github.com/lixenwraith/scratchrun/status"
	"github.com/lixenwraith/scratchrun/vmath"
)

// maxCaption clips say/think bubbles
const maxCaption = 40

// ===== Stage =====

// StageRenderer paints the stage background and the current backdrop name
type StageRenderer struct{}

func (r *StageRenderer) Render(ctx Context, buf *Buffer) {
	x, y := int(ctx.Stage.Min.X), int(ctx.Stage.Min.Y)
	w, h := int(ctx.Stage.Width()), int(ctx.Stage.Height())
	style := tcell.StyleDefault.Background(RgbBackground).Foreground(RgbStageBorder)
	buf.Fill(x, y, w, h, ' ', style)

	stage := ctx.World.Stage()
	if c, ok := stage.Costume(); ok && c.Name != "" && w > 4 {
		name := " " + c.Name + " "
		buf.Text(x+w-len([]rune(name))-1, y, name, style, w-2)
	}
}

// ===== Sprites =====

// SpriteRenderer draws each visible sprite as a labelled box in layer order
type SpriteRenderer struct{}

func (r *SpriteRenderer) Render(ctx Context, buf *Buffer) {
	surface := ctx.World.Surface()
	for _, a := range ctx.Actors {
		if a.IsStage() || !a.Visible() || a.Deleted() {
			continue
		}
		x, y, w, h := ctx.CellRect(surface.Bounds(a))
		style := tcell.StyleDefault.Background(RgbBackground).Foreground(SpriteColor(a.Name))
		buf.Box(x, y, w, h, style)
		if w > 2 && h > 2 {
			buf.Text(x+1, y+1, a.Name, style.Bold(true), w-2)
			if c, ok := a.Costume(); ok && h > 3 {
				buf.Text(x+1, y+2, c.Name, style.Dim(true), w-2)
			}
		}
	}
}

// ===== Captions =====

// CaptionRenderer draws say and think bubbles above their sprites
type CaptionRenderer struct{}

func (r *CaptionRenderer) Render(ctx Context, buf *Buffer) {
	surface := ctx.World.Surface()
	style := tcell.StyleDefault.Background(RgbCaptionBg).Foreground(RgbCaption)
	for _, a := range ctx.Actors {
		text := a.Caption()
		if text == "" || !a.Visible() || a.Deleted() {
			continue
		}
		x, y, w, _ := ctx.CellRect(surface.Bounds(a))
		buf.Text(x+w/2, max(y-1, int(ctx.Stage.Min.Y)), Bubble(text, a.Thinking()), style, ctx.ScreenWidth-x-w/2)
	}
}

// Bubble formats a caption; think bubbles use parentheses
func Bubble(text string, think bool) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if r := []rune(text); len(r) > maxCaption {
		text = string(r[:maxCaption-1]) + "…"
	}
	if think {
		return "(" + text + ")"
	}
	return "<" + text + ">"
}

// ===== Monitors =====

// MonitorRenderer draws visible monitors at their stage positions
type MonitorRenderer struct {
	visible bool
}

// NewMonitorRenderer returns an enabled monitor renderer
func NewMonitorRenderer() *MonitorRenderer { return &MonitorRenderer{visible: true} }

// IsVisible implements VisibilityToggle
func (r *MonitorRenderer) IsVisible() bool { return r.visible }

// Toggle flips monitor drawing
func (r *MonitorRenderer) Toggle() { r.visible = !r.visible }

func (r *MonitorRenderer) Render(ctx Context, buf *Buffer) {
	for _, m := range ctx.Monitors {
		if !m.Visible {
			continue
		}
		x, y := ctx.Output.Map(m.X, m.Y)
		col, row := int(x), int(y)
		width := ctx.ScreenWidth - col
		if m.Items != nil || m.Mode == "list" {
			style := tcell.StyleDefault.Background(RgbListBg).Foreground(RgbMonitorText)
			used := buf.Text(col, row, m.Label, style.Bold(true), width)
			buf.Text(col+used, row, fmt.Sprintf(" (%d)", len(m.Items)), style, width-used)
			for i, it := range m.Items {
				r := row + 1 + i
				if r >= int(ctx.Stage.Max.Y) {
					break
				}
				buf.Text(col, r, fmt.Sprintf("%d %s", i+1, it), style, width)
			}
			continue
		}
		style := tcell.StyleDefault.Background(RgbMonitorBg).Foreground(RgbMonitorText)
		used := buf.Text(col, row, m.Label+" ", style.Bold(true), width)
		buf.Text(col+used, row, m.Value, style, width-used)
	}
}

// ===== Status bar =====

// StatusBarRenderer shows frame rate, thread count and the latest block error on the last row
type StatusBarRenderer struct{}

func (r *StatusBarRenderer) Render(ctx Context, buf *Buffer) {
	row := ctx.ScreenHeight - 1
	if row < 1 {
		return
	}
	style := tcell.StyleDefault.Background(RgbStatusBar).Foreground(RgbStatusText)
	buf.Fill(0, row, ctx.ScreenWidth, 1, ' ', style)

	text := fmt.Sprintf(" fps %.0f | threads %d | clones %d | errors %d ",
		ctx.FPS,
		metricInt(ctx.Metrics, status.TasksLive),
		metricInt(ctx.Metrics, status.ClonesLive),
		metricInt(ctx.Metrics, status.HandlerErrors)+metricInt(ctx.Metrics, status.ResolveErrors)+metricInt(ctx.Metrics, status.MissingHandlers))
	if ctx.World.Stopped() {
		text += "| stopped "
	}
	used := buf.Text(0, row, text, style, ctx.ScreenWidth)

	if last, _ := ctx.Metrics[status.LastError].(string); last != "" {
		errStyle := style.Background(RgbStatusError).Foreground(RgbCaption)
		buf.Text(used, row, " "+last, errStyle, ctx.ScreenWidth-used)
	}
}

func metricInt(m map[string]any, key string) int64 {
	v, _ := m[key].(int64)
	return v
}

// HitCell maps a terminal cell to the output canvas, at the cell's center
func HitCell(output vmath.Mapper, col, row int) core.Point {
	return output.Inverse().MapPoint(core.Point{X: float64(col) + 0.5, Y: float64(row) + 0.5})
}
