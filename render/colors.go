package render

import (
	"hash/fnv"

	"github.com/gdamore/tcell/v2"
)

// Terminal palette
var (
	RgbBackground  = tcell.NewRGBColor(26, 27, 38)    // Tokyo Night background
	RgbStageBorder = tcell.NewRGBColor(86, 95, 137)   // Muted blue-gray
	RgbCaption     = tcell.NewRGBColor(255, 255, 255) // White speech text
	RgbCaptionBg   = tcell.NewRGBColor(60, 60, 80)    // Dark bubble
	RgbMonitorBg   = tcell.NewRGBColor(255, 140, 26)  // Variable orange
	RgbListBg      = tcell.NewRGBColor(255, 102, 26)  // List red-orange
	RgbMonitorText = tcell.NewRGBColor(0, 0, 0)
	RgbStatusBar   = tcell.NewRGBColor(135, 206, 250) // Light sky blue
	RgbStatusText  = tcell.NewRGBColor(0, 0, 0)
	RgbStatusError = tcell.NewRGBColor(200, 50, 50)
)

// spritePalette colors sprites by name so clones share their parent's color
var spritePalette = []tcell.Color{
	tcell.NewRGBColor(0, 200, 0),     // Green
	tcell.NewRGBColor(100, 150, 255), // Blue
	tcell.NewRGBColor(255, 80, 80),   // Red
	tcell.NewRGBColor(255, 255, 0),   // Yellow
	tcell.NewRGBColor(0, 200, 200),   // Cyan
	tcell.NewRGBColor(255, 165, 0),   // Orange
	tcell.NewRGBColor(200, 120, 255), // Violet
}

// SpriteColor returns the stable palette color for a sprite name
func SpriteColor(name string) tcell.Color {
	h := fnv.New32a()
	h.Write([]byte(name))
	return spritePalette[h.Sum32()%uint32(len(spritePalette))]
}
