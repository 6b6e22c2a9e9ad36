package input

import (
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Scratch key names for non-printable keys
var specialKeys = map[tcell.Key]string{
	tcell.KeyUp:         "up arrow",
	tcell.KeyDown:       "down arrow",
	tcell.KeyLeft:       "left arrow",
	tcell.KeyRight:      "right arrow",
	tcell.KeyEnter:      "enter",
	tcell.KeyTab:        "tab",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyDelete:     "delete",
	tcell.KeyHome:       "home",
	tcell.KeyEnd:        "end",
	tcell.KeyPgUp:       "page up",
	tcell.KeyPgDn:       "page down",
	tcell.KeyInsert:     "insert",
}

// KeyName maps a terminal key event to a Scratch key name; ok is false for unmapped keys
func KeyName(ev *tcell.EventKey) (string, bool) {
	if name, ok := specialKeys[ev.Key()]; ok {
		return name, true
	}
	if ev.Key() != tcell.KeyRune {
		return "", false
	}
	r := ev.Rune()
	switch {
	case r == ' ':
		return "space", true
	case unicode.IsPrint(r):
		return strings.ToLower(string(r)), true
	}
	return "", false
}

// IsQuit reports whether the event is a host quit chord
func IsQuit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC
}
