package blocks

import (
	"strings"
	"time"

	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/registry"
	"github.com/lixenwraith/scratchrun/value"
	"github.com/lixenwraith/scratchrun/vmath"
)

// stageDistance is reported when measuring against something without a position
const stageDistance = 10000

var epoch2000 = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func init() {
	registry.RegisterFamily("sensing", sensingHandlers)
}

func sensingHandlers() map[string]engine.Handler {
	return map[string]engine.Handler{
		"sensing_touchingobject":     touchingObject,
		"sensing_touchingobjectmenu": menu("TOUCHINGOBJECTMENU"),
		"sensing_distanceto":         distanceTo,
		"sensing_distancetomenu":     menu("DISTANCETOMENU"),
		"sensing_keypressed":         keyPressed,
		"sensing_keyoptions":         menu("KEY_OPTION"),
		"sensing_mousedown":          mouseDown,
		"sensing_mousex":             mouseX,
		"sensing_mousey":             mouseY,
		"sensing_timer":              timer,
		"sensing_resettimer":         resetTimer,
		"sensing_dayssince2000":      daysSince2000,
		"sensing_username":           username,
		"sensing_current":            current,
	}
}

func touchingObject(t *engine.Thread, id project.BlockID) (string, error) {
	if !sprite(t) {
		return value.False, nil
	}
	hit, err := t.World.Touching(t.Actor, t.Evaluate(id).Str("TOUCHINGOBJECTMENU"))
	if err != nil {
		return value.False, err
	}
	return value.FromBool(hit), nil
}

func distanceTo(t *engine.Thread, id project.BlockID) (string, error) {
	if !sprite(t) {
		return num(stageDistance), nil
	}
	x, y, err := t.World.TargetPosition(t.Evaluate(id).Str("DISTANCETOMENU"))
	if err != nil {
		return num(stageDistance), err
	}
	return display(vmath.Distance(t.Actor.X(), t.Actor.Y(), x, y)), nil
}

func keyPressed(t *engine.Thread, id project.BlockID) (string, error) {
	key := t.Evaluate(id).Str("KEY_OPTION")
	return value.FromBool(t.World.Input().Pressed(key)), nil
}

func mouseDown(t *engine.Thread, _ project.BlockID) (string, error) {
	return value.FromBool(t.World.Input().Down), nil
}

func mouseX(t *engine.Thread, _ project.BlockID) (string, error) {
	x, _ := t.World.Pointer()
	return display(x), nil
}

func mouseY(t *engine.Thread, _ project.BlockID) (string, error) {
	_, y := t.World.Pointer()
	return display(y), nil
}

func timer(t *engine.Thread, _ project.BlockID) (string, error) {
	return display(t.World.Timer()), nil
}

func resetTimer(t *engine.Thread, _ project.BlockID) (string, error) {
	t.World.ResetTimer()
	return "", nil
}

func daysSince2000(t *engine.Thread, _ project.BlockID) (string, error) {
	days := t.World.Clock().Now().Sub(epoch2000).Hours() / 24
	return display(days), nil
}

func username(t *engine.Thread, _ project.BlockID) (string, error) {
	return t.World.Config().Username, nil
}

// current reports a component of the local wall time
func current(t *engine.Thread, id project.BlockID) (string, error) {
	now := t.World.Clock().Now().Local()
	switch strings.ToUpper(t.Field(id, "CURRENTMENU").Value) {
	case "YEAR":
		return num(float64(now.Year())), nil
	case "MONTH":
		return num(float64(now.Month())), nil
	case "DATE":
		return num(float64(now.Day())), nil
	case "DAYOFWEEK":
		return num(float64(now.Weekday() + 1)), nil
	case "HOUR":
		return num(float64(now.Hour())), nil
	case "MINUTE":
		return num(float64(now.Minute())), nil
	case "SECOND":
		return num(float64(now.Second())), nil
	}
	return "", nil
}
