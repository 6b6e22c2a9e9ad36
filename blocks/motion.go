package blocks

import (
	"math/rand/v2"

	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/registry"
	"github.com/lixenwraith/scratchrun/value"
	"github.com/lixenwraith/scratchrun/vmath"
)

func init() {
	registry.RegisterFamily("motion", motionHandlers)
}

func motionHandlers() map[string]engine.Handler {
	return map[string]engine.Handler{
		"motion_movesteps":         moveSteps,
		"motion_gotoxy":            goToXY,
		"motion_goto":              goTo,
		"motion_goto_menu":         menu("TO"),
		"motion_glideto":           glideTo,
		"motion_glideto_menu":      menu("TO"),
		"motion_glidesecstoxy":     glideSecsToXY,
		"motion_turnright":         turnRight,
		"motion_turnleft":          turnLeft,
		"motion_pointindirection":  pointInDirection,
		"motion_pointtowards":      pointTowards,
		"motion_pointtowards_menu": menu("TOWARDS"),
		"motion_setx":              setX,
		"motion_sety":              setY,
		"motion_changexby":         changeXBy,
		"motion_changeyby":         changeYBy,
		"motion_ifonedgebounce":    ifOnEdgeBounce,
		"motion_setrotationstyle":  setRotationStyle,
		"motion_xposition":         xPosition,
		"motion_yposition":         yPosition,
		"motion_direction":         direction,
	}
}

// ===== Position =====

func moveSteps(t *engine.Thread, id project.BlockID) (string, error) {
	if !sprite(t) {
		return "", nil
	}
	a := t.Actor
	dx, dy := vmath.Step(a.Direction(), t.Evaluate(id).Num("STEPS"))
	a.SetPosition(a.X()+dx, a.Y()+dy)
	return "", nil
}

func goToXY(t *engine.Thread, id project.BlockID) (string, error) {
	if !sprite(t) {
		return "", nil
	}
	p := t.Evaluate(id)
	t.Actor.SetPosition(p.Num("X"), p.Num("Y"))
	return "", nil
}

func goTo(t *engine.Thread, id project.BlockID) (string, error) {
	if !sprite(t) {
		return "", nil
	}
	x, y, err := t.World.TargetPosition(t.Evaluate(id).Str("TO"))
	if err != nil {
		return "", err
	}
	t.Actor.SetPosition(x, y)
	return "", nil
}

func setX(t *engine.Thread, id project.BlockID) (string, error) {
	if sprite(t) {
		t.Actor.SetX(t.Evaluate(id).Num("X"))
	}
	return "", nil
}

func setY(t *engine.Thread, id project.BlockID) (string, error) {
	if sprite(t) {
		t.Actor.SetY(t.Evaluate(id).Num("Y"))
	}
	return "", nil
}

// changeXBy and changeYBy are load-then-store; concurrent changes may be lost
func changeXBy(t *engine.Thread, id project.BlockID) (string, error) {
	if sprite(t) {
		t.Actor.SetX(t.Actor.X() + t.Evaluate(id).Num("DX"))
	}
	return "", nil
}

func changeYBy(t *engine.Thread, id project.BlockID) (string, error) {
	if sprite(t) {
		t.Actor.SetY(t.Actor.Y() + t.Evaluate(id).Num("DY"))
	}
	return "", nil
}

func ifOnEdgeBounce(t *engine.Thread, _ project.BlockID) (string, error) {
	if sprite(t) {
		t.World.Bounce(t.Actor)
	}
	return "", nil
}

// ===== Glide =====

func glideTo(t *engine.Thread, id project.BlockID) (string, error) {
	if !sprite(t) {
		return "", nil
	}
	p := t.Evaluate(id)
	x, y, err := t.World.TargetPosition(p.Str("TO"))
	if err != nil {
		return "", err
	}
	return "", glide(t, p.Num("SECS"), x, y)
}

func glideSecsToXY(t *engine.Thread, id project.BlockID) (string, error) {
	if !sprite(t) {
		return "", nil
	}
	p := t.Evaluate(id)
	return "", glide(t, p.Num("SECS"), p.Num("X"), p.Num("Y"))
}

// glide interpolates linearly over a fixed number of steps, sleeping between them
func glide(t *engine.Thread, secs, x, y float64) error {
	a := t.Actor
	if secs <= 0 {
		a.SetPosition(x, y)
		return nil
	}
	steps := t.World.Config().GlideSteps
	pause := value.Seconds(secs / float64(steps))
	x0, y0 := a.X(), a.Y()
	for i := 1; i <= steps; i++ {
		if err := t.Sleep(pause); err != nil {
			return err
		}
		f := float64(i) / float64(steps)
		a.SetPosition(x0+(x-x0)*f, y0+(y-y0)*f)
	}
	return nil
}

// ===== Heading =====

func turnRight(t *engine.Thread, id project.BlockID) (string, error) {
	if sprite(t) {
		t.Actor.SetDirection(t.Actor.Direction() + t.Evaluate(id).Num("DEGREES"))
	}
	return "", nil
}

func turnLeft(t *engine.Thread, id project.BlockID) (string, error) {
	if sprite(t) {
		t.Actor.SetDirection(t.Actor.Direction() - t.Evaluate(id).Num("DEGREES"))
	}
	return "", nil
}

func pointInDirection(t *engine.Thread, id project.BlockID) (string, error) {
	if sprite(t) {
		t.Actor.SetDirection(t.Evaluate(id).Num("DIRECTION"))
	}
	return "", nil
}

func pointTowards(t *engine.Thread, id project.BlockID) (string, error) {
	if !sprite(t) {
		return "", nil
	}
	target := t.Evaluate(id).Str("TOWARDS")
	a := t.Actor
	if target == engine.MenuRandom {
		a.SetDirection(float64(rand.IntN(360)))
		return "", nil
	}
	x, y, err := t.World.TargetPosition(target)
	if err != nil {
		return "", err
	}
	a.SetDirection(vmath.HeadingTowards(a.X(), a.Y(), x, y))
	return "", nil
}

func setRotationStyle(t *engine.Thread, id project.BlockID) (string, error) {
	switch style := t.Field(id, "STYLE").Value; style {
	case engine.RotateAllAround, engine.RotateLeftRight, engine.RotateNone:
		t.Actor.SetRotationStyle(style)
	}
	return "", nil
}

// ===== Reporters =====

func xPosition(t *engine.Thread, _ project.BlockID) (string, error) {
	return display(t.Actor.X()), nil
}

func yPosition(t *engine.Thread, _ project.BlockID) (string, error) {
	return display(t.Actor.Y()), nil
}

func direction(t *engine.Thread, _ project.BlockID) (string, error) {
	return display(t.Actor.Direction()), nil
}
