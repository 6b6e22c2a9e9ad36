package blocks

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/registry"
	"github.com/lixenwraith/scratchrun/value"
)

func init() {
	registry.RegisterFamily("looks", looksHandlers)
}

func looksHandlers() map[string]engine.Handler {
	return map[string]engine.Handler{
		"looks_say":                caption(false),
		"looks_think":              caption(true),
		"looks_sayforsecs":         captionFor(false),
		"looks_thinkforsecs":       captionFor(true),
		"looks_show":               show,
		"looks_hide":               hide,
		"looks_switchcostumeto":    switchCostumeTo,
		"looks_costume":            menu("COSTUME"),
		"looks_nextcostume":        nextCostume,
		"looks_switchbackdropto":   switchBackdropTo,
		"looks_backdrops":          menu("BACKDROP"),
		"looks_nextbackdrop":       nextBackdrop,
		"looks_changesizeby":       changeSizeBy,
		"looks_setsizeto":          setSizeTo,
		"looks_size":               size,
		"looks_costumenumbername":  costumeNumberName,
		"looks_backdropnumbername": backdropNumberName,
	}
}

// ===== Captions =====

func caption(think bool) engine.Handler {
	return func(t *engine.Thread, id project.BlockID) (string, error) {
		t.Actor.SetCaption(t.Evaluate(id).Str("MESSAGE"), think)
		return "", nil
	}
}

// captionFor shows a caption for SECS and clears it unless another block replaced it
func captionFor(think bool) engine.Handler {
	return func(t *engine.Thread, id project.BlockID) (string, error) {
		p := t.Evaluate(id)
		msg := p.Str("MESSAGE")
		a := t.Actor
		a.SetCaption(msg, think)
		err := t.Sleep(value.Seconds(p.Num("SECS")))
		if a.Caption() == msg {
			a.SetCaption("", false)
		}
		return "", err
	}
}

func show(t *engine.Thread, _ project.BlockID) (string, error) {
	t.Actor.SetVisible(true)
	return "", nil
}

func hide(t *engine.Thread, _ project.BlockID) (string, error) {
	t.Actor.SetVisible(false)
	return "", nil
}

// ===== Costumes and backdrops =====

// selectCostume applies a costume menu value: a name, a keyword or a 1-based number
func selectCostume(a *engine.Actor, v string, backdrop bool) {
	if i := a.CostumeByName(v); i >= 0 {
		a.SetCostumeIndex(i)
		return
	}
	n := len(a.Costumes())
	if n == 0 {
		return
	}
	switch strings.ToLower(v) {
	case "next costume", "next backdrop":
		a.SetCostumeIndex(a.CostumeIndex() + 1)
		return
	case "previous costume", "previous backdrop":
		a.SetCostumeIndex(a.CostumeIndex() - 1)
		return
	case "random backdrop":
		if backdrop && n > 1 {
			// never the current one
			a.SetCostumeIndex(a.CostumeIndex() + 1 + rand.IntN(n-1))
		}
		return
	}
	if f := value.ToNumber(v); value.IsNumber(v) && !math.IsInf(f, 0) {
		a.SetCostumeIndex(int(math.Floor(f+0.5)) - 1)
	}
}

func switchCostumeTo(t *engine.Thread, id project.BlockID) (string, error) {
	if sprite(t) {
		selectCostume(t.Actor, t.Evaluate(id).Str("COSTUME"), false)
	}
	return "", nil
}

func nextCostume(t *engine.Thread, _ project.BlockID) (string, error) {
	if sprite(t) {
		t.Actor.SetCostumeIndex(t.Actor.CostumeIndex() + 1)
	}
	return "", nil
}

func switchBackdropTo(t *engine.Thread, id project.BlockID) (string, error) {
	if stage := t.World.Stage(); stage != nil {
		selectCostume(stage, t.Evaluate(id).Str("BACKDROP"), true)
	}
	return "", nil
}

func nextBackdrop(t *engine.Thread, _ project.BlockID) (string, error) {
	if stage := t.World.Stage(); stage != nil {
		stage.SetCostumeIndex(stage.CostumeIndex() + 1)
	}
	return "", nil
}

// numberName reports a 1-based index or a name depending on the NUMBER_NAME field
func numberName(t *engine.Thread, id project.BlockID, a *engine.Actor) string {
	if a == nil {
		return ""
	}
	if t.Field(id, "NUMBER_NAME").Value == "name" {
		c, _ := a.Costume()
		return c.Name
	}
	return num(float64(a.CostumeIndex() + 1))
}

func costumeNumberName(t *engine.Thread, id project.BlockID) (string, error) {
	return numberName(t, id, t.Actor), nil
}

func backdropNumberName(t *engine.Thread, id project.BlockID) (string, error) {
	return numberName(t, id, t.World.Stage()), nil
}

// ===== Size =====

func changeSizeBy(t *engine.Thread, id project.BlockID) (string, error) {
	if sprite(t) {
		t.Actor.SetSize(t.Actor.Size() + t.Evaluate(id).Num("CHANGE"))
	}
	return "", nil
}

func setSizeTo(t *engine.Thread, id project.BlockID) (string, error) {
	if sprite(t) {
		t.Actor.SetSize(t.Evaluate(id).Num("SIZE"))
	}
	return "", nil
}

func size(t *engine.Thread, _ project.BlockID) (string, error) {
	return display(t.Actor.Size()), nil
}
