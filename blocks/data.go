package blocks

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/registry"
	"github.com/lixenwraith/scratchrun/value"
)

// MaxListLength caps list growth; additions past it are dropped
const MaxListLength = 200000

func init() {
	registry.RegisterFamily("data", dataHandlers)
}

func dataHandlers() map[string]engine.Handler {
	return map[string]engine.Handler{
		"data_variable":          variable,
		"data_setvariableto":     setVariableTo,
		"data_changevariableby":  changeVariableBy,
		"data_showvariable":      variableMonitor(true),
		"data_hidevariable":      variableMonitor(false),
		"data_listcontents":      listContents,
		"data_addtolist":         addToList,
		"data_deleteoflist":      deleteOfList,
		"data_deletealloflist":   deleteAllOfList,
		"data_insertatlist":      insertAtList,
		"data_replaceitemoflist": replaceItemOfList,
		"data_itemoflist":        itemOfList,
		"data_itemnumoflist":     itemNumOfList,
		"data_lengthoflist":      lengthOfList,
		"data_listcontainsitem":  listContainsItem,
		"data_showlist":          listMonitor(true),
		"data_hidelist":          listMonitor(false),
	}
}

// ===== Variables =====

func variable(t *engine.Thread, id project.BlockID) (string, error) {
	f := t.Field(id, "VARIABLE")
	return t.ReadVar(f.ID, f.Value), nil
}

func setVariableTo(t *engine.Thread, id project.BlockID) (string, error) {
	f := t.Field(id, "VARIABLE")
	t.WriteVar(f.ID, f.Value, t.Evaluate(id).Str("VALUE"))
	return "", nil
}

// changeVariableBy is load-then-store; concurrent changes may be lost
func changeVariableBy(t *engine.Thread, id project.BlockID) (string, error) {
	f := t.Field(id, "VARIABLE")
	delta := t.Evaluate(id).Num("VALUE")
	cur := value.ToNumber(t.ReadVar(f.ID, f.Value))
	t.WriteVar(f.ID, f.Value, num(cur+delta))
	return "", nil
}

func variableMonitor(visible bool) engine.Handler {
	return func(t *engine.Thread, id project.BlockID) (string, error) {
		f := t.Field(id, "VARIABLE")
		owner, vid, ok := t.World.ResolveVar(t.Actor, f.ID, f.Value)
		if !ok {
			return "", fmt.Errorf("%w: %s (%s)", engine.ErrVariableNotFound, f.Value, f.ID)
		}
		t.World.SetMonitorVisible(owner, vid, f.Value, false, visible)
		return "", nil
	}
}

// ===== List indexing =====

// ListIndex converts a 1-based index or the keywords last/random to a 0-based
// position in a list of n items; ok is false when it falls outside the list
func ListIndex(v string, n int) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "last":
		return n - 1, n > 0
	case "random", "any":
		if n == 0 {
			return -1, false
		}
		return rand.IntN(n), true
	}
	i := value.ToNumber(v)
	if i < 1 || i > float64(n) {
		return -1, false
	}
	return int(math.Floor(i)) - 1, true
}

func indexError(index, list string, n int) error {
	return fmt.Errorf("%w: %q of list %s (length %d)", engine.ErrIndexOutOfRange, index, list, n)
}

// mutate runs fn on a resolved list under the owner's lock
func mutate(t *engine.Thread, id project.BlockID, fn func(items []string) ([]string, error)) error {
	f := t.Field(id, "LIST")
	owner, lid, err := t.ListOwner(f.ID, f.Value)
	if err != nil {
		return err
	}
	var opErr error
	owner.ListOp(lid, func(items []string) []string {
		out, err := fn(items)
		if err != nil {
			opErr = err
			return items
		}
		return out
	})
	return opErr
}

func items(t *engine.Thread, id project.BlockID) ([]string, string, error) {
	f := t.Field(id, "LIST")
	list, err := t.ListItems(f.ID, f.Value)
	return list, f.Value, err
}

// ===== List mutation =====

func addToList(t *engine.Thread, id project.BlockID) (string, error) {
	item := t.Evaluate(id).Str("ITEM")
	return "", mutate(t, id, func(list []string) ([]string, error) {
		if len(list) >= MaxListLength {
			return list, nil
		}
		return append(list, item), nil
	})
}

func deleteOfList(t *engine.Thread, id project.BlockID) (string, error) {
	index := t.Evaluate(id).Str("INDEX")
	name := t.Field(id, "LIST").Value
	return "", mutate(t, id, func(list []string) ([]string, error) {
		if strings.EqualFold(index, "all") {
			return list[:0], nil
		}
		i, ok := ListIndex(index, len(list))
		if !ok {
			return nil, indexError(index, name, len(list))
		}
		return slices.Delete(list, i, i+1), nil
	})
}

func deleteAllOfList(t *engine.Thread, id project.BlockID) (string, error) {
	return "", mutate(t, id, func(list []string) ([]string, error) {
		return list[:0], nil
	})
}

// insertAtList accepts one past the end, which appends
func insertAtList(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	index, item := p.Str("INDEX"), p.Str("ITEM")
	name := t.Field(id, "LIST").Value
	return "", mutate(t, id, func(list []string) ([]string, error) {
		if len(list) >= MaxListLength {
			return list, nil
		}
		i, ok := len(list), true
		if !strings.EqualFold(index, "last") {
			i, ok = ListIndex(index, len(list)+1)
		}
		if !ok {
			return nil, indexError(index, name, len(list))
		}
		return slices.Insert(list, i, item), nil
	})
}

func replaceItemOfList(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	index, item := p.Str("INDEX"), p.Str("ITEM")
	name := t.Field(id, "LIST").Value
	return "", mutate(t, id, func(list []string) ([]string, error) {
		i, ok := ListIndex(index, len(list))
		if !ok {
			return nil, indexError(index, name, len(list))
		}
		list[i] = item
		return list, nil
	})
}

func listMonitor(visible bool) engine.Handler {
	return func(t *engine.Thread, id project.BlockID) (string, error) {
		f := t.Field(id, "LIST")
		owner, lid, err := t.ListOwner(f.ID, f.Value)
		if err != nil {
			return "", err
		}
		t.World.SetMonitorVisible(owner, lid, f.Value, true, visible)
		return "", nil
	}
}

// ===== List reporters =====

func listContents(t *engine.Thread, id project.BlockID) (string, error) {
	list, _, err := items(t, id)
	if err != nil {
		return "", err
	}
	return engine.ListContents(list), nil
}

func itemOfList(t *engine.Thread, id project.BlockID) (string, error) {
	index := t.Evaluate(id).Str("INDEX")
	list, name, err := items(t, id)
	if err != nil {
		return "", err
	}
	i, ok := ListIndex(index, len(list))
	if !ok {
		return "", indexError(index, name, len(list))
	}
	return list[i], nil
}

// itemNumOfList reports the 1-based position of the first equal item, 0 if absent
func itemNumOfList(t *engine.Thread, id project.BlockID) (string, error) {
	item := t.Evaluate(id).Str("ITEM")
	list, _, err := items(t, id)
	if err != nil {
		return "", err
	}
	for i, it := range list {
		if value.Equal(it, item) {
			return num(float64(i + 1)), nil
		}
	}
	return "0", nil
}

func lengthOfList(t *engine.Thread, id project.BlockID) (string, error) {
	list, _, err := items(t, id)
	if err != nil {
		return "", err
	}
	return num(float64(len(list))), nil
}

func listContainsItem(t *engine.Thread, id project.BlockID) (string, error) {
	item := t.Evaluate(id).Str("ITEM")
	list, _, err := items(t, id)
	if err != nil {
		return "", err
	}
	return value.FromBool(slices.ContainsFunc(list, func(it string) bool {
		return value.Equal(it, item)
	})), nil
}
