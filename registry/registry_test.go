package registry

import (
	"slices"
	"testing"

	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/project"
)

func TestRegisterFamily(t *testing.T) {
	noop := func(*engine.Thread, project.BlockID) (string, error) { return "", nil }
	RegisterFamily("zz_test", func() map[string]engine.Handler {
		return map[string]engine.Handler{"zz_one": noop}
	})
	RegisterFamily("aa_test", func() map[string]engine.Handler { return nil })

	f, ok := GetFamily("zz_test")
	if !ok {
		t.Fatal("family not found")
	}
	if _, ok := f()["zz_one"]; !ok {
		t.Error("factory lost its handler")
	}
	if _, ok := GetFamily("missing"); ok {
		t.Error("unknown family reported present")
	}

	names := FamilyNames()
	if !slices.IsSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
	if !slices.Contains(names, "aa_test") || !slices.Contains(names, "zz_test") {
		t.Errorf("names = %v", names)
	}
}
