// Package registry collects opcode handler families at init time
package registry

import (
	"sort"
	"sync"

	"github.com/lixenwraith/scratchrun/engine"
)

// FamilyFactory builds the handlers of one opcode family
type FamilyFactory func() map[string]engine.Handler

var (
	familiesMu sync.RWMutex
	families   = make(map[string]FamilyFactory)
)

// RegisterFamily adds a family factory by name; a later registration replaces an earlier one
func RegisterFamily(name string, factory FamilyFactory) {
	familiesMu.Lock()
	defer familiesMu.Unlock()
	families[name] = factory
}

// GetFamily retrieves a family factory by name
func GetFamily(name string) (FamilyFactory, bool) {
	familiesMu.RLock()
	defer familiesMu.RUnlock()
	f, ok := families[name]
	return f, ok
}

// FamilyNames returns all registered family names, sorted
func FamilyNames() []string {
	familiesMu.RLock()
	defer familiesMu.RUnlock()
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
