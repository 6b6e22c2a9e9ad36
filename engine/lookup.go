package engine

import "fmt"

// scopes returns the namespaces searched for a, in policy order
func (w *World) scopes(a *Actor) []*Actor {
	if a == nil || a == w.stage || w.stage == nil {
		return []*Actor{w.stage}
	}
	if w.cfg.LookupPolicy == ActorFirst {
		return []*Actor{a, w.stage}
	}
	return []*Actor{w.stage, a}
}

// ResolveVar finds the actor holding a variable, by id first and then by display name
func (w *World) ResolveVar(a *Actor, id, name string) (*Actor, string, bool) {
	scopes := w.scopes(a)
	for _, s := range scopes {
		if id != "" && s.HasVar(id) {
			return s, id, true
		}
	}
	if name == "" {
		return nil, "", false
	}
	for _, s := range scopes {
		if byName, ok := s.Program.VariableNames[name]; ok && s.HasVar(byName) {
			return s, byName, true
		}
	}
	return nil, "", false
}

// ResolveList finds the actor holding a list, by id first and then by display name
func (w *World) ResolveList(a *Actor, id, name string) (*Actor, string, bool) {
	scopes := w.scopes(a)
	for _, s := range scopes {
		if id != "" && s.HasList(id) {
			return s, id, true
		}
	}
	if name == "" {
		name = id
	}
	for _, s := range scopes {
		if byName, ok := s.Program.ListNames[name]; ok && s.HasList(byName) {
			return s, byName, true
		}
	}
	return nil, "", false
}

// ReadVar returns a variable value; failures are reported and read as ""
func (t *Thread) ReadVar(id, name string) string {
	owner, vid, ok := t.World.ResolveVar(t.Actor, id, name)
	if !ok {
		t.Report(fmt.Errorf("%w: %s (%s)", ErrVariableNotFound, name, id))
		return ""
	}
	v, _ := owner.Var(vid)
	return v
}

// WriteVar stores a variable value; failures are reported and the write skipped
func (t *Thread) WriteVar(id, name, v string) bool {
	owner, vid, ok := t.World.ResolveVar(t.Actor, id, name)
	if !ok {
		t.Report(fmt.Errorf("%w: %s (%s)", ErrVariableNotFound, name, id))
		return false
	}
	return owner.SetVar(vid, v)
}

// ListOwner resolves a list for a mutation or read
func (t *Thread) ListOwner(id, name string) (*Actor, string, error) {
	owner, lid, ok := t.World.ResolveList(t.Actor, id, name)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s (%s)", ErrListNotFound, name, id)
	}
	return owner, lid, nil
}

// ListItems returns a copy of a list's contents
func (t *Thread) ListItems(id, name string) ([]string, error) {
	owner, lid, err := t.ListOwner(id, name)
	if err != nil {
		return nil, err
	}
	items, _ := owner.List(lid)
	return items, nil
}
