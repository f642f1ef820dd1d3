package unit

import "sort"

// RegistryEntry is the registry's claim about a single unit.
type RegistryEntry struct {
	Path        string // repository-relative
	Domain      string
	Status      string
	Description string
}

// Registry holds every registered unit keyed by identifier.
// A Registry is built once per command invocation and never mutated afterwards.
type Registry struct {
	Version     string
	Description string
	Units       map[string]RegistryEntry
	Reserved    []string
	Deprecated  []string
}

// Has reports whether id is a registered unit.
func (r *Registry) Has(id string) bool {
	_, ok := r.Units[id]
	return ok
}

// Entry returns the registry entry for id.
func (r *Registry) Entry(id string) (RegistryEntry, bool) {
	e, ok := r.Units[id]
	return e, ok
}

// IDs returns all registered identifiers sorted lexicographically.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.Units))
	for id := range r.Units {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	return len(r.Units)
}
