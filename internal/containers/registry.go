package containers

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"funcmap-generator/internal/typedef"
)

// Origin tells where a registry entry came from.
type Origin int

const (
	OriginDerived    Origin = iota // derived in the current run
	OriginDiscovered               // existing function found in a loaded package
	OriginExtern                   // declared in the configuration
)

// String returns a human-readable origin name.
func (o Origin) String() string {
	switch o {
	case OriginDerived:
		return "derived"
	case OriginDiscovered:
		return "discovered"
	case OriginExtern:
		return "extern"
	default:
		return "unknown"
	}
}

// Funcs names the functions mapping one type argument position. Both live in
// the package of the entry's type.
type Funcs struct {
	Map    string
	TryMap string
}

// Get returns the function for the given mode.
func (f Funcs) Get(fallible bool) string {
	if fallible {
		return f.TryMap
	}

	return f.Map
}

// Entry describes a generic named type whose values can be mapped.
type Entry struct {
	ID        typedef.TypeID
	Arity     int
	Positions map[int]Funcs
	Origin    Origin
}

// Funcs returns the mapping functions of a type argument position.
func (e *Entry) Funcs(pos int) (Funcs, bool) {
	f, ok := e.Positions[pos]
	return f, ok
}

// MappablePositions returns the mappable positions in ascending order.
func (e *Entry) MappablePositions() []int {
	out := make([]int, 0, len(e.Positions))
	for p := range e.Positions {
		out = append(out, p)
	}

	sort.Ints(out)

	return out
}

// Registry holds named-type entries in registration order.
type Registry struct {
	m *linkedhashmap.Map // typedef.TypeID -> *Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{m: linkedhashmap.New()}
}

// Register adds an entry. Registering a type twice merges positions; a
// derived function replaces a discovered or extern one for the same position.
func (r *Registry) Register(e *Entry) error {
	if e.Arity <= 0 {
		return fmt.Errorf("register %s: arity must be positive, got %d", e.ID, e.Arity)
	}

	for pos := range e.Positions {
		if pos < 0 || pos >= e.Arity {
			return fmt.Errorf("register %s: position %d out of range for arity %d", e.ID, pos, e.Arity)
		}
	}

	old, ok := r.Lookup(e.ID)
	if !ok {
		cp := *e
		cp.Positions = make(map[int]Funcs, len(e.Positions))

		for pos, f := range e.Positions {
			cp.Positions[pos] = f
		}

		r.m.Put(e.ID, &cp)

		return nil
	}

	if old.Arity != e.Arity {
		return fmt.Errorf("register %s: arity %d conflicts with registered arity %d", e.ID, e.Arity, old.Arity)
	}

	for pos, f := range e.Positions {
		if _, exists := old.Positions[pos]; exists && e.Origin != OriginDerived {
			continue
		}

		old.Positions[pos] = f
	}

	if e.Origin == OriginDerived {
		old.Origin = OriginDerived
	}

	return nil
}

// Lookup returns the entry for a type.
func (r *Registry) Lookup(id typedef.TypeID) (*Entry, bool) {
	if r == nil {
		return nil, false
	}

	v, ok := r.m.Get(id)
	if !ok {
		return nil, false
	}

	return v.(*Entry), true
}

// Entries returns all entries in registration order.
func (r *Registry) Entries() []*Entry {
	vals := r.m.Values()

	out := make([]*Entry, len(vals))
	for i, v := range vals {
		out[i] = v.(*Entry)
	}

	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return r.m.Size()
}
