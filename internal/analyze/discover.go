package analyze

import (
	"go/types"

	"funcmap-generator/internal/containers"
	"funcmap-generator/internal/typedef"
)

// discovery collects existing mapping functions, keyed by the type they map.
type discovery struct {
	runtime string
	order   []typedef.TypeID
	found   map[typedef.TypeID]*containers.Entry
	scanned map[*types.Package]bool
}

func newDiscovery(runtime string) *discovery {
	return &discovery{
		runtime: runtime,
		found:   make(map[typedef.TypeID]*containers.Entry),
		scanned: make(map[*types.Package]bool),
	}
}

// scan records every package-level function of pkg shaped like
//
//	func F[..., A, B, ...](in X[..A..], f func(A) B) X[..B..]
//	func F[..., A, B, ...](in X[..A..], f func(A) (B, error)) (X[..B..], error)
//
// where X is a generic type declared in pkg.
func (d *discovery) scan(pkg *types.Package) {
	if d.scanned[pkg] || pkg.Path() == d.runtime {
		return
	}

	d.scanned[pkg] = true

	scope := pkg.Scope()
	for _, name := range scope.Names() {
		fn, ok := scope.Lookup(name).(*types.Func)
		if !ok {
			continue
		}

		named, pos, fallible, ok := mapSignature(fn.Type().(*types.Signature))
		if !ok || named.Obj().Pkg() != pkg {
			continue
		}

		id := typedef.TypeID{PkgPath: pkg.Path(), Name: named.Obj().Name()}

		e, ok := d.found[id]
		if !ok {
			e = &containers.Entry{
				ID:        id,
				Arity:     named.TypeParams().Len(),
				Positions: make(map[int]containers.Funcs),
				Origin:    containers.OriginDiscovered,
			}
			d.found[id] = e
			d.order = append(d.order, id)
		}

		funcs := e.Positions[pos]
		if fallible {
			funcs.TryMap = name
		} else {
			funcs.Map = name
		}

		e.Positions[pos] = funcs
	}
}

func (d *discovery) entries() []*containers.Entry {
	out := make([]*containers.Entry, len(d.order))
	for i, id := range d.order {
		out[i] = d.found[id]
	}

	return out
}

// mapSignature reports whether sig maps one type argument of a generic type,
// returning the input type and the mapped position.
func mapSignature(sig *types.Signature) (*types.Named, int, bool, bool) {
	if sig.Recv() != nil || sig.TypeParams().Len() < 2 || sig.Params().Len() != 2 || sig.Variadic() {
		return nil, 0, false, false
	}

	in, ok := types.Unalias(sig.Params().At(0).Type()).(*types.Named)
	if !ok || in.TypeArgs().Len() == 0 {
		return nil, 0, false, false
	}

	f, ok := sig.Params().At(1).Type().(*types.Signature)
	if !ok || f.Params().Len() != 1 {
		return nil, 0, false, false
	}

	fallible := f.Results().Len() == 2
	if !resultsMatch(f.Results(), fallible) || !resultsMatch(sig.Results(), fallible) {
		return nil, 0, false, false
	}

	a, okA := f.Params().At(0).Type().(*types.TypeParam)
	b, okB := f.Results().At(0).Type().(*types.TypeParam)

	out, okOut := types.Unalias(sig.Results().At(0).Type()).(*types.Named)
	if !okA || !okB || a == b || !okOut || out.Origin() != in.Origin() {
		return nil, 0, false, false
	}

	pos := -1

	for i := range in.TypeArgs().Len() {
		x, y := in.TypeArgs().At(i), out.TypeArgs().At(i)

		switch {
		case x == a && y == b && pos < 0:
			pos = i
		case !types.Identical(x, y):
			return nil, 0, false, false
		}
	}

	if pos < 0 {
		return nil, 0, false, false
	}

	return in.Origin(), pos, fallible, true
}

// resultsMatch checks for (T) or, when fallible, (T, error).
func resultsMatch(results *types.Tuple, fallible bool) bool {
	if !fallible {
		return results.Len() == 1
	}

	return results.Len() == 2 && types.Identical(results.At(1).Type(), types.Universe.Lookup("error").Type())
}
