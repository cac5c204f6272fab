package plan

import (
	"fmt"
	"slices"

	"funcmap-generator/internal/classify"
	"funcmap-generator/internal/containers"
	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/guard"
	"funcmap-generator/internal/match"
	"funcmap-generator/internal/typedef"
)

// Deriver derives mappings against a registry of named types.
type Deriver struct {
	registry *containers.Registry
	naming   *Naming
}

// NewDeriver creates a Deriver. A nil registry or naming selects an empty
// registry and the default naming.
func NewDeriver(registry *containers.Registry, naming *Naming) *Deriver {
	if registry == nil {
		registry = containers.NewRegistry()
	}

	if naming == nil {
		naming = DefaultNaming()
	}

	return &Deriver{registry: registry, naming: naming}
}

// Registry returns the registry the deriver resolves named types against.
func (d *Deriver) Registry() *containers.Registry {
	return d.registry
}

// Derive derives the mapping of def over slot. Named types, def itself
// included, resolve only when registered. All field errors are collected
// into one *diagnostic.Error.
func (d *Deriver) Derive(def *typedef.Definition, slot typedef.Slot, mode Mode) (*Mapping, error) {
	if err := guard.Check(def); err != nil {
		return nil, err
	}

	if err := guard.CheckSlot(def, slot); err != nil {
		return nil, err
	}

	name, err := d.naming.FuncName(def, slot, mode)
	if err != nil {
		return nil, err
	}

	m := &Mapping{Def: def, Slot: slot, Mode: mode, FuncName: name}

	var diags diagnostic.Diagnostics

	typ := def.String()

	if c := slot.Constraint(); c.MentionsOpaquely(slot) {
		diags.AddError(diagnostic.CodeUnsupportedOccurrence,
			fmt.Sprintf("constraint of %s refers to %s inside a literal type", slot.Name(), slot.Name()),
			typ, "", c.String())
	}

	for _, other := range def.Slots() {
		if other != slot && other.Constraint().Mentions(slot) {
			diags.AddError(diagnostic.CodeUnsupportedOccurrence,
				fmt.Sprintf("constraint of %s mentions %s", other.Name(), slot.Name()),
				typ, "", other.Constraint().String())
		}
	}

	switch def.Kind {
	case typedef.DefStruct:
		m.Arms = []Arm{{Fields: d.deriveFields(&diags, typ, "", def.Fields, slot, mode)}}
	case typedef.DefEnum:
		for i := range def.Variants {
			v := &def.Variants[i]
			arm := Arm{Variant: v}

			if v.Generic {
				arm.Fields = d.deriveFields(&diags, typ, v.Name+".", v.Fields, slot, mode)
			}

			m.Arms = append(m.Arms, arm)
		}
	}

	if err := diags.Err(); err != nil {
		return nil, err
	}

	return m, nil
}

func (d *Deriver) deriveFields(
	diags *diagnostic.Diagnostics,
	typ, prefix string,
	fields []typedef.Field,
	slot typedef.Slot,
	mode Mode,
) []FieldPlan {
	out := make([]FieldPlan, 0, len(fields))

	for _, f := range fields {
		occ := classify.Classify(f.Type, slot, d.registry)

		if f.Name == "_" {
			if !occ.IsAbsent() {
				diags.AddError(diagnostic.CodeUnsupportedOccurrence,
					slot.Name()+" occurs in a blank field", typ, prefix+f.Name, f.Type.String())
			}

			continue
		}

		p, err := Compose(occ, mode)
		if err != nil {
			diags.Collect(err, diagnostic.CodeUnsupportedOccurrence, typ, prefix+f.Name)
			continue
		}

		out = append(out, FieldPlan{Field: f, Plan: p})
	}

	return out
}

// Request selects what DeriveAll derives for one definition.
type Request struct {
	Def *typedef.Definition
	// Params lists the parameter names to map. Empty selects all.
	Params []string
	// Modes lists the modes to derive. Empty selects all.
	Modes []Mode
}

// Result is the outcome of DeriveAll.
type Result struct {
	Mappings    []*Mapping
	Diagnostics diagnostic.Diagnostics
}

// Err returns the diagnostic error of the result, or nil.
func (r *Result) Err() error {
	return r.Diagnostics.Err()
}

// DeriveAll registers every requested definition and then derives its
// mappings, so recursive and mutually recursive types resolve to each other.
func (d *Deriver) DeriveAll(reqs []Request) *Result {
	res := &Result{}

	type job struct {
		def   *typedef.Definition
		slots []typedef.Slot
		modes []Mode
	}

	jobs := make([]job, 0, len(reqs))

	for _, req := range reqs {
		j := job{def: req.Def, modes: req.Modes}
		if len(j.modes) == 0 {
			j.modes = Modes
		}

		if err := guard.Check(req.Def); err != nil {
			res.Diagnostics.Collect(err, diagnostic.CodeStructuralRejection, req.Def.String(), "")
			continue
		}

		slots, err := selectSlots(req.Def, req.Params)
		if err != nil {
			res.Diagnostics.Collect(err, diagnostic.CodeDisallowedParameter, req.Def.String(), "")
			continue
		}

		j.slots = slots

		if err := d.register(j.def, j.slots, j.modes); err != nil {
			res.Diagnostics.AddError(diagnostic.CodeDisallowedParameter, err.Error(), req.Def.String(), "", "")
			continue
		}

		jobs = append(jobs, j)
	}

	for _, j := range jobs {
		for _, slot := range j.slots {
			for _, mode := range j.modes {
				m, err := d.Derive(j.def, slot, mode)
				if err != nil {
					res.Diagnostics.Collect(err, diagnostic.CodeUnsupportedOccurrence, j.def.String(), "")
					continue
				}

				res.Mappings = append(res.Mappings, m)
			}
		}
	}

	return res
}

func (d *Deriver) register(def *typedef.Definition, slots []typedef.Slot, modes []Mode) error {
	entry := &containers.Entry{
		ID:        def.ID(),
		Arity:     def.NumParams(),
		Positions: make(map[int]containers.Funcs, len(slots)),
		Origin:    containers.OriginDerived,
	}

	for _, slot := range slots {
		var funcs containers.Funcs

		for _, mode := range modes {
			name, err := d.naming.FuncName(def, slot, mode)
			if err != nil {
				return err
			}

			if mode.Fallible() {
				funcs.TryMap = name
			} else {
				funcs.Map = name
			}
		}

		entry.Positions[slot.Index()] = funcs
	}

	return d.registry.Register(entry)
}

func selectSlots(def *typedef.Definition, params []string) ([]typedef.Slot, error) {
	if len(params) == 0 {
		return def.Slots(), nil
	}

	slots := make([]typedef.Slot, 0, len(params))

	for _, name := range params {
		s, ok := def.Slot(name)
		if slices.Contains(slots, s) {
			continue
		}

		if !ok {
			names := make([]string, 0, def.NumParams())
			for _, other := range def.Slots() {
				names = append(names, other.Name())
			}

			return nil, diagnostic.New(diagnostic.CodeDisallowedParameter,
				fmt.Sprintf("%s has no type parameter %q%s", def.Name, name, match.DidYouMean(name, names)),
				def.String(), "", "")
		}

		slots = append(slots, s)
	}

	return slots, nil
}
