package config

import (
	"fmt"

	"funcmap-generator/internal/containers"
	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/plan"
	"funcmap-generator/internal/typedef"
)

// DefinitionSource resolves type names of the configured package.
type DefinitionSource interface {
	Definition(name string) (*typedef.Definition, error)
}

// Requests resolves the configured types into derivation requests. Every
// type that cannot be resolved is reported.
func (f *File) Requests(src DefinitionSource) ([]plan.Request, error) {
	var diags diagnostic.Diagnostics

	reqs := make([]plan.Request, 0, len(f.Types))

	for _, t := range f.Types {
		def, err := src.Definition(t.Name)
		if err != nil {
			diags.Collect(err, CodeTypeNotFound, t.Name, "")
			continue
		}

		def.AllowTeardown = t.AllowTeardown

		modes := make([]plan.Mode, 0, len(t.Modes))

		for _, s := range t.Modes {
			m, err := plan.ParseMode(s)
			if err != nil {
				diags.AddError(CodeInvalidMode, err.Error(), t.Name, "modes", "")
				continue
			}

			modes = append(modes, m)
		}

		reqs = append(reqs, plan.Request{Def: def, Params: t.Params, Modes: modes})
	}

	return reqs, diags.Err()
}

// RuntimePath returns the import path of the runtime package.
func (f *File) RuntimePath() string {
	if f.Runtime != "" {
		return f.Runtime
	}

	return containers.RuntimePkgPath
}

// NamingTemplates returns the configured function naming.
func (f *File) NamingTemplates() (*plan.Naming, error) {
	return plan.NewNaming(f.Naming.Map, f.Naming.TryMap)
}

// RegisterExterns adds the extern entries to reg.
func (f *File) RegisterExterns(reg *containers.Registry) error {
	for _, e := range f.Externs {
		id, err := ParseTypeID(e.Type)
		if err != nil {
			return err
		}

		entry := &containers.Entry{
			ID:        id,
			Arity:     e.Arity,
			Positions: make(map[int]containers.Funcs, len(e.Positions)),
			Origin:    containers.OriginExtern,
		}

		for _, p := range e.Positions {
			entry.Positions[p.Index] = containers.Funcs{Map: p.Map, TryMap: p.TryMap}
		}

		if err := reg.Register(entry); err != nil {
			return fmt.Errorf("registering extern %s: %w", e.Type, err)
		}
	}

	return nil
}
