package config

import (
	"fmt"
	"strings"

	"golang.org/x/mod/module"

	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/plan"
	"funcmap-generator/internal/typedef"
)

// SupportedVersion is the only schema version understood by this package.
const SupportedVersion = "1"

// Validation codes.
const (
	CodeUnsupportedVersion = "unsupported_version"
	CodeMissingPackage     = "missing_package"
	CodeMissingTypeName    = "missing_type_name"
	CodeDuplicateType      = "duplicate_type"
	CodeInvalidMode        = "invalid_mode"
	CodeInvalidNaming      = "invalid_naming"
	CodeInvalidExtern      = "invalid_extern"
	CodeInvalidRuntime     = "invalid_runtime"
	CodeTypeNotFound       = "type_not_found"
)

// Validate checks the structure of a configuration file. It does not load
// the configured package.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("config_is_nil", "config file is nil", "", "", "")
		return res
	}

	if f.Version != SupportedVersion {
		res.AddError(CodeUnsupportedVersion,
			fmt.Sprintf("unsupported version %q (want %q)", f.Version, SupportedVersion), "", "", "")
	}

	if strings.TrimSpace(f.Package) == "" {
		res.AddError(CodeMissingPackage, "package is required", "", "", "")
	}

	if f.Runtime != "" {
		if err := module.CheckImportPath(f.Runtime); err != nil {
			res.AddError(CodeInvalidRuntime, err.Error(), "", "runtime", "")
		}
	}

	if _, err := plan.NewNaming(f.Naming.Map, f.Naming.TryMap); err != nil {
		res.AddError(CodeInvalidNaming, err.Error(), "", "naming", "")
	}

	seen := map[string]struct{}{}

	for i := range f.Types {
		validateType(res, &f.Types[i], i, seen)
	}

	for i := range f.Externs {
		validateExtern(res, &f.Externs[i])
	}

	return res
}

func validateType(res *diagnostic.Diagnostics, t *TypeConfig, i int, seen map[string]struct{}) {
	if t.Name == "" {
		res.AddError(CodeMissingTypeName, fmt.Sprintf("types[%d] has no name", i), "", "", "")
		return
	}

	if _, ok := seen[t.Name]; ok {
		res.AddError(CodeDuplicateType, fmt.Sprintf("duplicate type %q", t.Name), t.Name, "", "")
		return
	}

	seen[t.Name] = struct{}{}

	for _, m := range t.Modes {
		if _, err := plan.ParseMode(m); err != nil {
			res.AddError(CodeInvalidMode, err.Error(), t.Name, "modes", "")
		}
	}
}

func validateExtern(res *diagnostic.Diagnostics, e *Extern) {
	if _, err := ParseTypeID(e.Type); err != nil {
		res.AddError(CodeInvalidExtern, err.Error(), e.Type, "type", "")
		return
	}

	if e.Arity <= 0 {
		res.AddError(CodeInvalidExtern, fmt.Sprintf("arity must be positive, got %d", e.Arity), e.Type, "arity", "")
		return
	}

	if len(e.Positions) == 0 {
		res.AddError(CodeInvalidExtern, "at least one position is required", e.Type, "positions", "")
	}

	for _, p := range e.Positions {
		path := fmt.Sprintf("positions[%d]", p.Index)

		if p.Index < 0 || p.Index >= e.Arity {
			res.AddError(CodeInvalidExtern,
				fmt.Sprintf("index %d out of range for arity %d", p.Index, e.Arity), e.Type, path, "")
		}

		if p.Map == "" && p.TryMap == "" {
			res.AddError(CodeInvalidExtern, "position names neither map nor try_map", e.Type, path, "")
		}
	}
}

// ParseTypeID parses a fully qualified type such as "example.com/lib.Stack".
func ParseTypeID(s string) (typedef.TypeID, error) {
	lastDot := strings.LastIndex(s, ".")
	if lastDot <= 0 || lastDot < strings.LastIndex(s, "/") {
		return typedef.TypeID{}, fmt.Errorf("type %q is not qualified by its import path", s)
	}

	id := typedef.TypeID{PkgPath: s[:lastDot], Name: s[lastDot+1:]}
	if id.Name == "" {
		return typedef.TypeID{}, fmt.Errorf("type %q has no name", s)
	}

	return id, nil
}
