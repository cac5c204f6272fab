package config

// File represents the root of a funcmap.yaml configuration file.
type File struct {
	// Version of the configuration schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Package is the package pattern holding the types, e.g.
	// "./examples/shapes".
	Package string `yaml:"package"`

	// Output overrides the generated file name ("<package>_funcmap.go").
	Output string `yaml:"output,omitempty"`

	// Runtime overrides the import path of the runtime package generated
	// code calls (default "funcmap-generator/pkg/funcmap"). The package must
	// export the same helpers, Option and Result.
	Runtime string `yaml:"runtime,omitempty"`

	// Naming holds the function name templates.
	Naming Naming `yaml:"naming,omitempty"`

	// Types lists the types to derive mapping functions for.
	Types []TypeConfig `yaml:"types"`

	// Externs describe mapping functions of named types the generator does
	// not derive.
	Externs []Extern `yaml:"externs,omitempty"`
}

// Naming holds text/template templates for generated function names. The
// templates see .Type, .Param and .Suffix (the parameter name when the type
// has more than one parameter).
type Naming struct {
	Map    string `yaml:"map,omitempty"`
	TryMap string `yaml:"try_map,omitempty"`
}

// TypeConfig selects one type to derive.
type TypeConfig struct {
	// Name is the type name inside Package.
	Name string `yaml:"name"`

	// Params restricts the mapped parameters. Empty selects all.
	Params StringOrArray `yaml:"params,omitempty"`

	// Modes restricts the generated functions to "map" and/or "try_map".
	// Empty selects both.
	Modes StringOrArray `yaml:"modes,omitempty"`

	// AllowTeardown derives the type even though it has a Close method.
	AllowTeardown bool `yaml:"allow_teardown,omitempty"`
}

// Extern describes the mapping functions of a named generic type.
type Extern struct {
	// Type is the fully qualified type, e.g. "example.com/lib.Stack".
	Type string `yaml:"type"`

	// Arity is the number of type parameters of Type.
	Arity int `yaml:"arity"`

	// Positions lists the mappable type argument positions.
	Positions []ExternPosition `yaml:"positions"`
}

// ExternPosition names the functions mapping one type argument position.
type ExternPosition struct {
	Index  int    `yaml:"index"`
	Map    string `yaml:"map,omitempty"`
	TryMap string `yaml:"try_map,omitempty"`
}

// StringOrArray represents a value that can be either a single string or an
// array of strings in YAML.
type StringOrArray []string
