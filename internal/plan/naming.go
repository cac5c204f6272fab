package plan

import (
	"bytes"
	"fmt"
	"go/token"
	"text/template"

	"funcmap-generator/internal/typedef"
)

// Default function name templates.
const (
	DefaultMapName    = "Map{{.Type}}{{.Suffix}}"
	DefaultTryMapName = "TryMap{{.Type}}{{.Suffix}}"
)

// Naming renders the names of generated functions.
type Naming struct {
	mapTmpl    *template.Template
	tryMapTmpl *template.Template
}

// NameData is the data passed to naming templates.
type NameData struct {
	// Type is the type name.
	Type string
	// Param is the mapped parameter name.
	Param string
	// Suffix is empty for single-parameter types and Param otherwise.
	Suffix string
}

// DefaultNaming returns the naming used when none is configured.
func DefaultNaming() *Naming {
	n, err := NewNaming("", "")
	if err != nil {
		panic(err)
	}

	return n
}

// NewNaming parses the naming templates. Empty strings select the defaults.
func NewNaming(mapName, tryMapName string) (*Naming, error) {
	if mapName == "" {
		mapName = DefaultMapName
	}

	if tryMapName == "" {
		tryMapName = DefaultTryMapName
	}

	mt, err := template.New("map").Parse(mapName)
	if err != nil {
		return nil, fmt.Errorf("parsing map naming template: %w", err)
	}

	tt, err := template.New("try_map").Parse(tryMapName)
	if err != nil {
		return nil, fmt.Errorf("parsing try_map naming template: %w", err)
	}

	return &Naming{mapTmpl: mt, tryMapTmpl: tt}, nil
}

// FuncName returns the generated function name for def, slot and mode.
func (n *Naming) FuncName(def *typedef.Definition, slot typedef.Slot, mode Mode) (string, error) {
	data := NameData{Type: def.Name, Param: slot.Name()}
	if def.NumParams() > 1 {
		data.Suffix = slot.Name()
	}

	tmpl := n.mapTmpl
	if mode.Fallible() {
		tmpl = n.tryMapTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s name for %s: %w", mode, def.Name, err)
	}

	name := buf.String()
	if !token.IsIdentifier(name) {
		return "", fmt.Errorf("%s name %q for %s is not a valid identifier", mode, name, def.Name)
	}

	return name, nil
}
