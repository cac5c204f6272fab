package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"strings"
	"text/template"

	"funcmap-generator/internal/common"
	"funcmap-generator/internal/containers"
	"funcmap-generator/internal/plan"
	"funcmap-generator/internal/typedef"
)

// Header is the first line of every generated file.
const Header = "// Code generated by funcmap-generator. DO NOT EDIT."

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// OutputDir is where the debug sidecar is written when formatting fails.
	OutputDir string
	// Filename overrides the default "<package>_funcmap.go".
	Filename string
	// PackageNames maps import paths to declared package names. Paths that
	// are missing fall back to their last element.
	PackageNames map[string]string
	// RuntimePath is the import path of the runtime package generated code
	// calls. Empty selects containers.RuntimePkgPath.
	RuntimePath string
	// GenerateComments enables doc comments on generated functions.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		OutputDir:        ".",
		RuntimePath:      containers.RuntimePkgPath,
		GenerateComments: true,
	}
}

// Generator generates Go code from derived mappings.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// PkgPath is the import path of the package the file belongs to.
	PkgPath string
	// Dir is the directory of the package, when known.
	Dir string
	// Filename is the name of the file (e.g., "shapes_funcmap.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate emits one file per package holding all mappings declared in it.
func (g *Generator) Generate(mappings []*plan.Mapping) ([]GeneratedFile, error) {
	var (
		order  []string
		byPkg  = make(map[string][]*plan.Mapping)
		result []GeneratedFile
	)

	for _, m := range mappings {
		p := m.Def.PkgPath
		if _, ok := byPkg[p]; !ok {
			order = append(order, p)
		}

		byPkg[p] = append(byPkg[p], m)
	}

	for _, pkgPath := range order {
		file, err := g.generatePackage(pkgPath, byPkg[pkgPath])
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", pkgPath, err)
		}

		result = append(result, *file)
	}

	return result, nil
}

// funcData holds the data of one generated function.
type funcData struct {
	Doc        string
	Name       string
	TypeParams string
	In         string
	InType     string
	F          string
	FuncType   string
	Result     string
	Body       string
}

// templateData holds all data needed for the file template.
type templateData struct {
	PackageName string
	Funcs       []funcData
}

func (g *Generator) generatePackage(pkgPath string, mappings []*plan.Mapping) (*GeneratedFile, error) {
	data := &templateData{PackageName: g.packageName(pkgPath)}
	imports := newImportSet(pkgPath, g.config.PackageNames)

	for _, m := range orderByCallees(mappings) {
		data.Funcs = append(data.Funcs, g.buildFunc(m, imports))
	}

	filename := g.config.Filename
	if filename == "" {
		filename = data.PackageName + "_funcmap.go"
	}

	var buf bytes.Buffer
	if err := funcmapTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := formatWithImports(filename, buf.Bytes(), imports)
	if err != nil {
		// Best-effort: write unformatted code to a sidecar file to aid debugging.
		if g.config.OutputDir != "" {
			_ = writeDebugUnformatted(g.config.OutputDir, filename, buf.Bytes())
		}

		return &GeneratedFile{
			PkgPath:  pkgPath,
			Filename: filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	return &GeneratedFile{
		PkgPath:  pkgPath,
		Filename: filename,
		Content:  formatted,
	}, nil
}

func (g *Generator) buildFunc(m *plan.Mapping, imports *importSet) funcData {
	rt := g.config.RuntimePath
	if rt == "" {
		rt = containers.RuntimePkgPath
	}

	w := newFuncWriter(m, imports, g.config.PackageNames, rt)

	fd := funcData{
		Name:       m.FuncName,
		TypeParams: w.typeParams(),
		In:         w.in,
		InType:     w.instance(m.Def.Name, w.a),
		F:          w.f,
		FuncType:   w.funcType(),
		Result:     w.instance(m.Def.Name, w.b),
	}

	if m.Fallible() {
		fd.Result = "(" + fd.Result + ", error)"
	}

	if g.config.GenerateComments {
		fd.Doc = docComment(m, w.f)
	}

	switch m.Def.Kind {
	case typedef.DefEnum:
		fd.Body = w.enumBody()
	default:
		fd.Body = w.structBody()
	}

	return fd
}

func docComment(m *plan.Mapping, f string) string {
	doc := fmt.Sprintf("// %s applies %s to every %s of the given %s", m.FuncName, f, m.Slot.Name(), m.Def.Name)
	if m.Fallible() {
		return doc + ", stopping at the first error."
	}

	return doc + "."
}

func (g *Generator) packageName(pkgPath string) string {
	if name := g.config.PackageNames[pkgPath]; name != "" {
		return name
	}

	return common.PkgAlias(pkgPath)
}

// formatWithImports parses the rendered source, inserts the collected
// imports and formats the result.
func formatWithImports(filename string, src []byte, imports *importSet) ([]byte, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	imports.apply(fset, file)

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, err
	}

	return format.Source(buf.Bytes())
}

var funcmapTemplate = template.Must(template.New("funcmap").Funcs(template.FuncMap{
	"trim": strings.TrimSpace,
}).Parse(Header + `

package {{.PackageName}}
{{range .Funcs}}
{{if .Doc}}{{.Doc}}
{{end}}func {{.Name}}[{{.TypeParams}}]({{.In}} {{.InType}}, {{.F}} {{.FuncType}}) {{.Result}} {
{{trim .Body}}
}
{{end}}`))
