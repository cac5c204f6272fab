package gen

import (
	"go/scanner"
	"go/token"
	"go/types"
	"strconv"

	"github.com/hashicorp/go-set/v3"

	"funcmap-generator/internal/common"
	"funcmap-generator/internal/plan"
	"funcmap-generator/internal/typedef"
)

// namer hands out identifiers that collide neither with each other nor with
// any identifier the definition already uses.
type namer struct {
	taken *set.Set[string]
}

func newNamer(reserved *set.Set[string]) *namer {
	taken := set.New[string](reserved.Size())
	for name := range reserved.Items() {
		taken.Insert(name)
	}

	return &namer{taken: taken}
}

// fresh returns base, or base followed by the smallest free number.
func (n *namer) fresh(base string) string {
	name := base
	for i := 1; !n.available(name); i++ {
		name = base + strconv.Itoa(i)
	}

	n.taken.Insert(name)

	return name
}

func (n *namer) available(name string) bool {
	if token.IsKeyword(name) || types.Universe.Lookup(name) != nil {
		return false
	}

	return !n.taken.Contains(name)
}

// reservedNames collects every identifier the generated function could
// capture: the type and its variants, its parameters, every type and
// package name its fields mention, and the functions the mapping calls.
func reservedNames(m *plan.Mapping, pkgNames map[string]string, rt string) *set.Set[string] {
	s := set.New[string](0)

	def := m.Def
	s.Insert(def.Name)
	s.Insert(m.FuncName)
	if name := pkgNames[rt]; name != "" {
		s.Insert(name)
	} else {
		s.Insert(common.PkgAlias(rt))
	}

	for _, slot := range def.Slots() {
		s.Insert(slot.Name())
		collectExpr(s, slot.Constraint())
	}

	for _, f := range def.Fields {
		collectExpr(s, f.Type)
	}

	for _, v := range def.Variants {
		s.Insert(v.Name)

		for _, f := range v.Fields {
			collectExpr(s, f.Type)
		}
	}

	for _, arm := range m.Arms {
		for _, f := range arm.Fields {
			collectPlan(s, f.Plan, pkgNames)
		}
	}

	return s
}

func collectExpr(s *set.Set[string], e *typedef.TypeExpr) {
	if e == nil {
		return
	}

	if e.Text != "" {
		collectText(s, e.Text)
	}

	if e.Name != "" {
		s.Insert(e.Name)
	}

	if q := e.QualifierName(); q != "" {
		s.Insert(q)
	}

	for _, p := range e.Positions() {
		collectExpr(s, p.Expr)
	}
}

func collectPlan(s *set.Set[string], p *plan.Plan, pkgNames map[string]string) {
	if p.Kind == plan.PlanCall {
		if name := pkgNames[p.Entry.ID.PkgPath]; name != "" {
			s.Insert(name)
		} else if alias := common.PkgAlias(p.Entry.ID.PkgPath); alias != "" {
			s.Insert(alias)
		}

		for _, step := range p.Steps {
			s.Insert(step.Func)
		}
	}

	for _, step := range p.Steps {
		collectPlan(s, step.Plan, pkgNames)
	}
}

// collectText adds every identifier of a literal type.
func collectText(s *set.Set[string], text string) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(text))

	var sc scanner.Scanner
	sc.Init(file, []byte(text), nil, 0)

	for {
		_, tok, lit := sc.Scan()
		if tok == token.EOF {
			return
		}

		if tok == token.IDENT {
			s.Insert(lit)
		}
	}
}
