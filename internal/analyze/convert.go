package analyze

import (
	"go/types"
	"path"

	"funcmap-generator/internal/typedef"
)

// converter turns go/types types into typedef expressions. Type parameters
// are resolved through slots, so one converter serves one definition.
type converter struct {
	self    *types.Package
	runtime string // import path of Option and Result
	slots   map[*types.TypeParam]typedef.Slot
}

func newConverter(self *types.Package, runtime string) *converter {
	return &converter{
		self:    self,
		runtime: runtime,
		slots:   make(map[*types.TypeParam]typedef.Slot),
	}
}

// declare adds the type parameters to def. Constraints are converted after
// every slot exists, since a constraint may mention its own parameter.
func (c *converter) declare(def *typedef.Definition, tparams *types.TypeParamList) {
	constraints := make([]*typedef.TypeExpr, tparams.Len())

	for i := range tparams.Len() {
		tp := tparams.At(i)
		constraints[i] = &typedef.TypeExpr{}
		c.slots[tp] = def.AddParam(tp.Obj().Name(), constraints[i])
	}

	for i := range tparams.Len() {
		*constraints[i] = *c.convert(tparams.At(i).Constraint())
	}
}

// bind resolves the type parameters of a variant to the slots of its enum.
func (c *converter) bind(tparams *types.TypeParamList, slots []typedef.Slot) {
	for i := range tparams.Len() {
		c.slots[tparams.At(i)] = slots[i]
	}
}

func (c *converter) convert(t types.Type) *typedef.TypeExpr {
	switch tt := t.(type) {
	case *types.Alias:
		if obj := tt.Obj(); obj.Pkg() == nil {
			return typedef.Basic(obj.Name())
		}

		return c.convert(types.Unalias(tt))
	case *types.TypeParam:
		if s, ok := c.slots[tt]; ok {
			return typedef.Param(s)
		}

		return c.literal(tt)
	case *types.Basic:
		if tt.Kind() == types.UnsafePointer {
			return c.literal(tt)
		}

		return typedef.Basic(tt.Name())
	case *types.Named:
		return c.named(tt)
	case *types.Pointer:
		return typedef.Pointer(c.convert(tt.Elem()))
	case *types.Slice:
		return typedef.Slice(c.convert(tt.Elem()))
	case *types.Array:
		return typedef.Array(tt.Len(), c.convert(tt.Elem()))
	case *types.Map:
		if isEmptyStruct(tt.Elem()) {
			return typedef.Set(c.convert(tt.Key()))
		}

		return typedef.Map(c.convert(tt.Key()), c.convert(tt.Elem()))
	case *types.Struct:
		fields := make([]typedef.TupleField, tt.NumFields())
		for i := range tt.NumFields() {
			v := tt.Field(i)
			fields[i] = typedef.TupleField{
				Name:     v.Name(),
				Type:     c.convert(v.Type()),
				Embedded: v.Embedded(),
				Tag:      tt.Tag(i),
			}
		}

		return typedef.Tuple(fields...)
	case *types.Interface:
		if tt.Empty() && !tt.IsImplicit() {
			return typedef.Basic("any")
		}
	}

	// chan, func, interface and union types
	text, imports := c.text(t)
	e := typedef.Untraversable(text, c.mentioned(t)...)
	e.Imports = imports

	return e
}

func (c *converter) named(n *types.Named) *typedef.TypeExpr {
	obj := n.Obj()
	if obj.Pkg() == nil {
		return typedef.Basic(obj.Name())
	}

	pkgPath := obj.Pkg().Path()
	targs := n.TypeArgs()

	if pkgPath == c.runtime && targs.Len() == 1 {
		switch obj.Name() {
		case "Option":
			return typedef.Option(c.convert(targs.At(0)))
		case "Result":
			return typedef.Result(c.convert(targs.At(0)))
		}
	}

	var e *typedef.TypeExpr

	if targs.Len() == 0 {
		e = typedef.Opaque(pkgPath, obj.Name())
	} else {
		args := make([]*typedef.TypeExpr, targs.Len())
		for i := range targs.Len() {
			args[i] = c.convert(targs.At(i))
		}

		e = typedef.Named(pkgPath, obj.Name(), args...)
	}

	if name := obj.Pkg().Name(); name != path.Base(pkgPath) {
		e.PkgName = name
	}

	return e
}

// literal returns t as an opaque type spelled by its source text.
func (c *converter) literal(t types.Type) *typedef.TypeExpr {
	text, imports := c.text(t)
	e := typedef.Literal(text)
	e.Imports = imports

	return e
}

// text renders t as it is written inside the declaring package, recording
// the packages it qualifies.
func (c *converter) text(t types.Type) (string, map[string]string) {
	var imports map[string]string

	text := types.TypeString(t, func(p *types.Package) string {
		if p == c.self {
			return ""
		}

		if imports == nil {
			imports = make(map[string]string)
		}

		imports[p.Path()] = p.Name()

		return p.Name()
	})

	return text, imports
}

// mentioned returns the parameters occurring in t, once each.
func (c *converter) mentioned(t types.Type) []*typedef.TypeExpr {
	var (
		out  []*typedef.TypeExpr
		seen = make(map[typedef.Slot]bool)
	)

	walkTypeParams(t, func(tp *types.TypeParam) {
		s, ok := c.slots[tp]
		if !ok || seen[s] {
			return
		}

		seen[s] = true
		out = append(out, typedef.Param(s))
	})

	return out
}

// walkTypeParams calls visit for every type parameter occurring in t. Named
// types are entered through their type arguments only.
func walkTypeParams(t types.Type, visit func(*types.TypeParam)) {
	switch tt := t.(type) {
	case *types.TypeParam:
		visit(tt)
	case *types.Alias:
		walkTypeParams(types.Unalias(tt), visit)
	case *types.Named:
		targs := tt.TypeArgs()
		for i := range targs.Len() {
			walkTypeParams(targs.At(i), visit)
		}
	case *types.Map:
		walkTypeParams(tt.Key(), visit)
		walkTypeParams(tt.Elem(), visit)
	case interface{ Elem() types.Type }: // pointer, slice, array, chan
		walkTypeParams(tt.Elem(), visit)
	case *types.Struct:
		for i := range tt.NumFields() {
			walkTypeParams(tt.Field(i).Type(), visit)
		}
	case *types.Tuple:
		for i := range tt.Len() {
			walkTypeParams(tt.At(i).Type(), visit)
		}
	case *types.Signature:
		walkTypeParams(tt.Params(), visit)
		walkTypeParams(tt.Results(), visit)
	case *types.Interface:
		for i := range tt.NumExplicitMethods() {
			walkTypeParams(tt.ExplicitMethod(i).Type(), visit)
		}

		for i := range tt.NumEmbeddeds() {
			walkTypeParams(tt.EmbeddedType(i), visit)
		}
	case *types.Union:
		for i := range tt.Len() {
			walkTypeParams(tt.Term(i).Type(), visit)
		}
	}
}

func isEmptyStruct(t types.Type) bool {
	st, ok := types.Unalias(t).(*types.Struct)
	return ok && st.NumFields() == 0
}
