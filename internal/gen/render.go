package gen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"funcmap-generator/internal/plan"
	"funcmap-generator/internal/typedef"
)

// funcWriter renders the body of one generated function.
type funcWriter struct {
	m       *plan.Mapping
	imports *importSet
	names   *namer

	rt   string // import path of the runtime package
	a, b string // type parameter names replacing the mapped parameter
	in   string
	f    string
	err  string
}

func newFuncWriter(m *plan.Mapping, imports *importSet, pkgNames map[string]string, rt string) *funcWriter {
	w := &funcWriter{
		m:       m,
		imports: imports,
		names:   newNamer(reservedNames(m, pkgNames, rt)),
		rt:      rt,
	}

	w.a = w.names.fresh("A")
	w.b = w.names.fresh("B")
	w.in = w.names.fresh("in")
	w.f = w.names.fresh("f")

	if m.Fallible() {
		w.err = w.names.fresh("err")
	}

	return w
}

// typeString renders e with the mapped parameter spelled param.
func (w *funcWriter) typeString(e *typedef.TypeExpr, param string) string {
	var sb strings.Builder
	w.writeType(&sb, e, param)

	return sb.String()
}

func (w *funcWriter) writeType(sb *strings.Builder, e *typedef.TypeExpr, param string) {
	switch e.Kind {
	case typedef.ExprOpaque:
		if e.Text != "" {
			w.imports.addAll(e.Imports)
			sb.WriteString(e.Text)

			return
		}

		sb.WriteString(w.qualify(e.PkgPath, e.QualifierName(), e.Name))
	case typedef.ExprParam:
		if e.Slot == w.m.Slot {
			sb.WriteString(param)
		} else {
			sb.WriteString(e.Slot.Name())
		}
	case typedef.ExprPointer:
		sb.WriteString("*")
		w.writeType(sb, e.Elem, param)
	case typedef.ExprArray:
		sb.WriteString("[" + strconv.FormatInt(e.Len, 10) + "]")
		w.writeType(sb, e.Elem, param)
	case typedef.ExprTuple:
		sb.WriteString("struct{")

		for i, f := range e.Fields {
			if i > 0 {
				sb.WriteString("; ")
			}

			if !f.Embedded {
				sb.WriteString(f.Name + " ")
			}

			w.writeType(sb, f.Type, param)

			if f.Tag != "" {
				sb.WriteString(" " + strconv.Quote(f.Tag))
			}
		}

		sb.WriteString("}")
	case typedef.ExprContainer:
		w.writeContainer(sb, e, param)
	case typedef.ExprNamed:
		sb.WriteString(w.qualify(e.PkgPath, e.QualifierName(), e.Name))
		w.writeArgs(sb, e.Args, param)
	case typedef.ExprUntraversable:
		w.imports.addAll(e.Imports)
		sb.WriteString(e.Text)
	}
}

func (w *funcWriter) writeContainer(sb *strings.Builder, e *typedef.TypeExpr, param string) {
	switch e.Container {
	case typedef.ShapeSlice:
		sb.WriteString("[]")
		w.writeType(sb, e.Args[0], param)
	case typedef.ShapeMap:
		sb.WriteString("map[")
		w.writeType(sb, e.Args[0], param)
		sb.WriteString("]")
		w.writeType(sb, e.Args[1], param)
	case typedef.ShapeSet:
		sb.WriteString("map[")
		w.writeType(sb, e.Args[0], param)
		sb.WriteString("]struct{}")
	case typedef.ShapeOption:
		sb.WriteString(w.runtime("Option"))
		w.writeArgs(sb, e.Args, param)
	case typedef.ShapeResult:
		sb.WriteString(w.runtime("Result"))
		w.writeArgs(sb, e.Args, param)
	}
}

func (w *funcWriter) writeArgs(sb *strings.Builder, args []*typedef.TypeExpr, param string) {
	sb.WriteString("[")

	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}

		w.writeType(sb, a, param)
	}

	sb.WriteString("]")
}

func (w *funcWriter) qualify(pkgPath, pkgName, name string) string {
	if alias := w.imports.add(pkgPath, pkgName); alias != "" {
		return alias + "." + name
	}

	return name
}

func (w *funcWriter) runtime(name string) string {
	return w.qualify(w.rt, "", name)
}

// instance renders the definition, or one of its variants, instantiated with
// the mapped parameter spelled param.
func (w *funcWriter) instance(name string, param string) string {
	slots := w.m.Def.Slots()

	args := make([]string, len(slots))
	for i, s := range slots {
		if s == w.m.Slot {
			args[i] = param
		} else {
			args[i] = s.Name()
		}
	}

	return name + "[" + strings.Join(args, ", ") + "]"
}

// typeParams renders the type parameter list of the generated function.
func (w *funcWriter) typeParams() string {
	var parts []string

	for _, s := range w.m.Def.Slots() {
		c := s.Constraint()

		if s != w.m.Slot {
			parts = append(parts, s.Name()+" "+w.typeString(c, w.a))
			continue
		}

		if c.Mentions(s) {
			parts = append(parts, w.a+" "+w.typeString(c, w.a), w.b+" "+w.typeString(c, w.b))
		} else {
			parts = append(parts, w.a+", "+w.b+" "+w.typeString(c, w.a))
		}
	}

	return strings.Join(parts, ", ")
}

// funcType renders the type of f.
func (w *funcWriter) funcType() string {
	if w.m.Fallible() {
		return fmt.Sprintf("func(%s) (%s, error)", w.a, w.b)
	}

	return fmt.Sprintf("func(%s) %s", w.a, w.b)
}

// stepExpr returns the type expression of a plan step's position.
func stepExpr(p *plan.Plan, s plan.Step) *typedef.TypeExpr {
	for _, pos := range p.Expr.Positions() {
		if pos.Index == s.Index {
			return pos.Expr
		}
	}

	panic(fmt.Sprintf("gen: %s has no position %d", p.Expr, s.Index))
}

// expr renders the infallible mapping of the value in.
func (w *funcWriter) expr(p *plan.Plan, in string) string {
	switch p.Kind {
	case plan.PlanApply:
		return w.f + "(" + in + ")"
	case plan.PlanLift:
		return w.liftExpr(p, in)
	case plan.PlanCall:
		cur := in
		for _, s := range p.Steps {
			fn := w.qualify(p.Entry.ID.PkgPath, "", s.Func)
			cur = fmt.Sprintf("%s(%s, %s)", fn, cur, w.funcValue(s.Plan, stepExpr(p, s)))
		}

		return cur
	default:
		return in
	}
}

// funcValue renders a function value mapping elem.
func (w *funcWriter) funcValue(p *plan.Plan, elem *typedef.TypeExpr) string {
	if p.Kind == plan.PlanApply {
		return w.f
	}

	v := w.names.fresh("v")

	return fmt.Sprintf("func(%s %s) %s {\nreturn %s\n}",
		v, w.typeString(elem, w.a), w.typeString(elem, w.b), w.expr(p, v))
}

func (w *funcWriter) liftExpr(p *plan.Plan, in string) string {
	switch p.Strategy.Shape {
	case typedef.ShapeTuple:
		return w.tupleLiteral(p, in, func(s plan.Step, sel string) string {
			return w.expr(s.Plan, sel)
		})
	case typedef.ShapeArray:
		s := p.Steps[0]
		v := w.names.fresh("v")
		out := w.names.fresh("out")
		i := w.names.fresh("i")
		x := w.names.fresh("x")

		return fmt.Sprintf("func(%s %s) %s {\nvar %s %s\nfor %s, %s := range %s {\n%s[%s] = %s\n}\nreturn %s\n}(%s)",
			v, w.typeString(p.Expr, w.a), w.typeString(p.Expr, w.b),
			out, w.typeString(p.Expr, w.b),
			i, x, v,
			out, i, w.expr(s.Plan, x),
			out, in)
	default:
		s := p.Steps[0]

		return fmt.Sprintf("%s(%s, %s)", w.runtime(p.Strategy.Map), in, w.funcValue(s.Plan, stepExpr(p, s)))
	}
}

// tupleLiteral rebuilds an anonymous struct, mapping the fields that have a
// step and moving the others.
func (w *funcWriter) tupleLiteral(p *plan.Plan, in string, mapped func(s plan.Step, sel string) string) string {
	var sb strings.Builder

	sb.WriteString(w.typeString(p.Expr, w.b) + "{")

	first := true

	for i, f := range p.Expr.Fields {
		if f.Name == "_" {
			continue
		}

		if !first {
			sb.WriteString(", ")
		}

		first = false

		sel := in + "." + f.Name

		val := sel
		if s, ok := p.Step(i); ok {
			val = mapped(s, sel)
		}

		sb.WriteString(f.Name + ": " + val)
	}

	sb.WriteString("}")

	return sb.String()
}

// block accumulates the statements of a fallible body.
type block struct {
	sb   strings.Builder
	zero string // zero value returned next to an error
}

// tryValue emits the statements computing the fallible mapping of in and
// returns the expression holding the result.
func (w *funcWriter) tryValue(blk *block, p *plan.Plan, in, hint string) string {
	switch p.Kind {
	case plan.PlanApply:
		return w.bind(blk, hint, w.f+"("+in+")")
	case plan.PlanLift:
		return w.tryLift(blk, p, in, hint)
	case plan.PlanCall:
		cur := in
		for _, s := range p.Steps {
			fn := w.qualify(p.Entry.ID.PkgPath, "", s.Func)
			cur = w.bind(blk, hint, fmt.Sprintf("%s(%s, %s)", fn, cur, w.tryFuncValue(s.Plan, stepExpr(p, s))))
		}

		return cur
	default:
		return in
	}
}

// bind assigns a fallible call to a fresh variable and returns on error.
func (w *funcWriter) bind(blk *block, hint, call string) string {
	name := w.names.fresh(hint)

	fmt.Fprintf(&blk.sb, "%s, %s := %s\n", name, w.err, call)
	fmt.Fprintf(&blk.sb, "if %s != nil {\nreturn %s, %s\n}\n", w.err, blk.zero, w.err)

	return name
}

func (w *funcWriter) tryFuncValue(p *plan.Plan, elem *typedef.TypeExpr) string {
	if p.Kind == plan.PlanApply {
		return w.f
	}

	v := w.names.fresh("v")
	typB := w.typeString(elem, w.b)

	inner := &block{zero: "*new(" + typB + ")"}
	val := w.tryValue(inner, p, v, "x")

	return fmt.Sprintf("func(%s %s) (%s, error) {\n%sreturn %s, nil\n}",
		v, w.typeString(elem, w.a), typB, inner.sb.String(), val)
}

func (w *funcWriter) tryLift(blk *block, p *plan.Plan, in, hint string) string {
	switch p.Strategy.Shape {
	case typedef.ShapeTuple:
		return w.tupleLiteral(p, in, func(s plan.Step, sel string) string {
			return w.tryValue(blk, s.Plan, sel, hint)
		})
	case typedef.ShapeArray:
		s := p.Steps[0]
		out := w.names.fresh(hint)
		i := w.names.fresh("i")
		x := w.names.fresh("x")

		fmt.Fprintf(&blk.sb, "var %s %s\n", out, w.typeString(p.Expr, w.b))
		fmt.Fprintf(&blk.sb, "for %s, %s := range %s {\n", i, x, in)

		inner := &block{zero: blk.zero}
		val := w.tryValue(inner, s.Plan, x, "x")

		blk.sb.WriteString(inner.sb.String())
		fmt.Fprintf(&blk.sb, "%s[%s] = %s\n}\n", out, i, val)

		return out
	default:
		s := p.Steps[0]

		return w.bind(blk, hint,
			fmt.Sprintf("%s(%s, %s)", w.runtime(p.Strategy.TryMap), in, w.tryFuncValue(s.Plan, stepExpr(p, s))))
	}
}

// fields renders the keyed elements of an arm's composite literal. sel is
// the expression holding the input value.
func (w *funcWriter) fields(blk *block, fields []plan.FieldPlan, sel string) string {
	var sb strings.Builder

	for _, fp := range fields {
		src := sel + "." + fp.Field.Name

		var val string
		if blk == nil {
			val = w.expr(fp.Plan, src)
		} else {
			val = w.tryValue(blk, fp.Plan, src, lowerFirst(fp.Field.Name))
		}

		fmt.Fprintf(&sb, "%s: %s,\n", fp.Field.Name, val)
	}

	return sb.String()
}

// structBody renders the body of a struct mapping.
func (w *funcWriter) structBody() string {
	out := w.instance(w.m.Def.Name, w.b)
	arm := w.m.Arms[0]

	if !w.m.Fallible() {
		return "return " + literal(out, w.fields(nil, arm.Fields, w.in)) + "\n"
	}

	blk := &block{zero: "*new(" + out + ")"}
	elems := w.fields(blk, arm.Fields, w.in)

	return blk.sb.String() + "return " + literal(out, elems) + ", nil\n"
}

// literal renders a composite literal from keyed elements.
func literal(typ, elems string) string {
	if elems == "" {
		return typ + "{}"
	}

	return typ + "{\n" + elems + "}"
}

// enumBody renders the type switch of an enum mapping.
func (w *funcWriter) enumBody() string {
	fallible := w.m.Fallible()

	ret := func(v string) string {
		if fallible {
			return "return " + v + ", nil\n"
		}

		return "return " + v + "\n"
	}

	v := w.names.fresh("v")
	usesV := false

	var cases strings.Builder

	fmt.Fprintf(&cases, "case nil:\n%s", ret("nil"))

	for _, arm := range w.m.Arms {
		variant := arm.Variant

		if !variant.Generic {
			typ := variant.Name
			if variant.Pointer {
				typ = "*" + typ
			}

			fmt.Fprintf(&cases, "case %s:\n%s", typ, ret(v))

			usesV = true

			continue
		}

		in := w.instance(variant.Name, w.a)
		out := w.instance(variant.Name, w.b)

		if variant.Pointer {
			fmt.Fprintf(&cases, "case *%s:\nif %s == nil {\n%s}\n", in, v, ret("(*"+out+")(nil)"))

			out = "&" + out
			usesV = true
		} else {
			fmt.Fprintf(&cases, "case %s:\n", in)
		}

		if len(arm.Fields) > 0 {
			usesV = true
		}

		if !fallible {
			cases.WriteString(ret(literal(out, w.fields(nil, arm.Fields, v))))
			continue
		}

		blk := &block{zero: "nil"}
		elems := w.fields(blk, arm.Fields, v)

		cases.WriteString(blk.sb.String())
		cases.WriteString(ret(literal(out, elems)))
	}

	head := "switch " + w.in + ".(type) {\n"
	if usesV {
		head = "switch " + v + " := " + w.in + ".(type) {\n"
	}

	return fmt.Sprintf("%s%s}\npanic(%s(%q, %s))\n",
		head, cases.String(), w.runtime("UnknownVariant"), w.m.Def.Name, w.in)
}

func lowerFirst(s string) string {
	if s == "" || s == "_" {
		return "x"
	}

	r, size := utf8.DecodeRuneInString(s)

	return string(unicode.ToLower(r)) + s[size:]
}
