package typedef

import (
	"path"
	"strconv"
	"strings"
)

// ExprKind is the kind of a TypeExpr node.
type ExprKind int

const (
	ExprOpaque        ExprKind = iota // basic or non-generic named type, or a literal
	ExprParam                         // reference to a type parameter
	ExprTuple                         // anonymous struct; its fields are positions
	ExprArray                         // [N]Elem
	ExprContainer                     // slice, map, set, Option or Result
	ExprNamed                         // generic named type with type arguments
	ExprPointer                       // *Elem
	ExprUntraversable                 // chan, func or interface literal
)

// String returns a human-readable representation of the ExprKind.
func (k ExprKind) String() string {
	switch k {
	case ExprOpaque:
		return "opaque"
	case ExprParam:
		return "param"
	case ExprTuple:
		return "tuple"
	case ExprArray:
		return "array"
	case ExprContainer:
		return "container"
	case ExprNamed:
		return "named"
	case ExprPointer:
		return "pointer"
	case ExprUntraversable:
		return "untraversable"
	default:
		return "unknown"
	}
}

// Shape is the closed set of structural shapes the generator knows how to
// traverse.
type Shape int

const (
	ShapeNone Shape = iota
	ShapePointer
	ShapeArray
	ShapeTuple
	ShapeSlice
	ShapeMap
	ShapeSet
	ShapeOption
	ShapeResult
)

// String returns a human-readable representation of the Shape.
func (s Shape) String() string {
	switch s {
	case ShapePointer:
		return "pointer"
	case ShapeArray:
		return "array"
	case ShapeTuple:
		return "tuple"
	case ShapeSlice:
		return "slice"
	case ShapeMap:
		return "map"
	case ShapeSet:
		return "set"
	case ShapeOption:
		return "option"
	case ShapeResult:
		return "result"
	default:
		return "none"
	}
}

// TypeExpr is the recursive description of a declared field type.
type TypeExpr struct {
	Kind ExprKind

	// Slot is set for ExprParam.
	Slot Slot
	// PkgPath and Name identify ExprOpaque and ExprNamed types. For builtin
	// types PkgPath is empty.
	PkgPath string
	Name    string
	// PkgName is the declared package name when it differs from the last
	// element of PkgPath (e.g., "yaml" for "gopkg.in/yaml.v3").
	PkgName string
	// Text is the literal source of ExprUntraversable and literal ExprOpaque
	// types (e.g., "interface{ ~int | ~string }").
	Text string
	// Imports maps the import paths referenced by Text to the package names
	// Text qualifies them with.
	Imports map[string]string
	// Container is set for ExprContainer.
	Container Shape
	// Args holds container arguments (map: key, value), generic arguments of
	// a named type, or the parameters mentioned by an untraversable type.
	Args []*TypeExpr
	// Elem is set for ExprArray and ExprPointer.
	Elem *TypeExpr
	// Len is the length of an ExprArray.
	Len int64
	// Fields are the positions of an ExprTuple.
	Fields []TupleField
}

// TupleField is one position of an anonymous struct.
type TupleField struct {
	Name     string
	Type     *TypeExpr
	Embedded bool
	Tag      string
}

// Basic returns an opaque builtin type such as "int" or "any".
func Basic(name string) *TypeExpr {
	return &TypeExpr{Kind: ExprOpaque, Name: name}
}

// Opaque returns an opaque non-generic named type.
func Opaque(pkgPath, name string) *TypeExpr {
	return &TypeExpr{Kind: ExprOpaque, PkgPath: pkgPath, Name: name}
}

// Literal returns an opaque type spelled by its source text.
func Literal(text string) *TypeExpr {
	return &TypeExpr{Kind: ExprOpaque, Text: text}
}

// Param returns a reference to a type parameter.
func Param(s Slot) *TypeExpr {
	return &TypeExpr{Kind: ExprParam, Slot: s}
}

// Tuple returns an anonymous struct with the given positions.
func Tuple(fields ...TupleField) *TypeExpr {
	return &TypeExpr{Kind: ExprTuple, Fields: fields}
}

// Array returns [n]elem.
func Array(n int64, elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprArray, Len: n, Elem: elem}
}

// Pointer returns *elem.
func Pointer(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprPointer, Elem: elem}
}

// Slice returns []elem.
func Slice(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprContainer, Container: ShapeSlice, Args: []*TypeExpr{elem}}
}

// Map returns map[key]value.
func Map(key, value *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprContainer, Container: ShapeMap, Args: []*TypeExpr{key, value}}
}

// Set returns map[elem]struct{}.
func Set(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprContainer, Container: ShapeSet, Args: []*TypeExpr{elem}}
}

// Option returns funcmap.Option[elem].
func Option(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprContainer, Container: ShapeOption, Args: []*TypeExpr{elem}}
}

// Result returns funcmap.Result[elem].
func Result(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprContainer, Container: ShapeResult, Args: []*TypeExpr{elem}}
}

// Named returns a generic named type instantiated with args.
func Named(pkgPath, name string, args ...*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprNamed, PkgPath: pkgPath, Name: name, Args: args}
}

// Untraversable returns a type the generator cannot look through. mentioned
// lists the type parameters occurring inside it.
func Untraversable(text string, mentioned ...*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: ExprUntraversable, Text: text, Args: mentioned}
}

// ID returns the TypeID of an opaque or named type.
func (e *TypeExpr) ID() TypeID {
	return TypeID{PkgPath: e.PkgPath, Name: e.Name}
}

// Shape returns the structural shape of the expression, or ShapeNone.
func (e *TypeExpr) Shape() Shape {
	switch e.Kind {
	case ExprPointer:
		return ShapePointer
	case ExprArray:
		return ShapeArray
	case ExprTuple:
		return ShapeTuple
	case ExprContainer:
		return e.Container
	default:
		return ShapeNone
	}
}

// Position is one directly contained type of an expression.
type Position struct {
	Index int
	Name  string // tuple field name, or a shape specific label such as "key"
	Expr  *TypeExpr
}

// Positions lists the directly contained types of a structured expression in
// their original order.
func (e *TypeExpr) Positions() []Position {
	switch e.Kind {
	case ExprPointer, ExprArray:
		return []Position{{Index: 0, Name: "elem", Expr: e.Elem}}
	case ExprTuple:
		out := make([]Position, len(e.Fields))
		for i, f := range e.Fields {
			out[i] = Position{Index: i, Name: f.Name, Expr: f.Type}
		}

		return out
	case ExprContainer:
		if e.Container == ShapeMap {
			return []Position{
				{Index: 0, Name: "key", Expr: e.Args[0]},
				{Index: 1, Name: "value", Expr: e.Args[1]},
			}
		}

		return []Position{{Index: 0, Name: "elem", Expr: e.Args[0]}}
	case ExprNamed, ExprUntraversable:
		out := make([]Position, len(e.Args))
		for i, a := range e.Args {
			out[i] = Position{Index: i, Name: "arg" + strconv.Itoa(i), Expr: a}
		}

		return out
	default:
		return nil
	}
}

// Mentions reports whether s occurs anywhere in the expression.
func (e *TypeExpr) Mentions(s Slot) bool {
	if e == nil {
		return false
	}

	if e.Kind == ExprParam {
		return e.Slot == s
	}

	for _, p := range e.Positions() {
		if p.Expr.Mentions(s) {
			return true
		}
	}

	return false
}

// MentionsOpaquely reports whether s occurs inside an untraversable part of
// the expression, where it is only known through source text.
func (e *TypeExpr) MentionsOpaquely(s Slot) bool {
	if e == nil {
		return false
	}

	if e.Kind == ExprUntraversable {
		return e.Mentions(s)
	}

	for _, p := range e.Positions() {
		if p.Expr.MentionsOpaquely(s) {
			return true
		}
	}

	return false
}

// Slots returns every distinct slot occurring in the expression, in order of
// first occurrence.
func (e *TypeExpr) Slots() []Slot {
	var out []Slot

	var walk func(x *TypeExpr)
	walk = func(x *TypeExpr) {
		if x == nil {
			return
		}

		if x.Kind == ExprParam {
			for _, s := range out {
				if s == x.Slot {
					return
				}
			}

			out = append(out, x.Slot)

			return
		}

		for _, p := range x.Positions() {
			walk(p.Expr)
		}
	}
	walk(e)

	return out
}

// String renders the expression in Go syntax, qualifying named types with the
// last element of their package path.
func (e *TypeExpr) String() string {
	if e == nil {
		return "<nil>"
	}

	var sb strings.Builder
	e.write(&sb)

	return sb.String()
}

func (e *TypeExpr) write(sb *strings.Builder) {
	switch e.Kind {
	case ExprOpaque:
		if e.Text != "" {
			sb.WriteString(e.Text)
			return
		}

		writeQualified(sb, e.pkgName(), e.Name)
	case ExprParam:
		sb.WriteString(e.Slot.Name())
	case ExprPointer:
		sb.WriteString("*")
		e.Elem.write(sb)
	case ExprArray:
		sb.WriteString("[" + strconv.FormatInt(e.Len, 10) + "]")
		e.Elem.write(sb)
	case ExprTuple:
		sb.WriteString("struct{")

		for i, f := range e.Fields {
			if i > 0 {
				sb.WriteString("; ")
			}

			if !f.Embedded {
				sb.WriteString(f.Name + " ")
			}

			f.Type.write(sb)

			if f.Tag != "" {
				sb.WriteString(" " + strconv.Quote(f.Tag))
			}
		}

		sb.WriteString("}")
	case ExprContainer:
		switch e.Container {
		case ShapeSlice:
			sb.WriteString("[]")
			e.Args[0].write(sb)
		case ShapeMap:
			sb.WriteString("map[")
			e.Args[0].write(sb)
			sb.WriteString("]")
			e.Args[1].write(sb)
		case ShapeSet:
			sb.WriteString("map[")
			e.Args[0].write(sb)
			sb.WriteString("]struct{}")
		case ShapeOption, ShapeResult:
			if e.Container == ShapeOption {
				sb.WriteString("funcmap.Option[")
			} else {
				sb.WriteString("funcmap.Result[")
			}

			e.Args[0].write(sb)
			sb.WriteString("]")
		}
	case ExprNamed:
		writeQualified(sb, e.pkgName(), e.Name)
		sb.WriteString("[")

		for i, a := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			a.write(sb)
		}

		sb.WriteString("]")
	case ExprUntraversable:
		sb.WriteString(e.Text)
	}
}

// QualifierName returns the package name used to qualify the type.
func (e *TypeExpr) QualifierName() string {
	return e.pkgName()
}

func (e *TypeExpr) pkgName() string {
	if e.PkgName != "" || e.PkgPath == "" {
		return e.PkgName
	}

	return path.Base(e.PkgPath)
}

func writeQualified(sb *strings.Builder, pkgName, name string) {
	if pkgName != "" {
		sb.WriteString(pkgName)
		sb.WriteString(".")
	}

	sb.WriteString(name)
}
