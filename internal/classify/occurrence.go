package classify

import (
	"fmt"
	"strings"

	"funcmap-generator/internal/containers"
	"funcmap-generator/internal/typedef"
)

// Rule names the reason an occurrence cannot be mapped.
type Rule string

const (
	RuleForeignSlot        Rule = "foreign-slot"
	RuleMapKey             Rule = "map-key"
	RuleUnregisteredType   Rule = "unregistered-type"
	RuleArity              Rule = "arity"
	RuleUnmappablePosition Rule = "unmappable-position"
	RuleUntraversable      Rule = "untraversable"
)

// Occurrence describes where the active parameter occurs in a type.
type Occurrence struct {
	Kind Kind
	// Expr is the classified type expression.
	Expr *typedef.TypeExpr

	// Strategy is set when a Nested occurrence goes through a built-in shape.
	Strategy *containers.Strategy
	// Entry is set when a Nested occurrence goes through a registered
	// generic named type.
	Entry *containers.Entry
	// Positions are the non-absent positions of a Nested occurrence, in
	// their original order.
	Positions []Position

	// Rule and Reason are set for Ambiguous occurrences.
	Rule   Rule
	Reason string
}

// Position is one contained type of a Nested occurrence.
type Position struct {
	Index int
	Name  string
	Occ   *Occurrence
}

// IsAbsent reports whether the parameter does not occur.
func (o *Occurrence) IsAbsent() bool {
	return o.Kind == Absent
}

// Via returns the name of the shape or type a Nested occurrence goes
// through.
func (o *Occurrence) Via() string {
	switch {
	case o.Strategy != nil:
		return o.Strategy.Shape.String()
	case o.Entry != nil:
		return o.Entry.ID.String()
	default:
		return ""
	}
}

// FirstAmbiguous returns the outermost Ambiguous occurrence in the tree, or
// nil.
func (o *Occurrence) FirstAmbiguous() *Occurrence {
	if o.Kind == Ambiguous {
		return o
	}

	for _, p := range o.Positions {
		if a := p.Occ.FirstAmbiguous(); a != nil {
			return a
		}
	}

	return nil
}

// String renders the tree on one line, e.g. "nested(slice, elem: direct)".
func (o *Occurrence) String() string {
	var sb strings.Builder
	o.write(&sb)

	return sb.String()
}

func (o *Occurrence) write(sb *strings.Builder) {
	switch o.Kind {
	case Absent:
		sb.WriteString("absent")
	case Direct:
		sb.WriteString("direct")
	case Nested:
		sb.WriteString("nested(" + o.Via())

		for _, p := range o.Positions {
			sb.WriteString(", " + p.Name + ": ")
			p.Occ.write(sb)
		}

		sb.WriteString(")")
	case Ambiguous:
		fmt.Fprintf(sb, "ambiguous(%s: %s)", o.Rule, o.Reason)
	default:
		sb.WriteString(o.Kind.String())
	}
}

// Lines renders the tree one node per line, indented by depth.
func (o *Occurrence) Lines() []string {
	var out []string

	var walk func(x *Occurrence, label string, depth int)
	walk = func(x *Occurrence, label string, depth int) {
		line := strings.Repeat("  ", depth) + label + x.Expr.String() + " => "

		switch x.Kind {
		case Nested:
			line += "nested via " + x.Via()
		case Ambiguous:
			line += fmt.Sprintf("ambiguous [%s] %s", x.Rule, x.Reason)
		default:
			line += strings.ToLower(x.Kind.String())
		}

		out = append(out, line)

		for _, p := range x.Positions {
			walk(p.Occ, p.Name+": ", depth+1)
		}
	}
	walk(o, "", 0)

	return out
}
