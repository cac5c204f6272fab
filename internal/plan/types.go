package plan

import (
	"fmt"
	"strings"

	"funcmap-generator/internal/common"
	"funcmap-generator/internal/containers"
	"funcmap-generator/internal/typedef"
)

// Kind is the kind of a Plan node.
type Kind int

const (
	// PlanIdentity - the value is moved into the output unchanged.
	PlanIdentity Kind = iota
	// PlanApply - the user function is applied to the value.
	PlanApply
	// PlanLift - the inner plans are lifted over a built-in shape.
	PlanLift
	// PlanCall - the mapping function of a generic named type is called.
	PlanCall
)

// String returns a human-readable plan kind.
func (k Kind) String() string {
	switch k {
	case PlanIdentity:
		return "identity"
	case PlanApply:
		return "apply"
	case PlanLift:
		return "lift"
	case PlanCall:
		return "call"
	default:
		return common.UnknownStr
	}
}

// Plan is the recipe that rebuilds one value of type Expr.
type Plan struct {
	Kind Kind
	// Expr is the input type of the plan.
	Expr *typedef.TypeExpr
	// Strategy is set for PlanLift.
	Strategy *containers.Strategy
	// Entry is set for PlanCall.
	Entry *containers.Entry
	// Steps hold one inner plan per mapped position, in position order.
	Steps []Step
}

// Step maps one position of a Lift or Call.
type Step struct {
	Index int
	Name  string
	Plan  *Plan
	// Func is the function a Call invokes for this position.
	Func string
}

// IsIdentity reports whether the plan leaves the value unchanged.
func (p *Plan) IsIdentity() bool {
	return p.Kind == PlanIdentity
}

// Step returns the step for position index.
func (p *Plan) Step(index int) (Step, bool) {
	for _, s := range p.Steps {
		if s.Index == index {
			return s, true
		}
	}

	return Step{}, false
}

// String renders the plan on one line, e.g. "lift(slice, elem: apply)".
func (p *Plan) String() string {
	switch p.Kind {
	case PlanLift, PlanCall:
		via := ""
		if p.Strategy != nil {
			via = p.Strategy.Shape.String()
		} else if p.Entry != nil {
			via = p.Entry.ID.String()
		}

		parts := []string{via}
		for _, s := range p.Steps {
			parts = append(parts, fmt.Sprintf("%s: %s", s.Name, s.Plan))
		}

		return fmt.Sprintf("%s(%s)", p.Kind, strings.Join(parts, ", "))
	default:
		return p.Kind.String()
	}
}

// Mode selects the infallible or the fallible mapping.
type Mode int

const (
	ModeMap Mode = iota
	ModeTryMap
)

// Modes lists every mode in emission order.
var Modes = []Mode{ModeMap, ModeTryMap}

// String returns the configuration spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeMap:
		return "map"
	case ModeTryMap:
		return "try_map"
	default:
		return common.UnknownStr
	}
}

// ParseMode parses "map" or "try_map".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "map":
		return ModeMap, nil
	case "try_map":
		return ModeTryMap, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want map or try_map)", s)
	}
}

// Fallible reports whether the mode propagates errors.
func (m Mode) Fallible() bool {
	return m == ModeTryMap
}

// Mapping is the derived mapping of one type over one parameter.
type Mapping struct {
	Def      *typedef.Definition
	Slot     typedef.Slot
	Mode     Mode
	FuncName string
	// Arms hold one arm for a struct, or one arm per variant of an enum in
	// declaration order.
	Arms []Arm
}

// Fallible reports whether the mapping is the fallible one.
func (m *Mapping) Fallible() bool {
	return m.Mode.Fallible()
}

// Arm is the plan for one struct or one enum variant.
type Arm struct {
	// Variant is nil for a struct.
	Variant *typedef.Variant
	Fields  []FieldPlan
}

// FieldPlan pairs a field with its plan.
type FieldPlan struct {
	Field typedef.Field
	Plan  *Plan
}

// Callees returns the named types whose mapping functions the mapping calls.
func (m *Mapping) Callees() []typedef.TypeID {
	var out []typedef.TypeID

	seen := make(map[typedef.TypeID]bool)

	var walk func(p *Plan)
	walk = func(p *Plan) {
		if p.Kind == PlanCall && !seen[p.Entry.ID] {
			seen[p.Entry.ID] = true
			out = append(out, p.Entry.ID)
		}

		for _, s := range p.Steps {
			walk(s.Plan)
		}
	}

	for _, a := range m.Arms {
		for _, f := range a.Fields {
			walk(f.Plan)
		}
	}

	return out
}
