package classify

import (
	"fmt"

	"funcmap-generator/internal/containers"
	"funcmap-generator/internal/typedef"
)

// Classify reports where slot occurs in expr. Generic named types are looked
// up in reg; a nil registry knows no named types.
func Classify(expr *typedef.TypeExpr, slot typedef.Slot, reg *containers.Registry) *Occurrence {
	switch expr.Kind {
	case typedef.ExprParam:
		return classifyParam(expr, slot)
	case typedef.ExprPointer, typedef.ExprArray, typedef.ExprTuple, typedef.ExprContainer:
		return classifyShape(expr, slot, reg)
	case typedef.ExprNamed:
		return classifyNamed(expr, slot, reg)
	case typedef.ExprUntraversable:
		return classifyUntraversable(expr, slot)
	default:
		return absent(expr)
	}
}

func classifyParam(expr *typedef.TypeExpr, slot typedef.Slot) *Occurrence {
	if expr.Slot == slot {
		return &Occurrence{Kind: Direct, Expr: expr}
	}

	if !expr.Slot.IsValid() || expr.Slot.Owner() != slot.Owner() {
		return ambiguous(expr, RuleForeignSlot,
			fmt.Sprintf("type parameter %s was not declared by this type", expr.Slot.Name()))
	}

	return absent(expr)
}

func classifyShape(expr *typedef.TypeExpr, slot typedef.Slot, reg *containers.Registry) *Occurrence {
	strategy, ok := containers.Lookup(expr.Shape())
	if !ok {
		return ambiguous(expr, RuleUntraversable, "unknown shape "+expr.Shape().String())
	}

	var positions []Position

	for _, p := range expr.Positions() {
		occ := Classify(p.Expr, slot, reg)
		if occ.IsAbsent() {
			continue
		}

		if !strategy.Lifts(p.Index) {
			if occ.Kind == Ambiguous {
				return occ
			}

			return ambiguous(expr, RuleMapKey,
				fmt.Sprintf("%s occurs in a map key; only values are mapped", slot.Name()))
		}

		positions = append(positions, Position{Index: p.Index, Name: p.Name, Occ: occ})
	}

	if len(positions) == 0 {
		return absent(expr)
	}

	return &Occurrence{Kind: Nested, Expr: expr, Strategy: &strategy, Positions: positions}
}

func classifyNamed(expr *typedef.TypeExpr, slot typedef.Slot, reg *containers.Registry) *Occurrence {
	var positions []Position

	for _, p := range expr.Positions() {
		occ := Classify(p.Expr, slot, reg)
		if occ.IsAbsent() {
			continue
		}

		positions = append(positions, Position{Index: p.Index, Name: p.Name, Occ: occ})
	}

	if len(positions) == 0 {
		return absent(expr)
	}

	entry, ok := reg.Lookup(expr.ID())
	if !ok {
		return ambiguous(expr, RuleUnregisteredType,
			fmt.Sprintf("no mapping is known for %s", expr.ID()))
	}

	if entry.Arity != len(expr.Args) {
		return ambiguous(expr, RuleArity,
			fmt.Sprintf("%s is registered with %d type parameters, used with %d", expr.ID(), entry.Arity, len(expr.Args)))
	}

	for _, p := range positions {
		if _, ok := entry.Funcs(p.Index); !ok {
			return ambiguous(expr, RuleUnmappablePosition,
				fmt.Sprintf("type argument %d of %s cannot be mapped", p.Index, expr.ID()))
		}
	}

	return &Occurrence{Kind: Nested, Expr: expr, Entry: entry, Positions: positions}
}

func classifyUntraversable(expr *typedef.TypeExpr, slot typedef.Slot) *Occurrence {
	for _, m := range expr.Args {
		if occ := Classify(m, slot, nil); !occ.IsAbsent() {
			if occ.Kind == Ambiguous {
				return occ
			}

			return ambiguous(expr, RuleUntraversable,
				fmt.Sprintf("%s occurs inside %s, which cannot be traversed", slot.Name(), expr.Text))
		}
	}

	return absent(expr)
}

func absent(expr *typedef.TypeExpr) *Occurrence {
	return &Occurrence{Kind: Absent, Expr: expr}
}

func ambiguous(expr *typedef.TypeExpr, rule Rule, reason string) *Occurrence {
	return &Occurrence{Kind: Ambiguous, Expr: expr, Rule: rule, Reason: reason}
}
