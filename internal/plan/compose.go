package plan

import (
	"fmt"

	"funcmap-generator/internal/classify"
	"funcmap-generator/internal/diagnostic"
)

// Compose turns an occurrence into a plan. Ambiguous occurrences, and calls
// into named types that lack a function for the requested mode, yield an
// unsupported_occurrence error naming the offending type.
func Compose(occ *classify.Occurrence, mode Mode) (*Plan, error) {
	switch occ.Kind {
	case classify.Absent:
		return &Plan{Kind: PlanIdentity, Expr: occ.Expr}, nil
	case classify.Direct:
		return &Plan{Kind: PlanApply, Expr: occ.Expr}, nil
	case classify.Nested:
		return composeNested(occ, mode)
	case classify.Ambiguous:
		return nil, diagnostic.New(diagnostic.CodeUnsupportedOccurrence,
			fmt.Sprintf("%s [%s]", occ.Reason, occ.Rule), "", "", occ.Expr.String())
	default:
		return nil, fmt.Errorf("unknown occurrence kind %s", occ.Kind)
	}
}

func composeNested(occ *classify.Occurrence, mode Mode) (*Plan, error) {
	p := &Plan{Expr: occ.Expr}

	switch {
	case occ.Strategy != nil:
		p.Kind = PlanLift
		p.Strategy = occ.Strategy
	case occ.Entry != nil:
		p.Kind = PlanCall
		p.Entry = occ.Entry
	default:
		return nil, fmt.Errorf("nested occurrence of %s has neither strategy nor entry", occ.Expr)
	}

	for _, pos := range occ.Positions {
		inner, err := Compose(pos.Occ, mode)
		if err != nil {
			return nil, err
		}

		step := Step{Index: pos.Index, Name: pos.Name, Plan: inner}

		if p.Kind == PlanCall {
			funcs, _ := p.Entry.Funcs(pos.Index)

			step.Func = funcs.Get(mode.Fallible())
			if step.Func == "" {
				return nil, diagnostic.New(diagnostic.CodeUnsupportedOccurrence,
					fmt.Sprintf("%s has no %s function for type argument %d", p.Entry.ID, mode, pos.Index),
					"", "", occ.Expr.String())
			}
		}

		p.Steps = append(p.Steps, step)
	}

	return p, nil
}
