package diagnostic

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"funcmap-generator/internal/common"
)

// Diagnostic codes.
const (
	CodeStructuralRejection   = "structural_rejection"
	CodeUnsupportedOccurrence = "unsupported_occurrence"
	CodeDisallowedParameter   = "disallowed_parameter"
)

// Diagnostics holds all diagnostic information from a derivation.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is one of the Code* constants.
	Code string
	// Message is the human-readable description.
	Message string
	// Type is the type being derived, e.g. "Pair[T, U]".
	Type string
	// FieldPath is "Field" or "Variant.Field" (if any).
	FieldPath string
	// Expr is the offending type expression (if any).
	Expr string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Add appends a diagnostic to the list matching its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = appendNew(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = appendNew(d.Warnings, diag)
	default:
		d.Infos = appendNew(d.Infos, diag)
	}
}

// appendNew appends diag unless an identical diagnostic is already listed.
func appendNew(list []Diagnostic, diag Diagnostic) []Diagnostic {
	if slices.Contains(list, diag) {
		return list
	}

	return append(list, diag)
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, typ, fieldPath, expr string) {
	d.Add(Diagnostic{
		Severity:  DiagnosticError,
		Code:      code,
		Message:   message,
		Type:      typ,
		FieldPath: fieldPath,
		Expr:      expr,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typ, fieldPath string) {
	d.Add(Diagnostic{
		Severity:  DiagnosticWarning,
		Code:      code,
		Message:   message,
		Type:      typ,
		FieldPath: fieldPath,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, typ, fieldPath string) {
	d.Add(Diagnostic{
		Severity:  DiagnosticInfo,
		Code:      code,
		Message:   message,
		Type:      typ,
		FieldPath: fieldPath,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	for _, list := range [][]Diagnostic{other.Errors, other.Warnings, other.Infos} {
		for _, diag := range list {
			d.Add(diag)
		}
	}
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Err returns an *Error holding all error diagnostics, or nil if valid.
func (d *Diagnostics) Err() error {
	if d.IsValid() {
		return nil
	}

	return &Error{Diagnostics: append([]Diagnostic(nil), d.Errors...)}
}

// String returns a formatted diagnostic string:
// "[code] Type.Field: message (expr)".
func (d Diagnostic) String() string {
	var sb strings.Builder

	if d.Code != "" {
		sb.WriteString("[" + d.Code + "] ")
	}

	loc := d.Type
	if d.FieldPath != "" {
		if loc != "" {
			loc += "."
		}

		loc += d.FieldPath
	}

	if loc != "" {
		sb.WriteString(loc + ": ")
	}

	sb.WriteString(d.Message)

	if d.Expr != "" {
		fmt.Fprintf(&sb, " (%s)", d.Expr)
	}

	return sb.String()
}

// Error is the error returned for a failed derivation.
type Error struct {
	Diagnostics []Diagnostic
}

// Error joins all diagnostics with "; ".
func (e *Error) Error() string {
	parts := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		parts[i] = d.String()
	}

	return strings.Join(parts, "; ")
}

// Codes returns the distinct codes of the error in order of appearance.
func (e *Error) Codes() []string {
	var out []string

	for _, d := range e.Diagnostics {
		found := false

		for _, c := range out {
			if c == d.Code {
				found = true
				break
			}
		}

		if !found {
			out = append(out, d.Code)
		}
	}

	return out
}

// IsCode reports whether err carries a diagnostic with the given code.
func IsCode(err error, code string) bool {
	var de *Error
	if !errors.As(err, &de) {
		return false
	}

	for _, d := range de.Diagnostics {
		if d.Code == code {
			return true
		}
	}

	return false
}

// New returns an *Error with a single error diagnostic.
func New(code, message, typ, fieldPath, expr string) error {
	return &Error{Diagnostics: []Diagnostic{{
		Severity:  DiagnosticError,
		Code:      code,
		Message:   message,
		Type:      typ,
		FieldPath: fieldPath,
		Expr:      expr,
	}}}
}

// Collect merges the diagnostics of err into d. Errors that are not *Error
// are recorded with the fallback code.
func (d *Diagnostics) Collect(err error, fallbackCode, typ, fieldPath string) {
	if err == nil {
		return
	}

	var de *Error
	if errors.As(err, &de) {
		for _, diag := range de.Diagnostics {
			if diag.Type == "" {
				diag.Type = typ
			}

			if diag.FieldPath == "" {
				diag.FieldPath = fieldPath
			}

			d.Add(diag)
		}

		return
	}

	d.AddError(fallbackCode, err.Error(), typ, fieldPath, "")
}
