package classify

//go:generate go tool stringer -type=Kind

// Kind is the kind of an Occurrence.
type Kind int

const (
	Absent Kind = iota
	Direct
	Nested
	Ambiguous
)
