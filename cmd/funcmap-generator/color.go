package main

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/mattn/go-isatty"
)

// colorEnabled resolves a -color value for output written to w.
func colorEnabled(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "auto":
		f, ok := w.(*os.File)
		return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())), nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid -color value: %s", mode)
	}
}

var (
	reCode = regexp.MustCompile(`^\[[a-z_]+\]`)
	reExpr = regexp.MustCompile(`\([^()]*\)$`)
)

// colorize highlights the code and the offending expression of a diagnostic
// line.
func colorize(line string) string {
	const (
		red   = "\033[31m"
		dim   = "\033[2m"
		reset = "\033[0m"
	)

	line = reCode.ReplaceAllStringFunc(line, func(s string) string { return red + s + reset })
	line = reExpr.ReplaceAllStringFunc(line, func(s string) string { return dim + s + reset })

	return line
}
