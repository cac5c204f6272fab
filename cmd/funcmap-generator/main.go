// Package main provides the CLI entrypoint for funcmap-generator.
//
// funcmap-generator derives, for a generic type Foo[T], the functions
//
//	func MapFoo[A, B any](in Foo[A], f func(A) B) Foo[B]
//	func TryMapFoo[A, B any](in Foo[A], f func(A) (B, error)) (Foo[B], error)
//
// which apply f to every occurrence of T, however deeply it is nested.
//
// Commands:
//
//	gen      derive and write <package>_funcmap.go
//	check    derive without writing; exits non-zero on diagnostics
//	explain  print how every field of a type is classified and mapped
//	init     write a funcmap.yaml selecting every generic type of a package
package main

import (
	"fmt"
	"io"
	"os"
)

var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "gen":
		return cmdGen(rest, stdout, stderr)
	case "check":
		return cmdCheck(rest, stdout, stderr)
	case "explain":
		return cmdExplain(rest, stdout, stderr)
	case "init":
		return cmdInit(rest, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, "funcmap-generator", Version)
		return 0
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		usage(stderr)

		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "funcmap-generator - derives Map/TryMap functions for generic Go types")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  funcmap-generator gen     [-config funcmap.yaml] [-pkg pattern -types A,B] [-o file] [-d dir] [-v]")
	fmt.Fprintln(w, "  funcmap-generator check   [-config funcmap.yaml] [-pkg pattern -types A,B] [-v]")
	fmt.Fprintln(w, "  funcmap-generator explain -pkg pattern -type T [-param P]")
	fmt.Fprintln(w, "  funcmap-generator init    -pkg pattern [-o funcmap.yaml]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run a command with -h for its flags.")
}
