// Package config loads the YAML file that selects what funcmap-generator
// derives.
//
// A file names one package, the types of that package to derive (optionally
// restricted to some parameters and modes), the naming of generated
// functions, and extern entries describing mapping functions of types the
// generator does not derive itself.
//
// Example:
//
//	version: "1"
//	package: ./examples/shapes
//	output: shapes_funcmap.go
//	types:
//	  - name: Tree
//	  - name: Pair
//	    params: V
//	    modes: [map]
//	externs:
//	  - type: example.com/lib.Stack
//	    arity: 1
//	    positions:
//	      - {index: 0, map: MapStack, try_map: TryMapStack}
package config
