// Package funcmap is the runtime support of code generated by
// funcmap-generator.
//
// Generated MapX and TryMapX functions call the helpers of this package to
// lift a mapping over slices, maps, sets, pointers and the Option and Result
// wrappers. Every fallible helper stops at the first error and returns no
// partial container.
//
// Mapping follows the value as a tree. A pointer reached twice is mapped
// twice into two separate copies, so sharing in the input is not preserved.
// Values whose pointers form a cycle are not supported: mapping one never
// returns.
package funcmap
