// Package dcr holds the value objects of Dynamic Condition Response graphs:
// events, the five relation kinds, markings and the flat group table used for
// sub-process scoping and nesting annotations.
//
// A Graph is immutable once produced. Marking is the only mutable state and is
// owned by whoever executes events against it (see package engine).
package dcr
