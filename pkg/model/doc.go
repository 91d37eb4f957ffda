// Package model defines the values exchanged between the synthesis stages:
// the validable Property list produced by extraction, the Strategy bound to
// each property by the resolver, the Diagnostic records reported for
// configuration problems and the GeneratedValidator assembled at the end of a
// run. Properties and strategies are immutable once created; a
// GeneratedValidator is owned by the run that produced it and is never mutated
// after assembly.
package model
