// Package orchestrator wires the loader → adapter → extract → resolve →
// assemble → back-end → writer pipeline, running one synthesis per declared
// type and providing dependency injection friendly helpers for consumers that
// prefer a single entry point.
package orchestrator
