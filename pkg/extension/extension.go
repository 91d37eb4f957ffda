// Package extension defines the plugin contract for supplementary per-property
// checks together with the registry that collects plugins and the pipeline
// that orders them for a synthesis run.
//
// Plugins are shared by concurrent runs once the registry is sealed, so
// implementations must not keep per-call mutable state.
package extension

import (
	"github.com/goliatone/go-validgen/pkg/codegen"
	"github.com/goliatone/go-validgen/pkg/model"
)

// Extension contributes statements emitted before a property's validator is
// invoked. Lower priorities run first.
type Extension interface {
	// Name identifies the plugin in emitted comments and breaks priority ties.
	Name() string
	Priority() int
	Applicable(p model.Property) bool
	// GenerateValidation returns the statements checking the value bound to
	// local. container names the instance being validated. A nil or empty
	// result is ignored.
	GenerateValidation(p model.Property, local, container string) []codegen.Stmt
}

// Contribution is one plugin's output for a property.
type Contribution struct {
	Extension string
	Stmts     []codegen.Stmt
}

type funcExtension struct {
	name       string
	priority   int
	applicable func(model.Property) bool
	generate   func(p model.Property, local, container string) []codegen.Stmt
}

// New adapts plain functions into an Extension. A nil applicable func accepts
// every property.
func New(name string, priority int, applicable func(model.Property) bool, generate func(p model.Property, local, container string) []codegen.Stmt) Extension {
	return &funcExtension{
		name:       name,
		priority:   priority,
		applicable: applicable,
		generate:   generate,
	}
}

func (f *funcExtension) Name() string  { return f.name }
func (f *funcExtension) Priority() int { return f.priority }

func (f *funcExtension) Applicable(p model.Property) bool {
	if f.applicable == nil {
		return true
	}
	return f.applicable(p)
}

func (f *funcExtension) GenerateValidation(p model.Property, local, container string) []codegen.Stmt {
	if f.generate == nil {
		return nil
	}
	return f.generate(p, local, container)
}
