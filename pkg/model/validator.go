package model

import "github.com/goliatone/go-validgen/pkg/codegen"

// ValidatorField pairs an emitted property with its validator field and the
// strategy that initialises it.
type ValidatorField struct {
	Property Property
	Field    codegen.Field
	Strategy Strategy
	// Local is the binding name used for the property value in Validate.
	Local string
}

// SkippedProperty records a property left out of the artifact.
type SkippedProperty struct {
	Property Property
	Reason   string
}

// GeneratedValidator is the artifact of one synthesis run.
type GeneratedValidator struct {
	// Name is the validator type name, e.g. "PersonValidator".
	Name string
	// TypeName is the validated type's name.
	TypeName string
	// TypeParams mirror the validated type's parameters.
	TypeParams []codegen.TypeParam
	// Fields lists one entry per emitted property in extraction order.
	Fields []ValidatorField
	// Skipped lists opted-out or unresolvable properties.
	Skipped []SkippedProperty
	// Constructor builds the validator from the host factory.
	Constructor codegen.FuncDecl
	// Validate checks an instance, failing on the first property error.
	Validate codegen.FuncDecl
	// QualifierHelper and AccessorTable are set when at least one property
	// uses a qualified lookup.
	QualifierHelper *codegen.FuncDecl
	AccessorTable   *codegen.VarDecl
	// File is the complete compilation unit handed to a back-end.
	File codegen.File
}

// Generic reports whether the validated type declares type parameters.
func (g *GeneratedValidator) Generic() bool {
	return len(g.TypeParams) > 0
}

// FieldFor returns the validator field of the named property.
func (g *GeneratedValidator) FieldFor(property string) (ValidatorField, bool) {
	for _, f := range g.Fields {
		if f.Property.Name == property {
			return f, true
		}
	}
	return ValidatorField{}, false
}
