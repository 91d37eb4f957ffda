package model

import (
	"slices"
	"strings"

	"github.com/goliatone/go-validgen/pkg/typedesc"
)

// Default marker names. Hosts can rename them through Markers.
const (
	MarkerIgnore      = "Ignore"
	MarkerNoValidate  = "NoValidate"
	MarkerValidatedBy = "ValidatedBy"
)

// Markers names the host-defined metadata markers the engine reacts to.
type Markers struct {
	// Ignore removes an accessor from the validable set.
	Ignore string
	// NoValidate keeps the property but suppresses its check.
	NoValidate string
	// ValidatedBy carries explicit validator type references.
	ValidatedBy string
}

// DefaultMarkers returns the built-in marker names.
func DefaultMarkers() Markers {
	return Markers{
		Ignore:      MarkerIgnore,
		NoValidate:  MarkerNoValidate,
		ValidatedBy: MarkerValidatedBy,
	}
}

// WithDefaults fills blank names with the defaults.
func (m Markers) WithDefaults() Markers {
	def := DefaultMarkers()
	if strings.TrimSpace(m.Ignore) == "" {
		m.Ignore = def.Ignore
	}
	if strings.TrimSpace(m.NoValidate) == "" {
		m.NoValidate = def.NoValidate
	}
	if strings.TrimSpace(m.ValidatedBy) == "" {
		m.ValidatedBy = def.ValidatedBy
	}
	return m
}

// Marker is one metadata tag attached to an accessor. Qualifier is set when
// the marker's own declaration marks it usable for qualified lookups.
type Marker struct {
	Name      string
	Args      []string
	Qualifier bool
}

// Property is one validable accessor of a type declaration.
type Property struct {
	// Name is the human name derived from the accessor ("GetEmail" -> "email").
	Name string
	// Accessor is the method name called on the instance.
	Accessor string
	// Type is the declared result type.
	Type typedesc.Descriptor
	// Markers are the tags attached to the accessor, in declaration order.
	Markers []Marker
	// Ordinal is the position within the extracted property list.
	Ordinal int
	// Doc is the sanitised accessor documentation, if any.
	Doc string

	noValidate string
}

// NewProperty builds a Property. noValidate names the opt-out marker consulted
// by ShouldValidate.
func NewProperty(name, accessor string, typ typedesc.Descriptor, markers []Marker, ordinal int, noValidate string) Property {
	return Property{
		Name:       name,
		Accessor:   accessor,
		Type:       typ,
		Markers:    slices.Clone(markers),
		Ordinal:    ordinal,
		noValidate: noValidate,
	}
}

// HasMarker reports whether a marker with name is attached.
func (p Property) HasMarker(name string) bool {
	_, ok := p.Marker(name)
	return ok
}

// Marker returns the first marker with name.
func (p Property) Marker(name string) (Marker, bool) {
	for _, m := range p.Markers {
		if m.Name == name {
			return m, true
		}
	}
	return Marker{}, false
}

// ShouldValidate reports whether the property's check is emitted.
func (p Property) ShouldValidate() bool {
	name := p.noValidate
	if name == "" {
		name = MarkerNoValidate
	}
	return !p.HasMarker(name)
}

// Qualifiers returns the markers flagged as qualifiers, in declaration order.
func (p Property) Qualifiers() []Marker {
	var out []Marker
	for _, m := range p.Markers {
		if m.Qualifier {
			out = append(out, m)
		}
	}
	return out
}

// IsPrimitive reports whether the declared type is a primitive.
func (p Property) IsPrimitive() bool {
	return typedesc.IsPrimitive(p.Type)
}
