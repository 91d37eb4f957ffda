// Package parser implements the OpenAPI front end on top of kin-openapi.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-validgen/pkg/codegen"
	"github.com/goliatone/go-validgen/pkg/decl"
	pkgopenapi "github.com/goliatone/go-validgen/pkg/openapi"
	"github.com/goliatone/go-validgen/pkg/schema"
)

// Parser implements pkgopenapi.Parser using kin-openapi.
type Parser struct {
	options pkgopenapi.ParserOptions
}

var _ pkgopenapi.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ParserOptions) *Parser {
	if options.Package == "" {
		options.Package = pkgopenapi.DefaultPackage
	}
	if options.TimeImport == "" {
		options.TimeImport = "time"
	}
	return &Parser{options: options}
}

// Declarations converts the component object schemas of doc into type
// declarations, keeping the order schemas and properties are written in.
func (p *Parser) Declarations(ctx context.Context, doc schema.Document) (decl.Document, error) {
	if err := ctx.Err(); err != nil {
		return decl.Document{}, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return decl.Document{}, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.ResolveReferences,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return decl.Document{}, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if p.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return decl.Document{}, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return decl.Document{}, errors.New("openapi parser: document defines no component schemas")
	}

	order := recoverOrder(raw)
	out := decl.Document{Package: p.options.Package, Source: doc.Location()}
	owners := make(map[string]string)

	for _, name := range ordered(order.schemas, spec.Components.Schemas) {
		ref := spec.Components.Schemas[name]
		if ref == nil || !isRecord(ref.Value) {
			continue
		}
		ext, err := readExtension(ref.Value.Extensions)
		if err != nil {
			return decl.Document{}, fmt.Errorf("openapi parser: schema %q: %w", name, err)
		}
		if ext.Ignore {
			continue
		}

		typ := typeName(name)
		if typ == "" {
			return decl.Document{}, fmt.Errorf("openapi parser: schema %q has no usable type name", name)
		}
		if prev, dup := owners[typ]; dup {
			return decl.Document{}, fmt.Errorf("openapi parser: schemas %q and %q both map to type %s", prev, name, typ)
		}
		owners[typ] = name

		t, err := p.typeDecl(name, typ, ref.Value, order, spec.Components.Schemas, &out)
		if err != nil {
			return decl.Document{}, err
		}
		out.Types = append(out.Types, t)
	}

	if len(out.Types) == 0 {
		return decl.Document{}, errors.New("openapi parser: no object schemas to generate validators for")
	}
	return out, nil
}

type property struct {
	name     string
	ref      *openapi3.SchemaRef
	required bool
}

func (p *Parser) typeDecl(name, typ string, s *openapi3.Schema, order documentOrder, components openapi3.Schemas, doc *decl.Document) (decl.TypeDecl, error) {
	t := decl.TypeDecl{Name: typ, Doc: strings.TrimSpace(s.Description)}

	props := collectProperties(name, s, order, components, map[*openapi3.Schema]bool{})
	for _, prop := range props {
		accessor := codegen.UpperCamel(prop.name)
		if accessor == "" {
			return decl.TypeDecl{}, fmt.Errorf("openapi parser: property %q of %q has no usable name", prop.name, name)
		}
		goType, err := p.goType(prop.ref, doc)
		if err != nil {
			return decl.TypeDecl{}, fmt.Errorf("openapi parser: property %q of %q: %w", prop.name, name, err)
		}

		// A reference to another record carries that record's own
		// constraints, which its validator enforces.
		var value *openapi3.Schema
		if prop.ref != nil {
			if _, ok := componentName(prop.ref.Ref); !ok || !isRecord(prop.ref.Value) {
				value = prop.ref.Value
			}
		}
		markers := keywordMarkers(value, goType, prop.required)
		if value != nil {
			ext, err := readExtension(value.Extensions)
			if err != nil {
				return decl.TypeDecl{}, fmt.Errorf("openapi parser: property %q of %q: %w", prop.name, name, err)
			}
			extra, err := extensionMarkers(ext)
			if err != nil {
				return decl.TypeDecl{}, fmt.Errorf("openapi parser: property %q of %q: %w", prop.name, name, err)
			}
			markers = append(markers, extra...)
		}

		acc := decl.Accessor{Name: accessor, Returns: goType, Markers: markers}
		if value != nil {
			acc.Doc = strings.TrimSpace(value.Description)
		}
		t.Accessors = append(t.Accessors, acc)
	}
	return t, nil
}

// collectProperties flattens allOf members ahead of the schema's own
// properties. A property declared again later replaces the earlier one in
// place.
func collectProperties(name string, s *openapi3.Schema, order documentOrder, components openapi3.Schemas, visiting map[*openapi3.Schema]bool) []property {
	if s == nil || visiting[s] {
		return nil
	}
	visiting[s] = true
	defer delete(visiting, s)

	var out []property
	index := make(map[string]int)
	add := func(props []property) {
		for _, prop := range props {
			if i, ok := index[prop.name]; ok {
				prop.required = prop.required || out[i].required
				out[i] = prop
				continue
			}
			index[prop.name] = len(out)
			out = append(out, prop)
		}
	}

	for _, member := range s.AllOf {
		if member == nil {
			continue
		}
		memberName, _ := componentName(member.Ref)
		add(collectProperties(memberName, member.Value, order, components, visiting))
	}

	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	own := make([]property, 0, len(s.Properties))
	for _, key := range ordered(order.properties[name], s.Properties) {
		own = append(own, property{name: key, ref: s.Properties[key], required: required[key]})
	}
	add(own)

	// allOf members may list required names for properties declared here.
	for i := range out {
		if required[out[i].name] {
			out[i].required = true
		}
	}
	return out
}
