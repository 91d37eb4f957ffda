package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-validgen/pkg/codegen"
	"github.com/goliatone/go-validgen/pkg/decl"
	"github.com/goliatone/go-validgen/pkg/model"
)

const (
	markerNonZero = "NonZero"
	markerRange   = "Range"
	markerLength  = "Length"
)

// limits holds the inclusive bounds of Go numeric types, spelled as literals.
var limits = map[string][2]string{
	"int":     {strconv.FormatInt(math.MinInt64, 10), strconv.FormatInt(math.MaxInt64, 10)},
	"int32":   {strconv.FormatInt(math.MinInt32, 10), strconv.FormatInt(math.MaxInt32, 10)},
	"int64":   {strconv.FormatInt(math.MinInt64, 10), strconv.FormatInt(math.MaxInt64, 10)},
	"float32": {strconv.FormatFloat(-math.MaxFloat32, 'g', -1, 32), strconv.FormatFloat(math.MaxFloat32, 'g', -1, 32)},
	"float64": {strconv.FormatFloat(-math.MaxFloat64, 'g', -1, 64), strconv.FormatFloat(math.MaxFloat64, 'g', -1, 64)},
}

func schemaTypes(s *openapi3.Schema) []string {
	if s == nil || s.Type == nil {
		return nil
	}
	var out []string
	for _, t := range s.Type.Slice() {
		if t != "null" {
			out = append(out, t)
		}
	}
	return out
}

func primaryType(s *openapi3.Schema) string {
	types := schemaTypes(s)
	if len(types) == 0 {
		if s != nil && len(s.Properties) > 0 {
			return openapi3.TypeObject
		}
		return ""
	}
	return types[0]
}

// isRecord reports whether s describes a type with accessors.
func isRecord(s *openapi3.Schema) bool {
	if s == nil {
		return false
	}
	if primaryType(s) == openapi3.TypeObject && (len(s.Properties) > 0 || len(s.AllOf) > 0) {
		return true
	}
	return primaryType(s) == "" && len(s.AllOf) > 0
}

// goType maps a property schema to its Go type expression, registering any
// import the expression needs on doc.
func (p *Parser) goType(ref *openapi3.SchemaRef, doc *decl.Document) (string, error) {
	if ref == nil {
		return "any", nil
	}
	if name, ok := componentName(ref.Ref); ok && (ref.Value == nil || isRecord(ref.Value)) {
		return typeName(name), nil
	}
	s := ref.Value
	if s == nil {
		return "", fmt.Errorf("unresolved reference %q", ref.Ref)
	}

	switch primaryType(s) {
	case openapi3.TypeString:
		switch s.Format {
		case "date", "date-time":
			if doc.Imports == nil {
				doc.Imports = make(map[string]string)
			}
			doc.Imports["time"] = p.options.TimeImport
			return "time.Time", nil
		case "byte", "binary":
			return "[]byte", nil
		}
		return "string", nil
	case openapi3.TypeInteger:
		switch s.Format {
		case "int32":
			return "int32", nil
		case "int64":
			return "int64", nil
		}
		return "int", nil
	case openapi3.TypeNumber:
		if s.Format == "float" {
			return "float32", nil
		}
		return "float64", nil
	case openapi3.TypeBoolean:
		return "bool", nil
	case openapi3.TypeArray:
		elem, err := p.goType(s.Items, doc)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case openapi3.TypeObject:
		if ap := s.AdditionalProperties.Schema; ap != nil {
			elem, err := p.goType(ap, doc)
			if err != nil {
				return "", err
			}
			return "map[string]" + elem, nil
		}
		return "map[string]any", nil
	case "":
		return "any", nil
	default:
		return "", fmt.Errorf("unsupported schema type %q", primaryType(s))
	}
}

// keywordMarkers derives built-in extension markers from validation
// keywords.
func keywordMarkers(s *openapi3.Schema, goType string, required bool) []decl.Marker {
	var out []decl.Marker
	if required {
		out = append(out, decl.Marker{Name: markerNonZero})
	}
	if s == nil {
		return out
	}

	if bounds, ok := limits[goType]; ok && (s.Min != nil || s.Max != nil) {
		integer := strings.HasPrefix(goType, "int")
		lo, hi := bounds[0], bounds[1]
		if s.Min != nil {
			lo = number(*s.Min, s.ExclusiveMin && integer, 1)
		}
		if s.Max != nil {
			hi = number(*s.Max, s.ExclusiveMax && integer, -1)
		}
		out = append(out, decl.Marker{Name: markerRange, Args: []string{lo, hi}})
	}

	var lo uint64
	var hi *uint64
	switch primaryType(s) {
	case openapi3.TypeString:
		lo, hi = s.MinLength, s.MaxLength
	case openapi3.TypeArray:
		lo, hi = s.MinItems, s.MaxItems
	}
	switch {
	case hi != nil:
		out = append(out, decl.Marker{Name: markerLength, Args: []string{
			strconv.FormatUint(lo, 10), strconv.FormatUint(*hi, 10),
		}})
	case lo > 0:
		out = append(out, decl.Marker{Name: markerLength, Args: []string{strconv.FormatUint(lo, 10)}})
	}
	return out
}

// number spells v as a literal, stepping integers by step for exclusive
// bounds.
func number(v float64, exclusive bool, step float64) string {
	if exclusive {
		v += step
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func extensionMarkers(ext extension) ([]decl.Marker, error) {
	var out []decl.Marker
	if ext.Ignore {
		out = append(out, decl.Marker{Name: model.MarkerIgnore})
	}
	if ext.Skip {
		out = append(out, decl.Marker{Name: model.MarkerNoValidate})
	}
	if len(ext.ValidatedBy) > 0 {
		out = append(out, decl.Marker{Name: model.MarkerValidatedBy, Args: ext.ValidatedBy})
	}
	for _, q := range ext.Qualifiers {
		out = append(out, decl.Marker{Name: q, Qualifier: true})
	}
	for _, raw := range ext.Markers {
		m, err := decl.ParseMarker(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func typeName(schema string) string {
	return codegen.UpperCamel(schema)
}
