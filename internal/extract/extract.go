// Package extract derives the ordered validable property list of a type
// declaration.
package extract

import (
	"errors"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-validgen/pkg/codegen"
	"github.com/goliatone/go-validgen/pkg/decl"
	"github.com/goliatone/go-validgen/pkg/model"
	"github.com/goliatone/go-validgen/pkg/typedesc"
)

// Result is the extraction output for one type.
type Result struct {
	// Properties are the validable properties in declaration order.
	Properties  []model.Property
	Diagnostics model.Diagnostics
}

// Properties extracts the validable properties of t. Non-public and
// value-less accessors are skipped silently, accessors carrying the ignore
// marker are skipped, and configuration problems are reported against the
// offending accessor, which is then dropped.
func Properties(doc decl.Document, t decl.TypeDecl) Result {
	markers := doc.Markers.Model()
	typeParams := t.TypeParamNames()

	var res Result
	accessors := make(map[string]struct{}, len(t.Accessors))
	names := make(map[string]string, len(t.Accessors))

	for _, acc := range t.Accessors {
		accessor := strings.TrimSpace(acc.Name)
		if accessor == "" {
			res.Diagnostics = append(res.Diagnostics, model.Errorf(t.Name, "", "accessor with an empty name"))
			continue
		}
		if !isPublic(acc) {
			continue
		}
		returns := strings.TrimSpace(acc.Returns)
		if returns == "" {
			continue
		}
		if hasMarker(acc.Markers, markers.Ignore) {
			continue
		}

		if _, dup := accessors[accessor]; dup {
			res.Diagnostics = append(res.Diagnostics,
				model.Errorf(t.Name, accessor, "accessor %q is declared more than once", accessor))
			continue
		}
		accessors[accessor] = struct{}{}

		name := HumanName(accessor)
		if prev, dup := names[name]; dup {
			res.Diagnostics = append(res.Diagnostics,
				model.Errorf(t.Name, accessor, "property name %q already used by accessor %q", name, prev))
			continue
		}

		typ, err := typedesc.Parse(returns, typeParams...)
		if err != nil {
			msg := err.Error()
			if errors.Is(err, typedesc.ErrUnrepresentableWildcard) {
				msg = "unrepresentable wildcard in " + returns + ": a wildcard cannot have more than one bound"
			}
			res.Diagnostics = append(res.Diagnostics, model.Errorf(t.Name, accessor, "%s", msg))
			continue
		}
		names[name] = accessor

		prop := model.NewProperty(name, accessor, typ, convertMarkers(doc, acc.Markers), len(res.Properties), markers.NoValidate)
		prop.Doc = decl.CleanDoc(acc.Doc)
		res.Properties = append(res.Properties, prop)
	}
	return res
}

// HumanName derives the property name of an accessor: a Get or Is prefix
// followed by an upper case letter is dropped and the rest is lowerCamel
// cased, so GetEmail and Email both become email and ID becomes id.
func HumanName(accessor string) string {
	for _, prefix := range []string{"Get", "Is"} {
		rest, ok := strings.CutPrefix(accessor, prefix)
		if !ok || rest == "" {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(rest); unicode.IsUpper(r) {
			accessor = rest
			break
		}
	}
	return codegen.LowerCamel(accessor)
}

func isPublic(acc decl.Accessor) bool {
	if acc.Public != nil {
		return *acc.Public
	}
	return token.IsExported(strings.TrimSpace(acc.Name))
}

func hasMarker(markers []decl.Marker, name string) bool {
	for _, m := range markers {
		if m.Name == name {
			return true
		}
	}
	return false
}

func convertMarkers(doc decl.Document, markers []decl.Marker) []model.Marker {
	if len(markers) == 0 {
		return nil
	}
	out := make([]model.Marker, len(markers))
	for i, m := range markers {
		out[i] = model.Marker{
			Name:      m.Name,
			Args:      append([]string(nil), m.Args...),
			Qualifier: m.Qualifier || doc.IsQualifier(m.Name),
		}
	}
	return out
}
