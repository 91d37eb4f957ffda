package jsonschema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-validgen/pkg/decl"
	pkgopenapi "github.com/goliatone/go-validgen/pkg/openapi"
	"github.com/goliatone/go-validgen/pkg/schema"
)

// DefaultAdapterName is the registry identifier of the JSON Schema adapter.
const DefaultAdapterName = "jsonschema"

// Adapter wraps JSON Schema normalization behind schema.FormatAdapter.
type Adapter struct {
	parser   pkgopenapi.Parser
	rootName string
}

var _ schema.FormatAdapter = (*Adapter)(nil)

// AdapterOption configures a JSON Schema adapter.
type AdapterOption func(*Adapter)

// WithRootName names the type generated for the root schema. By default the
// root's title is used, then the base name of its $id.
func WithRootName(name string) AdapterOption {
	return func(a *Adapter) {
		a.rootName = strings.TrimSpace(name)
	}
}

// NewAdapter constructs a JSON Schema adapter delegating keyword mapping to
// parser.
func NewAdapter(parser pkgopenapi.Parser, options ...AdapterOption) *Adapter {
	a := &Adapter{parser: parser}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the raw payload appears to be JSON Schema.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	return detectJSONSchema(raw)
}

// Normalize rewrites the schema into OpenAPI components and parses those
// into declarations.
func (a *Adapter) Normalize(ctx context.Context, doc schema.Document, opts schema.NormalizeOptions) (decl.Document, error) {
	if a == nil || a.parser == nil {
		return decl.Document{}, errors.New("jsonschema adapter: parser is nil")
	}
	if err := ctx.Err(); err != nil {
		return decl.Document{}, err
	}
	raw := doc.Raw()
	if len(bytes.TrimSpace(raw)) == 0 {
		return decl.Document{}, errors.New("jsonschema adapter: empty document")
	}

	converted, err := toOpenAPI(raw, a.rootName)
	if err != nil {
		return decl.Document{}, err
	}
	rewritten, err := schema.NewDocument(doc.Source(), converted)
	if err != nil {
		return decl.Document{}, fmt.Errorf("jsonschema adapter: %w", err)
	}
	out, err := a.parser.Declarations(ctx, rewritten)
	if err != nil {
		return decl.Document{}, fmt.Errorf("jsonschema adapter: %w", err)
	}
	if pkg := strings.TrimSpace(opts.Package); pkg != "" {
		out.Package = pkg
	}
	return schema.FilterTypes(out, opts.Types), nil
}

func detectJSONSchema(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	var probe map[string]any
	if err := yaml.Unmarshal(trimmed, &probe); err != nil || probe == nil {
		return false
	}
	if _, ok := probe["openapi"]; ok {
		return false
	}
	if _, ok := probe["swagger"]; ok {
		return false
	}
	for _, key := range []string{"$schema", "$defs", "definitions"} {
		if _, ok := probe[key]; ok {
			return true
		}
	}
	return false
}
