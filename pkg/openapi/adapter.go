package openapi

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-validgen/pkg/decl"
	"github.com/goliatone/go-validgen/pkg/schema"
)

// DefaultAdapterName is the registry identifier of the OpenAPI adapter.
const DefaultAdapterName = "openapi"

// Adapter wraps a Parser behind schema.FormatAdapter.
type Adapter struct {
	parser Parser
}

var _ schema.FormatAdapter = (*Adapter)(nil)

// NewAdapter constructs an OpenAPI adapter over parser.
func NewAdapter(parser Parser) *Adapter {
	return &Adapter{parser: parser}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the raw payload appears to be OpenAPI.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	return detectOpenAPI(raw)
}

// Normalize parses component schemas into declarations.
func (a *Adapter) Normalize(ctx context.Context, doc schema.Document, opts schema.NormalizeOptions) (decl.Document, error) {
	if a == nil || a.parser == nil {
		return decl.Document{}, errors.New("openapi adapter: parser is nil")
	}
	out, err := a.parser.Declarations(ctx, doc)
	if err != nil {
		return decl.Document{}, err
	}
	if pkg := strings.TrimSpace(opts.Package); pkg != "" {
		out.Package = pkg
	}
	return schema.FilterTypes(out, opts.Types), nil
}

func detectOpenAPI(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	var probe map[string]any
	if err := yaml.Unmarshal(trimmed, &probe); err != nil {
		return false
	}
	if _, ok := probe["openapi"]; ok {
		return true
	}
	_, ok := probe["swagger"]
	return ok
}
