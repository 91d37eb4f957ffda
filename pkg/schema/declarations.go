package schema

import (
	"context"
	"errors"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-validgen/pkg/decl"
)

// DeclarationsAdapterName identifies the native declaration format.
const DeclarationsAdapterName = "decl"

// DeclarationsAdapter reads the native YAML/JSON declaration format.
type DeclarationsAdapter struct{}

var _ FormatAdapter = DeclarationsAdapter{}

// Name implements FormatAdapter.
func (DeclarationsAdapter) Name() string {
	return DeclarationsAdapterName
}

// Detect accepts payloads whose top level carries both a package and a types
// key. File extensions only break ties for empty payloads.
func (DeclarationsAdapter) Detect(src Source, raw []byte) bool {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return src != nil && decl.IsDeclarationFile(path.Base(src.Location()))
	}
	var probe map[string]any
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return false
	}
	if _, ok := probe["openapi"]; ok {
		return false
	}
	_, hasTypes := probe["types"]
	_, hasPackage := probe["package"]
	return hasTypes && hasPackage
}

// Normalize implements FormatAdapter.
func (DeclarationsAdapter) Normalize(ctx context.Context, doc Document, opts NormalizeOptions) (decl.Document, error) {
	if err := ctx.Err(); err != nil {
		return decl.Document{}, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return decl.Document{}, errors.New("schema: declaration payload is empty")
	}
	parsed, err := decl.Parse(raw, doc.Location())
	if err != nil {
		return decl.Document{}, err
	}
	if pkg := strings.TrimSpace(opts.Package); pkg != "" {
		parsed.Package = pkg
	}
	return FilterTypes(parsed, opts.Types), nil
}
