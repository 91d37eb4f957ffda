package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-validgen/pkg/decl"
)

// Transformer mutates loaded declarations before any synthesis run starts.
// Implementations can add markers, retarget packages, or perform arbitrary
// rewrites.
type Transformer interface {
	Transform(ctx context.Context, doc *decl.Document) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, doc *decl.Document) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, doc *decl.Document) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, doc)
}

// PresetTransformer applies declarative patches loaded from a YAML or JSON
// document:
//
//	package: people
//	types:
//	  Person:
//	    doc: A registered person.
//	    accessors:
//	      Email:
//	        markers: ["Email", "Length(3, 254)"]
//	      Notes:
//	        ignore: true
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Package string                 `yaml:"package"`
	Types   map[string]presetPatch `yaml:"types"`
}

type presetPatch struct {
	Doc       string                         `yaml:"doc"`
	Accessors map[string]presetAccessorPatch `yaml:"accessors"`
}

type presetAccessorPatch struct {
	Returns string   `yaml:"returns"`
	Doc     string   `yaml:"doc"`
	Ignore  bool     `yaml:"ignore"`
	Markers []string `yaml:"markers"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declarative patches onto doc. Patching a type or
// accessor the document does not declare is an error.
func (t *PresetTransformer) Transform(ctx context.Context, doc *decl.Document) error {
	if doc == nil {
		return errors.New("preset transformer: document is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if pkg := strings.TrimSpace(t.document.Package); pkg != "" {
		doc.Package = pkg
	}
	ignore := doc.Markers.Model().Ignore
	doc.Types = append([]decl.TypeDecl(nil), doc.Types...)

	for typeName, patch := range t.document.Types {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx := typeIndex(doc.Types, typeName)
		if idx < 0 {
			return fmt.Errorf("preset transformer: type %q not found", typeName)
		}
		target := doc.Types[idx]
		if patch.Doc != "" {
			target.Doc = patch.Doc
		}
		target.Accessors = append([]decl.Accessor(nil), target.Accessors...)
		for name, accPatch := range patch.Accessors {
			acc := locateAccessor(target.Accessors, name)
			if acc == nil {
				return fmt.Errorf("preset transformer: accessor %s.%s not found", typeName, name)
			}
			if err := applyAccessorPatch(acc, accPatch, ignore); err != nil {
				return fmt.Errorf("preset transformer: accessor %s.%s: %w", typeName, name, err)
			}
		}
		doc.Types[idx] = target
	}
	return nil
}

func applyAccessorPatch(acc *decl.Accessor, patch presetAccessorPatch, ignore string) error {
	if r := strings.TrimSpace(patch.Returns); r != "" {
		acc.Returns = r
	}
	if patch.Doc != "" {
		acc.Doc = patch.Doc
	}
	markers := append([]decl.Marker(nil), acc.Markers...)
	if patch.Ignore && !hasDeclMarker(markers, ignore) {
		markers = append(markers, decl.Marker{Name: ignore})
	}
	for _, raw := range patch.Markers {
		m, err := decl.ParseMarker(raw)
		if err != nil {
			return err
		}
		markers = append(markers, m)
	}
	acc.Markers = markers
	return nil
}

func typeIndex(types []decl.TypeDecl, name string) int {
	for i := range types {
		if types[i].Name == name {
			return i
		}
	}
	return -1
}
