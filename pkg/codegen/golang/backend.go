// Package golang renders validator IR files as formatted Go source. Types and
// expressions are spelled from the IR; the file skeleton and every struct,
// func and var declaration are laid out by pongo2 templates, and the result
// is run through go/format.
package golang

import (
	"embed"
	"fmt"
	"go/format"
	"io/fs"
	"strconv"
	"strings"

	"github.com/goliatone/go-validgen/pkg/codegen"
	"github.com/goliatone/go-validgen/pkg/render/template"
	"github.com/goliatone/go-validgen/pkg/render/template/gotemplate"
)

// Name is the registry name of the Go back-end.
const Name = "go"

const fileTemplate = "file"

//go:embed templates/*.tpl
var embedded embed.FS

// TemplatesFS returns the embedded templates (file, struct, func and var) so
// callers can copy them as a starting point for WithTemplates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return embedded
	}
	return sub
}

// Option configures the Backend.
type Option func(*Backend)

// WithRenderer swaps the template engine. The renderer must provide the
// file, struct, func and var templates.
func WithRenderer(renderer template.TemplateRenderer) Option {
	return func(b *Backend) {
		if renderer != nil {
			b.renderer = renderer
		}
	}
}

// WithTemplates layers overrides above the embedded templates. A template
// present in overrides replaces the embedded one of the same name.
func WithTemplates(overrides fs.FS) Option {
	return func(b *Backend) {
		b.overrides = overrides
	}
}

// WithoutFormat skips go/format, returning the raw template output.
func WithoutFormat() Option {
	return func(b *Backend) {
		b.format = false
	}
}

// Backend implements codegen.Backend for Go.
type Backend struct {
	renderer  template.TemplateRenderer
	overrides fs.FS
	format    bool
}

var _ codegen.Backend = (*Backend)(nil)

// New builds the Go back-end over the embedded file template.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{format: true}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.renderer == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(b.overrides), gotemplate.WithFS(TemplatesFS()))
		if err != nil {
			return nil, fmt.Errorf("golang: template engine: %w", err)
		}
		b.renderer = engine
	}
	return b, nil
}

// Name implements codegen.Backend.
func (b *Backend) Name() string {
	return Name
}

// Render implements codegen.Backend.
func (b *Backend) Render(file codegen.File) ([]byte, error) {
	if strings.TrimSpace(file.Package) == "" {
		return nil, fmt.Errorf("golang: file has no package name")
	}

	imports := make([]any, 0, len(file.Imports))
	for _, imp := range file.Imports {
		if strings.TrimSpace(imp.Path) == "" {
			return nil, fmt.Errorf("golang: import with empty path")
		}
		imports = append(imports, map[string]any{
			"alias": imp.Alias,
			"path":  strconv.Quote(imp.Path),
		})
	}

	decls := make([]any, 0, len(file.Decls))
	for _, d := range file.Decls {
		name, view, err := declView(d)
		if err != nil {
			return nil, err
		}
		src, err := b.renderer.RenderTemplate(name, view)
		if err != nil {
			return nil, fmt.Errorf("golang: render %s declaration: %w", name, err)
		}
		decls = append(decls, src)
	}

	out, err := b.renderer.RenderTemplate(fileTemplate, map[string]any{
		"header":  file.Header,
		"package": file.Package,
		"imports": imports,
		"decls":   decls,
	})
	if err != nil {
		return nil, fmt.Errorf("golang: render file: %w", err)
	}
	if !b.format {
		return []byte(out), nil
	}

	formatted, err := format.Source([]byte(out))
	if err != nil {
		return nil, fmt.Errorf("golang: format generated source: %w", err)
	}
	return formatted, nil
}
