// Package gotemplate implements template.TemplateRenderer with pongo2.
// Templates resolve through layered fs.FS values: a name found in an earlier
// layer shadows the same name further down, which lets callers override a
// single template and keep the embedded rest.
package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-validgen/pkg/render/template"
)

// DefaultExtension is appended to template names that carry none.
const DefaultExtension = ".tpl"

// Option configures the Engine before construction.
type Option func(*config)

type config struct {
	layers    []fs.FS
	extension string
}

// WithFS adds a template layer. Layers are searched in the order given.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.layers = append(cfg.layers, files)
		}
	}
}

// WithExtension overrides DefaultExtension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// Engine renders named templates from its layers. Parsed templates are
// cached by the underlying set, so an Engine is safe for concurrent renders.
type Engine struct {
	set *pongo2.TemplateSet
	ext string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. At least one layer is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: DefaultExtension}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if len(cfg.layers) == 0 {
		return nil, errors.New("gotemplate: at least one template fs.FS is required")
	}

	loaders := make([]pongo2.TemplateLoader, len(cfg.layers))
	for i, layer := range cfg.layers {
		loaders[i] = pongo2.NewFSLoader(layer)
	}

	registerFilters()
	return &Engine{
		set: pongo2.NewSet("validgen", loaders...),
		ext: cfg.extension,
	}, nil
}

// RenderTemplate executes the template called name with data, which must be
// nil or a map keyed by string. The output is also copied to every writer
// in out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}

	tmpl, err := e.set.FromCache(path)
	if err != nil {
		return "", fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: template %q: %w", path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("gotemplate: execute template %q: %w", path, err)
	}
	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func toContext(data any) (pongo2.Context, error) {
	switch x := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return x, nil
	case map[string]any:
		return pongo2.Context(x), nil
	default:
		return nil, fmt.Errorf("data must be a map[string]any, got %T", data)
	}
}

var filtersOnce sync.Once

// pongo2 filters are process wide.
func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("gocomment") {
			_ = pongo2.RegisterFilter("gocomment", filterGoComment)
		}
	})
}

// filterGoComment prefixes every line with "// ", leaving blank lines as a
// bare "//".
func filterGoComment(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	text := strings.TrimSpace(in.String())
	if text == "" {
		return pongo2.AsValue(""), nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			lines[i] = "//"
			continue
		}
		lines[i] = "// " + line
	}
	return pongo2.AsValue(strings.Join(lines, "\n")), nil
}
