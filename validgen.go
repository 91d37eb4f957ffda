// Package validgen is the top-level entry point for generating validators.
// It re-exports the orchestrator together with loader and parser
// constructors so simple callers need a single import.
package validgen

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-validgen/internal/loader"
	"github.com/goliatone/go-validgen/internal/openapi/parser"
	"github.com/goliatone/go-validgen/pkg/codegen/golang"
	"github.com/goliatone/go-validgen/pkg/decl"
	pkgopenapi "github.com/goliatone/go-validgen/pkg/openapi"
	"github.com/goliatone/go-validgen/pkg/orchestrator"
	"github.com/goliatone/go-validgen/pkg/schema"
)

// ValidatorOverride aliases orchestrator.ValidatorOverride.
type ValidatorOverride = orchestrator.ValidatorOverride

// Results aliases orchestrator.Results.
type Results = orchestrator.Results

// NewOrchestrator exposes the orchestrator constructor.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return loader.New(schema.NewLoaderOptions(options...))
}

// NewOpenAPIParser constructs a parser backed by the internal implementation.
func NewOpenAPIParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return parser.New(pkgopenapi.NewParserOptions(options...))
}

// Generate loads source, detects its format and generates a validator for
// every declared type. Without WithWriter the results only carry source.
func Generate(ctx context.Context, source schema.Source, options ...orchestrator.Option) (Results, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{Source: source})
}

// GenerateFromDeclarations skips loading and generates validators for doc.
func GenerateFromDeclarations(ctx context.Context, doc decl.Document, options ...orchestrator.Option) (Results, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{Declarations: &doc})
}

// WithValidatorOverrides forwards to orchestrator.WithValidatorOverrides.
func WithValidatorOverrides(overrides []ValidatorOverride) orchestrator.Option {
	return orchestrator.WithValidatorOverrides(overrides)
}

// EmbeddedTemplates exposes the Go back-end templates.
func EmbeddedTemplates() fs.FS {
	return golang.TemplatesFS()
}
