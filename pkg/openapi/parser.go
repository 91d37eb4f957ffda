package openapi

import (
	"context"

	"github.com/goliatone/go-validgen/pkg/decl"
	"github.com/goliatone/go-validgen/pkg/schema"
)

// ExtensionKey is the vendor extension read from schemas and properties.
const ExtensionKey = "x-validgen"

// DefaultPackage is used when neither the options nor the document name one.
const DefaultPackage = "models"

// Parser converts an OpenAPI document into declarations.
type Parser interface {
	Declarations(ctx context.Context, doc schema.Document) (decl.Document, error)
}

// ParserOptions configures the parser.
type ParserOptions struct {
	// ResolveReferences validates the document and allows external $ref.
	ResolveReferences bool
	// Package is the Go package of the generated validators.
	Package string
	// TimeImport is the import path backing date and date-time formats.
	TimeImport string
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithReferenceResolution toggles validation and external reference loading.
func WithReferenceResolution(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ResolveReferences = enabled
	}
}

// WithPackage sets the package name recorded on produced documents.
func WithPackage(name string) ParserOption {
	return func(opts *ParserOptions) {
		if name != "" {
			opts.Package = name
		}
	}
}

// NewParserOptions applies ParserOption functions over the defaults.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		ResolveReferences: true,
		Package:           DefaultPackage,
		TimeImport:        "time",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
