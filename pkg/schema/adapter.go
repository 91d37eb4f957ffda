package schema

import (
	"context"
	"strings"

	"github.com/goliatone/go-validgen/pkg/decl"
)

// NormalizeOptions supplies optional hints to adapters during normalization.
type NormalizeOptions struct {
	// Package names the Go package generated validators are emitted into when
	// the source format has no notion of one.
	Package string
	// Types restricts the result to the named type declarations. Empty keeps
	// every type.
	Types []string
}

// FormatAdapter turns a source document into a declaration Document.
type FormatAdapter interface {
	Name() string
	Detect(src Source, raw []byte) bool
	Normalize(ctx context.Context, doc Document, opts NormalizeOptions) (decl.Document, error)
}

// FilterTypes keeps the type declarations named in names, preserving document
// order. An empty names list returns doc unchanged.
func FilterTypes(doc decl.Document, names []string) decl.Document {
	if len(names) == 0 {
		return doc
	}
	keep := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			keep[name] = struct{}{}
		}
	}
	if len(keep) == 0 {
		return doc
	}
	filtered := doc
	filtered.Types = nil
	for _, t := range doc.Types {
		if _, ok := keep[t.Name]; ok {
			filtered.Types = append(filtered.Types, t)
		}
	}
	return filtered
}
