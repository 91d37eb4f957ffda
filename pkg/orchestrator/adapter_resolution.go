package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-validgen/pkg/schema"
)

func (o *Orchestrator) resolveAdapter(ctx context.Context, req Request) (schema.FormatAdapter, schema.Document, error) {
	if o.adapterRegistry == nil {
		return nil, schema.Document{}, errors.New("orchestrator: adapter registry is nil")
	}

	doc, err := o.resolveSchemaDocument(ctx, req)
	if err != nil {
		return nil, schema.Document{}, err
	}

	if format := strings.TrimSpace(req.Format); format != "" {
		adapter, err := o.adapterRegistry.Get(format)
		if err != nil {
			return nil, schema.Document{}, err
		}
		return adapter, doc, nil
	}

	matches := o.adapterRegistry.Detect(doc.Source(), doc.Raw())
	switch len(matches) {
	case 0:
		if o.defaultAdapter == "" {
			return nil, schema.Document{}, errors.New("orchestrator: unable to detect format")
		}
		adapter, err := o.adapterRegistry.Get(o.defaultAdapter)
		if err != nil {
			return nil, schema.Document{}, err
		}
		return adapter, doc, nil
	case 1:
		return matches[0], doc, nil
	default:
		return nil, schema.Document{}, fmt.Errorf("orchestrator: multiple adapters matched payload (%s), specify format", formatAdapterNames(matches))
	}
}

func (o *Orchestrator) resolveSchemaDocument(ctx context.Context, req Request) (schema.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return schema.Document{}, errors.New("orchestrator: source or document is required")
	}
	if o.loader == nil {
		return schema.Document{}, errors.New("orchestrator: loader is nil")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func formatAdapterNames(adapters []schema.FormatAdapter) string {
	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		if name := strings.TrimSpace(adapter.Name()); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
