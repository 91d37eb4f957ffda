package extension

import "github.com/goliatone/go-validgen/pkg/model"

// Pipeline is an immutable, ordered set of extensions.
type Pipeline struct {
	extensions []Extension
}

// NewPipeline orders extensions the way Registry.Pipeline does, without
// registry bookkeeping. Intended for tests and single-run callers.
func NewPipeline(extensions ...Extension) *Pipeline {
	reg := NewRegistry()
	reg.MustRegister(extensions...)
	return reg.Pipeline()
}

// Len returns the number of extensions.
func (p *Pipeline) Len() int {
	if p == nil {
		return 0
	}
	return len(p.extensions)
}

// Names returns the extension names in evaluation order.
func (p *Pipeline) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.extensions))
	for i, ext := range p.extensions {
		out[i] = ext.Name()
	}
	return out
}

// Contribute evaluates every extension against prop and returns the non-empty
// contributions of applicable ones in pipeline order.
func (p *Pipeline) Contribute(prop model.Property, local, container string) []Contribution {
	if p == nil {
		return nil
	}
	var out []Contribution
	for _, ext := range p.extensions {
		if !ext.Applicable(prop) {
			continue
		}
		stmts := ext.GenerateValidation(prop, local, container)
		if len(stmts) == 0 {
			continue
		}
		out = append(out, Contribution{Extension: ext.Name(), Stmts: stmts})
	}
	return out
}
