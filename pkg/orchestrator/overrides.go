package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-validgen/pkg/decl"
)

// ValidatorOverride pins the validators of one accessor when its declaration
// names none, mirroring a ValidatedBy marker written in the source.
type ValidatorOverride struct {
	Type       string
	Accessor   string
	Validators []string
}

// WithValidatorOverrides registers overrides applied after loading. They only
// take effect on accessors that carry no validated-by marker of their own.
func WithValidatorOverrides(overrides []ValidatorOverride) Option {
	cloned := cloneValidatorOverrides(overrides)
	return func(o *Orchestrator) {
		if len(cloned) == 0 || o == nil {
			return
		}
		if o.overrides == nil {
			o.overrides = make(map[string][]ValidatorOverride)
		}
		for _, override := range cloned {
			if err := validateValidatorOverride(override); err != nil {
				o.initialiseErr = appendInitialiseError(o.initialiseErr, err)
				continue
			}
			o.overrides[override.Type] = append(o.overrides[override.Type], override)
		}
	}
}

func cloneValidatorOverrides(overrides []ValidatorOverride) []ValidatorOverride {
	if len(overrides) == 0 {
		return nil
	}
	cloned := make([]ValidatorOverride, 0, len(overrides))
	for _, override := range overrides {
		copied := override
		copied.Type = strings.TrimSpace(override.Type)
		copied.Accessor = strings.TrimSpace(override.Accessor)
		copied.Validators = append([]string(nil), override.Validators...)
		cloned = append(cloned, copied)
	}
	return cloned
}

func validateValidatorOverride(override ValidatorOverride) error {
	if override.Type == "" {
		return errors.New("orchestrator: validator override missing type")
	}
	if override.Accessor == "" {
		return fmt.Errorf("orchestrator: validator override for %s missing accessor", override.Type)
	}
	for _, ref := range override.Validators {
		if strings.TrimSpace(ref) != "" {
			return nil
		}
	}
	return fmt.Errorf("orchestrator: validator override for %s.%s names no validator", override.Type, override.Accessor)
}

func (o *Orchestrator) applyOverrides(doc *decl.Document) {
	if doc == nil || len(o.overrides) == 0 {
		return
	}
	marker := doc.Markers.Model().ValidatedBy

	types := make([]decl.TypeDecl, len(doc.Types))
	copy(types, doc.Types)
	for i := range types {
		overrides := o.overrides[types[i].Name]
		if len(overrides) == 0 {
			continue
		}
		accessors := make([]decl.Accessor, len(types[i].Accessors))
		copy(accessors, types[i].Accessors)
		for _, override := range overrides {
			target := locateAccessor(accessors, override.Accessor)
			if target == nil || hasDeclMarker(target.Markers, marker) {
				continue
			}
			markers := make([]decl.Marker, 0, len(target.Markers)+1)
			markers = append(markers, target.Markers...)
			target.Markers = append(markers, decl.Marker{Name: marker, Args: append([]string(nil), override.Validators...)})
		}
		types[i].Accessors = accessors
	}
	doc.Types = types
}

func locateAccessor(accessors []decl.Accessor, name string) *decl.Accessor {
	for i := range accessors {
		if accessors[i].Name == name {
			return &accessors[i]
		}
	}
	return nil
}

func hasDeclMarker(markers []decl.Marker, name string) bool {
	for _, m := range markers {
		if m.Name == name {
			return true
		}
	}
	return false
}
