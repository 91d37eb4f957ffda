// Package resolve binds exactly one validation strategy to each property by
// running an ordered rule chain; the first rule that handles a property wins.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-validgen/pkg/model"
	"github.com/goliatone/go-validgen/pkg/typedesc"
)

// ErrEmptyOverride is reported for an override marker naming no validators.
var ErrEmptyOverride = errors.New("resolve: override marker names no validator")

// Context carries the declaring type's facts shared by every property.
type Context struct {
	TypeName   string
	TypeParams []string
	Markers    model.Markers
}

// Generic reports whether the declaring type has type parameters.
func (c Context) Generic() bool {
	return len(c.TypeParams) > 0
}

func (c Context) typeParamIndex(name string) (int, bool) {
	for i, p := range c.TypeParams {
		if p == name {
			return i, true
		}
	}
	return 0, false
}

// Rule inspects a property and either binds a strategy (handled) or passes.
// A non-nil error means the property is misconfigured and gets no strategy.
type Rule struct {
	Name  string
	Apply func(ctx Context, p model.Property) (model.Strategy, bool, error)
}

// DefaultRules returns the standard chain: explicit override, qualified
// lookup, direct generic substitution, wrapped generic substitution and the
// default type lookup fallback.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "explicit-override", Apply: explicitOverride},
		{Name: "qualified-lookup", Apply: qualifiedLookup},
		{Name: "generic-substitution", Apply: directSubstitution},
		{Name: "wrapped-generic-substitution", Apply: wrappedSubstitution},
		{Name: "default-type-lookup", Apply: defaultLookup},
	}
}

// Resolver runs a rule chain.
type Resolver struct {
	rules []Rule
}

// New builds a resolver over rules, or over DefaultRules when none are given.
func New(rules ...Rule) *Resolver {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Resolver{rules: append([]Rule(nil), rules...)}
}

// Resolve returns the strategy bound to p.
func (r *Resolver) Resolve(ctx Context, p model.Property) (model.Strategy, error) {
	for _, rule := range r.rules {
		strategy, ok, err := rule.Apply(ctx, p)
		if err != nil {
			return nil, err
		}
		if ok {
			return strategy, nil
		}
	}
	return nil, fmt.Errorf("resolve: no rule handled property %q of %s", p.Name, ctx.TypeName)
}

func explicitOverride(ctx Context, p model.Property) (model.Strategy, bool, error) {
	name := ctx.Markers.WithDefaults().ValidatedBy
	marker, ok := p.Marker(name)
	if !ok {
		return nil, false, nil
	}
	var refs []string
	for _, arg := range marker.Args {
		if ref := strings.TrimSpace(arg); ref != "" {
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		return nil, false, fmt.Errorf("%w: %s on %q", ErrEmptyOverride, name, p.Accessor)
	}
	for _, ref := range refs {
		if _, err := typedesc.Parse(ref, ctx.TypeParams...); err != nil {
			return nil, false, fmt.Errorf("resolve: validator reference %q on %q: %w", ref, p.Accessor, err)
		}
	}
	return model.ExplicitOverride{Validators: refs}, true, nil
}

func qualifiedLookup(_ Context, p model.Property) (model.Strategy, bool, error) {
	qualifiers := p.Qualifiers()
	if len(qualifiers) == 0 {
		return nil, false, nil
	}
	return model.QualifiedLookup{Accessor: p.Accessor, Qualifiers: qualifiers}, true, nil
}

func directSubstitution(ctx Context, p model.Property) (model.Strategy, bool, error) {
	if !ctx.Generic() {
		return nil, false, nil
	}
	tv, ok := p.Type.(typedesc.TypeVariable)
	if !ok {
		return nil, false, nil
	}
	idx, ok := ctx.typeParamIndex(tv.Name)
	if !ok {
		return nil, false, nil
	}
	return model.GenericSubstitution{Index: idx}, true, nil
}

func wrappedSubstitution(ctx Context, p model.Property) (model.Strategy, bool, error) {
	if !ctx.Generic() {
		return nil, false, nil
	}
	param, ok := p.Type.(typedesc.Parameterized)
	if !ok || len(param.Args) == 0 {
		return nil, false, nil
	}
	tv, ok := param.Args[0].(typedesc.TypeVariable)
	if !ok {
		return nil, false, nil
	}
	idx, ok := ctx.typeParamIndex(tv.Name)
	if !ok {
		return nil, false, nil
	}
	return model.GenericSubstitution{
		Index:    idx,
		Wrap:     param.Raw,
		WrapArgs: append([]typedesc.Descriptor(nil), param.Args[1:]...),
	}, true, nil
}

func defaultLookup(_ Context, p model.Property) (model.Strategy, bool, error) {
	return model.DefaultTypeLookup{Type: p.Type}, true, nil
}
