package inspector

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-validgen/pkg/inspector/types"
)

// Factory creates validators for type tokens. Create returns the validator and
// true when the factory handles t with the given qualifier set; the returned
// value must implement Validator[X] for the Go type X that t describes.
type Factory interface {
	Create(t types.Type, qualifiers []string, insp *Inspector) (any, bool)
}

// FactoryFunc adapts a function into a Factory.
type FactoryFunc func(t types.Type, qualifiers []string, insp *Inspector) (any, bool)

// Create calls f.
func (f FactoryFunc) Create(t types.Type, qualifiers []string, insp *Inspector) (any, bool) {
	if f == nil {
		return nil, false
	}
	return f(t, qualifiers, insp)
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithFactories appends factories. Earlier factories take precedence.
func WithFactories(factories ...Factory) Option {
	return func(i *Inspector) {
		for _, f := range factories {
			if f != nil {
				i.factories = append(i.factories, f)
			}
		}
	}
}

// WithPermissiveLookup makes typed lookups fall back to a no-op validator
// when no factory handles a type.
func WithPermissiveLookup() Option {
	return func(i *Inspector) {
		i.permissive = true
	}
}

// Inspector resolves validators for type tokens through its factories and
// memoises the results. It is safe for concurrent use.
type Inspector struct {
	factories  []Factory
	permissive bool

	mu    sync.RWMutex
	cache map[string]any
}

// New constructs an Inspector.
func New(options ...Option) *Inspector {
	insp := &Inspector{cache: make(map[string]any)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(insp)
	}
	return insp
}

// Validator returns the untyped validator for t and the qualifier set.
func (i *Inspector) Validator(t types.Type, qualifiers ...string) (any, error) {
	if i == nil {
		return nil, errors.New("inspector: inspector is nil")
	}
	if t == nil {
		return nil, errors.New("inspector: type token is nil")
	}
	quals := normaliseQualifiers(qualifiers)
	key := cacheKey(t, quals)

	i.mu.RLock()
	cached, ok := i.cache[key]
	i.mu.RUnlock()
	if ok {
		return cached, nil
	}

	// Factories may look up nested types, so the lock is not held here.
	for _, f := range i.factories {
		v, handled := f.Create(t, quals, i)
		if !handled || v == nil {
			continue
		}
		i.mu.Lock()
		if existing, exists := i.cache[key]; exists {
			v = existing
		} else {
			i.cache[key] = v
		}
		i.mu.Unlock()
		return v, nil
	}

	if len(quals) > 0 {
		return nil, fmt.Errorf("%w: %s qualified by %s", ErrNoValidator, t, strings.Join(quals, ", "))
	}
	return nil, fmt.Errorf("%w: %s", ErrNoValidator, t)
}

// Lookup returns the validator for t typed as Validator[T].
func Lookup[T any](insp *Inspector, t types.Type) (Validator[T], error) {
	return LookupQualified[T](insp, t)
}

// LookupQualified returns the validator for t and qualifiers typed as
// Validator[T].
func LookupQualified[T any](insp *Inspector, t types.Type, qualifiers ...string) (Validator[T], error) {
	raw, err := insp.Validator(t, qualifiers...)
	if err != nil {
		if errors.Is(err, ErrNoValidator) && insp != nil && insp.permissive {
			return Noop[T](), nil
		}
		return nil, err
	}
	typed, ok := raw.(Validator[T])
	if !ok {
		return nil, fmt.Errorf("%w: %s resolved to %T", ErrValidatorType, t, raw)
	}
	return typed, nil
}

// For returns a factory serving v for unqualified lookups of t.
func For[T any](t types.Type, v Validator[T]) Factory {
	return FactoryFunc(func(candidate types.Type, qualifiers []string, _ *Inspector) (any, bool) {
		if len(qualifiers) > 0 || !types.Equal(t, candidate) {
			return nil, false
		}
		return v, true
	})
}

// Qualified returns a factory serving v for lookups of t carrying qualifier.
func Qualified[T any](t types.Type, qualifier string, v Validator[T]) Factory {
	qualifier = strings.TrimSpace(qualifier)
	return FactoryFunc(func(candidate types.Type, qualifiers []string, _ *Inspector) (any, bool) {
		if !types.Equal(t, candidate) || !slices.Contains(qualifiers, qualifier) {
			return nil, false
		}
		return v, true
	})
}

func normaliseQualifiers(qualifiers []string) []string {
	if len(qualifiers) == 0 {
		return nil
	}
	out := make([]string, 0, len(qualifiers))
	for _, q := range qualifiers {
		q = strings.TrimSpace(q)
		if q == "" || slices.Contains(out, q) {
			continue
		}
		out = append(out, q)
	}
	slices.Sort(out)
	return out
}

func cacheKey(t types.Type, qualifiers []string) string {
	kind := "t"
	if _, ok := t.(types.VarType); ok {
		kind = "v"
	}
	return kind + ":" + t.String() + "|" + strings.Join(qualifiers, ",")
}
