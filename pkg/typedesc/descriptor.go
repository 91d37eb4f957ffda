// Package typedesc models declared types as a closed set of descriptor shapes:
// primitives, plain named types, parameterized instantiations, wildcards, type
// variables and arrays. Descriptors drive strategy resolution and are turned
// into runtime type-token expressions for the generated code.
package typedesc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-validgen/pkg/codegen"
)

// ErrUnrepresentableWildcard is returned when a wildcard declares more than
// one bound.
var ErrUnrepresentableWildcard = errors.New("typedesc: unrepresentable wildcard type, cannot have more than one bound")

// Descriptor is implemented only by the shapes in this package.
type Descriptor interface {
	String() string
	isDescriptor()
}

// Primitive is a Go predeclared basic type.
type Primitive struct {
	Name string
}

// Plain is a named, non-generic type, optionally package qualified.
type Plain struct {
	Name string
}

// Parameterized is a generic type instantiated with Args. Raw "map" denotes a
// map with key and value arguments.
type Parameterized struct {
	Raw  string
	Args []Descriptor
}

// BoundKind distinguishes wildcard bounds.
type BoundKind int

const (
	// UpperBound is "? extends T".
	UpperBound BoundKind = iota
	// LowerBound is "? super T".
	LowerBound
)

// Wildcard carries at most one bound. A nil Bound is the unbounded "?".
type Wildcard struct {
	Bound Descriptor
	Kind  BoundKind
}

// TypeVariable references one of the declaring type's type parameters.
type TypeVariable struct {
	Name string
}

// Array is a slice of Elem.
type Array struct {
	Elem Descriptor
}

func (Primitive) isDescriptor()     {}
func (Plain) isDescriptor()         {}
func (Parameterized) isDescriptor() {}
func (Wildcard) isDescriptor()      {}
func (TypeVariable) isDescriptor()  {}
func (Array) isDescriptor()         {}

var primitives = map[string]struct{}{
	"bool": {}, "string": {}, "int": {}, "int8": {}, "int16": {}, "int32": {}, "int64": {},
	"uint": {}, "uint8": {}, "uint16": {}, "uint32": {}, "uint64": {}, "uintptr": {},
	"float32": {}, "float64": {}, "complex64": {}, "complex128": {}, "byte": {}, "rune": {},
}

// IsPrimitiveName reports whether name is a predeclared basic type.
func IsPrimitiveName(name string) bool {
	_, ok := primitives[name]
	return ok
}

// NewWildcard builds a wildcard from its declared bounds. Supplying more than
// one bound in total fails with ErrUnrepresentableWildcard.
func NewWildcard(upper, lower []Descriptor) (Wildcard, error) {
	switch {
	case len(upper)+len(lower) > 1:
		return Wildcard{}, fmt.Errorf("%w: %d upper and %d lower bounds", ErrUnrepresentableWildcard, len(upper), len(lower))
	case len(lower) == 1:
		return Wildcard{Bound: lower[0], Kind: LowerBound}, nil
	case len(upper) == 1:
		return Wildcard{Bound: upper[0], Kind: UpperBound}, nil
	default:
		return Wildcard{}, nil
	}
}

func (d Primitive) String() string { return d.Name }

func (d Plain) String() string { return d.Name }

func (d Parameterized) String() string {
	if d.Raw == "map" && len(d.Args) == 2 {
		return "map[" + stringOf(d.Args[0]) + "]" + stringOf(d.Args[1])
	}
	parts := make([]string, len(d.Args))
	for i, arg := range d.Args {
		parts[i] = stringOf(arg)
	}
	return d.Raw + "[" + strings.Join(parts, ", ") + "]"
}

func (d Wildcard) String() string {
	if d.Bound == nil {
		return "?"
	}
	if d.Kind == LowerBound {
		return "? super " + d.Bound.String()
	}
	return "? extends " + d.Bound.String()
}

func (d TypeVariable) String() string { return d.Name }

func (d Array) String() string { return "[]" + stringOf(d.Elem) }

func stringOf(d Descriptor) string {
	if d == nil {
		return "<nil>"
	}
	return d.String()
}

// Box returns the descriptor used as a validator's type argument. Go has no
// boxing, so a primitive boxes to the plain type of the same name.
func Box(d Descriptor) Descriptor {
	if p, ok := d.(Primitive); ok {
		return Plain(p)
	}
	return d
}

// IsPrimitive reports whether d is a Primitive.
func IsPrimitive(d Descriptor) bool {
	_, ok := d.(Primitive)
	return ok
}

// Equal reports structural equality.
func Equal(a, b Descriptor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x.Name == y.Name
	case Plain:
		y, ok := b.(Plain)
		return ok && x.Name == y.Name
	case Parameterized:
		y, ok := b.(Parameterized)
		if !ok || x.Raw != y.Raw || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case Wildcard:
		y, ok := b.(Wildcard)
		if !ok {
			return false
		}
		// Kind is meaningless for the unbounded wildcard.
		if x.Bound != nil && x.Kind != y.Kind {
			return false
		}
		return Equal(x.Bound, y.Bound)
	case TypeVariable:
		y, ok := b.(TypeVariable)
		return ok && x.Name == y.Name
	case Array:
		y, ok := b.(Array)
		return ok && Equal(x.Elem, y.Elem)
	default:
		return false
	}
}

// TypeVariables returns the distinct type variables referenced by d in
// depth-first order.
func TypeVariables(d Descriptor) []string {
	var out []string
	seen := map[string]struct{}{}
	var walk func(Descriptor)
	walk = func(d Descriptor) {
		switch x := d.(type) {
		case TypeVariable:
			if _, ok := seen[x.Name]; !ok {
				seen[x.Name] = struct{}{}
				out = append(out, x.Name)
			}
		case Parameterized:
			for _, arg := range x.Args {
				walk(arg)
			}
		case Wildcard:
			if x.Bound != nil {
				walk(x.Bound)
			}
		case Array:
			walk(x.Elem)
		}
	}
	walk(d)
	return out
}

// Packages returns the distinct package qualifiers referenced by d, such as
// "time" for time.Duration.
func Packages(d Descriptor) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(name string) {
		if idx := strings.LastIndex(name, "."); idx > 0 {
			pkg := name[:idx]
			if _, ok := seen[pkg]; !ok {
				seen[pkg] = struct{}{}
				out = append(out, pkg)
			}
		}
	}
	var walk func(Descriptor)
	walk = func(d Descriptor) {
		switch x := d.(type) {
		case Plain:
			add(x.Name)
		case Parameterized:
			add(x.Raw)
			for _, arg := range x.Args {
				walk(arg)
			}
		case Wildcard:
			if x.Bound != nil {
				walk(x.Bound)
			}
		case Array:
			walk(x.Elem)
		}
	}
	walk(d)
	return out
}

// TypeExpr converts d into an intermediate type reference.
func TypeExpr(d Descriptor) (codegen.TypeExpr, error) {
	switch x := d.(type) {
	case Primitive:
		return codegen.TypeName{Name: x.Name}, nil
	case Plain:
		return qualifiedTypeName(x.Name, nil), nil
	case TypeVariable:
		return codegen.TypeName{Name: x.Name}, nil
	case Parameterized:
		args := make([]codegen.TypeExpr, len(x.Args))
		for i, arg := range x.Args {
			te, err := TypeExpr(arg)
			if err != nil {
				return nil, err
			}
			args[i] = te
		}
		return qualifiedTypeName(x.Raw, args), nil
	case Wildcard:
		var bound codegen.TypeExpr
		if x.Bound != nil {
			te, err := TypeExpr(x.Bound)
			if err != nil {
				return nil, err
			}
			bound = te
		}
		return codegen.WildcardType{Bound: bound, Lower: x.Kind == LowerBound}, nil
	case Array:
		elem, err := TypeExpr(x.Elem)
		if err != nil {
			return nil, err
		}
		return codegen.ArrayType{Elem: elem}, nil
	default:
		return nil, fmt.Errorf("typedesc: unsupported descriptor %T", d)
	}
}

func qualifiedTypeName(name string, args []codegen.TypeExpr) codegen.TypeName {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return codegen.TypeName{Pkg: name[:idx], Name: name[idx+1:], Args: args}
	}
	return codegen.TypeName{Name: name, Args: args}
}
