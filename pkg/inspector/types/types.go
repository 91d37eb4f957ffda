// Package types provides the runtime type tokens passed to an Inspector when
// generated validators request a validator for a declared type. Token strings
// use the same syntax the generator accepts in declaration documents, so a
// token printed at run time can be pasted back into a declaration.
package types

import "strings"

// Type is a runtime token describing a declared type.
type Type interface {
	String() string
	isType()
}

// NamedType names a predeclared or user type, optionally package qualified.
type NamedType struct {
	Name string
}

// ParameterizedType is a generic type instantiated with type arguments. The raw
// type "map" with two arguments prints using Go map syntax.
type ParameterizedType struct {
	Raw  string
	Args []Type
}

// WildcardType is a bounded or unbounded wildcard. Bound is nil for "?".
type WildcardType struct {
	Bound Type
	Lower bool
}

// ArrayType is a slice or array of Elem.
type ArrayType struct {
	Elem Type
}

// VarType is an unsubstituted type variable.
type VarType struct {
	Name string
}

func (NamedType) isType()         {}
func (ParameterizedType) isType() {}
func (WildcardType) isType()      {}
func (ArrayType) isType()         {}
func (VarType) isType()           {}

// Of returns the token for a named type.
func Of(name string) Type {
	return NamedType{Name: strings.TrimSpace(name)}
}

// Parameterized returns the token for raw instantiated with args.
func Parameterized(raw string, args ...Type) Type {
	return ParameterizedType{Raw: strings.TrimSpace(raw), Args: append([]Type(nil), args...)}
}

// SubtypeOf returns an upper-bounded wildcard token.
func SubtypeOf(bound Type) Type {
	return WildcardType{Bound: bound}
}

// SupertypeOf returns a lower-bounded wildcard token.
func SupertypeOf(bound Type) Type {
	return WildcardType{Bound: bound, Lower: true}
}

// Unbounded returns the "?" wildcard token.
func Unbounded() Type {
	return WildcardType{}
}

// ArrayOf returns the token for a slice of elem.
func ArrayOf(elem Type) Type {
	return ArrayType{Elem: elem}
}

// Var returns the token for a type variable that was not substituted.
func Var(name string) Type {
	return VarType{Name: strings.TrimSpace(name)}
}

func (t NamedType) String() string {
	return t.Name
}

func (t ParameterizedType) String() string {
	if t.Raw == "map" && len(t.Args) == 2 {
		return "map[" + stringOf(t.Args[0]) + "]" + stringOf(t.Args[1])
	}
	parts := make([]string, len(t.Args))
	for i, arg := range t.Args {
		parts[i] = stringOf(arg)
	}
	return t.Raw + "[" + strings.Join(parts, ", ") + "]"
}

func (t WildcardType) String() string {
	if t.Bound == nil {
		return "?"
	}
	if t.Lower {
		return "? super " + t.Bound.String()
	}
	return "? extends " + t.Bound.String()
}

func (t ArrayType) String() string {
	return "[]" + stringOf(t.Elem)
}

func (t VarType) String() string {
	return t.Name
}

// Equal reports whether two tokens describe the same type.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if _, isVar := a.(VarType); isVar {
		_, other := b.(VarType)
		return other && a.String() == b.String()
	}
	if _, isVar := b.(VarType); isVar {
		return false
	}
	return a.String() == b.String()
}

func stringOf(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}
