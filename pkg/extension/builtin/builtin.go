// Package builtin provides the stock extensions reacting to the NonZero, Range
// and Length markers. Each emits a call into the inspector check helpers.
package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-validgen/pkg/codegen"
	"github.com/goliatone/go-validgen/pkg/extension"
	"github.com/goliatone/go-validgen/pkg/model"
	"github.com/goliatone/go-validgen/pkg/typedesc"
)

// Marker names and priorities of the stock extensions.
const (
	MarkerNonZero = "NonZero"
	MarkerRange   = "Range"
	MarkerLength  = "Length"

	PriorityNonZero = 10
	PriorityRange   = 20
	PriorityLength  = 30
)

const runtimePackage = "inspector"

// All returns the stock extensions.
func All() []extension.Extension {
	return []extension.Extension{NonZero(), Range(), Length()}
}

// Register adds the stock extensions to reg.
func Register(reg *extension.Registry) error {
	return reg.Register(All()...)
}

// NonZero fails properties holding their type's zero value.
func NonZero() extension.Extension {
	return extension.New("nonzero", PriorityNonZero,
		func(p model.Property) bool { return p.HasMarker(MarkerNonZero) },
		func(p model.Property, local, _ string) []codegen.Stmt {
			return []codegen.Stmt{check("RequireNonZero", codegen.StringLit{Value: p.Name}, codegen.Ident{Name: local})}
		},
	)
}

// Range bounds numeric primitives: Range(min, max). Properties whose bounds
// do not parse as literals of the property's type are left alone.
func Range() extension.Extension {
	return extension.New("range", PriorityRange,
		func(p model.Property) bool {
			_, _, ok := rangeBounds(p)
			return ok
		},
		func(p model.Property, local, _ string) []codegen.Stmt {
			min, max, ok := rangeBounds(p)
			if !ok {
				return nil
			}
			return []codegen.Stmt{check("RequireRange",
				codegen.StringLit{Value: p.Name},
				codegen.Ident{Name: local},
				codegen.NumberLit{Text: min},
				codegen.NumberLit{Text: max},
			)}
		},
	)
}

// Length bounds strings, slices and maps: Length(min) or Length(min, max).
// Other types, generic named types included, are left alone.
func Length() extension.Extension {
	return extension.New("length", PriorityLength,
		func(p model.Property) bool {
			_, _, ok := lengthBounds(p)
			return ok
		},
		func(p model.Property, local, _ string) []codegen.Stmt {
			min, max, ok := lengthBounds(p)
			if !ok {
				return nil
			}
			return []codegen.Stmt{check("RequireLength",
				codegen.StringLit{Value: p.Name},
				codegen.Ident{Name: local},
				codegen.IntLit{Value: min},
				codegen.IntLit{Value: max},
			)}
		},
	)
}

func check(fn string, args ...codegen.Expr) codegen.Stmt {
	return codegen.Check{Call: codegen.Call{Fun: codegen.Qual(runtimePackage, fn), Args: args}}
}

func rangeBounds(p model.Property) (string, string, bool) {
	marker, ok := p.Marker(MarkerRange)
	if !ok || len(marker.Args) != 2 {
		return "", "", false
	}
	prim, ok := p.Type.(typedesc.Primitive)
	if !ok {
		return "", "", false
	}
	parse := numberParser(prim.Name)
	if parse == nil {
		return "", "", false
	}
	min, max := strings.TrimSpace(marker.Args[0]), strings.TrimSpace(marker.Args[1])
	lo, err := parse(min)
	if err != nil {
		return "", "", false
	}
	hi, err := parse(max)
	if err != nil || hi < lo {
		return "", "", false
	}
	return min, max, true
}

func numberParser(name string) func(string) (float64, error) {
	switch name {
	case "int", "int8", "int16", "int32", "int64", "rune":
		return func(s string) (float64, error) {
			v, err := strconv.ParseInt(s, 0, bitSize(name))
			return float64(v), err
		}
	case "uint", "uint8", "uint16", "uint32", "uint64", "uintptr", "byte":
		return func(s string) (float64, error) {
			v, err := strconv.ParseUint(s, 0, bitSize(name))
			return float64(v), err
		}
	case "float32", "float64":
		return func(s string) (float64, error) {
			v, err := strconv.ParseFloat(s, bitSize(name))
			if err == nil && (math.IsInf(v, 0) || math.IsNaN(v)) {
				return 0, fmt.Errorf("bound %q is not a finite literal", s)
			}
			return v, err
		}
	default:
		return nil
	}
}

func bitSize(name string) int {
	switch name {
	case "int8", "uint8", "byte":
		return 8
	case "int16", "uint16":
		return 16
	case "int32", "uint32", "rune", "float32":
		return 32
	default:
		return 64
	}
}

func lengthBounds(p model.Property) (int, int, bool) {
	marker, ok := p.Marker(MarkerLength)
	if !ok || len(marker.Args) == 0 || len(marker.Args) > 2 || !hasLength(p.Type) {
		return 0, 0, false
	}
	min, err := strconv.Atoi(strings.TrimSpace(marker.Args[0]))
	if err != nil || min < 0 {
		return 0, 0, false
	}
	max := -1
	if len(marker.Args) == 2 {
		max, err = strconv.Atoi(strings.TrimSpace(marker.Args[1]))
		if err != nil || (max >= 0 && max < min) {
			return 0, 0, false
		}
	}
	return min, max, true
}

func hasLength(d typedesc.Descriptor) bool {
	switch x := d.(type) {
	case typedesc.Primitive:
		return x.Name == "string"
	case typedesc.Array:
		return true
	case typedesc.Parameterized:
		// Generic named types have no len; only maps do.
		return x.Raw == "map"
	default:
		return false
	}
}
