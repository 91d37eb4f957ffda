package typedesc

import (
	"fmt"

	"github.com/goliatone/go-validgen/pkg/codegen"
)

// TokensPackage is the import name of the runtime type token package used in
// emitted token expressions.
const TokensPackage = "types"

// Env binds type variables to positions of the type token slice received by a
// generic validator constructor. The zero Env binds nothing.
type Env struct {
	Param string
	Index map[string]int
}

// NewEnv binds each type parameter to its ordinal position in param.
func NewEnv(param string, typeParams []string) Env {
	env := Env{Param: param, Index: make(map[string]int, len(typeParams))}
	for i, name := range typeParams {
		env.Index[name] = i
	}
	return env
}

// Lookup returns the position bound to a type variable.
func (e Env) Lookup(name string) (int, bool) {
	if e.Param == "" {
		return 0, false
	}
	idx, ok := e.Index[name]
	return idx, ok
}

// Slot returns the expression reading position idx of the token slice.
func (e Env) Slot(idx int) codegen.Expr {
	return codegen.Index{X: codegen.Ident{Name: e.Param}, Index: codegen.IntLit{Value: idx}}
}

// Token builds the expression constructing the runtime type token for d.
// Bound type variables read from the environment's token slice; unbound ones
// become variable tokens.
func Token(d Descriptor, env Env) (codegen.Expr, error) {
	switch x := d.(type) {
	case Primitive:
		return tokenCall("Of", codegen.StringLit{Value: x.Name}), nil
	case Plain:
		return tokenCall("Of", codegen.StringLit{Value: x.Name}), nil
	case TypeVariable:
		if idx, ok := env.Lookup(x.Name); ok {
			return env.Slot(idx), nil
		}
		return tokenCall("Var", codegen.StringLit{Value: x.Name}), nil
	case Parameterized:
		args := make([]codegen.Expr, 0, len(x.Args)+1)
		args = append(args, codegen.StringLit{Value: x.Raw})
		for _, arg := range x.Args {
			tok, err := Token(arg, env)
			if err != nil {
				return nil, err
			}
			args = append(args, tok)
		}
		return tokenCall("Parameterized", args...), nil
	case Wildcard:
		if x.Bound == nil {
			return tokenCall("Unbounded"), nil
		}
		bound, err := Token(x.Bound, env)
		if err != nil {
			return nil, err
		}
		if x.Kind == LowerBound {
			return tokenCall("SupertypeOf", bound), nil
		}
		return tokenCall("SubtypeOf", bound), nil
	case Array:
		elem, err := Token(x.Elem, env)
		if err != nil {
			return nil, err
		}
		return tokenCall("ArrayOf", elem), nil
	default:
		return nil, fmt.Errorf("typedesc: cannot build token for %T", d)
	}
}

// WrapToken builds the token for raw instantiated with first followed by the
// tokens of rest.
func WrapToken(raw string, first codegen.Expr, rest []Descriptor, env Env) (codegen.Expr, error) {
	args := []codegen.Expr{codegen.StringLit{Value: raw}, first}
	for _, d := range rest {
		tok, err := Token(d, env)
		if err != nil {
			return nil, err
		}
		args = append(args, tok)
	}
	return tokenCall("Parameterized", args...), nil
}

// FromToken parses a token expression produced by Token back into a
// descriptor. typeParams resolves slice reads and variable tokens.
func FromToken(expr codegen.Expr, typeParams ...string) (Descriptor, error) {
	switch x := expr.(type) {
	case codegen.Index:
		lit, ok := x.Index.(codegen.IntLit)
		if !ok || lit.Value < 0 || lit.Value >= len(typeParams) {
			return nil, fmt.Errorf("typedesc: token slot out of range")
		}
		return TypeVariable{Name: typeParams[lit.Value]}, nil
	case codegen.Call:
		return fromTokenCall(x, typeParams)
	default:
		return nil, fmt.Errorf("typedesc: unexpected token expression %T", expr)
	}
}

func fromTokenCall(call codegen.Call, typeParams []string) (Descriptor, error) {
	sel, ok := call.Fun.(codegen.Selector)
	if !ok {
		return nil, fmt.Errorf("typedesc: token call has no package selector")
	}
	if pkg, ok := sel.X.(codegen.Ident); !ok || pkg.Name != TokensPackage {
		return nil, fmt.Errorf("typedesc: token call outside %s package", TokensPackage)
	}

	switch sel.Sel {
	case "Of":
		name, err := stringArg(call, 0, 1)
		if err != nil {
			return nil, err
		}
		if IsPrimitiveName(name) {
			return Primitive{Name: name}, nil
		}
		return Plain{Name: name}, nil
	case "Var":
		name, err := stringArg(call, 0, 1)
		if err != nil {
			return nil, err
		}
		return TypeVariable{Name: name}, nil
	case "Parameterized":
		if len(call.Args) < 2 {
			return nil, fmt.Errorf("typedesc: Parameterized token needs a raw type and arguments")
		}
		raw, err := stringArg(call, 0, len(call.Args))
		if err != nil {
			return nil, err
		}
		args := make([]Descriptor, 0, len(call.Args)-1)
		for _, argExpr := range call.Args[1:] {
			arg, err := FromToken(argExpr, typeParams...)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return Parameterized{Raw: raw, Args: args}, nil
	case "Unbounded":
		return Wildcard{}, nil
	case "SubtypeOf", "SupertypeOf", "ArrayOf":
		if len(call.Args) != 1 {
			return nil, fmt.Errorf("typedesc: %s token takes one argument", sel.Sel)
		}
		inner, err := FromToken(call.Args[0], typeParams...)
		if err != nil {
			return nil, err
		}
		switch sel.Sel {
		case "SubtypeOf":
			return Wildcard{Bound: inner, Kind: UpperBound}, nil
		case "SupertypeOf":
			return Wildcard{Bound: inner, Kind: LowerBound}, nil
		default:
			return Array{Elem: inner}, nil
		}
	default:
		return nil, fmt.Errorf("typedesc: unknown token constructor %s", sel.Sel)
	}
}

func stringArg(call codegen.Call, idx, want int) (string, error) {
	if len(call.Args) != want {
		return "", fmt.Errorf("typedesc: token call expects %d arguments, got %d", want, len(call.Args))
	}
	lit, ok := call.Args[idx].(codegen.StringLit)
	if !ok {
		return "", fmt.Errorf("typedesc: token argument %d is not a string literal", idx)
	}
	return lit.Value, nil
}

func tokenCall(name string, args ...codegen.Expr) codegen.Expr {
	return codegen.Call{Fun: codegen.Qual(TokensPackage, name), Args: args}
}
