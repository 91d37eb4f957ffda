package typedesc_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-validgen/pkg/codegen"
	"github.com/goliatone/go-validgen/pkg/inspector/types"
	"github.com/goliatone/go-validgen/pkg/typedesc"
)

func TestParseShapes(t *testing.T) {
	cases := []struct {
		expr   string
		params []string
		want   typedesc.Descriptor
	}{
		{expr: "int", want: typedesc.Primitive{Name: "int"}},
		{expr: "Person", want: typedesc.Plain{Name: "Person"}},
		{expr: "time.Duration", want: typedesc.Plain{Name: "time.Duration"}},
		{expr: "T", params: []string{"T"}, want: typedesc.TypeVariable{Name: "T"}},
		{expr: "[]string", want: typedesc.Array{Elem: typedesc.Primitive{Name: "string"}}},
		{
			expr: "List[string]",
			want: typedesc.Parameterized{Raw: "List", Args: []typedesc.Descriptor{typedesc.Primitive{Name: "string"}}},
		},
		{
			expr: "map[string][]int",
			want: typedesc.Parameterized{Raw: "map", Args: []typedesc.Descriptor{
				typedesc.Primitive{Name: "string"},
				typedesc.Array{Elem: typedesc.Primitive{Name: "int"}},
			}},
		},
		{
			expr: "Pair[? extends Number, ? super Integer]",
			want: typedesc.Parameterized{Raw: "Pair", Args: []typedesc.Descriptor{
				typedesc.Wildcard{Bound: typedesc.Plain{Name: "Number"}, Kind: typedesc.UpperBound},
				typedesc.Wildcard{Bound: typedesc.Plain{Name: "Integer"}, Kind: typedesc.LowerBound},
			}},
		},
		{expr: "List[?]", want: typedesc.Parameterized{Raw: "List", Args: []typedesc.Descriptor{typedesc.Wildcard{}}}},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := typedesc.Parse(tc.expr, tc.params...)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if !typedesc.Equal(tc.want, got) {
				t.Fatalf("descriptor mismatch: want %s (%T), got %s (%T)", tc.want, tc.want, got, got)
			}
			if got.String() != tc.expr {
				t.Fatalf("String() = %q, want %q", got.String(), tc.expr)
			}
		})
	}
}

func TestParseRejectsDualBoundWildcards(t *testing.T) {
	for _, expr := range []string{
		"? extends Number super Integer",
		"List[? extends A & B]",
		"? super A super B",
	} {
		_, err := typedesc.Parse(expr)
		if !errors.Is(err, typedesc.ErrUnrepresentableWildcard) {
			t.Fatalf("Parse(%q) error = %v, want ErrUnrepresentableWildcard", expr, err)
		}
	}
}

func TestNewWildcard(t *testing.T) {
	number := typedesc.Plain{Name: "Number"}
	if _, err := typedesc.NewWildcard([]typedesc.Descriptor{number}, []typedesc.Descriptor{number}); !errors.Is(err, typedesc.ErrUnrepresentableWildcard) {
		t.Fatalf("expected ErrUnrepresentableWildcard, got %v", err)
	}
	w, err := typedesc.NewWildcard(nil, []typedesc.Descriptor{number})
	if err != nil {
		t.Fatalf("lower bound: %v", err)
	}
	if w.Kind != typedesc.LowerBound || w.String() != "? super Number" {
		t.Fatalf("unexpected wildcard %s", w)
	}
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{"", "List[", "List[int", "[]", "T[int]", "a..b", "int]", "List[int,]", "#"} {
		if _, err := typedesc.Parse(expr, "T"); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", expr)
		}
	}
}

func TestTokenExpressions(t *testing.T) {
	d := typedesc.MustParse("List[string]")
	got, err := typedesc.Token(d, typedesc.Env{})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	want := codegen.Call{
		Fun: codegen.Qual("types", "Parameterized"),
		Args: []codegen.Expr{
			codegen.StringLit{Value: "List"},
			codegen.Call{Fun: codegen.Qual("types", "Of"), Args: []codegen.Expr{codegen.StringLit{Value: "string"}}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenSubstitutesBoundTypeVariables(t *testing.T) {
	env := typedesc.NewEnv("typeArgs", []string{"K", "V"})
	d := typedesc.MustParse("Pair[string, V]", "K", "V")
	got, err := typedesc.Token(d, env)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	call := got.(codegen.Call)
	slot := codegen.Index{X: codegen.Ident{Name: "typeArgs"}, Index: codegen.IntLit{Value: 1}}
	if diff := cmp.Diff(codegen.Expr(slot), call.Args[2]); diff != "" {
		t.Fatalf("slot mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	exprs := []string{
		"int",
		"string",
		"Person",
		"time.Duration",
		"List[string]",
		"map[string]List[? extends Number]",
		"[][]Box[? super Integer]",
		"Outer[Inner[?], []byte]",
		"T",
		"Box[T]",
	}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			d := typedesc.MustParse(expr, "T")
			for _, env := range []typedesc.Env{{}, typedesc.NewEnv("typeArgs", []string{"T"})} {
				tok, err := typedesc.Token(d, env)
				if err != nil {
					t.Fatalf("token: %v", err)
				}
				back, err := typedesc.FromToken(tok, "T")
				if err != nil {
					t.Fatalf("from token: %v", err)
				}
				if !typedesc.Equal(d, back) {
					t.Fatalf("round trip changed descriptor: %s -> %s", d, back)
				}
			}
		})
	}
}

func TestRuntimeTokenStringsReparse(t *testing.T) {
	tokens := []types.Type{
		types.Of("int"),
		types.Parameterized("List", types.Of("string")),
		types.Parameterized("map", types.Of("string"), types.SubtypeOf(types.Of("Number"))),
		types.ArrayOf(types.SupertypeOf(types.Of("Integer"))),
		types.Parameterized("List", types.Unbounded()),
	}
	for _, tok := range tokens {
		d, err := typedesc.Parse(tok.String())
		if err != nil {
			t.Fatalf("parse %q: %v", tok, err)
		}
		if d.String() != tok.String() {
			t.Fatalf("descriptor %q does not match token %q", d, tok)
		}
	}
}

func TestFromTokenRejectsForeignExpressions(t *testing.T) {
	bad := []codegen.Expr{
		codegen.Ident{Name: "x"},
		codegen.Call{Fun: codegen.Ident{Name: "Of"}},
		codegen.Call{Fun: codegen.Qual("other", "Of"), Args: []codegen.Expr{codegen.StringLit{Value: "int"}}},
		codegen.Call{Fun: codegen.Qual("types", "Unknown")},
		codegen.Index{X: codegen.Ident{Name: "typeArgs"}, Index: codegen.IntLit{Value: 3}},
	}
	for _, expr := range bad {
		if _, err := typedesc.FromToken(expr, "T"); err == nil {
			t.Errorf("FromToken(%#v) succeeded, want error", expr)
		}
	}
}

func TestBoxAndHelpers(t *testing.T) {
	if got := typedesc.Box(typedesc.Primitive{Name: "int"}); !typedesc.Equal(got, typedesc.Plain{Name: "int"}) {
		t.Fatalf("Box(int) = %#v", got)
	}
	list := typedesc.MustParse("List[string]")
	if !typedesc.Equal(typedesc.Box(list), list) {
		t.Fatalf("Box must leave non-primitives unchanged")
	}

	d := typedesc.MustParse("map[K]Pair[V, time.Time]", "K", "V")
	if diff := cmp.Diff([]string{"K", "V"}, typedesc.TypeVariables(d)); diff != "" {
		t.Fatalf("type variables (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"time"}, typedesc.Packages(d)); diff != "" {
		t.Fatalf("packages (-want +got):\n%s", diff)
	}
}

func TestTypeExpr(t *testing.T) {
	te, err := typedesc.TypeExpr(typedesc.MustParse("[]pkg.Item[? extends Number]"))
	if err != nil {
		t.Fatalf("type expr: %v", err)
	}
	want := codegen.ArrayType{Elem: codegen.TypeName{
		Pkg:  "pkg",
		Name: "Item",
		Args: []codegen.TypeExpr{codegen.WildcardType{Bound: codegen.TypeName{Name: "Number"}}},
	}}
	if diff := cmp.Diff(codegen.TypeExpr(want), te); diff != "" {
		t.Fatalf("type expr mismatch (-want +got):\n%s", diff)
	}
}
