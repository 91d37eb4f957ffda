package assemble

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-validgen/pkg/codegen"
	"github.com/goliatone/go-validgen/pkg/codegen/golang"
	"github.com/goliatone/go-validgen/pkg/decl"
	"github.com/goliatone/go-validgen/pkg/extension"
	"github.com/goliatone/go-validgen/pkg/model"
	"github.com/goliatone/go-validgen/pkg/testsupport"
	"github.com/goliatone/go-validgen/pkg/typedesc"
)

func prop(name, accessor, typ string, ordinal int, typeParams []string, markers ...model.Marker) model.Property {
	return model.NewProperty(name, accessor, typedesc.MustParse(typ, typeParams...), markers, ordinal, "")
}

func render(t *testing.T, gv *model.GeneratedValidator) string {
	t.Helper()
	backend, err := golang.New()
	require.NoError(t, err)
	out, err := backend.Render(gv.File)
	require.NoError(t, err)
	testsupport.MustParseGo(t, out)
	return string(out)
}

func TestAssemblePersonValidator(t *testing.T) {
	a := New("people", decl.TypeDecl{Name: "Person"})

	id := prop("id", "ID", "int", 0, nil)
	name := prop("name", "Name", "string", 1, nil, model.Marker{Name: "NoValidate"})
	tags := prop("tags", "Tags", "List[string]", 2, nil)

	require.NoError(t, a.Add(id, model.DefaultTypeLookup{Type: id.Type}))
	require.NoError(t, a.Add(name, model.DefaultTypeLookup{Type: name.Type}))
	require.NoError(t, a.Add(tags, model.DefaultTypeLookup{Type: tags.Type}))

	gv, err := a.Finish()
	require.NoError(t, err)

	assert.Equal(t, "PersonValidator", gv.Name)
	assert.False(t, gv.Generic())
	require.Len(t, gv.Fields, 2)
	assert.Equal(t, "idValidator", gv.Fields[0].Field.Name)
	assert.Equal(t, "tagsValidator", gv.Fields[1].Field.Name)
	assert.Equal(t, "id", gv.Fields[0].Local)
	require.Len(t, gv.Skipped, 1)
	assert.Equal(t, "name", gv.Skipped[0].Property.Name)
	assert.Nil(t, gv.AccessorTable)
	assert.Nil(t, gv.QualifierHelper)

	// Two lookups and the return.
	assert.Len(t, gv.Constructor.Body, 3)

	src := render(t, gv)
	testsupport.AssertOrdered(t, src,
		"// Code generated by validgen. DO NOT EDIT.",
		"package people",
		`"github.com/goliatone/go-validgen/pkg/inspector"`,
		`"github.com/goliatone/go-validgen/pkg/inspector/types"`,
		"type PersonValidator struct {",
		"func NewPersonValidator(insp *inspector.Inspector) (*PersonValidator, error) {",
		`idValidator, err := inspector.Lookup[int](insp, types.Of("int"))`,
		`tagsValidator, err := inspector.Lookup[List[string]](insp, types.Parameterized("List", types.Of("string")))`,
		"func (v *PersonValidator) Validate(value Person) error {",
		"// ID() -> id",
		"id := value.ID()",
		"if err := v.idValidator.Validate(id); err != nil {",
		"// Tags() -> tags",
		"tags := value.Tags()",
		"if err := v.tagsValidator.Validate(tags); err != nil {",
		"return nil",
	)
	assert.NotContains(t, src, "Name()")
	assert.NotContains(t, src, "nameValidator")
}

func TestAssembleExtensionsRunBeforeValidator(t *testing.T) {
	raw := func(code string) func(model.Property, string, string) []codegen.Stmt {
		return func(_ model.Property, local, container string) []codegen.Stmt {
			return []codegen.Stmt{codegen.Raw{Code: code + "(" + container + ", " + local + ")"}}
		}
	}
	reg := extension.NewRegistry()
	reg.MustRegister(
		extension.New("second", 2, nil, raw("second")),
		extension.New("first", 1, nil, raw("first")),
		extension.New("silent", 0, nil, func(model.Property, string, string) []codegen.Stmt { return nil }),
	)
	reg.Seal()

	a := New("people", decl.TypeDecl{Name: "Person"}, WithPipeline(reg.Pipeline()))
	age := prop("age", "Age", "int", 0, nil)
	require.NoError(t, a.Add(age, model.DefaultTypeLookup{Type: age.Type}))
	gv, err := a.Finish()
	require.NoError(t, err)

	want := []codegen.Stmt{
		codegen.Comment{Text: "Age() -> age"},
		codegen.Define{Name: "age", Value: codegen.Call{Fun: codegen.Selector{X: codegen.Ident{Name: "value"}, Sel: "Age"}}},
		codegen.Comment{Text: `contributed by "first"`},
		codegen.Raw{Code: "first(value, age)"},
		codegen.Comment{Text: `contributed by "second"`},
		codegen.Raw{Code: "second(value, age)"},
		codegen.Check{Call: codegen.Call{
			Fun:  codegen.Selector{X: codegen.Selector{X: codegen.Ident{Name: "v"}, Sel: "ageValidator"}, Sel: "Validate"},
			Args: []codegen.Expr{codegen.Ident{Name: "age"}},
		}},
		codegen.Blank{},
		codegen.Return{Values: []codegen.Expr{codegen.NilLit{}}},
	}
	assert.Equal(t, want, gv.Validate.Body)
}

func TestAssembleOptedOutPropertyGetsNoContributions(t *testing.T) {
	called := false
	pipeline := extension.NewPipeline(extension.New("spy", 1, nil, func(model.Property, string, string) []codegen.Stmt {
		called = true
		return nil
	}))

	a := New("people", decl.TypeDecl{Name: "Person"}, WithPipeline(pipeline))
	name := prop("name", "Name", "string", 0, nil, model.Marker{Name: "NoValidate"})
	require.NoError(t, a.Add(name, model.DefaultTypeLookup{Type: name.Type}))
	gv, err := a.Finish()
	require.NoError(t, err)

	assert.False(t, called)
	assert.Empty(t, gv.Fields)
	assert.Equal(t, []codegen.Stmt{codegen.Return{Values: []codegen.Expr{codegen.NilLit{}}}}, gv.Validate.Body)
}

func TestAssembleGenericValidator(t *testing.T) {
	typ := decl.TypeDecl{Name: "Box", TypeParams: []decl.TypeParam{{Name: "T"}, {Name: "K", Constraint: "comparable"}}}
	params := typ.TypeParamNames()
	a := New("boxes", typ)

	value := prop("value", "Value", "T", 0, params)
	index := prop("index", "Index", "map[K]int", 1, params)
	size := prop("size", "Size", "int", 2, params)

	require.NoError(t, a.Add(value, model.GenericSubstitution{Index: 0}))
	require.NoError(t, a.Add(index, model.GenericSubstitution{Index: 1, Wrap: "map", WrapArgs: []typedesc.Descriptor{typedesc.Primitive{Name: "int"}}}))
	require.NoError(t, a.Add(size, model.DefaultTypeLookup{Type: size.Type}))
	gv, err := a.Finish()
	require.NoError(t, err)

	assert.True(t, gv.Generic())
	assert.Equal(t, []codegen.TypeParam{{Name: "T", Constraint: "any"}, {Name: "K", Constraint: "comparable"}}, gv.TypeParams)

	require.NotEmpty(t, gv.Constructor.Body)
	assert.Equal(t, codegen.Check{Call: codegen.Call{
		Fun:  codegen.Qual("inspector", "CheckTypeArgs"),
		Args: []codegen.Expr{codegen.StringLit{Value: "Box"}, codegen.Ident{Name: "typeArgs"}, codegen.IntLit{Value: 2}},
	}}, gv.Constructor.Body[0])
	assert.Equal(t, codegen.DefineChecked{
		Names: []string{"valueValidator"},
		Value: codegen.Call{
			Fun:      codegen.Qual("inspector", "Lookup"),
			TypeArgs: []codegen.TypeExpr{codegen.TypeName{Name: "T"}},
			Args: []codegen.Expr{
				codegen.Ident{Name: "insp"},
				codegen.Index{X: codegen.Ident{Name: "typeArgs"}, Index: codegen.IntLit{Value: 0}},
			},
		},
	}, gv.Constructor.Body[1])

	// value collides with the Validate parameter.
	assert.Equal(t, "value2", gv.Fields[0].Local)

	src := render(t, gv)
	testsupport.AssertOrdered(t, src,
		"type BoxValidator[T any, K comparable] struct {",
		"func NewBoxValidator[T any, K comparable](insp *inspector.Inspector, typeArgs []types.Type) (*BoxValidator[T, K], error) {",
		`if err := inspector.CheckTypeArgs("Box", typeArgs, 2); err != nil {`,
		"return nil, err",
		"valueValidator, err := inspector.Lookup[T](insp, typeArgs[0])",
		`indexValidator, err := inspector.Lookup[map[K]int](insp, types.Parameterized("map", typeArgs[1], types.Of("int")))`,
		`sizeValidator, err := inspector.Lookup[int](insp, types.Of("int"))`,
		"func (v *BoxValidator[T, K]) Validate(value Box[T, K]) error {",
		"value2 := value.Value()",
		"if err := v.valueValidator.Validate(value2); err != nil {",
	)
}

func TestAssembleCompositeOverride(t *testing.T) {
	a := New("people", decl.TypeDecl{Name: "Person"})
	email := prop("email", "Email", "string", 0, nil)
	nick := prop("nick", "Nick", "string", 1, nil)

	require.NoError(t, a.Add(email, model.ExplicitOverride{Validators: []string{"Trimmed", "EmailFormat", "Trimmed"}}))
	require.NoError(t, a.Add(nick, model.ExplicitOverride{Validators: []string{"NickValidator"}}))
	gv, err := a.Finish()
	require.NoError(t, err)

	assert.Equal(t, codegen.Define{
		Name: "emailValidator",
		Value: codegen.Call{
			Fun:      codegen.Qual("inspector", "Composite"),
			TypeArgs: []codegen.TypeExpr{codegen.TypeName{Name: "string"}},
			Args: []codegen.Expr{
				codegen.New{Type: codegen.TypeName{Name: "Trimmed"}},
				codegen.New{Type: codegen.TypeName{Name: "EmailFormat"}},
				codegen.New{Type: codegen.TypeName{Name: "Trimmed"}},
			},
		},
	}, gv.Constructor.Body[0])
	assert.Equal(t, codegen.Define{Name: "nickValidator", Value: codegen.New{Type: codegen.TypeName{Name: "NickValidator"}}}, gv.Constructor.Body[1])

	src := render(t, gv)
	testsupport.AssertOrdered(t, src,
		"emailValidator := inspector.Composite[string](new(Trimmed), new(EmailFormat), new(Trimmed))",
		"nickValidator := new(NickValidator)",
	)
	// Overrides never need type tokens.
	assert.NotContains(t, src, "inspector/types")
}

func TestAssembleQualifiedLookup(t *testing.T) {
	a := New("people", decl.TypeDecl{Name: "Person"})
	qualifier := model.Marker{Name: "Email", Qualifier: true}
	email := prop("email", "GetEmail", "string", 0, nil, qualifier)

	require.NoError(t, a.Add(email, model.QualifiedLookup{Accessor: "GetEmail", Qualifiers: []model.Marker{qualifier}}))
	gv, err := a.Finish()
	require.NoError(t, err)

	require.NotNil(t, gv.QualifierHelper)
	require.NotNil(t, gv.AccessorTable)
	assert.Equal(t, "personQualifiedValidator", gv.QualifierHelper.Name)
	assert.Equal(t, "personAccessors", gv.AccessorTable.Name)

	src := render(t, gv)
	testsupport.AssertOrdered(t, src,
		`emailValidator, err := personQualifiedValidator[string](insp, "GetEmail")`,
		"var personAccessors = inspector.AccessorTable{",
		`"GetEmail": {`,
		`types.Of("string")`,
		`Qualifiers: []string{"Email"}`,
		"func personQualifiedValidator[T any](insp *inspector.Inspector, accessor string) (inspector.Validator[T], error) {",
		`entry, err := personAccessors.Lookup("Person", accessor)`,
		"return nil, err",
		"return inspector.LookupQualified[T](insp, entry.Type, entry.Qualifiers...)",
	)
}

func TestAssembleLocalNameCollisions(t *testing.T) {
	a := New("misc", decl.TypeDecl{Name: "Thing"})
	props := []model.Property{
		prop("type", "Type", "string", 0, nil),
		prop("err", "Err", "string", 1, nil),
		prop("v", "V", "string", 2, nil),
		prop("inspector", "Inspector", "string", 3, nil),
	}
	for _, p := range props {
		require.NoError(t, a.Add(p, model.DefaultTypeLookup{Type: p.Type}))
	}
	gv, err := a.Finish()
	require.NoError(t, err)

	locals := make([]string, len(gv.Fields))
	for i, f := range gv.Fields {
		locals[i] = f.Local
	}
	assert.Equal(t, []string{"type_", "err2", "v2", "inspector2"}, locals)

	src := render(t, gv)
	assert.Contains(t, src, "type_ := value.Type()")
}

func TestAssembleLocalsAvoidQualifierHelper(t *testing.T) {
	a := New("people", decl.TypeDecl{Name: "Person"})
	qualifier := model.Marker{Name: "Email", Qualifier: true}
	email := prop("email", "Email", "string", 0, nil, qualifier)
	shadow := prop("personQualified", "PersonQualified", "string", 1, nil)
	backup := prop("backup", "Backup", "string", 2, nil, qualifier)

	require.NoError(t, a.Add(email, model.QualifiedLookup{Accessor: "Email", Qualifiers: []model.Marker{qualifier}}))
	require.NoError(t, a.Add(shadow, model.DefaultTypeLookup{Type: shadow.Type}))
	require.NoError(t, a.Add(backup, model.QualifiedLookup{Accessor: "Backup", Qualifiers: []model.Marker{qualifier}}))
	gv, err := a.Finish()
	require.NoError(t, err)

	src := render(t, gv)
	testsupport.AssertOrdered(t, src,
		`emailValidator, err := personQualifiedValidator[string](insp, "Email")`,
		`personQualifiedValidator2, err := inspector.Lookup[string](insp, types.Of("string"))`,
		`backupValidator, err := personQualifiedValidator[string](insp, "Backup")`,
	)
	assert.Regexp(t, `personQualifiedValidator:\s+personQualifiedValidator2,`, src)
	assert.NotContains(t, src, "personQualifiedValidator, err :=")
}

func TestAssembleQualifiedImports(t *testing.T) {
	resolver := func(q string) string {
		switch q {
		case "geo":
			return "example.com/maps/geography"
		default:
			return q
		}
	}
	a := New("places", decl.TypeDecl{Name: "Place"}, WithImportResolver(resolver))
	point := prop("point", "Point", "geo.Point", 0, nil)
	ttl := prop("ttl", "TTL", "time.Duration", 1, nil)
	require.NoError(t, a.Add(point, model.DefaultTypeLookup{Type: point.Type}))
	require.NoError(t, a.Add(ttl, model.DefaultTypeLookup{Type: ttl.Type}))
	gv, err := a.Finish()
	require.NoError(t, err)

	assert.Equal(t, []codegen.Import{
		{Path: DefaultRuntimePath},
		{Path: DefaultTypesPath},
		{Alias: "geo", Path: "example.com/maps/geography"},
		{Path: "time"},
	}, gv.File.Imports)

	src := render(t, gv)
	assert.Contains(t, src, `geo "example.com/maps/geography"`)
	assert.Contains(t, src, "inspector.Lookup[geo.Point](insp, types.Of(\"geo.Point\"))")
}

func TestAssembleFinishIsSinglePass(t *testing.T) {
	a := New("people", decl.TypeDecl{Name: "Person"})
	_, err := a.Finish()
	require.NoError(t, err)

	_, err = a.Finish()
	assert.True(t, errors.Is(err, ErrFinished))

	p := prop("id", "ID", "int", 0, nil)
	assert.True(t, errors.Is(a.Add(p, model.DefaultTypeLookup{Type: p.Type}), ErrFinished))
	assert.True(t, errors.Is(a.Skip(p, "late"), ErrFinished))
}

func TestAssembleRejectsMissingStrategy(t *testing.T) {
	a := New("people", decl.TypeDecl{Name: "Person"})
	err := a.Add(prop("id", "ID", "int", 0, nil), nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no strategy"))
}

func TestAssembleSkipRecordsReason(t *testing.T) {
	a := New("people", decl.TypeDecl{Name: "Person"})
	p := prop("alias", "Alias", "string", 0, nil)
	require.NoError(t, a.Skip(p, "override marker names no validator"))
	gv, err := a.Finish()
	require.NoError(t, err)
	require.Len(t, gv.Skipped, 1)
	assert.Equal(t, "override marker names no validator", gv.Skipped[0].Reason)
	assert.Empty(t, gv.Fields)
}

func TestAssembleDocComment(t *testing.T) {
	a := New("people", decl.TypeDecl{Name: "Person", Doc: "<p>A <b>human</b>.</p>"})
	gv, err := a.Finish()
	require.NoError(t, err)
	st, ok := gv.File.Decls[0].(codegen.StructDecl)
	require.True(t, ok)
	assert.Equal(t, "PersonValidator validates Person values.\n\nA human.", st.Doc)
}
