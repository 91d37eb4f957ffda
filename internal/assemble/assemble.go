// Package assemble composes resolved properties and extension contributions
// into a GeneratedValidator. An Assembler is a single-pass builder: construct
// it, Add properties in extraction order and Finish once.
package assemble

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-validgen/pkg/codegen"
	"github.com/goliatone/go-validgen/pkg/decl"
	"github.com/goliatone/go-validgen/pkg/extension"
	"github.com/goliatone/go-validgen/pkg/model"
	"github.com/goliatone/go-validgen/pkg/typedesc"
)

// ErrFinished is returned when an Assembler is used after Finish.
var ErrFinished = errors.New("assemble: validator already finished")

// Default import paths of the runtime packages targeted by generated code.
const (
	DefaultRuntimePath = "github.com/goliatone/go-validgen/pkg/inspector"
	DefaultTypesPath   = "github.com/goliatone/go-validgen/pkg/inspector/types"

	runtimePkg = "inspector"
	typesPkg   = typedesc.TokensPackage

	// GeneratedHeader marks emitted files as generated.
	GeneratedHeader = "Code generated by validgen. DO NOT EDIT."
)

// Generated code identifiers that property names must not shadow.
const (
	recvName     = "v"
	valueName    = "value"
	inspName     = "insp"
	typeArgsName = "typeArgs"
	errName      = "err"
	accessorName = "accessor"
	entryName    = "entry"
)

// Option configures an Assembler.
type Option func(*Assembler)

// WithPipeline sets the extension pipeline consulted per emitted property.
func WithPipeline(p *extension.Pipeline) Option {
	return func(a *Assembler) {
		a.pipeline = p
	}
}

// WithRuntimePaths overrides the import paths of the inspector and types
// packages.
func WithRuntimePaths(runtimePath, typesPath string) Option {
	return func(a *Assembler) {
		if strings.TrimSpace(runtimePath) != "" {
			a.runtimePath = runtimePath
		}
		if strings.TrimSpace(typesPath) != "" {
			a.typesPath = typesPath
		}
	}
}

// WithImportResolver maps package qualifiers found in type expressions and
// validator references to import paths.
func WithImportResolver(resolve func(qualifier string) string) Option {
	return func(a *Assembler) {
		if resolve != nil {
			a.resolveImport = resolve
		}
	}
}

// WithHeader replaces the generated-file header comment.
func WithHeader(header string) Option {
	return func(a *Assembler) {
		a.header = header
	}
}

type entry struct {
	prop     model.Property
	strategy model.Strategy
	field    codegen.Field
	ctorName string
	init     codegen.Stmt
}

// Assembler builds one GeneratedValidator.
type Assembler struct {
	pkg           string
	typ           decl.TypeDecl
	typeParams    []string
	env           typedesc.Env
	pipeline      *extension.Pipeline
	runtimePath   string
	typesPath     string
	resolveImport func(string) string
	header        string

	fields    *codegen.NameAllocator
	ctorNames *codegen.NameAllocator

	entries    []entry
	skipped    []model.SkippedProperty
	qualified  []entry
	imports    map[string]struct{}
	usesTokens bool
	finished   bool
}

// New starts assembling the validator of t, emitted into package pkg.
func New(pkg string, t decl.TypeDecl, opts ...Option) *Assembler {
	typeParams := t.TypeParamNames()
	a := &Assembler{
		pkg:           pkg,
		typ:           t,
		typeParams:    typeParams,
		runtimePath:   DefaultRuntimePath,
		typesPath:     DefaultTypesPath,
		resolveImport: func(q string) string { return q },
		header:        GeneratedHeader,
		imports:       make(map[string]struct{}),
	}
	if len(typeParams) > 0 {
		a.env = typedesc.NewEnv(typeArgsName, typeParams)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	// The qualifier helper and its table are package level and referenced from
	// the constructor body.
	reserved := append([]string{runtimePkg, typesPkg, errName, inspName, typeArgsName, a.helperName(), a.tableName()}, typeParams...)
	a.fields = codegen.NewNameAllocator()
	a.ctorNames = codegen.NewNameAllocator(reserved...)
	return a
}

// ValidatorName returns the generated type name for typeName.
func ValidatorName(typeName string) string {
	return typeName + "Validator"
}

// Add appends a resolved property. Properties carrying the opt-out marker are
// recorded as skipped and emit nothing.
func (a *Assembler) Add(p model.Property, s model.Strategy) error {
	if a.finished {
		return ErrFinished
	}
	if s == nil {
		return fmt.Errorf("assemble: property %q has no strategy", p.Name)
	}
	if !p.ShouldValidate() {
		a.skipped = append(a.skipped, model.SkippedProperty{Property: p, Reason: "validation opted out"})
		return nil
	}

	elem, err := typedesc.TypeExpr(typedesc.Box(p.Type))
	if err != nil {
		return fmt.Errorf("assemble: property %q: %w", p.Name, err)
	}
	a.useDescriptor(p.Type)

	field := codegen.Field{
		Name: a.fields.NewName(p.Name + "Validator"),
		Type: validatorType(elem),
	}
	e := entry{prop: p, strategy: s, field: field, ctorName: a.ctorNames.NewName(field.Name)}

	value, checked, err := a.initializer(p, s, elem)
	if err != nil {
		return fmt.Errorf("assemble: property %q: %w", p.Name, err)
	}
	if checked {
		e.init = codegen.DefineChecked{Names: []string{e.ctorName}, Value: value}
	} else {
		e.init = codegen.Define{Name: e.ctorName, Value: value}
	}

	a.entries = append(a.entries, e)
	if _, ok := s.(model.QualifiedLookup); ok {
		a.qualified = append(a.qualified, e)
	}
	return nil
}

// Skip records a property left out because of a configuration problem.
func (a *Assembler) Skip(p model.Property, reason string) error {
	if a.finished {
		return ErrFinished
	}
	a.skipped = append(a.skipped, model.SkippedProperty{Property: p, Reason: reason})
	return nil
}

// initializer builds the expression producing a property's validator and
// reports whether it also returns an error.
func (a *Assembler) initializer(p model.Property, s model.Strategy, elem codegen.TypeExpr) (codegen.Expr, bool, error) {
	switch x := s.(type) {
	case model.ExplicitOverride:
		members := make([]codegen.Expr, 0, len(x.Validators))
		for _, ref := range x.Validators {
			d, err := typedesc.Parse(ref, a.typeParams...)
			if err != nil {
				return nil, false, err
			}
			a.useDescriptor(d)
			te, err := typedesc.TypeExpr(d)
			if err != nil {
				return nil, false, err
			}
			members = append(members, codegen.New{Type: te})
		}
		if len(members) == 1 {
			return members[0], false, nil
		}
		return codegen.Call{
			Fun:      codegen.Qual(runtimePkg, "Composite"),
			TypeArgs: []codegen.TypeExpr{elem},
			Args:     members,
		}, false, nil

	case model.QualifiedLookup:
		return codegen.Call{
			Fun:      codegen.Ident{Name: a.helperName()},
			TypeArgs: []codegen.TypeExpr{elem},
			Args:     []codegen.Expr{codegen.Ident{Name: inspName}, codegen.StringLit{Value: x.Accessor}},
		}, true, nil

	case model.GenericSubstitution:
		if x.Index < 0 || x.Index >= len(a.typeParams) {
			return nil, false, fmt.Errorf("type argument index %d out of range", x.Index)
		}
		token := a.env.Slot(x.Index)
		if x.Wrap != "" {
			for _, d := range x.WrapArgs {
				a.useDescriptor(d)
			}
			wrapped, err := typedesc.WrapToken(x.Wrap, token, x.WrapArgs, a.env)
			if err != nil {
				return nil, false, err
			}
			token = wrapped
		}
		a.usesTokens = true
		return lookup(elem, token), true, nil

	case model.DefaultTypeLookup:
		token, err := typedesc.Token(x.Type, a.env)
		if err != nil {
			return nil, false, err
		}
		a.usesTokens = true
		return lookup(elem, token), true, nil

	default:
		return nil, false, fmt.Errorf("unsupported strategy %T", s)
	}
}

func lookup(elem codegen.TypeExpr, token codegen.Expr) codegen.Expr {
	return codegen.Call{
		Fun:      codegen.Qual(runtimePkg, "Lookup"),
		TypeArgs: []codegen.TypeExpr{elem},
		Args:     []codegen.Expr{codegen.Ident{Name: inspName}, token},
	}
}

// Finish assembles the artifact. It may be called once.
func (a *Assembler) Finish() (*model.GeneratedValidator, error) {
	if a.finished {
		return nil, ErrFinished
	}
	a.finished = true

	gv := &model.GeneratedValidator{
		Name:     ValidatorName(a.typ.Name),
		TypeName: a.typ.Name,
		Skipped:  a.skipped,
	}
	for _, p := range a.typ.TypeParams {
		constraint := strings.TrimSpace(p.Constraint)
		if constraint == "" {
			constraint = "any"
		}
		gv.TypeParams = append(gv.TypeParams, codegen.TypeParam{Name: p.Name, Constraint: constraint})
	}
	for _, e := range a.entries {
		gv.Fields = append(gv.Fields, model.ValidatorField{Property: e.prop, Field: e.field, Strategy: e.strategy})
	}

	gv.Constructor = a.constructor(gv)
	validate, locals := a.validate(gv)
	gv.Validate = validate
	for i := range gv.Fields {
		gv.Fields[i].Local = locals[i]
	}

	decls := []codegen.Decl{a.structDecl(gv), gv.Constructor, gv.Validate}
	if len(a.qualified) > 0 {
		table, err := a.accessorTable()
		if err != nil {
			return nil, err
		}
		helper := a.qualifierHelper()
		gv.AccessorTable = &table
		gv.QualifierHelper = &helper
		decls = append(decls, table, helper)
	}

	gv.File = codegen.File{
		Header:  a.header,
		Package: a.pkg,
		Imports: a.importList(),
		Decls:   decls,
	}
	return gv, nil
}

func (a *Assembler) selfType(name string) codegen.TypeName {
	args := make([]codegen.TypeExpr, len(a.typeParams))
	for i, p := range a.typeParams {
		args[i] = codegen.TypeName{Name: p}
	}
	return codegen.TypeName{Name: name, Args: args}
}

func (a *Assembler) structDecl(gv *model.GeneratedValidator) codegen.StructDecl {
	doc := fmt.Sprintf("%s validates %s values.", gv.Name, gv.TypeName)
	if extra := decl.CleanDoc(a.typ.Doc); extra != "" {
		doc += "\n\n" + extra
	}
	fields := make([]codegen.Field, len(gv.Fields))
	for i, f := range gv.Fields {
		fields[i] = f.Field
	}
	return codegen.StructDecl{
		Doc:        doc,
		Name:       gv.Name,
		TypeParams: gv.TypeParams,
		Fields:     fields,
	}
}

func (a *Assembler) constructor(gv *model.GeneratedValidator) codegen.FuncDecl {
	params := []codegen.Param{{Name: inspName, Type: codegen.PointerType{Elem: codegen.TypeName{Pkg: runtimePkg, Name: "Inspector"}}}}
	var body []codegen.Stmt

	doc := fmt.Sprintf("New%s builds a %s resolving property validators through insp.", gv.Name, gv.Name)
	if len(a.typeParams) > 0 {
		a.usesTokens = true
		params = append(params, codegen.Param{
			Name: typeArgsName,
			Type: codegen.ArrayType{Elem: codegen.TypeName{Pkg: typesPkg, Name: "Type"}},
		})
		doc += fmt.Sprintf(" typeArgs supplies one type token per type parameter of %s, in declaration order.", gv.TypeName)
		body = append(body, codegen.Check{Call: codegen.Call{
			Fun: codegen.Qual(runtimePkg, "CheckTypeArgs"),
			Args: []codegen.Expr{
				codegen.StringLit{Value: gv.TypeName},
				codegen.Ident{Name: typeArgsName},
				codegen.IntLit{Value: len(a.typeParams)},
			},
		}})
	}

	elems := make([]codegen.Expr, 0, len(a.entries))
	for _, e := range a.entries {
		body = append(body, e.init)
		elems = append(elems, codegen.KeyValue{Key: codegen.Ident{Name: e.field.Name}, Value: codegen.Ident{Name: e.ctorName}})
	}
	self := a.selfType(gv.Name)
	body = append(body, codegen.Return{Values: []codegen.Expr{
		codegen.AddressOf{X: codegen.CompositeLit{Type: self, Elems: elems}},
		codegen.NilLit{},
	}})

	return codegen.FuncDecl{
		Doc:        doc,
		Name:       "New" + gv.Name,
		TypeParams: gv.TypeParams,
		Params:     params,
		Results:    []codegen.TypeExpr{codegen.PointerType{Elem: self}, codegen.TypeName{Name: "error"}},
		Body:       body,
	}
}

func (a *Assembler) validate(gv *model.GeneratedValidator) (codegen.FuncDecl, []string) {
	reserved := []string{recvName, valueName, errName, runtimePkg, typesPkg}
	reserved = append(reserved, a.typeParams...)
	for _, imp := range a.importList() {
		reserved = append(reserved, importName(imp))
	}
	locals := codegen.NewNameAllocator(reserved...)

	names := make([]string, len(a.entries))
	var body []codegen.Stmt
	for i, e := range a.entries {
		local := locals.NewName(e.prop.Name)
		names[i] = local
		if i > 0 {
			body = append(body, codegen.Blank{})
		}
		body = append(body,
			codegen.Comment{Text: fmt.Sprintf("%s() -> %s", e.prop.Accessor, e.prop.Name)},
			codegen.Define{Name: local, Value: codegen.Call{Fun: codegen.Selector{X: codegen.Ident{Name: valueName}, Sel: e.prop.Accessor}}},
		)
		for _, c := range a.pipeline.Contribute(e.prop, local, valueName) {
			body = append(body, codegen.Comment{Text: fmt.Sprintf("contributed by %q", c.Extension)})
			body = append(body, c.Stmts...)
		}
		body = append(body, codegen.Check{Call: codegen.Call{
			Fun:  codegen.Selector{X: codegen.Selector{X: codegen.Ident{Name: recvName}, Sel: e.field.Name}, Sel: "Validate"},
			Args: []codegen.Expr{codegen.Ident{Name: local}},
		}})
	}
	if len(body) > 0 {
		body = append(body, codegen.Blank{})
	}
	body = append(body, codegen.Return{Values: []codegen.Expr{codegen.NilLit{}}})

	return codegen.FuncDecl{
		Doc:     "Validate checks each property of value in declaration order and returns the first failure.",
		Recv:    &codegen.Param{Name: recvName, Type: codegen.PointerType{Elem: a.selfType(gv.Name)}},
		Name:    "Validate",
		Params:  []codegen.Param{{Name: valueName, Type: a.selfType(gv.TypeName)}},
		Results: []codegen.TypeExpr{codegen.TypeName{Name: "error"}},
		Body:    body,
	}, names
}

func (a *Assembler) helperName() string {
	return codegen.LowerCamel(a.typ.Name) + "QualifiedValidator"
}

func (a *Assembler) tableName() string {
	return codegen.LowerCamel(a.typ.Name) + "Accessors"
}

func (a *Assembler) accessorTable() (codegen.VarDecl, error) {
	a.usesTokens = true
	elems := make([]codegen.Expr, 0, len(a.qualified))
	for _, e := range a.qualified {
		token, err := typedesc.Token(e.prop.Type, typedesc.Env{})
		if err != nil {
			return codegen.VarDecl{}, fmt.Errorf("assemble: property %q: %w", e.prop.Name, err)
		}
		lookup := e.strategy.(model.QualifiedLookup)
		quals := make([]codegen.Expr, 0, len(lookup.Qualifiers))
		for _, name := range lookup.QualifierNames() {
			quals = append(quals, codegen.StringLit{Value: name})
		}
		elems = append(elems, codegen.KeyValue{
			Key: codegen.StringLit{Value: e.prop.Accessor},
			Value: codegen.CompositeLit{Elems: []codegen.Expr{
				codegen.KeyValue{Key: codegen.Ident{Name: "Type"}, Value: token},
				codegen.KeyValue{Key: codegen.Ident{Name: "Qualifiers"}, Value: codegen.CompositeLit{
					Type:  codegen.ArrayType{Elem: codegen.TypeName{Name: "string"}},
					Elems: quals,
				}},
			}},
		})
	}
	return codegen.VarDecl{
		Doc:   fmt.Sprintf("%s records the qualifier markers of %s accessors.", a.tableName(), a.typ.Name),
		Name:  a.tableName(),
		Value: codegen.CompositeLit{Type: codegen.TypeName{Pkg: runtimePkg, Name: "AccessorTable"}, Elems: elems},
	}, nil
}

func (a *Assembler) qualifierHelper() codegen.FuncDecl {
	elem := codegen.TypeName{Name: "T"}
	return codegen.FuncDecl{
		Doc:        fmt.Sprintf("%s resolves the validator of a qualified %s accessor.", a.helperName(), a.typ.Name),
		Name:       a.helperName(),
		TypeParams: []codegen.TypeParam{{Name: "T", Constraint: "any"}},
		Params: []codegen.Param{
			{Name: inspName, Type: codegen.PointerType{Elem: codegen.TypeName{Pkg: runtimePkg, Name: "Inspector"}}},
			{Name: accessorName, Type: codegen.TypeName{Name: "string"}},
		},
		Results: []codegen.TypeExpr{validatorType(elem), codegen.TypeName{Name: "error"}},
		Body: []codegen.Stmt{
			codegen.DefineChecked{
				Names: []string{entryName},
				Value: codegen.Call{
					Fun:  codegen.Selector{X: codegen.Ident{Name: a.tableName()}, Sel: "Lookup"},
					Args: []codegen.Expr{codegen.StringLit{Value: a.typ.Name}, codegen.Ident{Name: accessorName}},
				},
			},
			codegen.Return{Values: []codegen.Expr{codegen.Call{
				Fun:      codegen.Qual(runtimePkg, "LookupQualified"),
				TypeArgs: []codegen.TypeExpr{elem},
				Args: []codegen.Expr{
					codegen.Ident{Name: inspName},
					codegen.Selector{X: codegen.Ident{Name: entryName}, Sel: "Type"},
					codegen.Selector{X: codegen.Ident{Name: entryName}, Sel: "Qualifiers"},
				},
				Ellipsis: true,
			}}},
		},
	}
}

func validatorType(elem codegen.TypeExpr) codegen.TypeExpr {
	return codegen.TypeName{Pkg: runtimePkg, Name: "Validator", Args: []codegen.TypeExpr{elem}}
}

func (a *Assembler) useDescriptor(d typedesc.Descriptor) {
	for _, q := range typedesc.Packages(d) {
		a.imports[q] = struct{}{}
	}
}

func (a *Assembler) importList() []codegen.Import {
	out := []codegen.Import{{Path: a.runtimePath}}
	if path.Base(a.runtimePath) != runtimePkg {
		out[0].Alias = runtimePkg
	}
	if a.usesTokens {
		imp := codegen.Import{Path: a.typesPath}
		if path.Base(a.typesPath) != typesPkg {
			imp.Alias = typesPkg
		}
		out = append(out, imp)
	}

	quals := make([]string, 0, len(a.imports))
	for q := range a.imports {
		quals = append(quals, q)
	}
	sort.Strings(quals)
	for _, q := range quals {
		p := a.resolveImport(q)
		imp := codegen.Import{Path: p}
		if path.Base(p) != q {
			imp.Alias = q
		}
		out = append(out, imp)
	}
	return out
}

func importName(imp codegen.Import) string {
	if imp.Alias != "" {
		return imp.Alias
	}
	return path.Base(imp.Path)
}
