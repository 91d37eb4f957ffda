// Package codegen defines the intermediate representation produced by the
// validator assembler. Back-ends render a File into concrete source text; the
// representation itself carries no syntax, so strategy and extension logic
// never depend on the output language.
package codegen

// Expr is an expression node.
type Expr interface {
	isExpr()
}

// Ident references a local, parameter or package-level name.
type Ident struct {
	Name string
}

// Selector is X.Sel; used for package members and struct fields.
type Selector struct {
	X   Expr
	Sel string
}

// Call invokes Fun with optional explicit type arguments. Ellipsis spreads
// the last argument into a variadic parameter.
type Call struct {
	Fun      Expr
	TypeArgs []TypeExpr
	Args     []Expr
	Ellipsis bool
}

// StringLit is a string literal.
type StringLit struct {
	Value string
}

// IntLit is an integer literal.
type IntLit struct {
	Value int
}

// NumberLit is a numeric literal kept in its source spelling.
type NumberLit struct {
	Text string
}

// NilLit is the nil value.
type NilLit struct{}

// Index is X[Index].
type Index struct {
	X     Expr
	Index Expr
}

// New allocates a zero value of Type and yields a pointer to it.
type New struct {
	Type TypeExpr
}

// AddressOf is &X.
type AddressOf struct {
	X Expr
}

// KeyValue is one element of a keyed composite literal.
type KeyValue struct {
	Key   Expr
	Value Expr
}

// CompositeLit is a composite literal. Type may be nil for elided element
// types. Elements are either KeyValue or plain expressions.
type CompositeLit struct {
	Type  TypeExpr
	Elems []Expr
}

func (Ident) isExpr()        {}
func (Selector) isExpr()     {}
func (Call) isExpr()         {}
func (StringLit) isExpr()    {}
func (IntLit) isExpr()       {}
func (NumberLit) isExpr()    {}
func (NilLit) isExpr()       {}
func (Index) isExpr()        {}
func (New) isExpr()          {}
func (AddressOf) isExpr()    {}
func (KeyValue) isExpr()     {}
func (CompositeLit) isExpr() {}

// TypeExpr is a type reference node.
type TypeExpr interface {
	isType()
}

// TypeName is a possibly qualified, possibly instantiated named type. The raw
// name "map" with two arguments denotes a map type.
type TypeName struct {
	Pkg  string
	Name string
	Args []TypeExpr
}

// ArrayType is a slice of Elem.
type ArrayType struct {
	Elem TypeExpr
}

// PointerType is *Elem.
type PointerType struct {
	Elem TypeExpr
}

// WildcardType is a bounded wildcard; back-ends without wildcards pick a
// representable approximation.
type WildcardType struct {
	Bound TypeExpr
	Lower bool
}

func (TypeName) isType()     {}
func (ArrayType) isType()    {}
func (PointerType) isType()  {}
func (WildcardType) isType() {}

// Stmt is a statement node.
type Stmt interface {
	isStmt()
}

// Comment is a line comment.
type Comment struct {
	Text string
}

// Blank separates statement groups.
type Blank struct{}

// Define introduces Name bound to Value.
type Define struct {
	Name  string
	Value Expr
}

// DefineChecked introduces Names bound to the non-error results of a fallible
// Value and returns early when the trailing error is non-nil.
type DefineChecked struct {
	Names []string
	Value Expr
}

// Check evaluates a call returning error and returns it when non-nil.
type Check struct {
	Call Expr
}

// Return returns Values from the enclosing function.
type Return struct {
	Values []Expr
}

// Raw is verbatim source text owned by the caller, typically an extension
// targeting a single back-end.
type Raw struct {
	Code string
}

func (Comment) isStmt()       {}
func (Blank) isStmt()         {}
func (Define) isStmt()        {}
func (DefineChecked) isStmt() {}
func (Check) isStmt()         {}
func (Return) isStmt()        {}
func (Raw) isStmt()           {}

// Field is a struct field.
type Field struct {
	Name string
	Type TypeExpr
}

// Param is a function parameter.
type Param struct {
	Name string
	Type TypeExpr
}

// TypeParam is a type parameter with its constraint spelled as source text.
type TypeParam struct {
	Name       string
	Constraint string
}

// Decl is a top-level declaration.
type Decl interface {
	isDecl()
}

// StructDecl declares a struct type.
type StructDecl struct {
	Doc        string
	Name       string
	TypeParams []TypeParam
	Fields     []Field
}

// FuncDecl declares a function, or a method when Recv is set.
type FuncDecl struct {
	Doc        string
	Recv       *Param
	Name       string
	TypeParams []TypeParam
	Params     []Param
	Results    []TypeExpr
	Body       []Stmt
}

// VarDecl declares a package-level variable.
type VarDecl struct {
	Doc   string
	Name  string
	Value Expr
}

func (StructDecl) isDecl() {}
func (FuncDecl) isDecl()   {}
func (VarDecl) isDecl()    {}

// Import is one imported package.
type Import struct {
	Alias string
	Path  string
}

// File is one generated compilation unit.
type File struct {
	Header  string
	Package string
	Imports []Import
	Decls   []Decl
}

// Qual references a member of an imported package.
func Qual(pkg, name string) Expr {
	return Selector{X: Ident{Name: pkg}, Sel: name}
}

// Named is shorthand for an unqualified TypeName.
func Named(name string, args ...TypeExpr) TypeExpr {
	return TypeName{Name: name, Args: args}
}
