package golang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-validgen/pkg/codegen"
)

// nilable lists named types whose zero value is nil. Every other named type
// without a literal zero is spelled *new(T).
var nilable = map[string]bool{
	"error":               true,
	"any":                 true,
	"inspector.Validator": true,
	"inspector.Factory":   true,
	"types.Type":          true,
}

// Views are the template data of one declaration. Types and expressions are
// spelled here; the templates own the layout and go/format normalises it.

const (
	structTemplate = "struct"
	funcTemplate   = "func"
	varTemplate    = "var"
)

// declView picks the template of d and builds its data.
func declView(d codegen.Decl) (string, map[string]any, error) {
	switch x := d.(type) {
	case codegen.StructDecl:
		view, err := structView(x)
		return structTemplate, view, err
	case codegen.FuncDecl:
		view, err := funcView(x)
		return funcTemplate, view, err
	case codegen.VarDecl:
		view, err := varView(x)
		return varTemplate, view, err
	default:
		return "", nil, fmt.Errorf("golang: unsupported declaration %T", d)
	}
}

func structView(d codegen.StructDecl) (map[string]any, error) {
	tparams, err := typeParams(d.TypeParams)
	if err != nil {
		return nil, err
	}
	fields := make([]any, len(d.Fields))
	for i, f := range d.Fields {
		t, err := typeString(f.Type)
		if err != nil {
			return nil, fmt.Errorf("golang: field %s: %w", f.Name, err)
		}
		fields[i] = map[string]any{"name": f.Name, "type": t}
	}
	return map[string]any{
		"doc":     d.Doc,
		"name":    d.Name,
		"tparams": tparams,
		"fields":  fields,
	}, nil
}

func funcView(d codegen.FuncDecl) (map[string]any, error) {
	recv := ""
	if d.Recv != nil {
		t, err := typeString(d.Recv.Type)
		if err != nil {
			return nil, fmt.Errorf("golang: receiver of %s: %w", d.Name, err)
		}
		recv = d.Recv.Name + " " + t
	}

	tparams, err := typeParams(d.TypeParams)
	if err != nil {
		return nil, err
	}

	params := make([]string, len(d.Params))
	for i, param := range d.Params {
		t, err := typeString(param.Type)
		if err != nil {
			return nil, fmt.Errorf("golang: parameter %s of %s: %w", param.Name, d.Name, err)
		}
		params[i] = param.Name + " " + t
	}

	results, err := typeList(d.Results)
	if err != nil {
		return nil, fmt.Errorf("golang: result of %s: %w", d.Name, err)
	}
	if len(d.Results) > 1 {
		results = "(" + results + ")"
	}

	body := make([]any, 0, len(d.Body))
	for _, stmt := range d.Body {
		view, err := stmtView(stmt, d.Results)
		if err != nil {
			return nil, fmt.Errorf("golang: body of %s: %w", d.Name, err)
		}
		body = append(body, view)
	}

	return map[string]any{
		"doc":     d.Doc,
		"recv":    recv,
		"name":    d.Name,
		"tparams": tparams,
		"params":  strings.Join(params, ", "),
		"results": results,
		"body":    body,
	}, nil
}

func varView(d codegen.VarDecl) (map[string]any, error) {
	v, err := exprString(d.Value, 0)
	if err != nil {
		return nil, fmt.Errorf("golang: var %s: %w", d.Name, err)
	}
	return map[string]any{"doc": d.Doc, "name": d.Name, "value": v}, nil
}

// stmtView describes one statement by kind. Error checks carry the early
// return matching the enclosing function's results.
func stmtView(s codegen.Stmt, results []codegen.TypeExpr) (map[string]any, error) {
	switch x := s.(type) {
	case codegen.Comment:
		return map[string]any{"kind": "comment", "text": x.Text}, nil
	case codegen.Blank:
		return map[string]any{"kind": "blank"}, nil
	case codegen.Define:
		v, err := exprString(x.Value, 1)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "define", "lhs": x.Name, "value": v}, nil
	case codegen.DefineChecked:
		v, err := exprString(x.Value, 1)
		if err != nil {
			return nil, err
		}
		ret, err := errorReturn(results)
		if err != nil {
			return nil, err
		}
		names := append(append([]string(nil), x.Names...), "err")
		return map[string]any{"kind": "checked", "lhs": strings.Join(names, ", "), "value": v, "ret": ret}, nil
	case codegen.Check:
		v, err := exprString(x.Call, 1)
		if err != nil {
			return nil, err
		}
		ret, err := errorReturn(results)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "check", "value": v, "ret": ret}, nil
	case codegen.Return:
		values := make([]string, len(x.Values))
		for i, v := range x.Values {
			s, err := exprString(v, 1)
			if err != nil {
				return nil, err
			}
			values[i] = s
		}
		return map[string]any{"kind": "return", "values": strings.Join(values, ", ")}, nil
	case codegen.Raw:
		var lines []string
		for _, l := range strings.Split(strings.TrimRight(x.Code, "\n"), "\n") {
			lines = append(lines, strings.TrimRight(l, " \t"))
		}
		return map[string]any{"kind": "raw", "lines": lines}, nil
	default:
		return nil, fmt.Errorf("golang: unsupported statement %T", s)
	}
}

// errorReturn builds the early return for a failed check: zero values for
// every leading result and err for the trailing error.
func errorReturn(results []codegen.TypeExpr) (string, error) {
	if len(results) == 0 {
		return "", fmt.Errorf("golang: error check in a function without results")
	}
	last, ok := results[len(results)-1].(codegen.TypeName)
	if !ok || last.Pkg != "" || last.Name != "error" {
		return "", fmt.Errorf("golang: error check in a function not returning error")
	}
	values := make([]string, 0, len(results))
	for _, r := range results[:len(results)-1] {
		z, err := zeroValue(r)
		if err != nil {
			return "", err
		}
		values = append(values, z)
	}
	values = append(values, "err")
	return "return " + strings.Join(values, ", "), nil
}

func zeroValue(t codegen.TypeExpr) (string, error) {
	switch x := t.(type) {
	case codegen.PointerType, codegen.ArrayType:
		return "nil", nil
	case codegen.WildcardType:
		return "nil", nil
	case codegen.TypeName:
		if x.Pkg == "" && x.Name == "map" {
			return "nil", nil
		}
		key := x.Name
		if x.Pkg != "" {
			key = x.Pkg + "." + x.Name
		}
		if nilable[key] {
			return "nil", nil
		}
		if x.Pkg == "" {
			switch {
			case x.Name == "string":
				return `""`, nil
			case x.Name == "bool":
				return "false", nil
			case isNumeric(x.Name):
				return "0", nil
			}
		}
		s, err := typeString(x)
		if err != nil {
			return "", err
		}
		return "*new(" + s + ")", nil
	default:
		return "", fmt.Errorf("golang: no zero value for %T", t)
	}
}

func isNumeric(name string) bool {
	switch name {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"float32", "float64", "complex64", "complex128", "byte", "rune":
		return true
	}
	return false
}

func typeParams(params []codegen.TypeParam) (string, error) {
	if len(params) == 0 {
		return "", nil
	}
	parts := make([]string, len(params))
	for i, tp := range params {
		if strings.TrimSpace(tp.Name) == "" {
			return "", fmt.Errorf("golang: unnamed type parameter")
		}
		constraint := strings.TrimSpace(tp.Constraint)
		if constraint == "" {
			constraint = "any"
		}
		parts[i] = tp.Name + " " + constraint
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

// typeString spells a type reference.
func typeString(t codegen.TypeExpr) (string, error) {
	switch x := t.(type) {
	case codegen.TypeName:
		if x.Pkg == "" && x.Name == "map" {
			if len(x.Args) != 2 {
				return "", fmt.Errorf("golang: map type needs 2 arguments, got %d", len(x.Args))
			}
			k, err := typeString(x.Args[0])
			if err != nil {
				return "", err
			}
			v, err := typeString(x.Args[1])
			if err != nil {
				return "", err
			}
			return "map[" + k + "]" + v, nil
		}
		name := x.Name
		if x.Pkg != "" {
			name = x.Pkg + "." + name
		}
		if len(x.Args) == 0 {
			return name, nil
		}
		args, err := typeList(x.Args)
		if err != nil {
			return "", err
		}
		return name + "[" + args + "]", nil
	case codegen.ArrayType:
		elem, err := typeString(x.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case codegen.PointerType:
		elem, err := typeString(x.Elem)
		if err != nil {
			return "", err
		}
		return "*" + elem, nil
	case codegen.WildcardType:
		if x.Bound == nil || x.Lower {
			return "any", nil
		}
		return typeString(x.Bound)
	case nil:
		return "", fmt.Errorf("golang: missing type")
	default:
		return "", fmt.Errorf("golang: unsupported type %T", t)
	}
}

func typeList(types []codegen.TypeExpr) (string, error) {
	parts := make([]string, len(types))
	for i, t := range types {
		s, err := typeString(t)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

// exprString spells an expression. indent is the nesting of the enclosing
// statement, used when a keyed literal spans lines.
func exprString(e codegen.Expr, indent int) (string, error) {
	switch x := e.(type) {
	case codegen.Ident:
		return x.Name, nil
	case codegen.Selector:
		inner, err := exprString(x.X, indent)
		if err != nil {
			return "", err
		}
		return inner + "." + x.Sel, nil
	case codegen.Call:
		fun, err := exprString(x.Fun, indent)
		if err != nil {
			return "", err
		}
		if len(x.TypeArgs) > 0 {
			targs, err := typeList(x.TypeArgs)
			if err != nil {
				return "", err
			}
			fun += "[" + targs + "]"
		}
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			s, err := exprString(a, indent)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		tail := ""
		if x.Ellipsis && len(args) > 0 {
			tail = "..."
		}
		return fun + "(" + strings.Join(args, ", ") + tail + ")", nil
	case codegen.StringLit:
		return strconv.Quote(x.Value), nil
	case codegen.IntLit:
		return strconv.Itoa(x.Value), nil
	case codegen.NumberLit:
		if strings.TrimSpace(x.Text) == "" {
			return "", fmt.Errorf("golang: empty number literal")
		}
		return x.Text, nil
	case codegen.NilLit:
		return "nil", nil
	case codegen.Index:
		inner, err := exprString(x.X, indent)
		if err != nil {
			return "", err
		}
		idx, err := exprString(x.Index, indent)
		if err != nil {
			return "", err
		}
		return inner + "[" + idx + "]", nil
	case codegen.New:
		t, err := typeString(x.Type)
		if err != nil {
			return "", err
		}
		return "new(" + t + ")", nil
	case codegen.AddressOf:
		inner, err := exprString(x.X, indent)
		if err != nil {
			return "", err
		}
		return "&" + inner, nil
	case codegen.KeyValue:
		k, err := exprString(x.Key, indent)
		if err != nil {
			return "", err
		}
		v, err := exprString(x.Value, indent)
		if err != nil {
			return "", err
		}
		return k + ": " + v, nil
	case codegen.CompositeLit:
		return compositeString(x, indent)
	case nil:
		return "", fmt.Errorf("golang: missing expression")
	default:
		return "", fmt.Errorf("golang: unsupported expression %T", e)
	}
}

func compositeString(lit codegen.CompositeLit, indent int) (string, error) {
	prefix := ""
	if lit.Type != nil {
		t, err := typeString(lit.Type)
		if err != nil {
			return "", err
		}
		prefix = t
	}

	keyed := 0
	nested := false
	elems := make([]string, len(lit.Elems))
	for i, el := range lit.Elems {
		if _, ok := el.(codegen.KeyValue); ok {
			keyed++
		}
		s, err := exprString(el, indent)
		if err != nil {
			return "", err
		}
		nested = nested || strings.Contains(s, "\n")
		elems[i] = s
	}

	// Keyed literals with several entries, or wrapping a multi-line value,
	// get one element per line.
	if keyed <= 1 && !nested {
		return prefix + "{" + strings.Join(elems, ", ") + "}", nil
	}

	var b strings.Builder
	b.WriteString(prefix + "{\n")
	pad := strings.Repeat("\t", indent+1)
	for _, el := range lit.Elems {
		s, err := exprString(el, indent+1)
		if err != nil {
			return "", err
		}
		b.WriteString(pad + s + ",\n")
	}
	b.WriteString(strings.Repeat("\t", indent) + "}")
	return b.String(), nil
}
