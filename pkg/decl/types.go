package decl

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-validgen/pkg/model"
)

// Document is one declaration file: a set of type declarations sharing a
// target package, an import table and marker configuration.
type Document struct {
	// Package is the Go package name of the generated files.
	Package string `yaml:"package" json:"package"`
	// Imports maps package qualifiers used in type expressions and validator
	// references to import paths. Unlisted qualifiers import as themselves.
	Imports map[string]string `yaml:"imports,omitempty" json:"imports,omitempty"`
	// Qualifiers names markers usable for qualified lookups.
	Qualifiers []string `yaml:"qualifiers,omitempty" json:"qualifiers,omitempty"`
	// Markers renames the built-in markers.
	Markers MarkerNames `yaml:"markers,omitempty" json:"markers,omitempty"`
	Types   []TypeDecl  `yaml:"types" json:"types"`

	// Source is the path the document was read from.
	Source string `yaml:"-" json:"-"`
}

// MarkerNames overrides the built-in marker names for one document.
type MarkerNames struct {
	Ignore      string `yaml:"ignore,omitempty" json:"ignore,omitempty"`
	NoValidate  string `yaml:"noValidate,omitempty" json:"noValidate,omitempty"`
	ValidatedBy string `yaml:"validatedBy,omitempty" json:"validatedBy,omitempty"`
}

// Model converts the names into model.Markers, filling blanks with defaults.
func (m MarkerNames) Model() model.Markers {
	return model.Markers{
		Ignore:      m.Ignore,
		NoValidate:  m.NoValidate,
		ValidatedBy: m.ValidatedBy,
	}.WithDefaults()
}

// TypeDecl declares one validated type.
type TypeDecl struct {
	Name       string      `yaml:"name" json:"name"`
	Doc        string      `yaml:"doc,omitempty" json:"doc,omitempty"`
	TypeParams []TypeParam `yaml:"typeParams,omitempty" json:"typeParams,omitempty"`
	Accessors  []Accessor  `yaml:"accessors" json:"accessors"`
}

// TypeParamNames returns the declared type parameter names in order.
func (t TypeDecl) TypeParamNames() []string {
	out := make([]string, len(t.TypeParams))
	for i, p := range t.TypeParams {
		out[i] = p.Name
	}
	return out
}

// Generic reports whether the type declares type parameters.
func (t TypeDecl) Generic() bool {
	return len(t.TypeParams) > 0
}

// TypeParam is a type parameter. The YAML scalar "T comparable" is shorthand
// for name and constraint; a bare name defaults the constraint to any.
type TypeParam struct {
	Name       string `yaml:"name" json:"name"`
	Constraint string `yaml:"constraint,omitempty" json:"constraint,omitempty"`
}

// UnmarshalYAML accepts the scalar shorthand or a mapping.
func (p *TypeParam) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		fields := strings.Fields(node.Value)
		if len(fields) == 0 {
			return fmt.Errorf("decl: line %d: empty type parameter", node.Line)
		}
		p.Name = fields[0]
		p.Constraint = strings.Join(fields[1:], " ")
		return nil
	}
	type plain TypeParam
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = TypeParam(raw)
	return nil
}

// Accessor is one method of the validated type.
type Accessor struct {
	// Name is the method name called on the instance.
	Name string `yaml:"name" json:"name"`
	// Returns is the result type in descriptor syntax; empty means no value.
	Returns string `yaml:"returns,omitempty" json:"returns,omitempty"`
	// Public overrides the visibility derived from the Go name.
	Public  *bool    `yaml:"public,omitempty" json:"public,omitempty"`
	Doc     string   `yaml:"doc,omitempty" json:"doc,omitempty"`
	Markers []Marker `yaml:"markers,omitempty" json:"markers,omitempty"`
}

// Marker is a metadata tag. The YAML scalar `Range(0, 150)` is shorthand for
// name Range with arguments "0" and "150".
type Marker struct {
	Name      string   `yaml:"name" json:"name"`
	Args      []string `yaml:"args,omitempty" json:"args,omitempty"`
	Qualifier bool     `yaml:"qualifier,omitempty" json:"qualifier,omitempty"`
}

// UnmarshalYAML accepts the scalar shorthand or a mapping.
func (m *Marker) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := ParseMarker(node.Value)
		if err != nil {
			return fmt.Errorf("decl: line %d: %w", node.Line, err)
		}
		*m = parsed
		return nil
	}
	type plain Marker
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*m = Marker(raw)
	return nil
}

// ParseMarker parses the marker shorthand `Name` or `Name(arg, ...)`.
// Arguments are split on top-level commas; brackets and quotes nest.
func ParseMarker(s string) (Marker, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if s == "" {
			return Marker{}, fmt.Errorf("empty marker")
		}
		return Marker{Name: s}, nil
	}
	if !strings.HasSuffix(s, ")") {
		return Marker{}, fmt.Errorf("marker %q: missing closing parenthesis", s)
	}
	name := strings.TrimSpace(s[:open])
	if name == "" {
		return Marker{}, fmt.Errorf("marker %q: missing name", s)
	}
	args, err := splitArgs(s[open+1 : len(s)-1])
	if err != nil {
		return Marker{}, fmt.Errorf("marker %q: %w", s, err)
	}
	return Marker{Name: name, Args: args}, nil
}

func splitArgs(body string) ([]string, error) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}
	var (
		args  []string
		depth int
		quote rune
		start int
	)
	flush := func(end int) {
		arg := strings.TrimSpace(body[start:end])
		if len(arg) >= 2 && (arg[0] == '"' || arg[0] == '\'') && arg[len(arg)-1] == arg[0] {
			arg = arg[1 : len(arg)-1]
		}
		args = append(args, arg)
	}
	for i, r := range body {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q", r)
			}
		case r == ',' && depth == 0:
			flush(i)
			start = i + 1
		}
	}
	if quote != 0 || depth != 0 {
		return nil, fmt.Errorf("unterminated argument list")
	}
	flush(len(body))
	return args, nil
}

// String renders the marker in shorthand form.
func (m Marker) String() string {
	if len(m.Args) == 0 {
		return m.Name
	}
	return m.Name + "(" + strings.Join(m.Args, ", ") + ")"
}
