package codegen

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
)

var predeclared = map[string]struct{}{
	"any": {}, "bool": {}, "byte": {}, "comparable": {}, "complex64": {}, "complex128": {},
	"error": {}, "float32": {}, "float64": {}, "int": {}, "int8": {}, "int16": {}, "int32": {},
	"int64": {}, "rune": {}, "string": {}, "uint": {}, "uint8": {}, "uint16": {}, "uint32": {},
	"uint64": {}, "uintptr": {}, "true": {}, "false": {}, "iota": {}, "nil": {}, "append": {},
	"cap": {}, "clear": {}, "close": {}, "complex": {}, "copy": {}, "delete": {}, "imag": {},
	"len": {}, "make": {}, "max": {}, "min": {}, "new": {}, "panic": {}, "print": {},
	"println": {}, "real": {}, "recover": {},
}

// NameAllocator hands out collision-free identifiers within one scope.
// Suggestions are sanitised into identifiers; keywords and predeclared names
// get a trailing underscore and repeats get a numeric suffix starting at 2.
type NameAllocator struct {
	taken map[string]struct{}
}

// NewNameAllocator returns an allocator with reserved names already taken.
func NewNameAllocator(reserved ...string) *NameAllocator {
	a := &NameAllocator{taken: make(map[string]struct{})}
	a.Reserve(reserved...)
	return a
}

// Reserve marks names as taken without allocating them.
func (a *NameAllocator) Reserve(names ...string) {
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			a.taken[name] = struct{}{}
		}
	}
}

// NewName allocates an identifier derived from suggestion.
func (a *NameAllocator) NewName(suggestion string) string {
	base := ToIdentifier(suggestion)
	if token.IsKeyword(base) || IsPredeclared(base) {
		base += "_"
	}
	name := base
	for i := 2; a.isTaken(name); i++ {
		name = base + strconv.Itoa(i)
	}
	a.taken[name] = struct{}{}
	return name
}

func (a *NameAllocator) isTaken(name string) bool {
	_, ok := a.taken[name]
	return ok
}

// IsPredeclared reports whether name is a Go predeclared identifier.
func IsPredeclared(name string) bool {
	_, ok := predeclared[name]
	return ok
}

// ToIdentifier replaces characters that cannot appear in an identifier with
// underscores and prefixes a leading digit. Empty input yields "v".
func ToIdentifier(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "v"
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// LowerCamel lowercases the leading initialism or letter of s: "ID" becomes
// "id", "URLPath" becomes "urlPath" and "Name" becomes "name".
func LowerCamel(s string) string {
	runes := []rune(s)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	switch {
	case upper == 0:
		return s
	case upper == len(runes):
		return strings.ToLower(s)
	case upper > 1:
		upper--
	}
	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// UpperCamel converts snake, kebab or space separated words into an exported
// identifier: "first_name" becomes "FirstName".
func UpperCamel(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, f := range fields {
		runes := []rune(f)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// SnakeCase converts an identifier into lower snake case: "HTTPServer"
// becomes "http_server".
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
