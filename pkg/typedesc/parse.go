package typedesc

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokLBrack
	tokRBrack
	tokComma
	tokQuestion
	tokAmp
)

type token struct {
	kind tokenKind
	text string
	off  int
}

// Parse reads a type expression. Unqualified identifiers listed in typeParams
// become TypeVariables.
//
//	int  Person  time.Duration  []T  List[string]  map[string]int
//	?  ? extends Number  ? super Integer
func Parse(expr string, typeParams ...string) (Descriptor, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{src: expr, toks: toks, params: make(map[string]struct{}, len(typeParams))}
	for _, name := range typeParams {
		p.params[strings.TrimSpace(name)] = struct{}{}
	}
	d, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
	return d, nil
}

// MustParse is Parse for tests and static tables; it panics on error.
func MustParse(expr string, typeParams ...string) Descriptor {
	d, err := Parse(expr, typeParams...)
	if err != nil {
		panic(err)
	}
	return d
}

type parser struct {
	src    string
	toks   []token
	pos    int
	params map[string]struct{}
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) error {
	tok := p.next()
	if tok.kind != kind {
		return p.errorf(tok, "expected %s", what)
	}
	return nil
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return fmt.Errorf("typedesc: parse %q at offset %d: %s", p.src, tok.off, fmt.Sprintf(format, args...))
}

func (p *parser) parseType() (Descriptor, error) {
	tok := p.next()
	switch tok.kind {
	case tokQuestion:
		return p.parseWildcard()
	case tokLBrack:
		if err := p.expect(tokRBrack, `"]" after "["`); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem}, nil
	case tokIdent:
		return p.parseNamed(tok)
	case tokEOF:
		return nil, p.errorf(tok, "unexpected end of type expression")
	default:
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
}

func (p *parser) parseNamed(tok token) (Descriptor, error) {
	name := tok.text
	if name == "map" && p.peek().kind == tokLBrack {
		p.next()
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRBrack, `"]" after map key`); err != nil {
			return nil, err
		}
		value, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return Parameterized{Raw: "map", Args: []Descriptor{key, value}}, nil
	}

	_, isParam := p.params[name]
	if p.peek().kind == tokLBrack {
		if isParam {
			return nil, p.errorf(tok, "type variable %s cannot take type arguments", name)
		}
		p.next()
		var args []Descriptor
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			sep := p.next()
			if sep.kind == tokRBrack {
				break
			}
			if sep.kind != tokComma {
				return nil, p.errorf(sep, `expected "," or "]" in type arguments`)
			}
		}
		return Parameterized{Raw: name, Args: args}, nil
	}

	switch {
	case isParam:
		return TypeVariable{Name: name}, nil
	case IsPrimitiveName(name):
		return Primitive{Name: name}, nil
	default:
		return Plain{Name: name}, nil
	}
}

func (p *parser) parseWildcard() (Descriptor, error) {
	var upper, lower []Descriptor
	for {
		tok := p.peek()
		if tok.kind != tokIdent || (tok.text != "extends" && tok.text != "super") {
			break
		}
		p.next()
		bounds, err := p.parseBounds()
		if err != nil {
			return nil, err
		}
		if tok.text == "extends" {
			upper = append(upper, bounds...)
		} else {
			lower = append(lower, bounds...)
		}
	}
	w, err := NewWildcard(upper, lower)
	if err != nil {
		return nil, fmt.Errorf("typedesc: parse %q: %w", p.src, err)
	}
	return w, nil
}

func (p *parser) parseBounds() ([]Descriptor, error) {
	var bounds []Descriptor
	for {
		bound, err := p.parseType()
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, bound)
		if p.peek().kind != tokAmp {
			return bounds, nil
		}
		p.next()
	}
}

func tokenize(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '[':
			toks = append(toks, token{kind: tokLBrack, text: "[", off: i})
			i++
		case r == ']':
			toks = append(toks, token{kind: tokRBrack, text: "]", off: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", off: i})
			i++
		case r == '?':
			toks = append(toks, token{kind: tokQuestion, text: "?", off: i})
			i++
		case r == '&':
			toks = append(toks, token{kind: tokAmp, text: "&", off: i})
			i++
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(runes) && (runes[i] == '_' || runes[i] == '.' || unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
				i++
			}
			text := string(runes[start:i])
			if strings.HasSuffix(text, ".") || strings.Contains(text, "..") {
				return nil, fmt.Errorf("typedesc: parse %q at offset %d: malformed name %q", src, start, text)
			}
			toks = append(toks, token{kind: tokIdent, text: text, off: start})
		default:
			return nil, fmt.Errorf("typedesc: parse %q at offset %d: unexpected character %q", src, i, r)
		}
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("typedesc: parse %q: empty type expression", src)
	}
	toks = append(toks, token{kind: tokEOF, off: len(runes)})
	return toks, nil
}
