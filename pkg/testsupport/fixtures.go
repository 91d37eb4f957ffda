package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-validgen/pkg/decl"
)

// LoadDeclarations reads a declaration fixture. Testing helpers fail the test
// on error to keep contract tests concise.
func LoadDeclarations(t *testing.T, path string) decl.Document {
	t.Helper()

	doc, err := LoadDeclarationsFromPath(path)
	if err != nil {
		t.Fatalf("load declarations: %v", err)
	}
	return doc
}

// LoadDeclarationsFromPath returns a Document without requiring testing.T so
// callers can wire fixtures in setup functions.
func LoadDeclarationsFromPath(path string) (decl.Document, error) {
	if path == "" {
		return decl.Document{}, errors.New("testsupport: declaration path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return decl.Document{}, fmt.Errorf("testsupport: read declarations: %w", err)
	}
	doc, err := decl.Parse(data, path)
	if err != nil {
		return decl.Document{}, fmt.Errorf("testsupport: parse declarations: %w", err)
	}
	return doc, nil
}

// MustParseDeclarations parses inline declaration source.
func MustParseDeclarations(t *testing.T, src string) decl.Document {
	t.Helper()

	doc, err := decl.Parse([]byte(src), t.Name()+".yaml")
	if err != nil {
		t.Fatalf("parse declarations: %v", err)
	}
	return doc
}

// MustParseGo parses generated Go source and fails the test when it is not
// syntactically valid.
func MustParseGo(t *testing.T, src []byte) *ast.File {
	t.Helper()

	file, err := parser.ParseFile(token.NewFileSet(), "generated.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}
	return file
}

// AssertOrdered fails unless every fragment occurs in src, each after the
// previous one.
func AssertOrdered(t *testing.T, src string, fragments ...string) {
	t.Helper()

	offset := 0
	for _, fragment := range fragments {
		idx := strings.Index(src[offset:], fragment)
		if idx < 0 {
			t.Fatalf("fragment %q not found after offset %d in:\n%s", fragment, offset, src)
		}
		offset += idx + len(fragment)
	}
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// WriteMaybeGolden writes data verbatim to a golden file when UPDATE_GOLDENS
// is set. Returns true if the golden was written.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// GoTokens lists the tokens of Go source, comments included, so sources that
// differ only in layout compare equal.
func GoTokens(t *testing.T, src []byte) []string {
	t.Helper()

	fset := token.NewFileSet()
	file := fset.AddFile("src.go", -1, len(src))
	var s scanner.Scanner
	var errs scanner.ErrorList
	s.Init(file, src, func(pos token.Position, msg string) { errs.Add(pos, msg) }, scanner.ScanComments)

	var out []string
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		switch {
		case tok == token.SEMICOLON:
			// Automatic semicolons carry "\n" as their literal.
			out = append(out, ";")
		case lit != "":
			out = append(out, lit)
		default:
			out = append(out, tok.String())
		}
	}
	if err := errs.Err(); err != nil {
		t.Fatalf("scan source: %v", err)
	}
	return out
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
