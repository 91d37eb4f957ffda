package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const clean = `openapi: 3.0.3
info: {title: pets, version: '1'}
paths: {}
components:
  schemas:
    Pet:
      type: object
      x-validgen:
        qualifiers: [Email]
      properties:
        name:
          type: string
          x-validgen:
            markers: ["Length(1, 10)"]
        owner:
          $ref: '#/components/schemas/Owner'
    Owner:
      type: object
      properties:
        email: {type: string}
`

const dirty = `openapi: 3.0.3
info: {title: pets, version: '1'}
paths: {}
components:
  schemas:
    Pet:
      type: object
      properties:
        name:
          type: string
          x-validgen-markers: NonZero
        tags:
          type: array
          items:
            type: string
            x-validgen:
              markers: ["Range(1, 2"]
        meta:
          type: object
          additionalProperties:
            type: string
            x-validgen: {widget: text}
`

func writeSpec(t *testing.T, body string) string {
	t.Helper()
	return writeNamed(t, "openapi.yaml", body)
}

func writeNamed(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLintCleanDocument(t *testing.T) {
	var stderr bytes.Buffer
	if code := run(context.Background(), []string{writeSpec(t, clean)}, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if stderr.Len() != 0 {
		t.Fatalf("unexpected output %q", stderr.String())
	}
}

func TestLintReportsViolations(t *testing.T) {
	path := writeSpec(t, dirty)
	violations, err := lintDocument(context.Background(), path, []byte(dirty))
	if err != nil {
		t.Fatalf("lintDocument: %v", err)
	}
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %+v", violations)
	}

	var stderr bytes.Buffer
	if code := run(context.Background(), []string{path}, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	want := []string{
		"components > schemas > Pet > properties.meta > additionalProperties",
		"components > schemas > Pet > properties.name",
		"components > schemas > Pet > properties.tags > items",
	}
	if len(lines) != len(want) {
		t.Fatalf("unexpected output:\n%s", stderr.String())
	}
	for i, line := range lines {
		if !strings.Contains(line, want[i]) {
			t.Fatalf("line %d: want location %q in %q", i, want[i], line)
		}
	}
}

func TestLintUsageAndErrors(t *testing.T) {
	var stderr bytes.Buffer
	if code := run(context.Background(), nil, &stderr); code != 2 {
		t.Fatalf("expected usage exit 2, got %d", code)
	}
	stderr.Reset()
	if code := run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.yaml")}, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "read file") {
		t.Fatalf("unexpected output %q", stderr.String())
	}
}

func TestLintDeep(t *testing.T) {
	var stderr bytes.Buffer
	if code := run(context.Background(), []string{"-deep", writeSpec(t, clean)}, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}

	broken := writeNamed(t, "things.yaml", `package: things
types:
  - name: Thing
    accessors:
      - name: Code
        returns: string
        markers: [ValidatedBy]
`)
	stderr.Reset()
	if code := run(context.Background(), []string{broken}, &stderr); code != 0 {
		t.Fatalf("declaration files are only checked with -deep, got exit %d: %s", code, stderr.String())
	}
	stderr.Reset()
	if code := run(context.Background(), []string{"-deep", broken}, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Thing.") || !strings.Contains(stderr.String(), "error: ") {
		t.Fatalf("unexpected output %q", stderr.String())
	}
}
