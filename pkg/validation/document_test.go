package validation

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-validgen/pkg/model"
	"github.com/goliatone/go-validgen/pkg/schema"
)

func TestValidateDocumentValid(t *testing.T) {
	raw := []byte(`package: people
types:
  - name: Person
    accessors:
      - name: Name
        returns: string
        markers: ["Length(1, 10)"]
`)
	result := ValidateDocument(context.Background(), schema.SourceFromFS("people.yaml"), raw, Options{})
	if !result.Valid || len(result.Issues) != 0 {
		t.Fatalf("expected document to be valid: %#v", result.Issues)
	}
}

func TestValidateDocumentJSONSchemaFieldPath(t *testing.T) {
	raw := []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$defs": {
    "A": {"type": "object", "properties": {"b": {"$ref": "#/$defs/B"}}}
  }
}`)
	result := ValidateDocument(context.Background(), nil, raw, Options{})
	if result.Valid {
		t.Fatalf("expected schema to be invalid")
	}
	if len(result.Issues) != 1 {
		t.Fatalf("expected one issue, got %#v", result.Issues)
	}
	issue := result.Issues[0]
	if issue.Path != "#/$defs/A/properties/b" {
		t.Fatalf("unexpected path %q", issue.Path)
	}
	if issue.Field != "A.b" {
		t.Fatalf("expected field path A.b, got %q", issue.Field)
	}
	if issue.Message != `unresolved $ref "#/$defs/B"` {
		t.Fatalf("unexpected message %q", issue.Message)
	}
}

func TestValidateDocumentSynthesisDiagnostics(t *testing.T) {
	raw := []byte(`package: things
types:
  - name: Thing
    accessors:
      - name: Code
        returns: string
        markers: [ValidatedBy]
      - name: Size
        returns: int
        markers: ["Range(0, 10)"]
`)
	result := ValidateDocument(context.Background(), schema.SourceFromFS("things.yaml"), raw, Options{Format: "decl"})
	if result.Valid {
		t.Fatalf("expected synthesis diagnostics to invalidate the document")
	}
	if len(result.Issues) == 0 {
		t.Fatalf("expected issues")
	}
	issue := result.Issues[0]
	if issue.Severity != model.SeverityError || !strings.HasPrefix(issue.Field, "Thing.") {
		t.Fatalf("unexpected issue %#v", issue)
	}
}

func TestValidateDocumentFormatErrors(t *testing.T) {
	result := ValidateDocument(context.Background(), nil, nil, Options{})
	if result.Valid || len(result.Issues) != 1 {
		t.Fatalf("expected empty payload to fail: %#v", result)
	}

	result = ValidateDocument(context.Background(), nil, []byte("package: x\ntypes: []\n"), Options{Format: "protobuf"})
	if result.Valid {
		t.Fatalf("expected unknown format to fail")
	}
}

func TestFieldPathFromPointer(t *testing.T) {
	cases := map[string]string{
		"":                                       "",
		"#":                                      "",
		"#/properties/title":                     "title",
		"#/properties/a~1b/items":                "a/b.items",
		"#/$defs/Address/properties/street":      "Address.street",
		"#/properties/tags/allOf/0/properties/x": "tags.x",
	}
	for pointer, want := range cases {
		if got := fieldPathFromPointer(pointer); got != want {
			t.Errorf("fieldPathFromPointer(%q) = %q, want %q", pointer, got, want)
		}
	}
}
