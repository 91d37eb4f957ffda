package schema_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-validgen/pkg/decl"
	"github.com/goliatone/go-validgen/pkg/schema"
)

const declarations = `package: people
types:
  - name: Person
    accessors:
      - name: ID
        returns: int
  - name: Address
    accessors:
      - name: Street
        returns: string
`

func TestNewDocumentCopiesPayload(t *testing.T) {
	raw := []byte(declarations)
	doc, err := schema.NewDocument(schema.SourceFromFile("./decls/people.yaml"), raw)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	raw[0] = 'X'
	if got := doc.Raw(); got[0] != 'p' {
		t.Fatalf("document shares the caller's buffer")
	}
	if doc.Location() != "decls/people.yaml" {
		t.Fatalf("unexpected location %q", doc.Location())
	}

	if _, err := schema.NewDocument(nil, raw); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := schema.NewDocument(schema.SourceInline("x"), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestDeclarationsAdapterDetect(t *testing.T) {
	adapter := schema.DeclarationsAdapter{}
	cases := []struct {
		name string
		src  schema.Source
		raw  string
		want bool
	}{
		{"declarations", schema.SourceInline("inline"), declarations, true},
		{"missing package", schema.SourceInline("inline"), "types: []\n", false},
		{"openapi", schema.SourceInline("inline"), "openapi: 3.0.3\npackage: x\ntypes: []\n", false},
		{"not yaml", schema.SourceInline("inline"), "{", false},
		{"empty yaml file", schema.SourceFromFile("empty.yaml"), "", true},
		{"empty text file", schema.SourceFromFile("empty.txt"), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := adapter.Detect(tc.src, []byte(tc.raw)); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDeclarationsAdapterNormalize(t *testing.T) {
	doc := schema.MustNewDocument(schema.SourceFromFile("people.yaml"), []byte(declarations))

	got, err := schema.DeclarationsAdapter{}.Normalize(context.Background(), doc, schema.NormalizeOptions{
		Package: "models",
		Types:   []string{"Address"},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := decl.Document{
		Package: "models",
		Source:  "people.yaml",
		Types: []decl.TypeDecl{{
			Name:      "Address",
			Accessors: []decl.Accessor{{Name: "Street", Returns: "string"}},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (schema.DeclarationsAdapter{}).Normalize(ctx, doc, schema.NormalizeOptions{}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestFilterTypes(t *testing.T) {
	doc := decl.Document{Package: "p", Types: []decl.TypeDecl{{Name: "A"}, {Name: "B"}, {Name: "C"}}}

	if diff := cmp.Diff(doc, schema.FilterTypes(doc, nil)); diff != "" {
		t.Fatalf("empty filter changed the document:\n%s", diff)
	}
	if diff := cmp.Diff(doc, schema.FilterTypes(doc, []string{" ", ""})); diff != "" {
		t.Fatalf("blank filter changed the document:\n%s", diff)
	}

	got := schema.FilterTypes(doc, []string{"C", " A "})
	want := []decl.TypeDecl{{Name: "A"}, {Name: "C"}}
	if diff := cmp.Diff(want, got.Types); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Types) != 3 {
		t.Fatalf("filter mutated the input")
	}
}

func TestLoaderOptions(t *testing.T) {
	opts := schema.NewLoaderOptions(nil, schema.WithHTTPFallback(0))
	if !opts.AllowHTTPFallback || opts.HTTPClient != nil {
		t.Fatalf("unexpected options %+v", opts)
	}
}
