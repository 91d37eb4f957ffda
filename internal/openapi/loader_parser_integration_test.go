package openapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-validgen/internal/loader"
	"github.com/goliatone/go-validgen/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-validgen/pkg/openapi"
	"github.com/goliatone/go-validgen/pkg/schema"
)

const petstore = `openapi: 3.0.3
info:
  title: Petstore
  version: 1.0.0
paths: {}
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
          maxLength: 32
        owner:
          $ref: '#/components/schemas/Owner'
    Owner:
      type: object
      properties:
        email:
          type: string
          x-validgen:
            qualifiers: [Email]
`

func TestLoaderParserIntegration(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "petstore.yaml")
	if err := os.WriteFile(path, []byte(petstore), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		if _, err := w.Write([]byte(petstore)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	l := loader.New(schema.NewLoaderOptions(schema.WithHTTPFallback(5 * time.Second)))
	adapter := pkgopenapi.NewAdapter(parser.New(pkgopenapi.NewParserOptions()))

	sources := map[string]schema.Source{
		"file": schema.SourceFromFile(path),
		"url":  schema.MustSourceFromURL(server.URL + "/petstore.yaml"),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			doc, err := l.Load(ctx, src)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !adapter.Detect(src, doc.Raw()) {
				t.Fatalf("expected the adapter to detect an OpenAPI document")
			}

			out, err := adapter.Normalize(ctx, doc, schema.NormalizeOptions{Package: "pets", Types: []string{"Pet"}})
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if out.Package != "pets" {
				t.Fatalf("expected package override, got %q", out.Package)
			}
			if len(out.Types) != 1 || out.Types[0].Name != "Pet" {
				t.Fatalf("expected only Pet, got %+v", out.Types)
			}
			accessors := out.Types[0].Accessors
			if len(accessors) != 2 || accessors[0].Name != "Name" || accessors[1].Returns != "Owner" {
				t.Fatalf("unexpected accessors %+v", accessors)
			}
		})
	}
}
