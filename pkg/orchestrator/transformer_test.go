package orchestrator_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-validgen/pkg/decl"
	"github.com/goliatone/go-validgen/pkg/orchestrator"
	"github.com/goliatone/go-validgen/pkg/testsupport"
)

const presetYAML = `
package: accounts
types:
  User:
    doc: An account holder.
    accessors:
      Email:
        markers: ["Length(3, 254)", Email]
      Notes:
        ignore: true
`

func userDeclarations(t *testing.T) decl.Document {
	t.Helper()
	return testsupport.MustParseDeclarations(t, `
package: people
qualifiers: [Email]
types:
  - name: User
    accessors:
      - name: Email
        returns: string
      - name: Notes
        returns: string
`)
}

func TestOrchestrator_AppliesTransformer(t *testing.T) {
	called := false
	transformer := orchestrator.TransformerFunc(func(ctx context.Context, doc *decl.Document) error {
		called = true
		doc.Package = "patched"
		return nil
	})
	orch := orchestrator.New(orchestrator.WithSchemaTransformer(transformer))

	doc := userDeclarations(t)
	results, err := orch.Generate(testsupport.Context(), orchestrator.Request{Declarations: &doc})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !called {
		t.Fatalf("expected transformer to be invoked")
	}
	if !strings.Contains(string(results[0].Source), "package patched") {
		t.Fatalf("transformer mutation missing:\n%s", results[0].Source)
	}
}

func TestPresetTransformer(t *testing.T) {
	fsys := fstest.MapFS{"presets/users.yaml": {Data: []byte(presetYAML)}}
	preset, err := orchestrator.NewPresetTransformerFromFS(fsys, "presets/users.yaml")
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}

	doc := userDeclarations(t)
	if err := preset.Transform(context.Background(), &doc); err != nil {
		t.Fatalf("transform: %v", err)
	}
	if doc.Package != "accounts" {
		t.Fatalf("expected package accounts, got %q", doc.Package)
	}
	user := doc.Types[0]
	if user.Doc != "An account holder." {
		t.Fatalf("doc patch missing: %q", user.Doc)
	}
	wantEmail := []decl.Marker{{Name: "Length", Args: []string{"3", "254"}}, {Name: "Email"}}
	if diff := cmp.Diff(wantEmail, user.Accessors[0].Markers); diff != "" {
		t.Fatalf("email markers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]decl.Marker{{Name: "Ignore"}}, user.Accessors[1].Markers); diff != "" {
		t.Fatalf("notes markers mismatch (-want +got):\n%s", diff)
	}
}

func TestPresetTransformerRejectsUnknownTargets(t *testing.T) {
	cases := map[string]string{
		"type":     "types:\n  Ghost:\n    doc: x\n",
		"accessor": "types:\n  User:\n    accessors:\n      Ghost:\n        ignore: true\n",
		"marker":   "types:\n  User:\n    accessors:\n      Email:\n        markers: [\"Range(1\"]\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			preset, err := orchestrator.NewPresetTransformer([]byte(src))
			if err != nil {
				t.Fatalf("parse preset: %v", err)
			}
			doc := userDeclarations(t)
			if err := preset.Transform(context.Background(), &doc); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if _, err := orchestrator.NewPresetTransformer(nil); err == nil {
		t.Fatalf("expected error for empty preset")
	}
	if _, err := orchestrator.NewPresetTransformerFromFS(nil, "x.yaml"); err == nil {
		t.Fatalf("expected error for nil filesystem")
	}
}
