package jsonschema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestToOpenAPIRewritesKeywords(t *testing.T) {
	out, err := toOpenAPI([]byte(`{
  "$defs": {
    "B": {"type": "object", "properties": {"n": {"type": "number", "exclusiveMaximum": 10, "maximum": 99}}},
    "A": {"type": "object", "properties": {"b": {"$ref": "#/$defs/B"}, "c": {"const": 3}, "t": {"type": ["null", "integer"]}, "u": {"type": ["string", "integer"]}}}
  }
}`), "")
	if err != nil {
		t.Fatalf("toOpenAPI: %v", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(out, &root); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	schemas := lookup(lookup(root.Content[0], "components"), "schemas")
	if diff := cmp.Diff([]string{"B", "A"}, keys(schemas)); diff != "" {
		t.Fatalf("component order (-want +got):\n%s", diff)
	}

	var doc struct {
		OpenAPI    string `yaml:"openapi"`
		Components struct {
			Schemas map[string]map[string]any `yaml:"schemas"`
		} `yaml:"components"`
	}
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if doc.OpenAPI != "3.0.3" {
		t.Fatalf("unexpected openapi version %q", doc.OpenAPI)
	}

	props := func(name string) map[string]any {
		return doc.Components.Schemas[name]["properties"].(map[string]any)
	}
	wantN := map[string]any{"type": "number", "maximum": 10, "exclusiveMaximum": true}
	if diff := cmp.Diff(wantN, props("B")["n"]); diff != "" {
		t.Errorf("exclusive bound (-want +got):\n%s", diff)
	}
	wantA := map[string]any{
		"b": map[string]any{"$ref": "#/components/schemas/B"},
		"c": map[string]any{"enum": []any{3}},
		"t": map[string]any{"type": "integer"},
		"u": map[string]any{},
	}
	if diff := cmp.Diff(wantA, props("A")); diff != "" {
		t.Errorf("rewritten properties (-want +got):\n%s", diff)
	}
}

func TestRootTypeName(t *testing.T) {
	cases := map[string]string{
		`{"title": "Order", "$id": "https://x.test/a/invoice.json"}`: "Order",
		`{"$id": "https://x.test/a/invoice.schema.json"}`:            "invoice",
		`{"$id": "invoice.json"}`:                                    "invoice",
		`{}`:                                                         "Root",
	}
	for raw, want := range cases {
		var node yaml.Node
		if err := yaml.Unmarshal([]byte(raw), &node); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if got := rootTypeName(node.Content[0]); got != want {
			t.Errorf("rootTypeName(%s) = %q, want %q", raw, got, want)
		}
	}
}
