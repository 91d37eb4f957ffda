package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadExtension(t *testing.T) {
	ext, err := readExtension(map[string]any{
		"x-validgen": map[string]any{
			"ignore":      false,
			"skip":        true,
			"validatedBy": "Trimmed",
			"qualifiers":  []any{"Email", " "},
			"markers":     []any{"Range(1, 2)"},
		},
		"x-other": 1,
	})
	if err != nil {
		t.Fatalf("readExtension: %v", err)
	}
	want := extension{
		Skip:        true,
		ValidatedBy: []string{"Trimmed"},
		Qualifiers:  []string{"Email"},
		Markers:     []string{"Range(1, 2)"},
	}
	if diff := cmp.Diff(want, ext); diff != "" {
		t.Fatalf("extension mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckExtension(t *testing.T) {
	cases := []struct {
		name    string
		in      map[string]any
		wantErr bool
	}{
		{"absent", nil, false},
		{"valid", map[string]any{"x-validgen": map[string]any{"markers": []any{"NonZero", "Length(1, 5)"}}}, false},
		{"not an object", map[string]any{"x-validgen": "NonZero"}, true},
		{"unknown key", map[string]any{"x-validgen": map[string]any{"widget": "text"}}, true},
		{"bad bool", map[string]any{"x-validgen": map[string]any{"ignore": "yes"}}, true},
		{"bad list entry", map[string]any{"x-validgen": map[string]any{"qualifiers": []any{1}}}, true},
		{"unclosed marker", map[string]any{"x-validgen": map[string]any{"markers": "Range(1, 2"}}, true},
		{"nameless marker", map[string]any{"x-validgen": map[string]any{"markers": "(1)"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckExtension(tc.in)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
