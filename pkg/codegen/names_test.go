package codegen

import "testing"

func TestNameAllocator(t *testing.T) {
	a := NewNameAllocator("value", "err")

	cases := []struct {
		suggestion string
		want       string
	}{
		{"id", "id"},
		{"id", "id2"},
		{"id", "id3"},
		{"value", "value2"},
		{"type", "type_"},
		{"type", "type_2"},
		{"string", "string_"},
		{"first-name", "first_name"},
		{"9lives", "_9lives"},
		{"", "v"},
	}
	for _, tc := range cases {
		if got := a.NewName(tc.suggestion); got != tc.want {
			t.Fatalf("NewName(%q) = %q, want %q", tc.suggestion, got, tc.want)
		}
	}
}

func TestLowerCamel(t *testing.T) {
	cases := map[string]string{
		"ID":       "id",
		"Name":     "name",
		"URLPath":  "urlPath",
		"name":     "name",
		"HTTPX":    "httpx",
		"A":        "a",
		"EmailURL": "emailURL",
	}
	for in, want := range cases {
		if got := LowerCamel(in); got != want {
			t.Errorf("LowerCamel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUpperCamelAndSnake(t *testing.T) {
	if got := UpperCamel("first_name"); got != "FirstName" {
		t.Fatalf("UpperCamel = %q", got)
	}
	if got := UpperCamel("created-at date"); got != "CreatedAtDate" {
		t.Fatalf("UpperCamel = %q", got)
	}
	snake := map[string]string{
		"Person":     "person",
		"HTTPServer": "http_server",
		"UserID":     "user_id",
		"Box2D":      "box2_d",
	}
	for in, want := range snake {
		if got := SnakeCase(in); got != want {
			t.Errorf("SnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
