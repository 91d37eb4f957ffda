package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-validgen/pkg/codegen"
	"github.com/goliatone/go-validgen/pkg/render"
)

type stubBackend struct {
	name string
}

func (s stubBackend) Name() string { return s.name }

func (s stubBackend) Render(codegen.File) ([]byte, error) { return []byte(s.name), nil }

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister(stubBackend{name: "go"})
	reg.MustRegister(stubBackend{name: "debug"})

	backend, err := reg.Get("go")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if backend.Name() != "go" {
		t.Fatalf("unexpected backend %q", backend.Name())
	}
	if diff := cmp.Diff([]string{"debug", "go"}, reg.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if !reg.Has("debug") || reg.Has("missing") {
		t.Fatalf("Has reported unexpected membership")
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := render.NewRegistry()
	if err := reg.Register(nil); err == nil {
		t.Fatalf("expected error for nil backend")
	}
	if err := reg.Register(stubBackend{name: " "}); err == nil {
		t.Fatalf("expected error for blank name")
	}
	reg.MustRegister(stubBackend{name: "go"})
	if err := reg.Register(stubBackend{name: "go"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if _, err := reg.Get("missing"); err == nil {
		t.Fatalf("expected missing backend error")
	}
}
