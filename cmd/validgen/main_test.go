package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-validgen/pkg/config"
)

const declarations = `package: people
qualifiers: [Email]
types:
  - name: Person
    accessors:
      - name: ID
        returns: int
        markers: [NonZero]
      - name: Email
        returns: string
        markers: [Email]
  - name: Address
    accessors:
      - name: Street
        returns: string
        markers: ["Length(1, 80)"]
`

func writeInput(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunWritesValidators(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "gen")
	input := writeInput(t, dir, "people.yaml", declarations)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-out", out, "-env-file", "", input}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	for _, name := range []string{"person_validator.go", "address_validator.go"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		assert.Contains(t, string(data), "package people")
	}
	assert.Empty(t, stdout.String())
}

func TestRunDryRunPrintsSources(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "people.yaml", declarations)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dry-run", "-out", dir, "-types", "Person", "-env-file", "", input}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Contains(t, stdout.String(), "// "+filepath.Join(dir, "person_validator.go"))
	assert.Contains(t, stdout.String(), "type PersonValidator struct")
	assert.NotContains(t, stdout.String(), "AddressValidator")

	_, err := os.Stat(filepath.Join(dir, "person_validator.go"))
	assert.True(t, os.IsNotExist(err), "dry run must not write files")
}

func TestRunExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "people.yaml", declarations)
	writeInput(t, dir, "notes.txt", "ignored")

	sources, err := expandInputs([]string{dir})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, filepath.Join(dir, "people.yaml"), sources[0].Location())

	_, err = expandInputs([]string{filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestRunInteractiveSelection(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "people.yaml", declarations)

	var offered []string
	previous := selectTypes
	selectTypes = func(_ context.Context, _ string, names []string) ([]string, error) {
		offered = names
		return []string{"Address"}, nil
	}
	t.Cleanup(func() { selectTypes = previous })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-interactive", "-dry-run", "-env-file", "", input}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Equal(t, []string{"Person", "Address"}, offered)
	assert.Contains(t, stdout.String(), "type AddressValidator struct")
	assert.NotContains(t, stdout.String(), "PersonValidator")
}

func TestRunInteractiveAbort(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "people.yaml", declarations)

	previous := selectTypes
	selectTypes = func(context.Context, string, []string) ([]string, error) { return nil, errAborted }
	t.Cleanup(func() { selectTypes = previous })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-interactive", "-env-file", "", input}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "selection aborted")
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	broken := writeInput(t, dir, "broken.yaml", `package: broken
types:
  - name: Broken
    accessors:
      - name: Code
        returns: string
        markers: [ValidatedBy]
`)
	badConfig := writeInput(t, dir, "validgen.yaml", "workers: -1\n")

	cases := []struct {
		name string
		args []string
		want int
	}{
		{"no inputs", []string{"-env-file", ""}, 2},
		{"unknown flag", []string{"-bogus"}, 2},
		{"invalid config", []string{"-config", badConfig, "-env-file", "", broken}, 1},
		{"missing input", []string{"-env-file", "", filepath.Join(dir, "missing.yaml")}, 1},
		{"diagnostic error", []string{"-dry-run", "-env-file", "", broken}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tc.want, run(context.Background(), tc.args, &stdout, &stderr))
		})
	}
}

func TestApplyFlagsOverridesConfig(t *testing.T) {
	f, _, explicit, err := parseFlags([]string{"-out", "gen", "-types", " A, ,B ", "-openapi", "-workers", "0"}, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := config.Defaults()
	cfg.Workers = 4
	cfg.Package = "keep"
	applyFlags(&cfg, f, explicit)

	assert.Equal(t, "gen", cfg.Out)
	assert.Equal(t, []string{"A", "B"}, cfg.Types)
	assert.Equal(t, "openapi", cfg.Format)
	assert.Equal(t, 0, cfg.Workers, "explicit zero wins")
	assert.Equal(t, "keep", cfg.Package)
	assert.Equal(t, "info", cfg.LogLevel)
}
