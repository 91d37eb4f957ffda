package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-validgen/pkg/config"
)

const fileYAML = `
out: generated
package: people
workers: 4
logLevel: debug
types: [Person, Address]
httpTimeout: 3s
overrides:
  - type: Person
    accessor: Name
    validators: [Trimmed]
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(config.WithEnvironment(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)
}

func TestLoad_Precedence(t *testing.T) {
	fsys := fstest.MapFS{"validgen.yaml": {Data: []byte(fileYAML)}}

	fromFile, err := config.Load(
		config.WithFS(fsys),
		config.WithFile("validgen.yaml"),
		config.WithEnvironment(map[string]string{}),
	)
	require.NoError(t, err)
	assert.Equal(t, "generated", fromFile.Out)
	assert.Equal(t, "people", fromFile.Package)
	assert.Equal(t, 4, fromFile.Workers)
	assert.Equal(t, []string{"Person", "Address"}, fromFile.Types)
	assert.Equal(t, 3*time.Second, fromFile.HTTPTimeout)
	assert.Equal(t, "_validator.go", fromFile.Suffix, "unset keys keep defaults")
	assert.Equal(t, []config.Override{{Type: "Person", Accessor: "Name", Validators: []string{"Trimmed"}}}, fromFile.Overrides)

	fromEnv, err := config.Load(
		config.WithFS(fsys),
		config.WithFile("validgen.yaml"),
		config.WithEnvironment(map[string]string{
			"VALIDGEN_OUT":     "env-out",
			"VALIDGEN_TYPES":   "Order",
			"VALIDGEN_WORKERS": "2",
			"OUT":              "ignored",
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, "env-out", fromEnv.Out)
	assert.Equal(t, []string{"Order"}, fromEnv.Types)
	assert.Equal(t, 2, fromEnv.Workers)
	assert.Equal(t, "people", fromEnv.Package, "file values survive when env is silent")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("VALIDGEN_PACKAGE=dotenv\nVALIDGEN_BACKEND=custom\n"), 0o644))

	cfg, err := config.Load(
		config.WithDotEnv(path, filepath.Join(dir, "missing.env")),
		config.WithEnvironment(map[string]string{"VALIDGEN_BACKEND": "process"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.Package)
	assert.Equal(t, "process", cfg.Backend, "process environment beats .env files")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	cfg, err := config.Load(config.WithEnvironment(map[string]string{
		"VALIDGEN_OVERRIDE_0_TYPE":       "User",
		"VALIDGEN_OVERRIDE_0_ACCESSOR":   "Email",
		"VALIDGEN_OVERRIDE_0_VALIDATORS": "Trimmed,EmailFormat",
	}))
	require.NoError(t, err)
	assert.Equal(t, []config.Override{{Type: "User", Accessor: "Email", Validators: []string{"Trimmed", "EmailFormat"}}}, cfg.Overrides)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(config.WithFile(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.True(t, errors.Is(err, config.ErrReadingFile))

	fsys := fstest.MapFS{"bad.yaml": {Data: []byte("unknown: true\n")}}
	_, err = config.Load(config.WithFS(fsys), config.WithFile("bad.yaml"), config.WithEnvironment(map[string]string{}))
	assert.True(t, errors.Is(err, config.ErrReadingFile), "unknown keys are rejected")

	_, err = config.Load(config.WithEnvironment(map[string]string{"VALIDGEN_WORKERS": "many"}))
	assert.True(t, errors.Is(err, config.ErrParsingConfig))

	_, err = config.Load(config.WithEnvironment(map[string]string{"VALIDGEN_LOG_LEVEL": "chatty"}))
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))

	_, err = config.Load(config.WithEnvironment(map[string]string{"VALIDGEN_FORMAT": "protobuf"}))
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))

	_, err = config.Load(config.WithEnvironment(map[string]string{"VALIDGEN_WORKERS": "-1"}))
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}
