package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "VALIDGEN_"

// Config holds the settings of one generation.
type Config struct {
	// Out is the directory generated files are written into.
	Out string `yaml:"out" env:"OUT"`
	// Package overrides the generated package name.
	Package string `yaml:"package" env:"PACKAGE"`
	// Format forces a declaration format ("decl", "openapi" or "jsonschema");
	// empty detects.
	Format string `yaml:"format" env:"FORMAT"`
	// Types restricts generation to the named types.
	Types []string `yaml:"types" env:"TYPES" envSeparator:","`
	// Workers bounds concurrent runs; zero uses GOMAXPROCS.
	Workers  int    `yaml:"workers" env:"WORKERS"`
	LogLevel string `yaml:"logLevel" env:"LOG_LEVEL"`
	Backend  string `yaml:"backend" env:"BACKEND"`
	// Suffix is appended to the snake cased type name of written files.
	Suffix string `yaml:"suffix" env:"SUFFIX"`
	// RuntimePath and TypesPath are the import paths generated code targets.
	RuntimePath string `yaml:"runtimePath" env:"RUNTIME_PATH"`
	TypesPath   string `yaml:"typesPath" env:"TYPES_PATH"`
	// Preset names a YAML or JSON patch document applied after loading.
	Preset string `yaml:"preset" env:"PRESET"`
	// HTTPTimeout enables fetching http(s) sources when positive.
	HTTPTimeout time.Duration `yaml:"httpTimeout" env:"HTTP_TIMEOUT"`
	// Overrides pin validators of accessors that declare none. From the
	// environment they read as VALIDGEN_OVERRIDE_<n>_TYPE and so on.
	Overrides []Override `yaml:"overrides" envPrefix:"OVERRIDE"`
}

// Override pins the validators of Type.Accessor.
type Override struct {
	Type       string   `yaml:"type" env:"TYPE"`
	Accessor   string   `yaml:"accessor" env:"ACCESSOR"`
	Validators []string `yaml:"validators" env:"VALIDATORS" envSeparator:","`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Out:         ".",
		LogLevel:    zerolog.LevelInfoValue,
		Backend:     "go",
		Suffix:      "_validator.go",
		HTTPTimeout: 10 * time.Second,
	}
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	file        string
	fsys        fs.FS
	dotenv      []string
	environment map[string]string
}

// WithFile reads YAML configuration from path. A missing file is an error.
func WithFile(path string) Option {
	return func(o *loadOptions) {
		o.file = strings.TrimSpace(path)
	}
}

// WithFS resolves the configuration file through fsys instead of the OS.
func WithFS(fsys fs.FS) Option {
	return func(o *loadOptions) {
		o.fsys = fsys
	}
}

// WithDotEnv reads additional variables from .env files. Missing files are
// ignored; variables already present in the environment win.
func WithDotEnv(paths ...string) Option {
	return func(o *loadOptions) {
		o.dotenv = append(o.dotenv, paths...)
	}
}

// WithEnvironment replaces the process environment, mainly for tests.
func WithEnvironment(vars map[string]string) Option {
	return func(o *loadOptions) {
		o.environment = vars
	}
}

// Load merges defaults, the YAML file, .env files and the environment.
func Load(opts ...Option) (Config, error) {
	var o loadOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	cfg := Defaults()
	if o.file != "" {
		if err := readFile(&cfg, o); err != nil {
			return Config{}, err
		}
	}

	vars, err := environment(o)
	if err != nil {
		return Config{}, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: vars}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(cfg *Config, o loadOptions) error {
	var (
		data []byte
		err  error
	)
	if o.fsys != nil {
		data, err = fs.ReadFile(o.fsys, o.file)
	} else {
		data, err = os.ReadFile(o.file)
	}
	if err != nil {
		return errors.Join(ErrReadingFile, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return errors.Join(ErrReadingFile, fmt.Errorf("%s: %w", o.file, err))
	}
	return nil
}

func environment(o loadOptions) (map[string]string, error) {
	vars := o.environment
	if vars == nil {
		vars = env.ToMap(os.Environ())
	}
	merged := make(map[string]string, len(vars))
	for _, path := range o.dotenv {
		values, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Join(ErrParsingConfig, fmt.Errorf("%s: %w", path, err))
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	for k, v := range vars {
		merged[k] = v
	}
	return merged, nil
}

// Validate reports settings that cannot drive a generation.
func (c Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "", "decl", "openapi", "jsonschema":
	default:
		errs = append(errs, fmt.Errorf("unknown format %q", c.Format))
	}
	for i, o := range c.Overrides {
		if strings.TrimSpace(o.Type) == "" || strings.TrimSpace(o.Accessor) == "" || len(o.Validators) == 0 {
			errs = append(errs, fmt.Errorf("override %d needs type, accessor and validators", i))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
}

// Level parses LogLevel.
func (c Config) Level() (zerolog.Level, error) {
	level := strings.TrimSpace(c.LogLevel)
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	return parsed, nil
}
