// Command validgen generates Go validators from declaration files or OpenAPI
// documents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-validgen/internal/loader"
	"github.com/goliatone/go-validgen/pkg/config"
	"github.com/goliatone/go-validgen/pkg/decl"
	"github.com/goliatone/go-validgen/pkg/model"
	"github.com/goliatone/go-validgen/pkg/orchestrator"
	"github.com/goliatone/go-validgen/pkg/schema"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	config      string
	dotenv      string
	out         string
	pkg         string
	format      string
	openapi     bool
	types       string
	interactive bool
	workers     int
	logLevel    string
	preset      string
	dryRun      bool
}

func parseFlags(args []string, stderr io.Writer) (flags, []string, map[string]bool, error) {
	var f flags
	set := flag.NewFlagSet("validgen", flag.ContinueOnError)
	set.SetOutput(stderr)
	set.Usage = func() {
		fmt.Fprintf(set.Output(), "Usage: validgen [flags] <declaration files or directories...>\n\n")
		fmt.Fprintf(set.Output(), "Generate Go validators for declared types.\n\n")
		set.PrintDefaults()
	}
	set.StringVar(&f.config, "config", "", "YAML configuration file")
	set.StringVar(&f.dotenv, "env-file", ".env", "dotenv file with VALIDGEN_* variables (ignored when missing)")
	set.StringVar(&f.out, "out", "", "output directory")
	set.StringVar(&f.pkg, "package", "", "generated package name")
	set.StringVar(&f.format, "format", "", "input format: decl, openapi or jsonschema (detected when empty)")
	set.BoolVar(&f.openapi, "openapi", false, "treat inputs as OpenAPI documents, same as -format openapi")
	set.StringVar(&f.types, "types", "", "comma separated list of types to generate")
	set.BoolVar(&f.interactive, "interactive", false, "choose the types to generate interactively")
	set.IntVar(&f.workers, "workers", 0, "concurrent synthesis runs (0 uses GOMAXPROCS)")
	set.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	set.StringVar(&f.preset, "preset", "", "YAML or JSON patch document applied to loaded declarations")
	set.BoolVar(&f.dryRun, "dry-run", false, "print generated files instead of writing them")
	if err := set.Parse(args); err != nil {
		return flags{}, nil, nil, err
	}
	explicit := make(map[string]bool)
	set.Visit(func(fl *flag.Flag) { explicit[fl.Name] = true })
	return f, set.Args(), explicit, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, inputs, explicit, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	loadOpts := []config.Option{config.WithFile(f.config)}
	if strings.TrimSpace(f.dotenv) != "" {
		loadOpts = append(loadOpts, config.WithDotEnv(f.dotenv))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "validgen: %v\n", err)
		return 1
	}
	applyFlags(&cfg, f, explicit)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "validgen: %v\n", err)
		return 1
	}

	level, _ := cfg.Level()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()

	if len(inputs) == 0 {
		fmt.Fprintln(stderr, "validgen: no input files")
		return 2
	}
	sources, err := expandInputs(inputs)
	if err != nil {
		logger.Error().Err(err).Msg("resolve inputs")
		return 1
	}

	orch, err := newOrchestrator(cfg, f.dryRun, logger)
	if err != nil {
		logger.Error().Err(err).Msg("configure")
		return 1
	}

	failed := false
	for _, src := range sources {
		if err := generate(ctx, orch, cfg, f, src, stdout, logger); err != nil {
			logger.Error().Err(err).Str("source", src.Location()).Msg("generation failed")
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}

func applyFlags(cfg *config.Config, f flags, explicit map[string]bool) {
	if explicit["out"] {
		cfg.Out = f.out
	}
	if explicit["package"] {
		cfg.Package = f.pkg
	}
	if explicit["format"] {
		cfg.Format = f.format
	}
	if f.openapi {
		cfg.Format = "openapi"
	}
	if explicit["types"] {
		cfg.Types = splitList(f.types)
	}
	if explicit["workers"] {
		cfg.Workers = f.workers
	}
	if explicit["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if explicit["preset"] {
		cfg.Preset = f.preset
	}
}

func newOrchestrator(cfg config.Config, dryRun bool, logger zerolog.Logger) (*orchestrator.Orchestrator, error) {
	loaderOpts := []schema.LoaderOption{}
	if cfg.HTTPTimeout > 0 {
		loaderOpts = append(loaderOpts, schema.WithHTTPFallback(cfg.HTTPTimeout))
	}

	opts := []orchestrator.Option{
		orchestrator.WithLoader(loader.New(schema.NewLoaderOptions(loaderOpts...))),
		orchestrator.WithLogger(logger),
		orchestrator.WithSink(model.LogSink{Logger: logger}),
		orchestrator.WithWorkers(cfg.Workers),
		orchestrator.WithDefaultBackend(cfg.Backend),
		orchestrator.WithRuntimePaths(cfg.RuntimePath, cfg.TypesPath),
	}
	if !dryRun {
		writer := orchestrator.NewFileWriter(cfg.Out)
		writer.Suffix = cfg.Suffix
		opts = append(opts, orchestrator.WithWriter(writer))
	}
	if len(cfg.Overrides) > 0 {
		overrides := make([]orchestrator.ValidatorOverride, 0, len(cfg.Overrides))
		for _, o := range cfg.Overrides {
			overrides = append(overrides, orchestrator.ValidatorOverride{Type: o.Type, Accessor: o.Accessor, Validators: o.Validators})
		}
		opts = append(opts, orchestrator.WithValidatorOverrides(overrides))
	}
	if strings.TrimSpace(cfg.Preset) != "" {
		preset, err := orchestrator.NewPresetTransformerFromFS(os.DirFS("."), filepath.ToSlash(filepath.Clean(cfg.Preset)))
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithSchemaTransformer(preset))
	}
	return orchestrator.New(opts...), nil
}

func generate(ctx context.Context, orch *orchestrator.Orchestrator, cfg config.Config, f flags, src schema.Source, stdout io.Writer, logger zerolog.Logger) error {
	doc, err := orch.Load(ctx, orchestrator.Request{
		Source:  src,
		Format:  cfg.Format,
		Package: cfg.Package,
		Types:   cfg.Types,
	})
	if err != nil {
		return err
	}
	if f.interactive {
		names := make([]string, 0, len(doc.Types))
		for _, t := range doc.Types {
			names = append(names, t.Name)
		}
		chosen, err := selectTypes(ctx, src.Location(), names)
		if err != nil {
			return err
		}
		doc = schema.FilterTypes(doc, chosen)
		if len(chosen) == 0 {
			doc.Types = nil
		}
	}
	if len(doc.Types) == 0 {
		logger.Warn().Str("source", src.Location()).Msg("no types selected")
		return nil
	}

	results, err := orch.GenerateAll(ctx, doc)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if f.dryRun {
			writer := orchestrator.NewFileWriter(cfg.Out)
			writer.Suffix = cfg.Suffix
			fmt.Fprintf(stdout, "// %s\n%s\n", writer.Path(r.Type), r.Source)
			continue
		}
		logger.Info().Str("type", r.Type).Str("path", r.Path).Msg("validator written")
	}
	return results.Err()
}

// expandInputs turns paths, directories and URLs into sources. Directories
// contribute every declaration file below them in lexical order.
func expandInputs(inputs []string) ([]schema.Source, error) {
	var out []schema.Source
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if schema.IsURL(input) {
			src, err := schema.SourceFromURL(input)
			if err != nil {
				return nil, err
			}
			out = append(out, src)
			continue
		}
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, schema.SourceFromFile(input))
			continue
		}
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && decl.IsDeclarationFile(path) {
				out = append(out, schema.SourceFromFile(path))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
