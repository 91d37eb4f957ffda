package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-validgen/internal/assemble"
	"github.com/goliatone/go-validgen/internal/extract"
	internalLoader "github.com/goliatone/go-validgen/internal/loader"
	internalParser "github.com/goliatone/go-validgen/internal/openapi/parser"
	"github.com/goliatone/go-validgen/internal/resolve"
	"github.com/goliatone/go-validgen/pkg/codegen"
	"github.com/goliatone/go-validgen/pkg/codegen/golang"
	"github.com/goliatone/go-validgen/pkg/decl"
	"github.com/goliatone/go-validgen/pkg/extension"
	"github.com/goliatone/go-validgen/pkg/extension/builtin"
	"github.com/goliatone/go-validgen/pkg/jsonschema"
	"github.com/goliatone/go-validgen/pkg/model"
	pkgopenapi "github.com/goliatone/go-validgen/pkg/openapi"
	"github.com/goliatone/go-validgen/pkg/render"
	"github.com/goliatone/go-validgen/pkg/schema"
)

const (
	defaultBackendName = golang.Name
	defaultAdapterName = schema.DeclarationsAdapterName
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom source loader.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithAdapterRegistry replaces the format adapter registry. The built-in
// declaration and OpenAPI adapters are only registered when none is given.
func WithAdapterRegistry(registry *AdapterRegistry) Option {
	return func(o *Orchestrator) {
		o.adapterRegistry = registry
	}
}

// WithDefaultAdapter names the adapter used when format detection finds no
// match.
func WithDefaultAdapter(name string) Option {
	return func(o *Orchestrator) {
		o.defaultAdapter = normalizeAdapterName(name)
	}
}

// WithExtensions injects the extension registry. It is sealed by the first
// GenerateAll call.
func WithExtensions(registry *extension.Registry) Option {
	return func(o *Orchestrator) {
		o.extensions = registry
	}
}

// WithRules replaces the strategy resolution chain.
func WithRules(rules ...resolve.Rule) Option {
	return func(o *Orchestrator) {
		if len(rules) > 0 {
			o.resolver = resolve.New(rules...)
		}
	}
}

// WithBackends injects a back-end registry.
func WithBackends(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.backends = registry
	}
}

// WithDefaultBackend overrides the back-end used when a request omits an
// explicit Backend field.
func WithDefaultBackend(name string) Option {
	return func(o *Orchestrator) {
		o.defaultBackend = strings.TrimSpace(name)
	}
}

// WithWriter persists rendered validators. Without a writer results carry the
// rendered source only.
func WithWriter(writer Writer) Option {
	return func(o *Orchestrator) {
		o.writer = writer
	}
}

// WithSink receives every diagnostic as runs produce them.
func WithSink(sink model.Sink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

// WithLogger sets the logger used for run progress.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithWorkers bounds the number of concurrent runs. Values below one use
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		o.workers = n
	}
}

// WithRuntimePaths sets the import paths of the runtime packages emitted code
// targets.
func WithRuntimePaths(runtimePath, typesPath string) Option {
	return func(o *Orchestrator) {
		o.runtimePath = runtimePath
		o.typesPath = typesPath
	}
}

// WithHeader replaces the comment emitted at the top of generated files.
func WithHeader(header string) Option {
	return func(o *Orchestrator) {
		o.header = &header
	}
}

// WithSchemaTransformer registers a Transformer that can rewrite declarations
// after loading but before any run starts.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// Orchestrator coordinates the full pipeline from declaration source to
// persisted validators. It applies sensible defaults (declaration and OpenAPI
// adapters, stock extensions, Go back-end) while remaining open to dependency
// injection for advanced callers.
type Orchestrator struct {
	loader          schema.Loader
	adapterRegistry *AdapterRegistry
	defaultAdapter  string
	extensions      *extension.Registry
	resolver        *resolve.Resolver
	backends        *render.Registry
	defaultBackend  string
	writer          Writer
	sink            model.Sink
	logger          zerolog.Logger
	workers         int
	runtimePath     string
	typesPath       string
	header          *string
	transformer     Transformer
	overrides       map[string][]ValidatorOverride
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations so callers
// can start with a single constructor call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultAdapter: defaultAdapterName,
		defaultBackend: defaultBackendName,
		logger:         zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one generation: where declarations come from and which
// types to synthesise.
type Request struct {
	// Source identifies where the document lives. Optional when Document or
	// Declarations is supplied.
	Source schema.Source

	// Document bypasses the loader when callers already hold the payload.
	Document *schema.Document

	// Declarations bypasses loading and format adapters entirely.
	Declarations *decl.Document

	// Format names the adapter to use. When empty the adapter is detected from
	// the payload.
	Format string

	// Package overrides the generated package name.
	Package string

	// Types restricts generation to the named types.
	Types []string

	// Backend names the back-end to render with. If empty, the orchestrator
	// falls back to the configured default back-end.
	Backend string
}

// Load resolves the request into a declaration document without generating
// anything.
func (o *Orchestrator) Load(ctx context.Context, req Request) (decl.Document, error) {
	if ctx == nil {
		return decl.Document{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return decl.Document{}, err
	}
	if err := o.initialiseErr; err != nil {
		return decl.Document{}, err
	}

	var doc decl.Document
	if req.Declarations != nil {
		doc = *req.Declarations
		if pkg := strings.TrimSpace(req.Package); pkg != "" {
			doc.Package = pkg
		}
		doc = schema.FilterTypes(doc, req.Types)
	} else {
		adapter, raw, err := o.resolveAdapter(ctx, req)
		if err != nil {
			return decl.Document{}, err
		}
		doc, err = adapter.Normalize(ctx, raw, schema.NormalizeOptions{Package: req.Package, Types: req.Types})
		if err != nil {
			return decl.Document{}, fmt.Errorf("orchestrator: normalize %s document: %w", adapter.Name(), err)
		}
	}

	o.applyOverrides(&doc)
	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, &doc); err != nil {
			return decl.Document{}, fmt.Errorf("orchestrator: transform declarations: %w", err)
		}
	}
	return doc, nil
}

// Generate loads the request's declarations and runs GenerateAll over them
// with the requested back-end.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Results, error) {
	doc, err := o.Load(ctx, req)
	if err != nil {
		return nil, err
	}
	return o.generateAll(ctx, doc, req.Backend)
}

// GenerateAll synthesises, renders and persists a validator for every type in
// doc using the default back-end. Runs execute concurrently; a failing run
// never affects another. The returned error is reserved for problems that
// prevent any run from starting.
func (o *Orchestrator) GenerateAll(ctx context.Context, doc decl.Document) (Results, error) {
	return o.generateAll(ctx, doc, "")
}

func (o *Orchestrator) generateAll(ctx context.Context, doc decl.Document, backendName string) (Results, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Package) == "" {
		return nil, errors.New("orchestrator: declarations have no package")
	}
	backend, err := o.backendFor(backendName)
	if err != nil {
		return nil, err
	}

	o.extensions.Seal()
	pipeline := o.extensions.Pipeline()

	results := make(Results, len(doc.Types))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workerCount())
	for i, t := range doc.Types {
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Type: t.Name, Err: err}
				return nil
			}
			results[i] = o.run(gctx, doc, t, pipeline, backend)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Synthesize runs extraction, strategy resolution and assembly for one type.
// Configuration problems are returned as diagnostics next to the validator;
// the error reports an artifact that could not be assembled at all.
func (o *Orchestrator) Synthesize(doc decl.Document, t decl.TypeDecl) (*model.GeneratedValidator, model.Diagnostics, error) {
	if err := o.initialiseErr; err != nil {
		return nil, nil, err
	}
	o.extensions.Seal()
	return o.synthesize(doc, t, o.extensions.Pipeline())
}

func (o *Orchestrator) synthesize(doc decl.Document, t decl.TypeDecl, pipeline *extension.Pipeline) (*model.GeneratedValidator, model.Diagnostics, error) {
	extracted := extract.Properties(doc, t)
	diags := append(model.Diagnostics(nil), extracted.Diagnostics...)

	asm := assemble.New(doc.Package, t, o.assembleOptions(doc, pipeline)...)
	rctx := resolve.Context{
		TypeName:   t.Name,
		TypeParams: t.TypeParamNames(),
		Markers:    doc.Markers.Model(),
	}
	for _, p := range extracted.Properties {
		strategy, err := o.resolver.Resolve(rctx, p)
		if err == nil {
			err = asm.Add(p, strategy)
		}
		if err == nil {
			continue
		}
		diags = append(diags, model.Errorf(t.Name, p.Name, "%s", err.Error()))
		if err := asm.Skip(p, err.Error()); err != nil {
			return nil, diags, err
		}
	}

	gv, err := asm.Finish()
	if err != nil {
		return nil, diags, err
	}
	return gv, diags, nil
}

func (o *Orchestrator) run(ctx context.Context, doc decl.Document, t decl.TypeDecl, pipeline *extension.Pipeline, backend codegen.Backend) Result {
	res := Result{Type: t.Name}
	logger := o.logger.With().Str("type", t.Name).Logger()

	gv, diags, err := o.synthesize(doc, t, pipeline)
	res.Validator = gv
	res.Diagnostics = diags
	for _, d := range diags {
		if o.sink != nil {
			o.sink.Report(d)
		}
	}
	if err != nil {
		res.Err = fmt.Errorf("orchestrator: assemble %s: %w", t.Name, err)
		logger.Error().Err(res.Err).Msg("synthesis failed")
		return res
	}

	src, err := backend.Render(gv.File)
	if err != nil {
		res.Err = fmt.Errorf("orchestrator: render %s: %w", t.Name, err)
		logger.Error().Err(res.Err).Msg("render failed")
		return res
	}
	res.Source = src

	if o.writer != nil {
		path, err := o.writer.Write(ctx, t.Name, src)
		if err != nil {
			res.Err = fmt.Errorf("orchestrator: write %s: %w", t.Name, err)
			logger.Error().Err(res.Err).Msg("write failed")
			return res
		}
		res.Path = path
	}

	logger.Debug().
		Int("fields", len(gv.Fields)).
		Int("skipped", len(gv.Skipped)).
		Int("diagnostics", len(diags)).
		Str("path", res.Path).
		Msg("validator generated")
	return res
}

func (o *Orchestrator) assembleOptions(doc decl.Document, pipeline *extension.Pipeline) []assemble.Option {
	opts := []assemble.Option{
		assemble.WithPipeline(pipeline),
		assemble.WithImportResolver(doc.ImportPath),
		assemble.WithRuntimePaths(o.runtimePath, o.typesPath),
	}
	if o.header != nil {
		opts = append(opts, assemble.WithHeader(*o.header))
	}
	return opts
}

func (o *Orchestrator) backendFor(name string) (codegen.Backend, error) {
	if o.backends == nil {
		return nil, errors.New("orchestrator: backend registry is nil")
	}

	target := strings.TrimSpace(name)
	if target == "" {
		target = o.defaultBackend
	}

	if target != "" {
		backend, err := o.backends.Get(target)
		if err == nil {
			return backend, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: backend %q: %w", name, err)
		}
	}

	names := o.backends.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no backends registered")
	}
	backend, err := o.backends.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: backend %q: %w", names[0], err)
	}
	return backend, nil
}

func (o *Orchestrator) workerCount() int {
	if o.workers > 0 {
		return o.workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = internalLoader.New(schema.NewLoaderOptions())
	}
	if o.adapterRegistry == nil {
		o.adapterRegistry = NewAdapterRegistry()
		o.adapterRegistry.MustRegister(schema.DeclarationsAdapter{})
		openapiParser := internalParser.New(pkgopenapi.NewParserOptions())
		o.adapterRegistry.MustRegister(pkgopenapi.NewAdapter(openapiParser))
		o.adapterRegistry.MustRegister(jsonschema.NewAdapter(openapiParser))
	}
	if o.extensions == nil {
		o.extensions = extension.NewRegistry()
		if err := builtin.Register(o.extensions); err != nil {
			o.initialiseErr = appendInitialiseError(o.initialiseErr, fmt.Errorf("orchestrator: builtin extensions: %w", err))
		}
	}
	if o.resolver == nil {
		o.resolver = resolve.New()
	}
	if o.backends == nil {
		o.backends = render.NewRegistry()
		backend, err := golang.New()
		if err != nil {
			o.initialiseErr = appendInitialiseError(o.initialiseErr, fmt.Errorf("orchestrator: default backend: %w", err))
		} else {
			o.backends.MustRegister(backend)
		}
	}
	if o.defaultBackend == "" {
		o.defaultBackend = defaultBackendName
	}
}

func appendInitialiseError(existing, next error) error {
	if existing == nil {
		return next
	}
	return errors.Join(existing, next)
}
