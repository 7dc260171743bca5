// Package compiler runs a generation: it resolves credentials, fetches the
// metadata of every requested layout, reduces it, emits type and client
// modules and saves them.
package compiler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/fmgen/compiler/gen"
	"github.com/syssam/fmgen/compiler/load"
	"github.com/syssam/fmgen/fmdapi"
	"github.com/syssam/fmgen/internal/metacache"
)

// Env looks up an environment variable. os.LookupEnv satisfies it.
type Env func(name string) (string, bool)

// Request asks for the schema of one layout. Nil pointers fall back to
// the run configuration.
type Request struct {
	Layout         string
	SchemaName     string
	ValueLists     load.ValueListPolicy
	StrictNumbers  *bool
	GenerateClient *bool
}

// Credentials are the resolved connection settings of a run.
type Credentials struct {
	Server   string
	Database string
	APIKey   string
	OttoPort int
	Username string
	Password string
}

// HasAPIKey reports whether the run authenticates with an Otto key.
func (c Credentials) HasAPIKey() bool { return c.APIKey != "" }

// Scope identifies the server and database, used as a cache namespace.
func (c Credentials) Scope() string { return c.Server + "/" + c.Database }

// FetcherFactory builds the metadata fetcher of a run.
type FetcherFactory func(Credentials) (load.Fetcher, error)

// Skip records a layout left out of a run.
type Skip struct {
	Layout string
	Reason string
}

// Result summarises a run.
type Result struct {
	RunID string
	// Generated lists the schema names that were emitted, in request order.
	Generated []string
	Skipped   []Skip
	Warnings  []*gen.EmissionError
	// Files lists the written paths relative to the output directory.
	Files []string
}

// Compiler runs generations for one configuration.
type Compiler struct {
	cfg     *gen.Config
	env     Env
	factory FetcherFactory
	cache   *metacache.Cache
	log     zerolog.Logger
	newID   func() string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithEnv sets the environment lookup. The default reports every
// variable as unset.
func WithEnv(env Env) Option {
	return func(c *Compiler) { c.env = env }
}

// WithFetcherFactory replaces the Data API fetcher.
func WithFetcherFactory(f FetcherFactory) Option {
	return func(c *Compiler) { c.factory = f }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Compiler) { c.log = l }
}

// WithCache serves metadata from a snapshot cache.
func WithCache(cache *metacache.Cache) Option {
	return func(c *Compiler) { c.cache = cache }
}

// WithRunID sets the run identifier source.
func WithRunID(f func() string) Option {
	return func(c *Compiler) { c.newID = f }
}

// New returns a compiler for cfg.
func New(cfg *gen.Config, opts ...Option) *Compiler {
	c := &Compiler{
		cfg:     cfg,
		env:     func(string) (string, bool) { return "", false },
		factory: DefaultFetcher,
		log:     zerolog.Nop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultFetcher connects to the Data API with an Otto key when one is set
// and with a FileMaker account otherwise.
func DefaultFetcher(c Credentials) (load.Fetcher, error) {
	base := fmdapi.BaseOptions{Server: c.Server, Database: c.Database}
	if c.HasAPIKey() {
		return fmdapi.NewOttoAdapter(fmdapi.OttoOptions{BaseOptions: base, APIKey: fmdapi.OttoAPIKey(c.APIKey), Port: c.OttoPort})
	}
	return fmdapi.NewFetchAdapter(fmdapi.FetchOptions{BaseOptions: base, Username: c.Username, Password: c.Password})
}

func (c *Compiler) lookup(name string) string {
	v, ok := c.env(name)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Resolve reads the connection settings. The API key wins over the
// account; every missing name is reported in one *gen.ConfigError.
func (c *Compiler) Resolve() (Credentials, error) {
	names := c.cfg.EnvNames
	defaults := gen.DefaultEnvNames()
	pick := func(name, def string) string {
		if name == "" {
			return def
		}
		return name
	}
	serverEnv := pick(names.Server, defaults.Server)
	dbEnv := pick(names.Database, defaults.Database)
	keyEnv := pick(names.APIKey, defaults.APIKey)
	userEnv := pick(names.Username, defaults.Username)
	passEnv := pick(names.Password, defaults.Password)

	creds := Credentials{
		Server:   c.lookup(serverEnv),
		Database: c.lookup(dbEnv),
		APIKey:   c.lookup(keyEnv),
		Username: c.lookup(userEnv),
		Password: c.lookup(passEnv),
	}
	if port := c.lookup(pick(names.OttoPort, defaults.OttoPort)); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 {
			return creds, gen.NewConfigError("EnvNames.OttoPort", port, "port must be a positive integer")
		}
		creds.OttoPort = n
	}

	var missing []string
	if creds.Server == "" {
		missing = append(missing, serverEnv)
	}
	if creds.Database == "" {
		missing = append(missing, dbEnv)
	}
	if !creds.HasAPIKey() && (creds.Username == "" || creds.Password == "") {
		missing = append(missing, fmt.Sprintf("%s (or %s and %s)", keyEnv, userEnv, passEnv))
	}
	if len(missing) > 0 {
		return creds, gen.NewMissingEnvError(missing...)
	}
	return creds, nil
}

func validate(reqs []Request) error {
	if len(reqs) == 0 {
		return gen.NewConfigError("Schemas", nil, "no layouts requested")
	}
	seen := make(map[string]bool, len(reqs))
	for i, r := range reqs {
		if r.Layout == "" {
			return gen.NewConfigError(fmt.Sprintf("Schemas[%d].Layout", i), nil, "layout is required")
		}
		if r.SchemaName == "" {
			return gen.NewConfigError(fmt.Sprintf("Schemas[%d].SchemaName", i), nil, "schema name is required")
		}
		if _, err := load.ParsePolicy(string(r.ValueLists)); err != nil {
			return gen.NewConfigError(fmt.Sprintf("Schemas[%d].ValueLists", i), r.ValueLists, err.Error())
		}
		file := gen.FileName(r.SchemaName)
		if seen[file] {
			return gen.NewConfigError(fmt.Sprintf("Schemas[%d].SchemaName", i), r.SchemaName, "schema name used twice")
		}
		seen[file] = true
	}
	return nil
}

func (c *Compiler) wantsClient(r Request) bool {
	if r.GenerateClient != nil {
		return *r.GenerateClient
	}
	return c.cfg.GenerateClient
}

// fetched is the outcome of one metadata fetch.
type fetched struct {
	meta *fmdapi.LayoutMetadata
	skip error
}

// Generate runs one generation. Configuration problems fail before any
// fetch and leave the output directory untouched. A missing layout is
// skipped; any other fetch failure aborts the run before anything is
// written.
func (c *Compiler) Generate(ctx context.Context, reqs []Request) (*Result, error) {
	res := &Result{RunID: c.newID()}
	log := c.log.With().Str("run_id", res.RunID).Logger()

	if err := validate(reqs); err != nil {
		return nil, err
	}
	creds, err := c.Resolve()
	if err != nil {
		return nil, err
	}
	cfg := *c.cfg
	for _, r := range reqs {
		if c.wantsClient(r) && cfg.Package == "" {
			pkg, err := ModulePackage(cfg.OutputDir)
			if err != nil {
				return nil, gen.NewConfigError("Package", nil, err.Error())
			}
			cfg.Package = pkg
			break
		}
	}

	fetcher, err := c.factory(creds)
	if err != nil {
		return nil, gen.NewConfigError("Credentials", nil, err.Error())
	}
	if d, ok := fetcher.(interface{ Disconnect(context.Context) error }); ok {
		defer func() {
			if err := d.Disconnect(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("close data api session")
			}
		}()
	}
	if c.cache != nil {
		fetcher = c.cache.Wrap(fetcher, creds.Scope())
	}

	log.Info().Int("layouts", len(reqs)).Str("server", creds.Server).Str("database", creds.Database).Msg("fetching layout metadata")
	results, err := c.fetchAll(ctx, fetcher, reqs)
	if err != nil {
		return nil, err
	}

	project := gen.NewProject(&cfg)
	if cfg.ClearOldFiles {
		if err := project.Clear(); err != nil {
			return nil, err
		}
	}
	if err := project.RemoveIndex(); err != nil {
		return nil, err
	}

	types := gen.NewTypeEmitter(&cfg)
	clients := gen.NewClientEmitter(&cfg)
	shape := cfg.Credentials(creds.HasAPIKey())
	for i, r := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rlog := log.With().Str("layout", r.Layout).Str("schema", r.SchemaName).Logger()
		if skip := results[i].skip; skip != nil {
			rlog.Warn().Err(skip).Msg("layout not found, skipping")
			res.Skipped = append(res.Skipped, Skip{Layout: r.Layout, Reason: skip.Error()})
			continue
		}
		layout := load.ReduceLayout(r.Layout, results[i].meta, r.ValueLists)
		m, err := types.Emit(gen.BuildSchemaArgs{
			SchemaName:    r.SchemaName,
			Layout:        layout,
			StrictNumbers: r.StrictNumbers != nil && *r.StrictNumbers,
		})
		if err != nil {
			return nil, err
		}
		for _, w := range m.Plan.Warnings {
			rlog.Warn().Str("field", w.Field).Msg(w.Message)
		}
		res.Warnings = append(res.Warnings, m.Plan.Warnings...)
		if err := project.AddFile(m.Plan.File, m.File); err != nil {
			return nil, err
		}
		if c.wantsClient(r) {
			cm, err := clients.Emit(r.Layout, m.Plan.Symbols, shape)
			if err != nil {
				return nil, err
			}
			if err := project.Register(cm); err != nil {
				return nil, err
			}
		}
		res.Generated = append(res.Generated, r.SchemaName)
		rlog.Debug().Int("fields", len(layout.Fields)).Int("portals", len(layout.Relations)).Msg("schema emitted")
	}
	if index := clients.Index(project.Clients()); index != nil {
		if err := project.AddFile(gen.IndexPath, index); err != nil {
			return nil, err
		}
	}

	if err := project.Save(ctx); err != nil {
		return nil, err
	}
	res.Files = project.Files()
	log.Info().
		Int("generated", len(res.Generated)).
		Int("skipped", len(res.Skipped)).
		Int("files", len(res.Files)).
		Str("dir", cfg.OutputDir).
		Msg("generation complete")
	return res, nil
}

// fetchAll fetches every layout on a bounded pool. Results keep request
// order. The first error other than a missing layout cancels the rest.
func (c *Compiler) fetchAll(ctx context.Context, f load.Fetcher, reqs []Request) ([]fetched, error) {
	results := make([]fetched, len(reqs))
	limit := c.cfg.Concurrency
	if limit < 1 {
		limit = gen.DefaultConcurrency
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, r := range reqs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			meta, err := load.Fetch(ctx, f, r.Layout)
			switch {
			case load.IsNotFound(err):
				results[i].skip = err
			case err != nil:
				return err
			default:
				results[i].meta = meta
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
