// Package config loads fmgen configuration files.
//
// A file holds one configuration or a list of them. Environment variables
// in the file are expanded before parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/fmgen/compiler"
	"github.com/syssam/fmgen/compiler/gen"
	"github.com/syssam/fmgen/compiler/load"
)

// DefaultPath is the configuration file read when none is named.
const DefaultPath = "fmschema.yaml"

// ErrNoConfig is returned when a file holds no configuration.
var ErrNoConfig = errors.New("config: no configuration found")

// Config is one generation run.
type Config struct {
	Schemas []Schema `yaml:"schemas"`
	// Path is the output directory.
	Path    string `yaml:"path,omitempty"`
	Package string `yaml:"package,omitempty"`
	// GenerateClient defaults to true.
	GenerateClient *bool `yaml:"generateClient,omitempty"`
	// Validators defaults to true.
	Validators    *bool         `yaml:"validators,omitempty"`
	EnvNames      EnvNames      `yaml:"envNames,omitempty"`
	ClientSuffix  string        `yaml:"clientSuffix,omitempty"`
	ClearOldFiles bool          `yaml:"clearOldFiles,omitempty"`
	HostScript    string        `yaml:"hostScript,omitempty"`
	Concurrency   int           `yaml:"concurrency,omitempty"`
	Cache         CacheConfig   `yaml:"cache,omitempty"`
	Logging       LoggingConfig `yaml:"logging,omitempty"`
}

// Schema requests the types of one layout.
type Schema struct {
	Layout         string `yaml:"layout"`
	SchemaName     string `yaml:"schemaName"`
	ValueLists     string `yaml:"valueLists,omitempty"`
	StrictNumbers  *bool  `yaml:"strictNumbers,omitempty"`
	GenerateClient *bool  `yaml:"generateClient,omitempty"`
}

// EnvNames overrides the names of the connection variables.
type EnvNames struct {
	Server   string  `yaml:"server,omitempty"`
	Database string  `yaml:"db,omitempty"`
	OttoPort string  `yaml:"ottoPort,omitempty"`
	Auth     AuthEnv `yaml:"auth,omitempty"`
}

// AuthEnv names either the API key variable or the account variables.
type AuthEnv struct {
	APIKey   string `yaml:"apiKey,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// CacheConfig enables the metadata snapshot cache when Dir is set.
type CacheConfig struct {
	Dir string        `yaml:"dir,omitempty"`
	TTL time.Duration `yaml:"ttl,omitempty"`
}

// LoggingConfig configures the run logger.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // console or json
}

// Load reads every configuration of a YAML file.
func Load(path string) ([]*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a mapping or a list of mappings.
func Parse(data []byte) ([]*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, ErrNoConfig
	}

	var cfgs []*Config
	switch root := doc.Content[0]; root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&cfgs); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case yaml.MappingNode:
		var cfg Config
		if err := root.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		cfgs = []*Config{&cfg}
	default:
		return nil, fmt.Errorf("parse config: want a mapping or a list, got %s", kindName(root.Kind))
	}
	if len(cfgs) == 0 {
		return nil, ErrNoConfig
	}

	for i, cfg := range cfgs {
		if cfg == nil {
			return nil, fmt.Errorf("validate config %d: empty entry", i)
		}
		setDefaults(cfg)
		if err := validate(cfg); err != nil {
			if len(cfgs) > 1 {
				return nil, fmt.Errorf("validate config %d: %w", i, err)
			}
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}
	return cfgs, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return fmt.Sprintf("node kind %d", k)
	}
}

func setDefaults(cfg *Config) {
	if cfg.Path == "" {
		cfg.Path = gen.DefaultOutputDir
	}
	if cfg.GenerateClient == nil {
		cfg.GenerateClient = ptr(true)
	}
	if cfg.Validators == nil {
		cfg.Validators = ptr(true)
	}
	if cfg.ClientSuffix == "" {
		cfg.ClientSuffix = gen.DefaultClientSuffix
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = gen.DefaultConcurrency
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	for i := range cfg.Schemas {
		if cfg.Schemas[i].ValueLists == "" {
			cfg.Schemas[i].ValueLists = string(load.PolicyIgnore)
		}
	}
}

func validate(cfg *Config) error {
	if len(cfg.Schemas) == 0 {
		return fmt.Errorf("schemas: at least one layout is required")
	}
	for i, s := range cfg.Schemas {
		if s.Layout == "" {
			return fmt.Errorf("schemas[%d].layout is required", i)
		}
		if s.SchemaName == "" {
			return fmt.Errorf("schemas[%d].schemaName is required", i)
		}
		if _, err := load.ParsePolicy(s.ValueLists); err != nil {
			return fmt.Errorf("schemas[%d].valueLists: %w", i, err)
		}
	}
	if cfg.Concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got %d", cfg.Concurrency)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	auth := cfg.EnvNames.Auth
	if auth.APIKey != "" && (auth.Username != "" || auth.Password != "") {
		return fmt.Errorf("envNames.auth: set apiKey or username and password, not both")
	}
	if (auth.Username == "") != (auth.Password == "") {
		return fmt.Errorf("envNames.auth: username and password must be set together")
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'console' or 'json', got %q", cfg.Logging.Format)
	}
	return nil
}

// GenOptions returns the generator options of the configuration.
func (c *Config) GenOptions() []gen.Option {
	opts := []gen.Option{
		gen.WithOutputDir(c.Path),
		gen.WithClient(c.GenerateClient == nil || *c.GenerateClient),
		gen.WithValidators(c.Validators == nil || *c.Validators),
		gen.WithEnvNames(gen.EnvNames{
			Server:   c.EnvNames.Server,
			Database: c.EnvNames.Database,
			APIKey:   c.EnvNames.Auth.APIKey,
			OttoPort: c.EnvNames.OttoPort,
			Username: c.EnvNames.Auth.Username,
			Password: c.EnvNames.Auth.Password,
		}),
		gen.WithClearOldFiles(c.ClearOldFiles),
	}
	if c.Package != "" {
		opts = append(opts, gen.WithPackage(c.Package))
	}
	if c.ClientSuffix != "" {
		opts = append(opts, gen.WithClientSuffix(c.ClientSuffix))
	}
	if c.HostScript != "" {
		opts = append(opts, gen.WithHostScript(c.HostScript))
	}
	if c.Concurrency > 0 {
		opts = append(opts, gen.WithConcurrency(c.Concurrency))
	}
	return opts
}

// GenConfig builds the generator configuration.
func (c *Config) GenConfig(extra ...gen.Option) (*gen.Config, error) {
	return gen.NewConfig(append(c.GenOptions(), extra...)...)
}

// Requests returns one compiler request per schema, in file order.
func (c *Config) Requests() []compiler.Request {
	reqs := make([]compiler.Request, 0, len(c.Schemas))
	for _, s := range c.Schemas {
		reqs = append(reqs, compiler.Request{
			Layout:         s.Layout,
			SchemaName:     s.SchemaName,
			ValueLists:     load.ValueListPolicy(s.ValueLists),
			StrictNumbers:  s.StrictNumbers,
			GenerateClient: s.GenerateClient,
		})
	}
	return reqs
}

func ptr[T any](v T) *T { return &v }
