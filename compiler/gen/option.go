package gen

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithOutputDir sets the directory of the generated type modules.
func WithOutputDir(dir string) Option {
	return func(c *Config) error {
		if strings.TrimSpace(dir) == "" {
			return NewConfigError("OutputDir", nil, "output directory cannot be empty")
		}
		c.OutputDir = filepath.Clean(dir)
		return nil
	}
}

// WithPackage sets the output package import path.
// For example: "github.com/org/project/schema".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = strings.TrimSuffix(pkg, "/")
		return nil
	}
}

// WithClient enables or disables client packages.
func WithClient(enabled bool) Option {
	return func(c *Config) error {
		c.GenerateClient = enabled
		return nil
	}
}

// WithValidators toggles runtime validators. Without them only the
// declarations are emitted.
func WithValidators(enabled bool) Option {
	return func(c *Config) error {
		c.Validators = enabled
		return nil
	}
}

// WithEnvNames overrides the connection variable names. Empty names keep
// their defaults.
func WithEnvNames(names EnvNames) Option {
	return func(c *Config) error {
		c.EnvNames = names.withDefaults()
		return nil
	}
}

// WithClientSuffix sets the suffix of the client/index.go exports.
func WithClientSuffix(suffix string) Option {
	return func(c *Config) error {
		if suffix != "" && Identifier(suffix) != suffix {
			return NewConfigError("ClientSuffix", suffix, "suffix must be a Go identifier starting with an upper case letter")
		}
		c.ClientSuffix = suffix
		return nil
	}
}

// WithClearOldFiles empties the output directory before writing.
func WithClearOldFiles(clear bool) Option {
	return func(c *Config) error {
		c.ClearOldFiles = clear
		return nil
	}
}

// WithHostScript makes generated clients call the named host script
// instead of the Data API.
func WithHostScript(script string) Option {
	return func(c *Config) error {
		c.HostScript = script
		return nil
	}
}

// WithConcurrency bounds the number of parallel fetches and writes.
func WithConcurrency(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Concurrency", n, "concurrency must be at least 1")
		}
		c.Concurrency = n
		return nil
	}
}

// WithClock sets the time source of the generated file stamp.
func WithClock(now func() time.Time) Option {
	return func(c *Config) error {
		if now == nil {
			return NewConfigError("Now", nil, "clock cannot be nil")
		}
		c.Now = now
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config from the defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := DefaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
