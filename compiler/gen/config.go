package gen

import (
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultOutputDir    = "schema"
	DefaultClientSuffix = "Client"
	DefaultConcurrency  = 4
	DefaultHeader       = "Code generated by fmgen. DO NOT EDIT."
)

// Default environment variable names.
const (
	EnvServer   = "FM_SERVER"
	EnvDatabase = "FM_DATABASE"
	EnvAPIKey   = "OTTO_API_KEY"
	EnvOttoPort = "OTTO_PORT"
	EnvUsername = "FM_USERNAME"
	EnvPassword = "FM_PASSWORD"
)

// EnvNames names the environment variables holding connection settings.
// Empty fields fall back to the defaults.
type EnvNames struct {
	Server   string `yaml:"server,omitempty" json:"server,omitempty"`
	Database string `yaml:"db,omitempty" json:"db,omitempty"`
	APIKey   string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
	OttoPort string `yaml:"ottoPort,omitempty" json:"ottoPort,omitempty"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
}

// DefaultEnvNames returns the default variable names.
func DefaultEnvNames() EnvNames {
	return EnvNames{
		Server:   EnvServer,
		Database: EnvDatabase,
		APIKey:   EnvAPIKey,
		OttoPort: EnvOttoPort,
		Username: EnvUsername,
		Password: EnvPassword,
	}
}

// withDefaults fills empty names with the defaults.
func (n EnvNames) withDefaults() EnvNames {
	d := DefaultEnvNames()
	for _, p := range []struct{ v, d *string }{
		{&n.Server, &d.Server},
		{&n.Database, &d.Database},
		{&n.APIKey, &d.APIKey},
		{&n.OttoPort, &d.OttoPort},
		{&n.Username, &d.Username},
		{&n.Password, &d.Password},
	} {
		if *p.v == "" {
			*p.v = *p.d
		}
	}
	return n
}

// Config holds the generation options shared by every layout of a run.
type Config struct {
	// OutputDir is the directory of the type modules. The client packages
	// live in its "client" subdirectory.
	OutputDir string
	// Package is the import path of OutputDir. Required for client generation.
	Package string
	// GenerateClient enables client packages unless a request overrides it.
	GenerateClient bool
	// Validators emits runtime validators next to the declarations.
	Validators bool
	// EnvNames names the connection variables.
	EnvNames EnvNames
	// ClientSuffix is appended to schema names in client/index.go.
	ClientSuffix string
	// ClearOldFiles empties OutputDir before writing.
	ClearOldFiles bool
	// HostScript switches generated clients to the host adapter.
	HostScript string
	// Concurrency bounds parallel metadata fetches and file writes.
	Concurrency int
	// Header is the first comment line of every generated file.
	Header string
	// Now stamps generated files. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns a config with every default applied.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:      DefaultOutputDir,
		GenerateClient: true,
		Validators:     true,
		EnvNames:       DefaultEnvNames(),
		ClientSuffix:   DefaultClientSuffix,
		Concurrency:    DefaultConcurrency,
		Header:         DefaultHeader,
		Now:            time.Now,
	}
}

// Mode returns the emission mode selected by the config.
func (c *Config) Mode() Mode {
	if c.Validators {
		return ModeValidators
	}
	return ModeTypes
}

// PackageName returns the Go package name of the type modules.
func (c *Config) PackageName() string {
	return PackageName(filepath.Base(filepath.Clean(c.OutputDir)))
}

// ClientPackage returns the import path of the client package of a schema,
// or of the client index when pkg is empty.
func (c *Config) ClientPackage(pkg string) string {
	if c.Package == "" {
		return ""
	}
	if pkg == "" {
		return c.Package + "/" + ClientDir
	}
	return c.Package + "/" + ClientDir + "/" + pkg
}

// Credentials returns the credential shape of generated clients. apiKey
// reports whether the generator itself authenticated with an API key.
func (c *Config) Credentials(apiKey bool) CredentialShape {
	names := c.EnvNames.withDefaults()
	switch {
	case c.HostScript != "":
		return HostAuth{ScriptName: c.HostScript}
	case apiKey:
		return KeyAuth{ServerEnv: names.Server, DatabaseEnv: names.Database, APIKeyEnv: names.APIKey}
	default:
		return PasswordAuth{ServerEnv: names.Server, DatabaseEnv: names.Database, UsernameEnv: names.Username, PasswordEnv: names.Password}
	}
}

func (c *Config) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
