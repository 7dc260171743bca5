package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/fmgen/compiler/gen"
	"github.com/syssam/fmgen/compiler/load"
)

// StubOptions are the answers of fmgen init.
type StubOptions struct {
	Layout     string
	SchemaName string
	Path       string
	// UseAccount names FileMaker account variables instead of an API key.
	UseAccount bool
}

// DefaultStubOptions returns the answers used by fmgen init --yes.
func DefaultStubOptions() StubOptions {
	return StubOptions{
		Layout:     "API_Customers",
		SchemaName: "Customer",
		Path:       gen.DefaultOutputDir,
	}
}

// Stub renders a starter configuration.
func Stub(opts StubOptions) ([]byte, error) {
	d := DefaultStubOptions()
	if opts.Layout == "" {
		opts.Layout = d.Layout
	}
	if opts.SchemaName == "" {
		opts.SchemaName = d.SchemaName
	}
	if opts.Path == "" {
		opts.Path = d.Path
	}

	cfg := Config{
		Schemas: []Schema{{
			Layout:     opts.Layout,
			SchemaName: opts.SchemaName,
			ValueLists: string(load.PolicyStrict),
		}},
		Path:          opts.Path,
		ClearOldFiles: true,
	}
	if opts.UseAccount {
		cfg.EnvNames.Auth = AuthEnv{Username: gen.EnvUsername, Password: gen.EnvPassword}
	} else {
		cfg.EnvNames.Auth = AuthEnv{APIKey: gen.EnvAPIKey}
	}

	var buf bytes.Buffer
	buf.WriteString("# fmgen configuration. Connection settings are read from the environment.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return nil, fmt.Errorf("encode stub: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode stub: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteStub writes a starter configuration to path. An existing file is
// kept unless overwrite is set, and fs.ErrExist is returned.
func WriteStub(path string, opts StubOptions, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("write stub %s: %w", path, fs.ErrExist)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("write stub: %w", err)
		}
	}
	data, err := Stub(opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write stub: %w", err)
	}
	return nil
}
