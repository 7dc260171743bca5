package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// Project collects the files of one run and writes them in Save. Nothing
// touches the disk before Save, Clear or RemoveIndex.
type Project struct {
	dir     string
	workers int

	mu      sync.Mutex
	files   map[string]*jen.File
	clients []*ClientModule
	metrics *WriterMetrics
}

// WriterMetrics tracks the files written by Save.
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
}

// NewProject returns an empty project rooted at cfg.OutputDir.
func NewProject(cfg *Config) *Project {
	workers := cfg.Concurrency
	if workers < 1 {
		workers = DefaultConcurrency
	}
	return &Project{
		dir:     cfg.OutputDir,
		workers: workers,
		files:   make(map[string]*jen.File),
		metrics: &WriterMetrics{},
	}
}

// Dir returns the output directory.
func (p *Project) Dir() string { return p.dir }

// Metrics returns the metrics of the last Save.
func (p *Project) Metrics() WriterMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *p.metrics
}

// AddFile adds a file at a path relative to the output directory.
func (p *Project) AddFile(name string, f *jen.File) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	name = filepath.ToSlash(filepath.Clean(name))
	if _, ok := p.files[name]; ok {
		return NewGenerationError("plan", name, "file added twice", nil)
	}
	p.files[name] = f
	return nil
}

// Register adds the file of a client package and records the client for
// the index.
func (p *Project) Register(c *ClientModule) error {
	if err := p.AddFile(c.Path, c.File); err != nil {
		return err
	}
	p.mu.Lock()
	p.clients = append(p.clients, c)
	p.mu.Unlock()
	return nil
}

// Clients returns the registered clients in registration order.
func (p *Project) Clients() []*ClientModule {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*ClientModule(nil), p.clients...)
}

// Files returns the relative paths of all files, sorted.
func (p *Project) Files() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.files))
	for name := range p.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source renders and formats one file without writing it.
func (p *Project) Source(name string) ([]byte, error) {
	p.mu.Lock()
	f, ok := p.files[name]
	p.mu.Unlock()
	if !ok {
		return nil, NewGenerationError("render", name, "no such file", nil)
	}
	src, _, err := p.format(name, f)
	return src, err
}

// Clear removes every entry of the output directory.
func (p *Project) Clear() error {
	entries, err := os.ReadDir(p.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return NewGenerationError("clear", p.dir, "read output directory", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(p.dir, e.Name())); err != nil {
			return NewGenerationError("clear", e.Name(), "remove", err)
		}
	}
	return nil
}

// RemoveIndex deletes a client index left by an earlier run.
func (p *Project) RemoveIndex() error {
	err := os.Remove(filepath.Join(p.dir, filepath.FromSlash(IndexPath)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NewGenerationError("clear", IndexPath, "remove stale index", err)
	}
	return nil
}

// Save formats and writes every file in parallel.
func (p *Project) Save(ctx context.Context) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return NewGenerationError("write", p.dir, "create output directory", err)
	}
	p.mu.Lock()
	*p.metrics = WriterMetrics{}
	p.mu.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)
	for _, name := range p.Files() {
		p.mu.Lock()
		f := p.files[name]
		p.mu.Unlock()
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return p.writeFile(name, f)
			}
		})
	}
	return eg.Wait()
}

func (p *Project) format(name string, f *jen.File) ([]byte, []byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, buf.Bytes(), NewGenerationError("render", name, "", err)
	}
	fullPath := filepath.Join(p.dir, filepath.FromSlash(name))
	formatted, err := imports.Process(fullPath, buf.Bytes(), nil)
	if err != nil {
		return nil, buf.Bytes(), NewGenerationError("format", name, "", err)
	}
	return formatted, nil, nil
}

func (p *Project) writeFile(name string, f *jen.File) error {
	fullPath := filepath.Join(p.dir, filepath.FromSlash(name))
	formatted, raw, err := p.format(name, f)
	if err != nil {
		if raw != nil {
			// Unformatted source for debugging; write errors are dropped.
			debugPath := fullPath + ".error"
			_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
			_ = os.WriteFile(debugPath, raw, 0o644)
			return fmt.Errorf("%w (unformatted written to %s)", err, debugPath)
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return NewGenerationError("write", name, "create directory", err)
	}
	if err := os.WriteFile(fullPath, formatted, 0o644); err != nil {
		return NewGenerationError("write", name, "", err)
	}
	p.mu.Lock()
	p.metrics.FilesGenerated++
	p.metrics.TotalBytes += int64(len(formatted))
	p.mu.Unlock()
	return nil
}
