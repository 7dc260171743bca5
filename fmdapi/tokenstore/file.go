package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFileName is the file used by NewFile when no name is given.
const DefaultFileName = "shared.json"

// File keeps tokens in a JSON object on disk.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a store backed by path. The file is created on first write.
func NewFile(path string) *File {
	if path == "" {
		path = DefaultFileName
	}
	return &File{path: path}
}

func (f *File) load() (map[string]string, error) {
	data := map[string]string{}
	buf, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tokenstore: read %s: %w", f.path, err)
	}
	// A corrupt file is treated as empty and overwritten on the next write.
	if err := json.Unmarshal(buf, &data); err != nil {
		return map[string]string{}, nil
	}
	return data, nil
}

func (f *File) save(data map[string]string) error {
	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("tokenstore: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(f.path, buf, 0o600); err != nil {
		return fmt.Errorf("tokenstore: write %s: %w", f.path, err)
	}
	return nil
}

// Token implements fmdapi.TokenStore.
func (f *File) Token(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return "", err
	}
	return data[key], nil
}

// SetToken implements fmdapi.TokenStore.
func (f *File) SetToken(_ context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	data[key] = token
	return f.save(data)
}

// ClearToken implements fmdapi.TokenStore.
func (f *File) ClearToken(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.save(data)
}
