// Package metacache keeps layout metadata snapshots on disk so repeated
// generator runs within a TTL do not hit the server.
package metacache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/fmgen/compiler/load"
	"github.com/syssam/fmgen/fmdapi"
)

// DefaultTTL is the snapshot lifetime used when none is configured.
const DefaultTTL = 10 * time.Minute

const ext = ".msgpack"

// Cache stores metadata snapshots as msgpack files in a directory.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns a cache rooted at dir, creating it if needed. A ttl of zero
// selects DefaultTTL.
func New(dir string, ttl time.Duration, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("metacache: directory is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("metacache: create directory: %w", err)
	}
	c := &Cache{dir: dir, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type entry struct {
	Stored time.Time              `msgpack:"stored"`
	Layout string                 `msgpack:"layout"`
	Meta   *fmdapi.LayoutMetadata `msgpack:"meta"`
}

func (c *Cache) path(scope, layout string) string {
	sum := sha256.Sum256([]byte(scope + "\x00" + layout))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+ext)
}

// Get returns the snapshot of layout, if present and fresh.
func (c *Cache) Get(scope, layout string) (*fmdapi.LayoutMetadata, bool, error) {
	data, err := os.ReadFile(c.path(scope, layout))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("metacache: read %s: %w", layout, err)
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var e entry
	if err := dec.Decode(&e); err != nil {
		// A corrupt snapshot is a miss; the next Put replaces it.
		return nil, false, nil
	}
	if e.Meta == nil || e.Layout != layout || c.now().Sub(e.Stored) > c.ttl {
		return nil, false, nil
	}
	return e.Meta, true, nil
}

// Put stores a snapshot of layout.
func (c *Cache) Put(scope, layout string, meta *fmdapi.LayoutMetadata) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(entry{Stored: c.now(), Layout: layout, Meta: meta}); err != nil {
		return fmt.Errorf("metacache: encode %s: %w", layout, err)
	}
	tmp, err := os.CreateTemp(c.dir, "snapshot-*")
	if err != nil {
		return fmt.Errorf("metacache: write %s: %w", layout, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("metacache: write %s: %w", layout, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("metacache: write %s: %w", layout, err)
	}
	if err := os.Rename(tmp.Name(), c.path(scope, layout)); err != nil {
		return fmt.Errorf("metacache: write %s: %w", layout, err)
	}
	return nil
}

// Purge removes every snapshot.
func (c *Cache) Purge() error {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*"+ext))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("metacache: purge: %w", err)
		}
	}
	return nil
}

// Wrap returns a fetcher serving fresh snapshots from the cache and
// storing successful fetches. scope separates servers and databases.
// Failures, including missing layouts, are never cached.
func (c *Cache) Wrap(f load.Fetcher, scope string) load.Fetcher {
	return load.FetcherFunc(func(ctx context.Context, layout string) (*fmdapi.LayoutMetadata, error) {
		if meta, ok, err := c.Get(scope, layout); err == nil && ok {
			return meta, nil
		}
		meta, err := f.LayoutMetadata(ctx, layout)
		if err != nil || meta == nil {
			return meta, err
		}
		if err := c.Put(scope, layout, meta); err != nil {
			return nil, err
		}
		return meta, nil
	})
}
