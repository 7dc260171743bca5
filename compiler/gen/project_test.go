package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectSave(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, WithOutputDir(dir))
	p := NewProject(cfg)
	assert.Equal(t, filepath.Clean(dir), p.Dir())

	m, err := NewTypeEmitter(cfg).Emit(BuildSchemaArgs{SchemaName: "Customer", Layout: customersLayout()})
	require.NoError(t, err)
	require.NoError(t, p.AddFile(m.Plan.File, m.File))

	ce := NewClientEmitter(cfg)
	c, err := ce.Emit("Customers", m.Plan.Symbols, cfg.Credentials(true))
	require.NoError(t, err)
	require.NoError(t, p.Register(c))
	require.Len(t, p.Clients(), 1)
	require.NoError(t, p.AddFile(IndexPath, ce.Index(p.Clients())))

	assert.Equal(t, []string{"client/customer/customer.go", "client/index.go", "customer.go"}, p.Files())
	require.NoError(t, p.Save(context.Background()))

	for _, name := range p.Files() {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		src, err := p.Source(name)
		require.NoError(t, err)
		assert.Equal(t, string(src), string(data))
	}
	metrics := p.Metrics()
	assert.Equal(t, 3, metrics.FilesGenerated)
	assert.Positive(t, metrics.TotalBytes)

	t.Run("RemoveIndex", func(t *testing.T) {
		require.NoError(t, p.RemoveIndex())
		_, err := os.Stat(filepath.Join(dir, "client", "index.go"))
		assert.True(t, os.IsNotExist(err))
		require.NoError(t, p.RemoveIndex())
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, p.Clear())
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)

		missing := NewProject(testConfig(t, WithOutputDir(filepath.Join(dir, "missing"))))
		assert.NoError(t, missing.Clear())
	})
}

func TestProjectAddFileTwice(t *testing.T) {
	p := NewProject(testConfig(t, WithOutputDir(t.TempDir())))
	require.NoError(t, p.AddFile("a.go", jen.NewFile("schema")))
	err := p.AddFile("./a.go", jen.NewFile("schema"))
	assert.True(t, IsGenerationError(err))

	_, err = p.Source("b.go")
	assert.True(t, IsGenerationError(err))
}

func TestProjectRenderError(t *testing.T) {
	dir := t.TempDir()
	p := NewProject(testConfig(t, WithOutputDir(dir)))
	f := jen.NewFile("schema")
	f.Func().Id("broken").Params().Op("{{")
	require.NoError(t, p.AddFile("broken.go", f))

	err := p.Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	_, statErr := os.Stat(filepath.Join(dir, "broken.go"))
	assert.True(t, os.IsNotExist(statErr))
}
