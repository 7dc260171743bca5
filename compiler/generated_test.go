package compiler_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/syssam/fmgen/compiler"
	"github.com/syssam/fmgen/compiler/gen"
	"github.com/syssam/fmgen/compiler/load"
)

// checkMain decodes records with the generated parsers and prints what
// came out, one value per line.
const checkMain = `package main

import (
	"fmt"

	schema "IMPORT"
)

func main() {
	c, err := schema.ParseCustomer(map[string]any{
		"id": "n/a", "name": "Ada", "status": "Open", "priority": "",
		"region": "North", "created": "01/02/2024 10:00:00", "extra": true,
	})
	fmt.Println(err == nil, c.ID.IsNumber(), c.ID.String(), c.Name, c.Status, c.Priority == schema.TVLCustomerPriorityEmpty, c.Region)

	_, err = schema.ParseCustomer(map[string]any{
		"id": 1, "name": "Ada", "status": "Archived", "priority": "1", "region": "", "created": "",
	})
	fmt.Println(err != nil)

	s, err := schema.ParseStrictCustomer(map[string]any{
		"id": "n/a", "name": "Ada", "status": "Archived", "priority": "7", "region": "North", "created": "",
	})
	fmt.Println(err == nil, s.ID.Valid, s.Status == "", s.Priority == "", s.Region == "")

	s, _ = schema.ParseStrictCustomer(map[string]any{
		"id": " 42 ", "name": "Ada", "status": "Closed", "priority": "1", "region": "", "created": "",
	})
	fmt.Println(s.ID.Valid, s.ID.Float64, s.Status)

	p, err := schema.ParseCustomerPortals(map[string]any{
		"Orders": []any{
			map[string]any{"Orders::total": 10.5, "Orders::state": "Open", "recordId": "1"},
			map[string]any{"Orders::total": "", "Orders::state": "Closed", "recordId": "2"},
		},
		"Notes": []any{},
	})
	fmt.Println(err == nil, len(p.Orders), p.Orders[0].Total.String(), p.Orders[1].Total.IsNumber(), p.Orders[1].State, len(p.Notes))
}
`

func goTool(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds generated code")
	}
	path, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not available")
	}
	return path
}

// generateInModule writes one output package per credential mode inside
// the module so the generated imports resolve.
func generateInModule(t *testing.T) string {
	t.Helper()
	root, err := os.MkdirTemp(".", "gencheck")
	require.NoError(t, err)
	root, err = filepath.Abs(root)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(root) })

	clock := func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	reqs := []compiler.Request{
		{Layout: "Customers", SchemaName: "Customer", ValueLists: load.PolicyStrict},
		{Layout: "Customers", SchemaName: "StrictCustomer", ValueLists: load.PolicyAllowEmpty, StrictNumbers: ptr(true)},
	}
	account := mapEnv(map[string]string{
		"FM_SERVER":   "fm.example.com",
		"FM_DATABASE": "Sales",
		"FM_USERNAME": "admin",
		"FM_PASSWORD": "secret",
	})
	modes := []struct {
		dir  string
		env  compiler.Env
		opts []gen.Option
	}{
		{"key", keyEnv, nil},
		{"account", account, nil},
		{"host", keyEnv, []gen.Option{gen.WithHostScript("fmgen bridge")}},
		{"typesonly", keyEnv, []gen.Option{gen.WithValidators(false)}},
	}
	srv := &fakeServer{meta: customers(t)}
	for _, m := range modes {
		opts := append([]gen.Option{gen.WithOutputDir(filepath.Join(root, m.dir, "schema")), gen.WithClock(clock)}, m.opts...)
		cfg, err := gen.NewConfig(opts...)
		require.NoError(t, err)
		c := compiler.New(cfg, compiler.WithEnv(m.env), compiler.WithFetcherFactory(srv.factory(nil)))
		_, err = c.Generate(context.Background(), reqs)
		require.NoError(t, err, m.dir)
	}
	return root
}

func TestGeneratedCode(t *testing.T) {
	goBin := goTool(t)
	root := generateInModule(t)

	t.Run("TypeCheck", func(t *testing.T) {
		pkgs, err := packages.Load(&packages.Config{
			Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
			Dir:  root,
		}, "./...")
		require.NoError(t, err)
		// Four schema packages, four client indexes and eight client packages.
		assert.Len(t, pkgs, 16)
		var errs []string
		packages.Visit(pkgs, nil, func(p *packages.Package) {
			for _, e := range p.Errors {
				errs = append(errs, e.Error())
			}
		})
		assert.Empty(t, errs)
	})

	t.Run("Parse", func(t *testing.T) {
		pkg, err := compiler.ModulePackage(filepath.Join(root, "key", "schema"))
		require.NoError(t, err)
		dir := filepath.Join(root, "key", "check")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		src := strings.Replace(checkMain, "IMPORT", pkg, 1)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(src), 0o644))

		cmd := exec.Command(goBin, "run", ".")
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
		assert.Equal(t, []string{
			// Numeric-ish keeps text, enumerated with catch maps "" to its constant.
			"true false n/a Ada Open true North",
			// Enumerated without catch rejects unknown values.
			"true",
			// Strict numbers coerce text to null and allowEmpty catches unknown values.
			"true false true true true",
			"true 42 Closed",
			"true 2 10.5 false Closed 0",
		}, strings.Split(strings.TrimSpace(string(out)), "\n"))
	})
}

func ptr[T any](v T) *T { return &v }
