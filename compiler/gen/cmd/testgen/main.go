// testgen renders a saved layout metadata response without a server.
// Run: go run ./compiler/gen/cmd/testgen [-meta file] [-layout name] [-schema name]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syssam/fmgen/compiler/gen"
	"github.com/syssam/fmgen/compiler/load"
	"github.com/syssam/fmgen/fmdapi"
)

func main() {
	metaPath := flag.String("meta", "compiler/load/testdata/customers.json", "layout metadata response (JSON)")
	layoutName := flag.String("layout", "Customers", "layout name")
	schemaName := flag.String("schema", "Customer", "schema name")
	policy := flag.String("value-lists", "strict", "value list policy: strict, allowEmpty or ignore")
	flag.Parse()

	outDir, err := os.MkdirTemp("", "fmgen-testgen-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Output directory: %s\n", outDir)

	raw, err := os.ReadFile(*metaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read metadata: %v\n", err)
		os.Exit(1)
	}
	meta := &fmdapi.LayoutMetadata{}
	if err := json.Unmarshal(raw, meta); err != nil {
		fmt.Fprintf(os.Stderr, "failed to decode metadata: %v\n", err)
		os.Exit(1)
	}
	vl, err := load.ParsePolicy(*policy)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	config, err := gen.NewConfig(
		gen.WithPackage("example.com/test/schema"),
		gen.WithOutputDir(filepath.Join(outDir, "schema")),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create config: %v\n", err)
		os.Exit(1)
	}

	layout := load.ReduceLayout(*layoutName, meta, vl)
	m, err := gen.NewTypeEmitter(config).Emit(gen.BuildSchemaArgs{SchemaName: *schemaName, Layout: layout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "emission failed: %v\n", err)
		os.Exit(1)
	}
	for _, w := range m.Plan.Warnings {
		fmt.Printf("warning: %v\n", w)
	}

	project := gen.NewProject(config)
	clients := gen.NewClientEmitter(config)
	c, err := clients.Emit(*layoutName, m.Plan.Symbols, config.Credentials(true))
	if err == nil {
		err = project.AddFile(m.Plan.File, m.File)
	}
	if err == nil {
		err = project.Register(c)
	}
	if err == nil {
		err = project.AddFile(gen.IndexPath, clients.Index(project.Clients()))
	}
	if err == nil {
		err = project.Save(context.Background())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nGenerated files:")
	for _, name := range project.Files() {
		fmt.Printf("  %s\n", name)
	}
	metrics := project.Metrics()
	fmt.Printf("%d files, %d bytes\n", metrics.FilesGenerated, metrics.TotalBytes)

	fmt.Printf("\n--- Sample: %s ---\n", m.Plan.File)
	if src, err := project.Source(m.Plan.File); err == nil {
		os.Stdout.Write(src)
	}
	fmt.Println("Done!")
}
