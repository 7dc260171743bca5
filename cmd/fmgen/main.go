// Command fmgen generates Go types and Data API clients from FileMaker
// layouts.
//
//	fmgen init     # write fmschema.yaml
//	fmgen run      # generate from fmschema.yaml
//	fmgen watch    # regenerate whenever fmschema.yaml changes
package main

import (
	"os"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	os.Exit(execute(newApp(), os.Args[1:]))
}
