package compiler

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModulePackage returns the import path of dir by locating the nearest
// go.mod above it. dir need not exist yet.
func ModulePackage(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rel := []string{}
	for cur := abs; ; {
		data, err := os.ReadFile(filepath.Join(cur, "go.mod"))
		switch {
		case err == nil:
			modPath := modfile.ModulePath(data)
			if modPath == "" {
				return "", fmt.Errorf("compiler: no module directive in %s", filepath.Join(cur, "go.mod"))
			}
			for i := len(rel) - 1; i >= 0; i-- {
				modPath = path.Join(modPath, rel[i])
			}
			return modPath, nil
		case !errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("compiler: read go.mod: %w", err)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("compiler: no go.mod found above %s", abs)
		}
		rel = append(rel, filepath.Base(cur))
		cur = parent
	}
}
