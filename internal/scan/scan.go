// Package scan lists candidate recordings in an input directory.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/facette/natsort"
)

// List returns the regular files directly inside dir whose extension equals
// ext, ignoring case, as absolute paths in natural order of their names.
// Camera names such as MOVI0009/MOVI0010 therefore sort chronologically
// even without zero padding.
func List(dir, ext string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", abs, err)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		names = append(names, name)
	}
	natsort.Sort(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(abs, name)
	}
	return paths, nil
}
