// Package feed reads raw listing batches from disk and writes catalog
// snapshots back out.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cre_catalog/internal/domain"
)

// Dir is a ListingSource over a directory of *.json batch files.
type Dir struct{ path string }

func NewDir(path string) *Dir { return &Dir{path: path} }

// Load concatenates the listings of every *.json file in the directory.
// os.ReadDir yields names in sorted order; positional property IDs depend
// on that.
func (d *Dir) Load(ctx context.Context) ([]domain.RawListing, []string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, nil, fmt.Errorf("read feed dir %s: %w", d.path, err)
	}

	var files []string
	var all []domain.RawListing
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		raw, err := os.ReadFile(filepath.Join(d.path, e.Name()))
		if err != nil {
			return nil, nil, fmt.Errorf("read feed file %s: %w", e.Name(), err)
		}
		var batch []domain.RawListing
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, nil, fmt.Errorf("parse feed file %s: %w", e.Name(), err)
		}
		files = append(files, e.Name())
		all = append(all, batch...)
	}
	return all, files, nil
}

// WriteCatalog dumps a consolidated catalog as indented JSON, creating
// parent directories as needed.
func WriteCatalog(path string, props []domain.Property) error {
	b, err := json.MarshalIndent(props, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}
