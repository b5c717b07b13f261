// Package source provides backing facet sources for the unified store.
//
// The core treats a facet source as a black box; this package supplies
// the file-based one used by the CLI and by embedding applications
// whose entity data lives on disk as YAML documents, one file per
// entity, each file a mapping from facet name to facet value.
package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ontoframe/reflex/errors"
)

// Directory reads entity facets from <dir>/<entity>.yaml files.
type Directory struct {
	dir string
}

// NewDirectory creates a facet source over a directory of YAML files.
func NewDirectory(dir string) *Directory {
	return &Directory{dir: dir}
}

// Fetch reads and decodes the entity's YAML document. Fails with
// ErrNotFound when no file exists for the entity.
func (d *Directory) Fetch(_ context.Context, entityID string) (map[string]any, error) {
	path, err := d.resolve(entityID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read facet file for %s", entityID)
	}

	var facets map[string]any
	if err := yaml.Unmarshal(data, &facets); err != nil {
		return nil, errors.Wrapf(err, "decode facet file for %s", entityID)
	}
	if facets == nil {
		facets = map[string]any{}
	}
	return facets, nil
}

// Entities lists the entity IDs available in the directory, sorted.
func (d *Directory) Entities() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list facet directory %s", d.dir)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") {
			ids = append(ids, strings.TrimSuffix(name, ".yaml"))
		} else if strings.HasSuffix(name, ".yml") {
			ids = append(ids, strings.TrimSuffix(name, ".yml"))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (d *Directory) resolve(entityID string) (string, error) {
	base := fileSafe(entityID)
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(d.dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.NewNotFoundError("no facet file for entity %s in %s", entityID, d.dir)
}

// fileSafe maps URI-like entity identifiers onto file names.
func fileSafe(entityID string) string {
	replacer := strings.NewReplacer(
		"://", "_",
		"/", "_",
		":", "_",
		"#", "_",
		"?", "_",
	)
	return replacer.Replace(entityID)
}
