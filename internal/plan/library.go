package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Library serves workout templates from a directory of YAML files. Files
// are re-read on every call; the directory is the source of truth and
// plans change rarely enough that caching is not worth invalidation.
type Library struct {
	dir string

	mu sync.Mutex
}

// NewLibrary opens a template directory.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// List returns every valid template in the directory, sorted by name.
// Files that fail to parse are skipped; callers log what they care about.
func (l *Library) List() ([]*Template, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("reading plans dir: %w", err)
	}

	var templates []*Template
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.dir, e.Name()))
		if err != nil {
			continue
		}
		t, err := Parse(data)
		if err != nil {
			continue
		}
		templates = append(templates, t)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

// Get returns the template with the given name, or (nil, nil) when no file
// declares it.
func (l *Library) Get(name string) (*Template, error) {
	templates, err := l.List()
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
