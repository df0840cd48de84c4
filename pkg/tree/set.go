package tree

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	herrors "github.com/vango-dev/htmlfn/internal/errors"
)

// Extensions are the file extensions Load picks up.
var Extensions = []string{".yaml", ".yml", ".json"}

// Set is a collection of templates addressed by name. A Set is not safe
// for concurrent modification; once loaded it may be read concurrently.
type Set struct {
	templates map[string]*Template
}

// NewSet returns a set holding the given templates.
func NewSet(templates ...*Template) (*Set, error) {
	s := &Set{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load parses every template document under dir, recursively. Templates
// in subdirectories are named by their slash-separated relative path
// unless the document sets a name.
func Load(dir string) (*Set, error) {
	s, _ := NewSet()

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !isTemplateFile(path) {
			return nil
		}

		t, err := ParseFile(path)
		if err != nil {
			return err
		}
		if rel, relErr := filepath.Rel(dir, path); relErr == nil && t.Name == defaultName(path) {
			t.Name = filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		}
		return s.Add(t)
	})
	if err != nil {
		var he *herrors.Error
		if herrors.As(err, &he) {
			return nil, he
		}
		return nil, herrors.New("H010").WithDetail(err.Error()).Wrap(err)
	}
	return s, nil
}

// Add inserts t. Adding a second template with the same name fails.
func (s *Set) Add(t *Template) error {
	if prev, ok := s.templates[t.Name]; ok {
		return herrors.Newf(herrors.CategoryTemplate, "Duplicate template %q", t.Name).
			WithDetail("Defined in " + sourceOf(prev) + " and " + sourceOf(t) + ".")
	}
	s.templates[t.Name] = t
	return nil
}

// Get returns the named template.
func (s *Set) Get(name string) (*Template, error) {
	t, ok := s.templates[name]
	if !ok {
		return nil, herrors.New("H040", name)
	}
	return t, nil
}

// Names returns the template names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of templates.
func (s *Set) Len() int { return len(s.templates) }

func isTemplateFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func defaultName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func sourceOf(t *Template) string {
	if t.Source != "" {
		return t.Source
	}
	return "memory"
}
