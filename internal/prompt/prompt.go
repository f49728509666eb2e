// Package prompt holds the versioned LLM prompt templates. Templates ship
// embedded in the binary and can be overridden by YAML files in a
// directory, which may be watched and reloaded while the server runs.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
)

// Names of the built-in templates.
const (
	Classification = "classification"
	Synthesis      = "synthesis"
)

//go:embed templates/*.yaml
var builtin embed.FS

// Renderer renders a named prompt template with the given data.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// Template is a single versioned prompt.
type Template struct {
	Name        string `yaml:"name"`
	Version     int    `yaml:"version"`
	Description string `yaml:"description"`
	Body        string `yaml:"template"`
	// Source is the file the template was loaded from.
	Source string `yaml:"-"`

	tmpl *template.Template
}

// Set is a collection of templates keyed by name. It is safe for
// concurrent use; Reload swaps the whole collection at once.
type Set struct {
	dir    string
	logger *zap.Logger

	mu        sync.RWMutex
	templates map[string]*Template
}

// Option configures a Set.
type Option func(*Set)

// WithDir loads override templates from dir on top of the built-in ones.
func WithDir(dir string) Option {
	return func(s *Set) { s.dir = dir }
}

// WithLogger sets the logger used for reload reporting.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Set) { s.logger = logger }
}

// NewSet loads the built-in templates and any overrides.
func NewSet(opts ...Option) (*Set, error) {
	s := &Set{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)

	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the override directory, or "" when only built-ins are used.
func (s *Set) Dir() string {
	return s.dir
}

// Reload re-reads every template. On error the current templates stay in
// place.
func (s *Set) Reload() error {
	templates, err := loadFS(builtin, "templates", "builtin:")
	if err != nil {
		return fmt.Errorf("load built-in templates: %w", err)
	}

	if s.dir != "" {
		overrides, err := loadFS(os.DirFS(s.dir), ".", s.dir+string(filepath.Separator))
		if err != nil {
			return fmt.Errorf("load templates from %s: %w", s.dir, err)
		}
		for name, t := range overrides {
			templates[name] = t
		}
	}

	s.mu.Lock()
	s.templates = templates
	s.mu.Unlock()
	return nil
}

// Get returns the named template.
func (s *Set) Get(name string) (*Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[name]
	return t, ok
}

// List returns every template sorted by name.
func (s *Set) List() []*Template {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Render executes the named template with data.
func (s *Set) Render(name string, data any) (string, error) {
	t, ok := s.Get(name)
	if !ok {
		return "", fmt.Errorf("prompt template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s v%d: %w", t.Name, t.Version, err)
	}
	return buf.String(), nil
}

func loadFS(fsys fs.FS, root, label string) (map[string]*Template, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*Template)
	for _, entry := range entries {
		if entry.IsDir() || !isTemplateFile(entry.Name()) {
			continue
		}
		data, err := fs.ReadFile(fsys, pathJoin(root, entry.Name()))
		if err != nil {
			return nil, err
		}
		t, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		t.Source = label + entry.Name()
		if prev, ok := templates[t.Name]; ok {
			return nil, fmt.Errorf("template %q defined in both %s and %s", t.Name, prev.Source, t.Source)
		}
		templates[t.Name] = t
	}
	return templates, nil
}

// Parse decodes a YAML template document and compiles its body.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if t.Name == "" {
		return nil, fmt.Errorf("template has no name")
	}
	if strings.TrimSpace(t.Body) == "" {
		return nil, fmt.Errorf("template %q has an empty body", t.Name)
	}

	tmpl, err := template.New(t.Name).Option("missingkey=error").Parse(t.Body)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", t.Name, err)
	}
	t.tmpl = tmpl
	return &t, nil
}

func isTemplateFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func pathJoin(root, name string) string {
	if root == "." {
		return name
	}
	return root + "/" + name
}
