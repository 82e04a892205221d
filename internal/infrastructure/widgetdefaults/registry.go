// Package widgetdefaults provides the per-type widget defaults handed to the
// client when it hydrates the print view. The core never interprets them.
package widgetdefaults

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Size is a widget's default size in grid units
type Size struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Defaults describes one widget type
type Defaults struct {
	Name                   string   `yaml:"name" json:"name"`
	Size                   Size     `yaml:"size" json:"size"`
	JSClass                string   `yaml:"js_class" json:"js_class"`
	Iterator               bool     `yaml:"iterator" json:"iterator"`
	ReferenceField         string   `yaml:"reference_field" json:"reference_field,omitempty"`
	ForeignReferenceFields []string `yaml:"foreign_reference_fields" json:"foreign_reference_fields,omitempty"`
}

// Registry maps widget type to its defaults
type Registry map[string]Defaults

// Has reports whether the widget type is known
func (r Registry) Has(widgetType string) bool {
	_, ok := r[widgetType]
	return ok
}

// Types returns the known widget types in sorted order
func (r Registry) Types() []string {
	types := make([]string, 0, len(r))
	for t := range r {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// StoreConfig configures the defaults store
type StoreConfig struct {
	// OverrideFile is an optional YAML file whose entries replace or extend
	// the embedded catalog.
	OverrideFile string
	Logger       *zap.Logger
}

// Store holds the loaded registry
type Store struct {
	registry Registry
	mu       sync.RWMutex
}

// NewStore loads the embedded catalog and applies the optional override file
func NewStore(config *StoreConfig) (*Store, error) {
	if config == nil {
		config = &StoreConfig{}
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	registry, err := parseCatalog(embeddedCatalog)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded widget catalog: %w", err)
	}

	if config.OverrideFile != "" {
		content, err := os.ReadFile(config.OverrideFile)
		switch {
		case err == nil:
			overrides, err := parseCatalog(content)
			if err != nil {
				return nil, fmt.Errorf("failed to parse widget catalog %s: %w", config.OverrideFile, err)
			}
			for t, d := range overrides {
				registry[t] = d
			}
			logger.Info("widget defaults override applied",
				zap.String("file", config.OverrideFile),
				zap.Int("types", len(overrides)))
		case os.IsNotExist(err):
			logger.Warn("widget defaults override file not found, using embedded catalog",
				zap.String("file", config.OverrideFile))
		default:
			return nil, fmt.Errorf("failed to read widget catalog %s: %w", config.OverrideFile, err)
		}
	}

	return &Store{registry: registry}, nil
}

func parseCatalog(content []byte) (Registry, error) {
	registry := Registry{}
	if err := yaml.Unmarshal(content, &registry); err != nil {
		return nil, err
	}
	for t, d := range registry {
		if d.Size.Width <= 0 || d.Size.Height <= 0 {
			return nil, fmt.Errorf("widget type %q has invalid default size %dx%d", t, d.Size.Width, d.Size.Height)
		}
	}
	return registry, nil
}

// Registry returns a copy of the loaded registry
func (s *Store) Registry() Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(Registry, len(s.registry))
	for t, d := range s.registry {
		out[t] = d
	}
	return out
}

// Get returns the defaults of a widget type
func (s *Store) Get(widgetType string) (Defaults, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.registry[widgetType]
	return d, ok
}
