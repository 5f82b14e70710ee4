package connectors

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/simon020286/go-flow/config"
	"github.com/simon020286/go-flow/models"
)

// Registry maintains all loaded connector definitions
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]*config.ConnectorDefinition
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		connectors: make(map[string]*config.ConnectorDefinition),
	}
}

// Register validates and adds a connector definition, replacing any
// previous definition with the same id
func (r *Registry) Register(def *config.ConnectorDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid connector definition: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[def.Connector.ID] = def
	return nil
}

// Get returns a connector definition by id
func (r *Registry) Get(id string) (*config.ConnectorDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.connectors[id]
	return def, ok
}

// List returns all registered connector ids, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.connectors))
	for id := range r.connectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered connectors
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connectors)
}

// Connection returns a fresh connection to the connector, carrying the
// connector's default properties
func (r *Registry) Connection(id string) (*models.Connection, error) {
	def, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConnector, id)
	}

	props := make(map[string]any, len(def.Properties))
	for k, v := range def.Properties {
		props[k] = models.NormalizeValue(v)
	}

	name := def.Connector.Name
	if name == "" {
		name = def.Connector.ID
	}
	return &models.Connection{
		ID:                   uuid.NewString(),
		Name:                 name,
		ConnectorID:          def.Connector.ID,
		ConfiguredProperties: props,
	}, nil
}

// Action resolves a connector action with its data shapes
func (r *Registry) Action(id, name string) (*models.Action, error) {
	def, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConnector, id)
	}
	a, err := def.GetAction(name)
	if err != nil {
		return nil, err
	}

	display := a.Name
	if display == "" {
		display = name
	}
	return &models.Action{
		ID:              id + "-" + name,
		Name:            display,
		Description:     a.Description,
		Pattern:         a.Pattern,
		InputDataShape:  toDataShape(a.Input),
		OutputDataShape: toDataShape(a.Output),
	}, nil
}

func toDataShape(d *config.DataShapeDef) *models.DataShape {
	if d == nil {
		return nil
	}
	return &models.DataShape{
		Kind:          d.Kind,
		Type:          d.Type,
		Name:          d.Name,
		Specification: d.Specification,
	}
}

// LoadFromFS loads every YAML definition under dir in fsys
func (r *Registry) LoadFromFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read connectors directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		filePath := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filePath, err)
		}

		if err := r.loadFromBytes(data, entry.Name()); err != nil {
			return fmt.Errorf("failed to load connector %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// LoadFromDirectory loads custom definitions from disk. A missing
// directory is not an error; broken files are skipped with a warning
func (r *Registry) LoadFromDirectory(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read connectors directory %s: %w", dirPath, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		filePath := filepath.Join(dirPath, entry.Name())
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filePath, err)
		}

		if err := r.loadFromBytes(data, entry.Name()); err != nil {
			slog.Warn("Skipping connector definition",
				slog.String("file", filePath),
				slog.Any("error", err))
			continue
		}
	}

	return nil
}

func (r *Registry) loadFromBytes(data []byte, filename string) error {
	var def config.ConnectorDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// the file name is the fallback id
	if def.Connector.ID == "" {
		def.Connector.ID = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	return r.Register(&def)
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
