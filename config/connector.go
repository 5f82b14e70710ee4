package config

import (
	"errors"
	"fmt"
	"sort"
)

// ConnectorDefinition describes a connector and the actions it offers
type ConnectorDefinition struct {
	Connector  ConnectorInfo        `yaml:"connector" json:"connector"`
	Properties map[string]any       `yaml:"properties" json:"properties,omitempty"`
	Actions    map[string]ActionDef `yaml:"actions" json:"actions"`
}

// ConnectorInfo contains the basic connector information
type ConnectorInfo struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
	Version     string `yaml:"version" json:"version,omitempty"`
}

// ActionDef defines a single connector action
type ActionDef struct {
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description" json:"description,omitempty"`
	Pattern     string        `yaml:"pattern" json:"pattern"` // From, To, Pipe
	Input       *DataShapeDef `yaml:"input" json:"input,omitempty"`
	Output      *DataShapeDef `yaml:"output" json:"output,omitempty"`
}

// DataShapeDef describes the data an action consumes or produces
type DataShapeDef struct {
	Kind          string `yaml:"kind" json:"kind"`
	Type          string `yaml:"type" json:"type,omitempty"`
	Name          string `yaml:"name" json:"name,omitempty"`
	Specification string `yaml:"specification" json:"specification,omitempty"`
}

const (
	PatternFrom = "From"
	PatternTo   = "To"
	PatternPipe = "Pipe"
)

var (
	ErrMissingConnectorID = errors.New("connector id is required")
	ErrNoActions          = errors.New("connector must have at least one action")
	ErrInvalidPattern     = errors.New("invalid action pattern")
	ErrActionNotFound     = errors.New("action not found")
)

// Validate checks the connector definition
func (cd *ConnectorDefinition) Validate() error {
	if cd.Connector.ID == "" {
		return ErrMissingConnectorID
	}

	if len(cd.Actions) == 0 {
		return fmt.Errorf("%w: %s", ErrNoActions, cd.Connector.ID)
	}

	for name, action := range cd.Actions {
		switch action.Pattern {
		case PatternFrom, PatternTo, PatternPipe:
		default:
			return fmt.Errorf("%w: %s.%s: '%s'",
				ErrInvalidPattern, cd.Connector.ID, name, action.Pattern)
		}
	}

	return nil
}

// GetAction returns an action by name
func (cd *ConnectorDefinition) GetAction(name string) (*ActionDef, error) {
	action, exists := cd.Actions[name]
	if !exists {
		return nil, fmt.Errorf("%w: '%s' in connector '%s'",
			ErrActionNotFound, name, cd.Connector.ID)
	}
	return &action, nil
}

// ActionNames returns the sorted action names
func (cd *ConnectorDefinition) ActionNames() []string {
	names := make([]string, 0, len(cd.Actions))
	for name := range cd.Actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
