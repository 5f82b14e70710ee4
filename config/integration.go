package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IntegrationConfig represents an integration flow described in YAML
type IntegrationConfig struct {
	ID          string         `yaml:"id,omitempty"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Tags        []string       `yaml:"tags,omitempty"`
	Properties  map[string]any `yaml:"properties,omitempty"`
	Steps       []StepConfig   `yaml:"steps"`
}

// StepConfig is one stage of the flow. A step naming a connector is an
// endpoint; otherwise Kind selects a processing step
type StepConfig struct {
	ID         string         `yaml:"id,omitempty"`
	Kind       string         `yaml:"kind,omitempty"`
	Connector  string         `yaml:"connector,omitempty"`
	Action     string         `yaml:"action,omitempty"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

var (
	ErrMissingStepKind   = errors.New("step needs a kind or a connector")
	ErrConflictingKind   = errors.New("connector steps cannot set a processing kind")
	ErrActionNoConnector = errors.New("action requires a connector")
)

// IsEndpoint reports whether the step is bound to a connector
func (s *StepConfig) IsEndpoint() bool {
	return s.Connector != "" || s.Kind == "endpoint"
}

// ParseIntegration decodes and validates an integration document
func ParseIntegration(data []byte) (*IntegrationConfig, error) {
	var cfg IntegrationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadIntegrationFile reads an integration document from disk
func LoadIntegrationFile(path string) (*IntegrationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read integration %s: %w", path, err)
	}
	cfg, err := ParseIntegration(data)
	if err != nil {
		return nil, fmt.Errorf("integration %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every step is either an endpoint or a processing step
func (c *IntegrationConfig) Validate() error {
	for i, s := range c.Steps {
		switch {
		case s.Connector != "" && s.Kind != "" && s.Kind != "endpoint":
			return fmt.Errorf("step %d: %w", i, ErrConflictingKind)
		case s.Action != "" && s.Connector == "":
			return fmt.Errorf("step %d: %w", i, ErrActionNoConnector)
		case s.Connector == "" && s.Kind == "":
			return fmt.Errorf("step %d: %w", i, ErrMissingStepKind)
		}
	}
	return nil
}
