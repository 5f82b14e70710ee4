package flow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simon020286/go-flow/catalog"
	"github.com/simon020286/go-flow/config"
	"github.com/simon020286/go-flow/connectors"
	"github.com/simon020286/go-flow/models"
)

var ErrUnknownStepKind = errors.New("unknown step kind")

// IntegrationFromConfig builds an integration from its YAML description.
// Endpoint steps are resolved through the connector registry and
// processing steps must name a kind known to the catalog. Nil arguments
// select the process-wide registry and catalog
func IntegrationFromConfig(
	cfg *config.IntegrationConfig, reg *connectors.Registry, cat *catalog.Catalog,
) (*models.Integration, error) {
	if reg == nil {
		reg = connectors.Default()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	integration := &models.Integration{
		ID:          cfg.ID,
		Name:        cfg.Name,
		Description: cfg.Description,
		Steps:       make([]*models.Step, 0, len(cfg.Steps)),
	}
	integration.MergeTags(cfg.Tags...)
	if cfg.Properties != nil {
		integration.ConfiguredProperties = models.NormalizeProperties(cfg.Properties)
	}

	for i, sc := range cfg.Steps {
		step, err := buildStep(sc, reg, cat)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		integration.Steps = append(integration.Steps, step)
	}

	return integration, nil
}

func buildStep(
	sc config.StepConfig, reg *connectors.Registry, cat *catalog.Catalog,
) (*models.Step, error) {
	id := sc.ID
	if id == "" {
		id = uuid.NewString()
	}

	if !sc.IsEndpoint() {
		if _, ok := cat.StepConfig(sc.Kind); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStepKind, sc.Kind)
		}
		step := models.NewBlankStep(id)
		step.StepKind = sc.Kind
		if sc.Properties != nil {
			step.ConfiguredProperties = models.NormalizeProperties(sc.Properties)
		}
		return step, nil
	}

	step := models.NewBlankEndpoint(id)
	if sc.Connector == "" {
		return step, nil
	}

	conn, err := reg.Connection(sc.Connector)
	if err != nil {
		return nil, err
	}
	for k, v := range sc.Properties {
		conn.ConfiguredProperties[k] = models.NormalizeValue(v)
	}
	step.Connection = conn

	if sc.Action != "" {
		action, err := reg.Action(sc.Connector, sc.Action)
		if err != nil {
			return nil, err
		}
		step.Action = action
	}
	return step, nil
}
