package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon020286/go-flow/config"
)

const ordersYAML = `
name: orders
description: Route new orders
tags: [billing]
steps:
  - id: in
    connector: webhook
    action: receive
  - kind: log
    properties:
      bodyLoggingEnabled: true
  - connector: http
    action: post
    properties:
      url: https://example.com/orders
`

func TestParseIntegration(t *testing.T) {
	cfg, err := config.ParseIntegration([]byte(ordersYAML))
	require.NoError(t, err)

	assert.Equal(t, "orders", cfg.Name)
	assert.Equal(t, []string{"billing"}, cfg.Tags)
	require.Len(t, cfg.Steps, 3)

	assert.True(t, cfg.Steps[0].IsEndpoint())
	assert.Equal(t, "webhook", cfg.Steps[0].Connector)
	assert.Equal(t, "receive", cfg.Steps[0].Action)

	assert.False(t, cfg.Steps[1].IsEndpoint())
	assert.Equal(t, "log", cfg.Steps[1].Kind)
	assert.Equal(t, true, cfg.Steps[1].Properties["bodyLoggingEnabled"])
}

func TestParseIntegrationInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  error
	}{
		{
			name: "no_kind",
			yaml: "steps:\n  - id: x\n",
			err:  config.ErrMissingStepKind,
		},
		{
			name: "connector_with_kind",
			yaml: "steps:\n  - connector: http\n    kind: log\n",
			err:  config.ErrConflictingKind,
		},
		{
			name: "action_without_connector",
			yaml: "steps:\n  - kind: log\n    action: post\n",
			err:  config.ErrActionNoConnector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParseIntegration([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := config.ParseIntegration([]byte("steps: [unclosed"))
	assert.Error(t, err)
}

func TestLoadIntegrationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ordersYAML), 0o600))

	cfg, err := config.LoadIntegrationFile(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Steps, 3)

	_, err = config.LoadIntegrationFile(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestConnectorDefinition(t *testing.T) {
	def := &config.ConnectorDefinition{
		Connector: config.ConnectorInfo{ID: "http", Name: "HTTP"},
		Actions: map[string]config.ActionDef{
			"post": {Name: "Invoke", Pattern: config.PatternTo},
			"get":  {Name: "Fetch", Pattern: config.PatternPipe},
		},
	}
	require.NoError(t, def.Validate())
	assert.Equal(t, []string{"get", "post"}, def.ActionNames())

	action, err := def.GetAction("post")
	require.NoError(t, err)
	assert.Equal(t, "Invoke", action.Name)

	_, err = def.GetAction("delete")
	assert.ErrorIs(t, err, config.ErrActionNotFound)
}

func TestConnectorDefinitionInvalid(t *testing.T) {
	def := &config.ConnectorDefinition{}
	assert.ErrorIs(t, def.Validate(), config.ErrMissingConnectorID)

	def.Connector.ID = "timer"
	assert.ErrorIs(t, def.Validate(), config.ErrNoActions)

	def.Actions = map[string]config.ActionDef{"tick": {Pattern: "Sideways"}}
	assert.ErrorIs(t, def.Validate(), config.ErrInvalidPattern)
}
