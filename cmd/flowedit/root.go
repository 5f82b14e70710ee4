package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/simon020286/go-flow/config"
	"github.com/simon020286/go-flow/connectors"
	"github.com/simon020286/go-flow/logging"
)

const serviceName = "flowedit"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Edit integration flows",
		Long: `flowedit edits integration flows: ordered chains of connector
endpoints and processing steps. It applies editor commands to flows
described in YAML and serves the editor over HTTP.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP("config", "c", "",
		"service config file (YAML); FLOW_* variables override it")

	root.AddCommand(
		newCatalogCmd(),
		newConnectorsCmd(),
		newApplyCmd(),
		newServeCmd(),
	)
	return root
}

// loadConfig reads the --config file over the defaults, applies the
// environment and validates the result
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewDefaultConfig()

	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		path := f.Value.String()
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the config, installs the logger and reloads the connector
// registry from the configured directory
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), serviceName, level)
	slog.SetDefault(logger)

	if err := connectors.Reload(cfg.ConnectorsPath); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
