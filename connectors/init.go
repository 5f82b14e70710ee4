package connectors

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/simon020286/go-flow/config"
)

//go:embed definitions/*.yaml
var embedded embed.FS

var ErrUnknownConnector = errors.New("unknown connector")

var defaultRegistry atomic.Pointer[Registry]

func init() {
	r := NewRegistry()
	if err := r.LoadFromFS(embedded, "definitions"); err != nil {
		slog.Warn("Failed to load embedded connectors", slog.Any("error", err))
	}

	path := config.DefaultConnectorsPath()
	if err := r.LoadFromDirectory(path); err != nil {
		slog.Warn("Failed to load custom connectors",
			slog.String("path", path),
			slog.Any("error", err))
	}
	defaultRegistry.Store(r)
}

// Default returns the process-wide registry: the embedded definitions plus
// those found in the custom connectors directory
func Default() *Registry {
	return defaultRegistry.Load()
}

// Reload rebuilds the process-wide registry using dir for custom
// definitions
func Reload(dir string) error {
	r := NewRegistry()
	if err := r.LoadFromFS(embedded, "definitions"); err != nil {
		return fmt.Errorf("failed to load embedded connectors: %w", err)
	}
	if err := r.LoadFromDirectory(dir); err != nil {
		return fmt.Errorf("failed to load custom connectors: %w", err)
	}

	defaultRegistry.Store(r)
	slog.Info("Connectors reloaded",
		slog.Int("count", r.Count()),
		slog.Any("connectors", r.List()))
	return nil
}
