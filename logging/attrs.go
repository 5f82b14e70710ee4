package logging

import "log/slog"

// IntegrationID returns a slog attribute for an integration ID
func IntegrationID(id string) slog.Attr {
	return slog.String("integration_id", id)
}

// Position returns a slog attribute for a step position
func Position(p int) slog.Attr {
	return slog.Int("position", p)
}

// StepKind returns a slog attribute for a step kind
func StepKind(kind string) slog.Attr {
	return slog.String("step_kind", kind)
}

// Command returns a slog attribute for a command kind
func Command(kind string) slog.Attr {
	return slog.String("command", kind)
}

// SaveID returns a slog attribute for a save correlation ID
func SaveID(id string) slog.Attr {
	return slog.String("save_id", id)
}

// Error returns a slog attribute for an error
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
