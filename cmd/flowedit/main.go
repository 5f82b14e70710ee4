package main

import (
	"log/slog"
	"os"

	"github.com/simon020286/go-flow/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Command failed", logging.Error(err))
		os.Exit(1)
	}
}
