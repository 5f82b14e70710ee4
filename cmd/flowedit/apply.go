package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	flow "github.com/simon020286/go-flow"
	"github.com/simon020286/go-flow/config"
	"github.com/simon020286/go-flow/logging"
	"github.com/simon020286/go-flow/models"
	"github.com/simon020286/go-flow/store"
)

var ErrCommandLine = errors.New("invalid command")

// maxCommandLine bounds one JSON command, mapper documents included
const maxCommandLine = 16 << 20

func newApplyCmd() *cobra.Command {
	var (
		commands string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "apply <integration.yaml>",
		Short: "Apply editor commands to an integration and save it",
		Long: `Load an integration described in YAML, apply editor commands read as
JSON lines (one command per line, '-' reads stdin) and save the result to
the configured store. The final document is printed as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			ic, err := config.LoadIntegrationFile(args[0])
			if err != nil {
				return err
			}
			integration, err := flow.IntegrationFromConfig(ic, nil, nil)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := store.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			ed := flow.NewEditor(st)
			ed.SetLogger(logger)
			ed.Load(integration)
			ed.Flush()

			if commands != "" {
				n, err := applyCommands(ed, cmd.InOrStdin(), commands)
				if err != nil {
					return err
				}
				logger.Info("Commands applied", slog.Int("count", n))
			}
			ed.Wait()

			result := ed.Integration()
			if !dryRun {
				saveCtx, cancel := context.WithTimeout(ctx, cfg.SaveTimeout)
				defer cancel()

				res := <-ed.Save(saveCtx)
				if res.Err != nil {
					return res.Err
				}
				result = res.Integration
				logger.Info("Integration saved",
					logging.IntegrationID(result.ID),
					slog.String("store", cfg.Store.Driver))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&commands, "commands", "f", "",
		"file of JSON-line editor commands ('-' for stdin)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"print the edited integration without saving it")
	return cmd
}

// applyCommands dispatches every command in the source. Blank lines and
// lines starting with '#' are skipped
func applyCommands(ed *flow.Editor, stdin io.Reader, source string) (int, error) {
	r := stdin
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return 0, fmt.Errorf("failed to open commands %s: %w", source, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var count int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxCommandLine)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		cmd, err := models.DecodeCommand([]byte(text))
		if err != nil {
			return count, fmt.Errorf("%w at line %d: %w", ErrCommandLine, line, err)
		}
		if _, ok := cmd.(models.Save); ok {
			continue
		}
		ed.Dispatch(cmd)
		count++
	}
	return count, scanner.Err()
}
