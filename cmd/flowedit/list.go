package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simon020286/go-flow/catalog"
	"github.com/simon020286/go-flow/connectors"
	_ "github.com/simon020286/go-flow/steps"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the processing step kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tNAME\tDESCRIPTION")
			for _, d := range catalog.Default().Steps() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.StepKind, d.Name, d.Description)
			}
			return w.Flush()
		},
	}
}

func newConnectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connectors",
		Short: "List the available connectors and their actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := setup(cmd); err != nil {
				return err
			}

			reg := connectors.Default()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CONNECTOR\tACTION\tPATTERN")
			for _, id := range reg.List() {
				def, _ := reg.Get(id)
				for _, name := range def.ActionNames() {
					action, _ := def.GetAction(name)
					fmt.Fprintf(w, "%s\t%s\t%s\n", id, name, action.Pattern)
				}
			}
			return w.Flush()
		},
	}
}
