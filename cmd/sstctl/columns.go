package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shortstory/internal/survey"
)

func columnsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "Print the response sheet header for the current catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			for i, col := range survey.Columns(cat) {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", i+1, col)
			}
			return nil
		},
	}
}
