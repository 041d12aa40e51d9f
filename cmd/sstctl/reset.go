package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shortstory/internal/service"
	"shortstory/internal/survey"
)

func resetCmd(a *app) *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the sheet and write the header row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			header := survey.Columns(cat)
			if err := service.ResetSheet(ctx, st, a.sheetName, header, create); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s with %d columns\n", a.sheetName, len(header))
			return nil
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "create the sheet when it does not exist")
	return cmd
}
