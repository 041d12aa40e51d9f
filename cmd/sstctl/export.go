package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shortstory/internal/export"
	"shortstory/internal/service"
)

func exportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every stored response as CSV",
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

			var buf bytes.Buffer
			count, err := service.NewReportService(st, a.sheetName, cat).Export(ctx, &buf)
			if err != nil {
				return err
			}
			if output == "" {
				output = export.Filename(a.now())
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d responses to %s\n", count, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default sst_responses_YYYYMMDD_HHMMSS.csv)")
	return cmd
}
