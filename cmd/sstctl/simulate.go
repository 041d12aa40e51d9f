package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"shortstory/internal/export"
	"shortstory/internal/service"
	"shortstory/internal/survey"
)

func simulateCmd(a *app) *cobra.Command {
	var (
		count   int
		seed    uint64
		csvPath string
		create  bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replace the sheet contents with simulated responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("count must not be negative")
			}
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			header := survey.Columns(cat)
			rows := service.NewSimulator(cat, seed, a.now).Rows(count)

			ctx := cmd.Context()
			st, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			if err := service.ReplaceRows(ctx, st, a.sheetName, header, rows, create); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d simulated responses to %s\n", len(rows), a.sheetName)

			if csvPath == "" {
				return nil
			}
			f, err := os.Create(csvPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := export.WriteCSV(f, header, rows); err != nil {
				return fmt.Errorf("failed to write %s: %w", csvPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved a copy to %s\n", csvPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", service.DefaultSimulationCount, "number of responses")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the rows to this CSV file")
	cmd.Flags().BoolVar(&create, "create", false, "create the sheet when it does not exist")
	return cmd
}
