package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shortstory/internal/catalog"
	"shortstory/internal/config"
	"shortstory/internal/logger"
	"shortstory/internal/store"
)

type app struct {
	cfg     *config.Config
	log     *logger.Logger
	connect func(context.Context, store.Config) (store.Store, error)
	now     func() time.Time

	catalogPath string
	sheetName   string
	backend     string
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "sstctl",
		Short:        "Maintenance tools for the Short Story Task response sheet",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.catalogPath, "catalog", a.cfg.CatalogPath, "question catalog YAML (built-in when empty)")
	root.PersistentFlags().StringVar(&a.sheetName, "sheet", a.cfg.SheetName, "response sheet name")
	root.PersistentFlags().StringVar(&a.backend, "backend", a.cfg.StoreBackend, "response store backend")

	root.AddCommand(
		simulateCmd(a),
		resetCmd(a),
		exportCmd(a),
		columnsCmd(a),
		hashPasswordCmd(),
	)
	return root
}

func (a *app) catalog() (*catalog.Catalog, error) {
	return catalog.Load(a.catalogPath)
}

// open connects to the configured store. The caller closes it.
func (a *app) open(ctx context.Context) (store.Store, error) {
	sc := store.ConfigFrom(a.cfg)
	sc.Backend = a.backend
	sc.SheetName = a.sheetName
	st, err := a.connect(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s store: %w", a.backend, err)
	}
	a.log.Debug("Response store connected", "backend", st.Backend(), "sheet", a.sheetName)
	return st, nil
}
