package service

import (
	"context"
	"errors"
	"fmt"

	"shortstory/internal/logger"
	"shortstory/internal/store"
)

// StoreRecorder appends completed rows to a named sheet. Each call resolves
// the sheet afresh and writes the header first when the sheet is empty.
type StoreRecorder struct {
	store     store.Store
	sheetName string
	log       *logger.Logger
}

// NewStoreRecorder creates a recorder for sheetName
func NewStoreRecorder(s store.Store, sheetName string, log *logger.Logger) *StoreRecorder {
	return &StoreRecorder{store: s, sheetName: sheetName, log: log}
}

// Record makes one attempt to persist row. Errors carry a participant-facing message.
func (r *StoreRecorder) Record(ctx context.Context, header, row []string) error {
	sheet, err := r.store.Open(ctx, r.sheetName)
	if err != nil {
		r.log.Error("Failed to open response sheet", "sheet", r.sheetName, "error", err)
		return describeStoreError(r.sheetName, err)
	}
	if wrote, err := store.EnsureHeader(ctx, sheet, header); err != nil {
		r.log.Error("Failed to write header", "sheet", r.sheetName, "error", err)
		return describeStoreError(r.sheetName, err)
	} else if wrote {
		r.log.Info("Wrote header to empty sheet", "sheet", r.sheetName, "columns", len(header))
	}
	if err := sheet.AppendRow(ctx, row); err != nil {
		r.log.Error("Failed to append row", "sheet", r.sheetName, "error", err)
		return describeStoreError(r.sheetName, err)
	}
	return nil
}

// describeStoreError turns a store failure into a message fit for the completion page
func describeStoreError(sheetName string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("spreadsheet %q was not found; check that it exists and is shared with the service account: %w", sheetName, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("saving timed out: %w", err)
	default:
		return fmt.Errorf("saving failed: %w", err)
	}
}
