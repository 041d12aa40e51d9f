package service

import (
	"context"
	"fmt"

	"shortstory/internal/store"
)

// ResetSheet clears sheetName and writes header as its only row. With create
// set, backends that can create sheets make it when it is missing.
func ResetSheet(ctx context.Context, s store.Store, sheetName string, header []string, create bool) error {
	return ReplaceRows(ctx, s, sheetName, header, nil, create)
}

// ReplaceRows clears the sheet and writes header followed by rows. Backends
// implementing store.Replacer do it atomically; on the others a failure part
// way leaves whatever was written so far.
func ReplaceRows(ctx context.Context, s store.Store, sheetName string, header []string, rows [][]string, create bool) error {
	sheet, err := openSheet(ctx, s, sheetName, create)
	if err != nil {
		return err
	}
	all := make([][]string, 0, len(rows)+1)
	all = append(all, header)
	all = append(all, rows...)

	if r, ok := s.(store.Replacer); ok {
		if err := r.Replace(ctx, sheetName, all); err != nil {
			return fmt.Errorf("failed to replace rows in %s: %w", sheetName, err)
		}
		return nil
	}

	if err := sheet.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear %s: %w", sheetName, err)
	}
	if err := sheet.AppendRow(ctx, header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", sheetName, err)
	}
	for i, row := range rows {
		if err := sheet.AppendRow(ctx, row); err != nil {
			return fmt.Errorf("failed to append row %d: %w", i+1, err)
		}
	}
	return nil
}

func openSheet(ctx context.Context, s store.Store, name string, create bool) (store.Sheet, error) {
	if create {
		return store.OpenOrCreate(ctx, s, name)
	}
	return s.Open(ctx, name)
}
