package service

import (
	"context"
	"io"
	"slices"

	"shortstory/internal/catalog"
	"shortstory/internal/export"
	"shortstory/internal/store"
	"shortstory/internal/survey"
)

// Report is a read-back of the response sheet
type Report struct {
	SheetName string
	Header    []string
	// Rows are the data rows, padded to the header width
	Rows [][]string
	// Index maps a header name to its column
	Index map[string]int
	// HeaderOnly means the sheet holds a header but no responses
	HeaderOnly bool
	// HeaderMismatch means the stored header differs from the current catalog's columns
	HeaderMismatch bool
}

// Empty reports whether there are no responses to show
func (r *Report) Empty() bool {
	return len(r.Rows) == 0
}

// Count is the number of responses
func (r *Report) Count() int {
	return len(r.Rows)
}

// Value returns the cell of row i under column name
func (r *Report) Value(i int, column string) string {
	col, ok := r.Index[column]
	if !ok || i < 0 || i >= len(r.Rows) {
		return ""
	}
	return r.Rows[i][col]
}

// ReportService reads collected responses for the admin page and exports
type ReportService struct {
	store     store.Store
	sheetName string
	catalog   *catalog.Catalog
}

// NewReportService creates a report service. A nil store means local-only mode.
func NewReportService(s store.Store, sheetName string, c *catalog.Catalog) *ReportService {
	return &ReportService{store: s, sheetName: sheetName, catalog: c}
}

// Connected reports whether a store is available
func (r *ReportService) Connected() bool {
	return r.store != nil
}

// SheetName is the sheet the report reads
func (r *ReportService) SheetName() string {
	return r.sheetName
}

// Load reads every row, treating the first as the header
func (r *ReportService) Load(ctx context.Context) (*Report, error) {
	if r.store == nil {
		return nil, store.ErrNotConfigured
	}
	sheet, err := r.store.Open(ctx, r.sheetName)
	if err != nil {
		return nil, err
	}
	all, err := sheet.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildReport(r.sheetName, all, survey.Columns(r.catalog)), nil
}

func buildReport(name string, all [][]string, expected []string) *Report {
	rep := &Report{SheetName: name, Index: map[string]int{}}
	if len(all) == 0 {
		return rep
	}

	rep.Header = all[0]
	for i, col := range rep.Header {
		if _, dup := rep.Index[col]; !dup {
			rep.Index[col] = i
		}
	}
	rep.HeaderOnly = len(all) == 1
	rep.HeaderMismatch = !slices.Equal(rep.Header, expected)

	rep.Rows = make([][]string, 0, len(all)-1)
	for _, row := range all[1:] {
		rep.Rows = append(rep.Rows, pad(row, len(rep.Header)))
	}
	return rep
}

// pad extends row with empty cells; the Sheets API drops trailing empty ones
func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

// Export writes the header and data rows as CSV and returns the number of data rows
func (r *ReportService) Export(ctx context.Context, w io.Writer) (int, error) {
	rep, err := r.Load(ctx)
	if err != nil {
		return 0, err
	}
	header := rep.Header
	if header == nil {
		header = survey.Columns(r.catalog)
	}
	if err := export.WriteCSV(w, header, rep.Rows); err != nil {
		return 0, err
	}
	return rep.Count(), nil
}
