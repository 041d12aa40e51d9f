package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortstory/internal/store"
	"shortstory/internal/survey"
)

func TestReportWithoutStore(t *testing.T) {
	r := NewReportService(nil, testSheet, testCatalog(t))
	assert.False(t, r.Connected())

	_, err := r.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrNotConfigured)
}

func TestReportMissingSheet(t *testing.T) {
	r := NewReportService(store.NewMemory(), testSheet, testCatalog(t))
	_, err := r.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReportStates(t *testing.T) {
	cat := testCatalog(t)
	header := survey.Columns(cat)
	full := make([]string, len(header))
	for i := range full {
		full[i] = "v"
	}

	tests := []struct {
		name       string
		rows       [][]string
		empty      bool
		headerOnly bool
		count      int
		mismatch   bool
	}{
		{name: "no rows", rows: nil, empty: true},
		{name: "header only", rows: [][]string{header}, empty: true, headerOnly: true},
		{name: "one response", rows: [][]string{header, full}, count: 1},
		{name: "older header", rows: [][]string{header[:5], full[:5]}, count: 1, mismatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory(testSheet)
			sh, err := mem.Open(context.Background(), testSheet)
			require.NoError(t, err)
			for _, row := range tt.rows {
				require.NoError(t, sh.AppendRow(context.Background(), row))
			}

			rep, err := NewReportService(mem, testSheet, cat).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.empty, rep.Empty())
			assert.Equal(t, tt.headerOnly, rep.HeaderOnly)
			assert.Equal(t, tt.count, rep.Count())
			if len(tt.rows) > 0 {
				assert.Equal(t, tt.mismatch, rep.HeaderMismatch)
			}
		})
	}
}

func TestBuildReportPadsShortRows(t *testing.T) {
	header := []string{"timestamp", "participant_id", "read_when", "read_memory"}
	rep := buildReport(testSheet, [][]string{header, {"2026-01-01 00:00:00", "P001"}}, header)

	require.Equal(t, 1, rep.Count())
	assert.Len(t, rep.Rows[0], 4)
	assert.Equal(t, "P001", rep.Value(0, "participant_id"))
	assert.Equal(t, "", rep.Value(0, "read_memory"))
	assert.Equal(t, "", rep.Value(0, "no_such_column"))
	assert.Equal(t, "", rep.Value(5, "participant_id"))
}

func TestReportExport(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.walkToQuestions(t, "s1")
	_, err := f.svc.SubmitAnswers(ctx, "s1", map[string]string{"S1": "a, with comma", "M1": "b"})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := NewReportService(f.store, testSheet, f.cat).Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, survey.Columns(f.cat), records[0])
	assert.Equal(t, "a, with comma", records[1][len(records[1])-2])
}

func TestReportExportEmptySheetWritesCurrentHeader(t *testing.T) {
	cat := testCatalog(t)
	var buf bytes.Buffer
	n, err := NewReportService(store.NewMemory(testSheet), testSheet, cat).Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "\ufeff"+strings.Join(survey.Columns(cat), ",")+"\n", buf.String())
}
