package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{"timestamp", "participant_id", "response_S1"}

// exerciseSheet runs the tabular contract every backend must honour
func exerciseSheet(t *testing.T, sh Sheet) {
	t.Helper()
	ctx := context.Background()

	ok, err := sh.IsInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "fresh sheet should have no header")

	wrote, err := EnsureHeader(ctx, sh, header)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = EnsureHeader(ctx, sh, []string{"a", "different", "header"})
	require.NoError(t, err)
	assert.False(t, wrote, "existing header must not be rewritten")

	require.NoError(t, sh.AppendRow(ctx, []string{"2026-01-01 10:00:00", "P001", "first"}))
	require.NoError(t, sh.AppendRow(ctx, []string{"2026-01-01 11:00:00", "P001", "second"}))

	rows, err := sh.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, "first", rows[1][2])
	assert.Equal(t, "second", rows[2][2])

	require.NoError(t, sh.Clear(ctx))
	rows, err = sh.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	ok, err = sh.IsInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemory("SST_Responses")

	_, err := s.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	sh, err := s.Open(ctx, "SST_Responses")
	require.NoError(t, err)
	exerciseSheet(t, sh)
}

func TestMemoryStoreCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	first, err := OpenOrCreate(ctx, s, "new")
	require.NoError(t, err)
	require.NoError(t, first.AppendRow(ctx, header))

	second, err := OpenOrCreate(ctx, s, "new")
	require.NoError(t, err)
	ok, err := second.IsInitialized(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemorySheetReadAllReturnsCopies(t *testing.T) {
	ctx := context.Background()
	sh, err := NewMemory("s").Open(ctx, "s")
	require.NoError(t, err)
	require.NoError(t, sh.AppendRow(ctx, header))

	rows, err := sh.ReadAll(ctx)
	require.NoError(t, err)
	rows[0][0] = "mutated"

	again, err := sh.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "timestamp", again[0][0])
}

func TestBlankFirstRowIsNotAHeader(t *testing.T) {
	ctx := context.Background()
	sh, err := NewMemory("s").Open(ctx, "s")
	require.NoError(t, err)
	require.NoError(t, sh.AppendRow(ctx, []string{"", ""}))

	ok, err := sh.IsInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnsureHeaderSkipsSheetWithDataButNoHeader(t *testing.T) {
	ctx := context.Background()
	sh, err := NewMemory("s").Open(ctx, "s")
	require.NoError(t, err)
	require.NoError(t, sh.AppendRow(ctx, []string{"", ""}))
	require.NoError(t, sh.AppendRow(ctx, []string{"2026-01-01 10:00:00", "P001", "A."}))

	wrote, err := EnsureHeader(ctx, sh, header)
	require.NoError(t, err)
	assert.False(t, wrote)

	rows, err := sh.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "P001", rows[1][1])
}

func TestEnsureHeaderFillsBlankSheet(t *testing.T) {
	ctx := context.Background()
	sh, err := NewMemory("s").Open(ctx, "s")
	require.NoError(t, err)
	require.NoError(t, sh.AppendRow(ctx, []string{"", ""}))

	wrote, err := EnsureHeader(ctx, sh, header)
	require.NoError(t, err)
	assert.True(t, wrote)
}

type failingSheet struct {
	memorySheet
	err error
}

func (f *failingSheet) AppendRow(context.Context, []string) error { return f.err }

func TestEnsureHeaderWrapsFailures(t *testing.T) {
	boom := errors.New("quota exceeded")
	sh := &failingSheet{memorySheet: memorySheet{name: "s"}, err: boom}

	_, err := EnsureHeader(context.Background(), sh, header)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "write header", pe.Op)
	assert.ErrorIs(t, err, boom)
}

func TestConnect(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		backend string
	}{
		{"unset", Config{}, ErrNotConfigured, ""},
		{"none", Config{Backend: "none"}, ErrNotConfigured, ""},
		{"unknown", Config{Backend: "excel"}, ErrNotConfigured, ""},
		{"sheets without credentials", Config{Backend: "sheets"}, ErrConnection, ""},
		{"sheets with malformed credentials", Config{Backend: "sheets", GoogleCredentialsJSON: "{not json"}, ErrConnection, ""},
		{"sheets with missing file", Config{Backend: "sheets", GoogleCredentialsFile: "/nonexistent/creds.json"}, ErrConnection, ""},
		{"mongo without uri", Config{Backend: "mongo"}, ErrConnection, ""},
		{"postgres without url", Config{Backend: "postgres"}, ErrConnection, ""},
		{"memory", Config{Backend: "Memory", SheetName: "SST_Responses"}, nil, BackendMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Connect(ctx, tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.backend, s.Backend())
		})
	}
}

func TestConnectMemoryPrecreatesSheet(t *testing.T) {
	ctx := context.Background()
	s, err := Connect(ctx, Config{Backend: BackendMemory, SheetName: "SST_Responses"})
	require.NoError(t, err)

	_, err = s.Open(ctx, "SST_Responses")
	assert.NoError(t, err)
}

func TestSQLStoreSQLite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	s, err := Connect(ctx, Config{Backend: BackendSQLite, DatabasePath: filepath.Join(t.TempDir(), "responses.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(ctx) })
	assert.Equal(t, "sqlite3", s.Backend())

	_, err = s.Open(ctx, "SST_Responses")
	require.ErrorIs(t, err, ErrNotFound)

	sh, err := OpenOrCreate(ctx, s, "SST_Responses")
	require.NoError(t, err)
	exerciseSheet(t, sh)

	again, err := s.Open(ctx, "SST_Responses")
	require.NoError(t, err)
	assert.Equal(t, "SST_Responses", again.Name())
}

func TestSQLStoreReplaceIsAtomic(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	s, err := NewSQL(ctx, BackendSQLite, filepath.Join(t.TempDir(), "responses.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(ctx) })

	sh, err := s.Create(ctx, "SST_Responses")
	require.NoError(t, err)
	require.NoError(t, sh.AppendRow(ctx, header))
	require.NoError(t, sh.AppendRow(ctx, []string{"2026-01-01 10:00:00", "P001", "A."}))

	require.NoError(t, s.Replace(ctx, "SST_Responses", [][]string{header, {"2026-01-02 10:00:00", "P002", "B."}}))
	rows, err := sh.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "P002", rows[1][1])

	_, err = s.db.ExecContext(ctx, `CREATE TRIGGER reject_rows BEFORE INSERT ON sheet_rows
		WHEN NEW.cells LIKE '%rejected%'
		BEGIN SELECT RAISE(ABORT, 'row rejected'); END`)
	require.NoError(t, err)

	err = s.Replace(ctx, "SST_Responses", [][]string{header, {"rejected"}})
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)

	rows, err = sh.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{header, {"2026-01-02 10:00:00", "P002", "B."}}, rows)

	err = s.Replace(ctx, "missing", [][]string{header})
	assert.ErrorIs(t, err, ErrNotFound)
}
