package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// fakeGoogle serves the handful of Drive and Sheets endpoints the store uses
type fakeGoogle struct {
	mu        sync.Mutex
	files     map[string]string // name -> id
	rows      [][]interface{}
	lastQuery string
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path

	switch {
	case strings.HasSuffix(path, "/files"):
		f.lastQuery = r.URL.Query().Get("q")
		var files []map[string]string
		for name, id := range f.files {
			if strings.Contains(f.lastQuery, "name = '"+name+"'") {
				files = append(files, map[string]string{"id": id, "name": name})
			}
		}
		writeJSON(w, map[string]any{"files": files})

	case strings.HasSuffix(path, ":append"):
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		f.rows = append(f.rows, body.Values...)
		writeJSON(w, map[string]any{})

	case strings.HasSuffix(path, ":clear"):
		f.rows = nil
		writeJSON(w, map[string]any{})

	case strings.Contains(path, "/values/"):
		writeJSON(w, map[string]any{"values": f.rows})

	case strings.HasPrefix(path, "/v4/spreadsheets/"):
		writeJSON(w, map[string]any{"sheets": []map[string]any{{"properties": map[string]any{"title": "Sheet1"}}}})

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

func newFakeSheetsStore(t *testing.T, fake *fakeGoogle) *SheetsStore {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := newSheetsStore(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return s
}

func TestSheetsStoreOpenMissing(t *testing.T) {
	s := newFakeSheetsStore(t, &fakeGoogle{files: map[string]string{}})

	_, err := s.Open(context.Background(), "SST_Responses")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSheetsStoreRoundTrip(t *testing.T) {
	fake := &fakeGoogle{files: map[string]string{"SST_Responses": "sheet-123"}}
	s := newFakeSheetsStore(t, fake)

	sh, err := s.Open(context.Background(), "SST_Responses")
	require.NoError(t, err)
	assert.Contains(t, fake.lastQuery, "mimeType = 'application/vnd.google-apps.spreadsheet'")
	assert.Contains(t, fake.lastQuery, "trashed = false")

	exerciseSheet(t, sh)
}

func TestSheetsStoreKeepsShortRows(t *testing.T) {
	// the API drops trailing empty cells; the store passes short rows through
	fake := &fakeGoogle{
		files: map[string]string{"s": "id"},
		rows:  [][]interface{}{{"a", "b", "c"}, {"1"}},
	}
	sh, err := newFakeSheetsStore(t, fake).Open(context.Background(), "s")
	require.NoError(t, err)

	rows, err := sh.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1"}}, rows)
}

func TestA1Range(t *testing.T) {
	assert.Equal(t, "'Sheet1'", a1Range("Sheet1", ""))
	assert.Equal(t, "'Bob''s data'!1:1", a1Range("Bob's data", "1:1"))
}

func TestDriveNameQueryEscapes(t *testing.T) {
	q := driveNameQuery(`it's`)
	assert.True(t, strings.HasPrefix(q, `name = 'it\'s'`), q)
}

func TestSheetsStoreHeaderlessDataCountsAsInitialized(t *testing.T) {
	fake := &fakeGoogle{
		files: map[string]string{"s": "id"},
		rows:  [][]interface{}{{}, {"2026-01-01 10:00:00", "P001"}},
	}
	sh, err := newFakeSheetsStore(t, fake).Open(context.Background(), "s")
	require.NoError(t, err)

	wrote, err := EnsureHeader(context.Background(), sh, header)
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Len(t, fake.rows, 2)
}
