package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// googleScopes are the scopes the service account needs: Sheets to read and
// append, Drive to find a spreadsheet by its name.
var googleScopes = []string{sheets.SpreadsheetsScope, drive.DriveReadonlyScope}

// SheetsStore stores rows in the first worksheet of a Google spreadsheet that
// has been shared with the service account.
type SheetsStore struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// loadGoogleCredentials reads service-account JSON from the inline setting,
// falling back to the credentials file.
func loadGoogleCredentials(cfg Config) ([]byte, error) {
	if raw := strings.TrimSpace(cfg.GoogleCredentialsJSON); raw != "" {
		return []byte(raw), nil
	}
	if cfg.GoogleCredentialsFile == "" {
		return nil, errors.New("no Google service account credentials configured")
	}
	data, err := os.ReadFile(cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return data, nil
}

// NewSheets authorizes with service-account JSON
func NewSheets(ctx context.Context, credentialsJSON []byte) (*SheetsStore, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, googleScopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials: %w", err)
	}
	return newSheetsStore(ctx, option.WithCredentials(creds))
}

func newSheetsStore(ctx context.Context, opts ...option.ClientOption) (*SheetsStore, error) {
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	return &SheetsStore{sheets: sheetsSvc, drive: driveSvc}, nil
}

func (s *SheetsStore) Backend() string { return BackendSheets }

func (s *SheetsStore) Close(context.Context) error { return nil }

// Open finds the spreadsheet by exact name and binds to its first worksheet
func (s *SheetsStore) Open(ctx context.Context, name string) (Sheet, error) {
	list, err := s.drive.Files.List().
		Q(driveNameQuery(name)).
		Fields("files(id, name)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, persistErr("find spreadsheet", err)
	}
	if len(list.Files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	id := list.Files[0].Id

	doc, err := s.sheets.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, persistErr("open spreadsheet", err)
	}
	if len(doc.Sheets) == 0 || doc.Sheets[0].Properties == nil {
		return nil, persistErr("open spreadsheet", errors.New("spreadsheet has no worksheets"))
	}

	return &googleSheet{
		svc:   s.sheets,
		id:    id,
		name:  name,
		title: doc.Sheets[0].Properties.Title,
	}, nil
}

type googleSheet struct {
	svc   *sheets.Service
	id    string
	name  string
	title string
}

func (g *googleSheet) Name() string { return g.name }

func (g *googleSheet) AppendRow(ctx context.Context, row []string) error {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	_, err := g.svc.Spreadsheets.Values.
		Append(g.id, a1Range(g.title, ""), &sheets.ValueRange{Values: [][]interface{}{cells}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return persistErr("append row", err)
}

func (g *googleSheet) ReadAll(ctx context.Context) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.id, a1Range(g.title, "")).Context(ctx).Do()
	if err != nil {
		return nil, persistErr("read rows", err)
	}
	return toRows(resp.Values), nil
}

func (g *googleSheet) IsInitialized(ctx context.Context) (bool, error) {
	rows, err := g.ReadAll(ctx)
	if err != nil {
		return false, err
	}
	return hasContent(rows), nil
}

func (g *googleSheet) Clear(ctx context.Context) error {
	_, err := g.svc.Spreadsheets.Values.Clear(g.id, a1Range(g.title, ""), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return persistErr("clear sheet", err)
}

// a1Range quotes a worksheet title for A1 notation
func a1Range(title, cells string) string {
	quoted := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

func driveNameQuery(name string) string {
	escaped := strings.ReplaceAll(strings.ReplaceAll(name, `\`, `\\`), "'", `\'`)
	return fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escaped, spreadsheetMimeType)
}

// toRows stringifies API cells. Trailing empty cells are omitted by the API,
// so rows may be shorter than the header.
func toRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, vals := range values {
		row := make([]string, len(vals))
		for j, v := range vals {
			if v != nil {
				row[j] = fmt.Sprint(v)
			}
		}
		rows[i] = row
	}
	return rows
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
