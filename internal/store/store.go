// Package store persists completed survey rows in a named, append-only sheet.
// The Google Sheets backend is the production target; the SQL, MongoDB and
// in-memory backends keep the same tabular contract for local deployments
// and tests.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shortstory/internal/config"
)

var (
	// ErrNotConfigured means no backend was selected
	ErrNotConfigured = errors.New("response store not configured")
	// ErrConnection means the backend could not be reached or authenticated
	ErrConnection = errors.New("response store connection failed")
	// ErrNotFound means no sheet with the requested name is reachable
	ErrNotFound = errors.New("sheet not found")
)

// Sheet is one named table of rows. The first row, once written, is the header.
type Sheet interface {
	Name() string
	AppendRow(ctx context.Context, row []string) error
	// ReadAll returns every row including the header
	ReadAll(ctx context.Context) ([][]string, error)
	// IsInitialized reports whether the sheet holds anything but blank rows.
	// A header that was removed by hand above existing data still counts.
	IsInitialized(ctx context.Context) (bool, error)
	// Clear removes every row, header included
	Clear(ctx context.Context) error
}

// Store resolves sheets by name
type Store interface {
	Backend() string
	Open(ctx context.Context, name string) (Sheet, error)
	Close(ctx context.Context) error
}

// Creator is implemented by backends that can create a sheet themselves.
// Create returns the existing sheet when one with that name is present.
type Creator interface {
	Create(ctx context.Context, name string) (Sheet, error)
}

// Replacer is implemented by backends that can swap all rows of a sheet,
// header included, as one atomic step
type Replacer interface {
	Replace(ctx context.Context, name string, rows [][]string) error
}

// PersistenceError wraps any failure after a connection was established
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// EnsureHeader writes columns as the first row when the sheet is empty. An
// existing header is left alone and not compared, and a sheet with data but
// no header gets none, so rows are never appended out of order. It reports whether
// it wrote the header.
func EnsureHeader(ctx context.Context, sheet Sheet, columns []string) (bool, error) {
	ok, err := sheet.IsInitialized(ctx)
	if err != nil {
		return false, persistErr("check header", err)
	}
	if ok {
		return false, nil
	}
	if err := sheet.AppendRow(ctx, columns); err != nil {
		return false, persistErr("write header", err)
	}
	return true, nil
}

// OpenOrCreate opens name, creating it first when the backend supports that
func OpenOrCreate(ctx context.Context, s Store, name string) (Sheet, error) {
	if c, ok := s.(Creator); ok {
		return c.Create(ctx, name)
	}
	return s.Open(ctx, name)
}

// Backend names accepted by Connect
const (
	BackendNone     = "none"
	BackendSheets   = "sheets"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// Config selects and parameterizes a backend
type Config struct {
	Backend   string
	SheetName string

	GoogleCredentialsJSON string
	GoogleCredentialsFile string

	DatabasePath string
	DatabaseURL  string

	MongoURI      string
	MongoDatabase string
}

// ConfigFrom extracts the store settings from the application config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Backend:               cfg.StoreBackend,
		SheetName:             cfg.SheetName,
		GoogleCredentialsJSON: cfg.GoogleCredentialsJSON,
		GoogleCredentialsFile: cfg.GoogleCredentialsFile,
		DatabasePath:          cfg.DatabasePath,
		DatabaseURL:           cfg.DatabaseURL,
		MongoURI:              cfg.MongoURI,
		MongoDatabase:         cfg.MongoDatabase,
	}
}

// Connect opens the configured backend. Errors wrap ErrNotConfigured or
// ErrConnection; callers are expected to fall back to local-only mode.
func Connect(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNone:
		return nil, ErrNotConfigured
	case BackendSheets:
		creds, err := loadGoogleCredentials(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnection, err)
		}
		s, err := NewSheets(ctx, creds)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnection, err)
		}
		return s, nil
	case BackendSQLite, "sqlite3", BackendPostgres, "postgresql", BackendMySQL:
		s, err := NewSQL(ctx, cfg.Backend, cfg.DatabasePath, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnection, err)
		}
		return s, nil
	case BackendMongo, "mongodb":
		s, err := NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnection, err)
		}
		return s, nil
	case BackendMemory:
		return NewMemory(cfg.SheetName), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrNotConfigured, cfg.Backend)
	}
}
