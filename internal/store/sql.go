package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"shortstory/internal/database"
)

// SQLStore keeps sheets as rows of JSON-encoded cells in a relational database
type SQLStore struct {
	db *database.DB
}

// NewSQL opens the database and applies the schema migrations
func NewSQL(ctx context.Context, backend, path, url string) (*SQLStore, error) {
	db, err := database.Open(ctx, backend, path, url)
	if err != nil {
		return nil, err
	}
	if _, err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Backend() string { return s.db.Dialect.DriverName() }

func (s *SQLStore) Close(context.Context) error { return s.db.Close() }

func (s *SQLStore) Open(ctx context.Context, name string) (Sheet, error) {
	sh, err := lookupSheet(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// Replace swaps every row of name for rows in one transaction
func (s *SQLStore) Replace(ctx context.Context, name string, rows [][]string) error {
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		sh, err := lookupSheet(ctx, tx, name)
		if err != nil {
			return err
		}
		if err := sh.Clear(ctx); err != nil {
			return err
		}
		for _, row := range rows {
			if err := sh.AppendRow(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	return persistErr("replace rows", err)
}

func lookupSheet(ctx context.Context, db database.DBTX, name string) (*sqlSheet, error) {
	var id int64
	err := db.QueryRowContext(ctx, "SELECT id FROM sheets WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, persistErr("open sheet", err)
	}
	return &sqlSheet{db: db, id: id, name: name}, nil
}

func (s *SQLStore) Create(ctx context.Context, name string) (Sheet, error) {
	sh, err := s.Open(ctx, name)
	if !errors.Is(err, ErrNotFound) {
		return sh, err
	}
	id, err := s.db.ExecReturningID(ctx, "INSERT INTO sheets (name) VALUES (?)", name)
	if err != nil {
		return nil, persistErr("create sheet", err)
	}
	return &sqlSheet{db: s.db, id: id, name: name}, nil
}

type sqlSheet struct {
	db   database.DBTX
	id   int64
	name string
}

func (s *sqlSheet) Name() string { return s.name }

func (s *sqlSheet) AppendRow(ctx context.Context, row []string) error {
	cells, err := json.Marshal(row)
	if err != nil {
		return persistErr("encode row", err)
	}
	_, err = s.db.ExecContext(ctx, "INSERT INTO sheet_rows (sheet_id, cells) VALUES (?, ?)", s.id, string(cells))
	return persistErr("append row", err)
}

func (s *sqlSheet) ReadAll(ctx context.Context) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT cells FROM sheet_rows WHERE sheet_id = ? ORDER BY id", s.id)
	if err != nil {
		return nil, persistErr("read rows", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, persistErr("read rows", err)
		}
		var row []string
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, persistErr("decode row", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("read rows", err)
	}
	return out, nil
}

func (s *sqlSheet) IsInitialized(ctx context.Context) (bool, error) {
	rows, err := s.ReadAll(ctx)
	if err != nil {
		return false, err
	}
	return hasContent(rows), nil
}

func (s *sqlSheet) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sheet_rows WHERE sheet_id = ?", s.id)
	return persistErr("clear sheet", err)
}
