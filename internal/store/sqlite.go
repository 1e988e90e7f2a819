package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parkside/discscore/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial document table
const currentSchemaVersion = 1

// SQLiteStore is the indexed backend. Documents live in a single records
// table; secondary-field lookups use json_extract so "holes of a course" and
// "scores of a round" never scan the whole collection in Go.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) GetAll(ctx context.Context, collection string) []json.RawMessage {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM records
		WHERE collection = ?
		ORDER BY id COLLATE BINARY ASC
	`, collection)
	if err != nil {
		slog.Warn("sqlite read failed", "op", "getAll", "collection", collection, "error", err)
		return []json.RawMessage{}
	}
	defer rows.Close()
	return collectDocs(rows, collection)
}

func (s *SQLiteStore) GetByID(ctx context.Context, collection, id string) (json.RawMessage, bool) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM records WHERE collection = ? AND id = ?
	`, collection, id).Scan(&data)
	switch {
	case err == sql.ErrNoRows:
		return nil, false
	case err != nil:
		slog.Warn("sqlite read failed", "op", "getById", "collection", collection, "id", id, "error", err)
		return nil, false
	}
	return json.RawMessage(data), true
}

func (s *SQLiteStore) GetByField(ctx context.Context, collection, field, value string) []json.RawMessage {
	// '$.' || ? builds the JSON path at query time so any top-level field
	// can serve as a secondary index.
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM records
		WHERE collection = ? AND json_extract(data, '$.' || ?) = ?
		ORDER BY id COLLATE BINARY ASC
	`, collection, field, value)
	if err != nil {
		slog.Warn("sqlite read failed", "op", "getByField", "collection", collection, "field", field, "error", err)
		return []json.RawMessage{}
	}
	defer rows.Close()
	return collectDocs(rows, collection)
}

func (s *SQLiteStore) Put(ctx context.Context, collection string, rec model.Record) error {
	id, data, err := marshalRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data
	`, collection, id, string(data))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

// PutMany upserts each record in a single transaction. Unlike the file
// backend, existing records outside the batch are untouched.
func (s *SQLiteStore) PutMany(ctx context.Context, collection string, recs []model.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("putMany %s: %w", collection, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data
	`)
	if err != nil {
		return fmt.Errorf("putMany %s: %w", collection, err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		id, data, err := marshalRecord(rec)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, collection, id, string(data)); err != nil {
			return fmt.Errorf("putMany %s/%s: %w", collection, id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("putMany %s: %w", collection, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM records WHERE collection = ? AND id = ?
	`, collection, id)
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, collection string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM records WHERE collection = ?
	`, collection)
	if err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	return nil
}

func collectDocs(rows *sql.Rows, collection string) []json.RawMessage {
	docs := []json.RawMessage{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			slog.Warn("sqlite scan failed", "collection", collection, "error", err)
			return docs
		}
		docs = append(docs, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		slog.Warn("sqlite iteration failed", "collection", collection, "error", err)
	}
	return docs
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and stamps the version.
// Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}
