package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"todos/internal/models"
)

// SQLiteStore implements the Store interface using a single local
// database file. Opening never retries: an inaccessible path is an
// immediate error.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteStore opens (creating if absent) the database file at the
// given path and ensures the schema exists.
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection: SQLite serializes writers anyway, and this
	// keeps an in-memory database on one handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database file %s: %w", dbPath, err)
	}

	store := &SQLiteStore{db: db, logger: logger.With().Str("backend", "sqlite").Logger()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	store.logger.Info().Str("path", dbPath).Msg("sqlite store ready")
	return store, nil
}

// migrate ensures the items table exists. Safe to run on every
// startup; never drops or truncates. AUTOINCREMENT keeps deleted ids
// from being reissued.
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS todo_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListItems retrieves all items ordered by id.
func (s *SQLiteStore) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, completed FROM todo_items ORDER BY id ASC
	`)
	if err != nil {
		return nil, &StorageError{Op: "list items", Err: err}
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Completed); err != nil {
			return nil, &StorageError{Op: "scan item", Err: err}
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list items", Err: err}
	}

	return items, nil
}

// GetItem retrieves an item by ID.
func (s *SQLiteStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	item := &models.Item{}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, completed FROM todo_items WHERE id = ?
	`, id).Scan(&item.ID, &item.Name, &item.Completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "get item", Err: err}
	}

	return item, nil
}

// CreateItem creates a new item and sets its assigned id.
func (s *SQLiteStore) CreateItem(ctx context.Context, item *models.Item) error {
	if err := item.Validate(); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO todo_items (name, completed) VALUES (?, ?)
	`, item.Name, item.Completed)
	if err != nil {
		return &StorageError{Op: "create item", Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return &StorageError{Op: "create item", Err: err}
	}
	item.ID = id

	return nil
}

// UpdateItem applies a partial update and returns the resulting item.
func (s *SQLiteStore) UpdateItem(ctx context.Context, id int64, upd models.ItemUpdate) (*models.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Empty() {
		return item, nil
	}

	if upd.Name != nil {
		item.Name = *upd.Name
	}
	if upd.Completed != nil {
		item.Completed = *upd.Completed
	}

	if err := item.Validate(); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE todo_items SET name = ?, completed = ? WHERE id = ?
	`, item.Name, item.Completed, id); err != nil {
		return nil, &StorageError{Op: "update item", Err: err}
	}

	return item, nil
}

// DeleteItem deletes an item by ID.
func (s *SQLiteStore) DeleteItem(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM todo_items WHERE id = ?`, id)
	if err != nil {
		return &StorageError{Op: "delete item", Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &StorageError{Op: "delete item", Err: err}
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
