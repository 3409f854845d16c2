package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"todos/internal/config"
	"todos/internal/models"
)

// MySQLStore implements the Store interface against a MySQL server.
// Connecting retries with backoff: in containerized deployments the
// application regularly starts before the database finishes booting,
// and a single-attempt connect would crash-loop for no reason.
type MySQLStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewMySQLStore connects to the configured server, retrying until it
// answers or the retry budget (cfg.ConnectTimeout) runs out, then
// ensures the schema exists.
func NewMySQLStore(ctx context.Context, cfg *config.MySQL, logger zerolog.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", mysqlDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &MySQLStore{db: db, logger: logger.With().Str("backend", "mysql").Logger()}

	if err := store.connect(ctx, cfg); err != nil {
		db.Close()
		return nil, err
	}

	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	store.logger.Info().Str("addr", cfg.Addr()).Str("database", cfg.Database).Msg("mysql store ready")
	return store, nil
}

// mysqlDSN builds the driver DSN from the backend parameters.
func mysqlDSN(cfg *config.MySQL) string {
	dsn := mysql.NewConfig()
	dsn.Net = "tcp"
	dsn.Addr = cfg.Addr()
	dsn.User = cfg.User
	dsn.Passwd = cfg.Password
	dsn.DBName = cfg.Database
	dsn.ParseTime = true
	return dsn.FormatDSN()
}

// connect pings the server until it answers, with exponential backoff
// bounded by cfg.ConnectTimeout. Exhausting the budget is terminal.
func (s *MySQLStore) connect(ctx context.Context, cfg *config.MySQL) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = cfg.ConnectTimeout

	attempts := 0
	op := func() error {
		attempts++
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn().Err(err).Int("attempt", attempts).Msg("database not ready, retrying")
			return err
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return &ConnectionError{Backend: "mysql", Attempts: attempts, Err: err}
	}

	s.logger.Info().Int("attempts", attempts).Msg("connected to database")
	return nil
}

// migrate ensures the items table exists. Create-if-not-exists only;
// safe on every startup, never destructive.
func (s *MySQLStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS todo_items (
		id INT NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (id)
	)
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// ListItems retrieves all items ordered by id.
func (s *MySQLStore) ListItems(ctx context.Context) ([]models.Item, error) {
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
func (s *MySQLStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
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
func (s *MySQLStore) CreateItem(ctx context.Context, item *models.Item) error {
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
func (s *MySQLStore) UpdateItem(ctx context.Context, id int64, upd models.ItemUpdate) (*models.Item, error) {
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
func (s *MySQLStore) DeleteItem(ctx context.Context, id int64) error {
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
