package store

import (
	"context"

	"github.com/rs/zerolog"

	"todos/internal/config"
	"todos/internal/models"
)

// Store defines the interface for item persistence operations. Both
// backends satisfy identical semantics; differences are confined to
// storage mechanics.
type Store interface {
	// ListItems returns all items in insertion order (ascending id).
	// An empty store yields an empty slice, not an error.
	ListItems(ctx context.Context) ([]models.Item, error)

	// GetItem returns the item with the given id, or ErrNotFound.
	GetItem(ctx context.Context, id int64) (*models.Item, error)

	// CreateItem inserts the item and sets its assigned id. An empty
	// name is a ValidationError.
	CreateItem(ctx context.Context, item *models.Item) error

	// UpdateItem applies the non-nil fields of upd to the item with
	// the given id and returns the result. ErrNotFound if the id does
	// not exist; an empty update is a no-op success.
	UpdateItem(ctx context.Context, id int64, upd models.ItemUpdate) (*models.Item, error)

	// DeleteItem removes the item, or returns ErrNotFound. Deleting
	// the same id twice fails the second time.
	DeleteItem(ctx context.Context, id int64) error

	// Lifecycle
	Close() error
}

// Open constructs the Store implementation selected by the
// configuration. The choice is made once at startup and never
// re-checked. Opening includes connecting (with bounded retry for the
// networked backend) and ensuring the schema exists, so a returned
// Store is ready for use.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Store, error) {
	if cfg.MySQL != nil {
		return NewMySQLStore(ctx, cfg.MySQL, logger)
	}
	return NewSQLiteStore(cfg.SQLitePath, logger)
}
