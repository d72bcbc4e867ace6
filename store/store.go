// Package store persists users and the append-only check-in/out event log.
//
// Two implementations share one contract: Postgres (pgx) for deployments with
// a DATABASE_URL, and embedded SQLite matching the original single-file setup.
package store

import (
	"context"
	"errors"
	"strings"

	"checkin-backend/models"
)

// ErrNotFound is returned when a user or event the operation targets does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when registering an email that is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// Store is the single logical data store shared by all request handlers.
type Store interface {
	// CreateUser inserts a user and returns its id. ErrDuplicateEmail on conflict.
	CreateUser(ctx context.Context, name, email, passwordHash string) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// AppendEvent records a checkin/checkout event for the user and flips the
	// cached presence flag in the same transaction. ErrNotFound if the user
	// does not exist. Returns the new event id.
	AppendEvent(ctx context.Context, userID int64, action string) (int64, error)
	IsCheckedIn(ctx context.Context, userID int64) (bool, error)

	// ListEvents returns events matching the filter ordered by insertion id
	// ascending, the ordering session reconstruction depends on.
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	OnlineUsers(ctx context.Context) ([]models.OnlineUser, error)

	// UpdateEventTimestamp overwrites the timestamp of the event matching both
	// id and action. ErrNotFound when no row matches both predicates; the
	// double predicate guards against correcting the wrong action type.
	UpdateEventTimestamp(ctx context.Context, id int64, action, timestamp string) error

	// Clear wipes all users, resources and events. Irreversible; test/demo resets only.
	Clear(ctx context.Context) error

	Close() error
}

// Open picks an implementation from the DSN: postgres:// URLs get the pgx
// store, anything else is treated as a SQLite path.
func Open(ctx context.Context, dsn string) (Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return NewPostgres(ctx, dsn)
	}
	return NewSQLite(ctx, dsn)
}
