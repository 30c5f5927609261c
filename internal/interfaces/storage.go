// Package interfaces defines service and storage contracts for Folio
package interfaces

import (
	"context"

	"github.com/jcarver/folio/internal/models"
)

// StorageManager coordinates the 2 storage areas.
type StorageManager interface {
	InternalStore() InternalStore
	UserDataStore() UserDataStore

	Close() error
}

// InternalStore manages user accounts, per-user config, and system-level KV.
type InternalStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.InternalUser, error)
	GetUserByEmail(ctx context.Context, email string) (*models.InternalUser, error)
	SaveUser(ctx context.Context, user *models.InternalUser) error
	DeleteUser(ctx context.Context, userID string) error

	// Per-user key-value config
	GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error)
	SetUserKV(ctx context.Context, userID, key, value string) error
	ListUserKV(ctx context.Context, userID string) ([]*models.UserKeyValue, error)

	// System key-value (non-user-scoped)
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error

	Close() error
}

// QueryOptions controls UserDataStore.Query ordering and limits.
type QueryOptions struct {
	OrderBy string // "datetime_asc" or "datetime_desc" (default)
	Limit   int    // 0 = no limit
}

// UserDataStore persists per-user domain records (transactions, allocation
// targets) as generic UserRecord entries.
type UserDataStore interface {
	Get(ctx context.Context, userID, subject, key string) (*models.UserRecord, error)
	Put(ctx context.Context, record *models.UserRecord) error
	Delete(ctx context.Context, userID, subject, key string) error
	List(ctx context.Context, userID, subject string) ([]*models.UserRecord, error)
	Query(ctx context.Context, userID, subject string, opts QueryOptions) ([]*models.UserRecord, error)

	Close() error
}
