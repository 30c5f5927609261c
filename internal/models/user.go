package models

import "time"

// InternalUser represents a user account stored in the internal area.
type InternalUser struct {
	UserID       string    `json:"user_id" badgerhold:"key"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // empty for OAuth-only accounts
	Provider     string    `json:"provider"` // "password", "google"
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at,omitempty"`
}

// UserKeyValue is a per-user configuration entry.
type UserKeyValue struct {
	UserID   string    `json:"user_id"`
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	DateTime time.Time `json:"datetime"`
}

// UserRecord is the generic per-user domain record stored in the user area.
// Subject groups records ("transaction", "allocation"), Key identifies the
// record within the subject, Value holds the JSON-encoded payload.
type UserRecord struct {
	UserID   string    `json:"user_id"`
	Subject  string    `json:"subject"`
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	Version  int       `json:"version"`
	DateTime time.Time `json:"datetime"`
}
