// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/peytondoyle/tabby/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for bill and user persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateBill persists a new bill with its items, people, and shares.
	// Missing IDs, title, and CreatedAt are populated by the store.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by ID with its items, people, and shares,
	// each in insertion order. The split engine's rounding tie-breaks
	// depend on that order being stable.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// UpdateBill replaces the bill's fields, items, people, and shares.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes a bill and everything attached to it.
	DeleteBill(ctx context.Context, billID string) error

	// ListBillsByOwner returns the user's bills, newest first, without
	// items, people, or shares loaded.
	ListBillsByOwner(ctx context.Context, ownerID string) ([]models.Bill, error)

	// UpsertShare writes one assignment keyed by (itemID, personID).
	// A weight <= 0 deletes the share, so non-positive weights never
	// reach the split engine through this path.
	UpsertShare(ctx context.Context, itemID, personID string, weight float64) error

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
