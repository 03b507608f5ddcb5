// Package ports declares the persistence contracts shared by the storage
// backends and the view-model.
package ports

import (
	"context"
	"errors"

	"nabungemas/internal/core"
)

// ErrNotFound is returned for a saving or transaction that does not exist.
var ErrNotFound = errors.New("not found")

// SavingStore persists saving goals keyed by category.
type SavingStore interface {
	ListSavings(ctx context.Context) ([]core.Saving, error)
	// UpsertSaving creates the goal or updates its target. The stored total
	// is never taken from s.
	UpsertSaving(ctx context.Context, s core.Saving) error
	// DeleteSaving removes the goal only. Its transactions are kept.
	DeleteSaving(ctx context.Context, category string) error
}

// TransactionStore persists gold purchases and keeps the matching saving's
// total in step with them.
type TransactionStore interface {
	// ListTransactions returns the newest transaction first.
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	// CreateTransaction stores t, adds its value to the saving named by
	// t.SavingCategory (creating it with a zero target if needed) and
	// returns the new ID.
	CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
	// DeleteTransaction removes the row and subtracts its value from the
	// saving's total, never going below zero.
	DeleteTransaction(ctx context.Context, id int64) error
}

// Repository is what a backend provides.
type Repository interface {
	SavingStore
	TransactionStore
	Ping(ctx context.Context) error
}

// OptionLister supplies dropdown options for the forms.
type OptionLister interface {
	SavingCategories() []string
	Products() []string
}
