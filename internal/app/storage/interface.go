package storage

import (
	"context"

	"opslab/internal/app/model"
)

type TransactionRepository interface {
	// GetRecent returns the most recently created transactions, newest first
	GetRecent(ctx context.Context, limit int) ([]*model.Transaction, error)
	// AllByUserID returns all transactions of a user, newest first
	AllByUserID(ctx context.Context, userID string, limit int) ([]*model.Transaction, error)
	// Search returns transactions matching every present filter predicate
	Search(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, error)
	// Create a new model.Transaction, assigning order id and creation time
	Create(ctx context.Context, m *model.Transaction) (*model.Transaction, error)
	// UpdateStatus mutates the status of one row, returning the updated row
	UpdateStatus(ctx context.Context, orderID string, status model.Status) (*model.Transaction, error)
	// BadQuery issues a deliberately malformed query for failure drills
	BadQuery(ctx context.Context) error
}
