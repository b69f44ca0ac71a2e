package model

import (
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Valid reports whether s belongs to the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined:
		return true
	}
	return false
}

type Transaction struct {
	ID          int64     `json:"id"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionFilter carries the optional search predicates. A zero field means
// no constraint; present predicates are ANDed.
type TransactionFilter struct {
	Status         Status
	UserID         string
	MinAmountCents *int64
	MaxAmountCents *int64
	Limit          int
}
