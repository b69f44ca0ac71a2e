package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	pg "github.com/lib/pq"
	"opslab/internal/app/apperr"
	"opslab/internal/app/logger"
	"opslab/internal/app/model"
	"opslab/internal/app/storage"
	"time"
)

// storage.TransactionRepository interface implementation
var _ storage.TransactionRepository = (*TransactionRepository)(nil)

const (
	// DefaultListLimit bounds recent/by-user listings when the caller
	// supplies no limit.
	DefaultListLimit = 25
	// DefaultSearchLimit bounds search results when the caller supplies no
	// limit, so an empty filter set stays finite.
	DefaultSearchLimit = 50
	// MaxLimit is the hard cap on any single result set.
	MaxLimit = 100
)

const transactionColumns = "id, order_id, user_id, amount_cents, status, created_at"

type TransactionRepository struct {
	db *sql.DB
}

func (r *TransactionRepository) LoggerComponent() string {
	return "TransactionRepository"
}

func NewTransactionRepository(db *sql.DB) (*TransactionRepository, error) {
	s := &TransactionRepository{
		db: db,
	}
	return s, nil
}

// GetRecent implementation of interface storage.TransactionRepository
func (r *TransactionRepository) GetRecent(ctx context.Context, limit int) ([]*model.Transaction, error) {
	const SQL = `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1
`
	rows, err := r.db.QueryContext(ctx, SQL, clampLimit(limit, DefaultListLimit))
	if err != nil {
		return nil, apperr.Query(err)
	}

	return scanTransactions(ctx, rows)
}

// AllByUserID implementation of interface storage.TransactionRepository
func (r *TransactionRepository) AllByUserID(ctx context.Context, userID string, limit int) ([]*model.Transaction, error) {
	const SQL = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, SQL, userID, clampLimit(limit, DefaultListLimit))
	if err != nil {
		return nil, apperr.Query(err)
	}

	return scanTransactions(ctx, rows)
}

// Search implementation of interface storage.TransactionRepository
func (r *TransactionRepository) Search(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.ErrInvalidInput
	}
	if f.MinAmountCents != nil && *f.MinAmountCents < 0 {
		return nil, apperr.ErrInvalidInput
	}
	if f.MaxAmountCents != nil && *f.MaxAmountCents < 0 {
		return nil, apperr.ErrInvalidInput
	}

	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)

	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if f.MinAmountCents != nil {
		args = append(args, *f.MinAmountCents)
		where = append(where, fmt.Sprintf("amount_cents>=$%d", len(args)))
	}
	if f.MaxAmountCents != nil {
		args = append(args, *f.MaxAmountCents)
		where = append(where, fmt.Sprintf("amount_cents<=$%d", len(args)))
	}

	q := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, clampLimit(f.Limit, DefaultSearchLimit))
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Query(err)
	}

	return scanTransactions(ctx, rows)
}

// Create implementation of interface storage.TransactionRepository
func (r *TransactionRepository) Create(ctx context.Context, m *model.Transaction) (*model.Transaction, error) {
	l := logger.Ctx(ctx).With().
		Str("method", "Create").
		Str("user_id", m.UserID).
		Logger()
	l.Debug().Msg("Creating transaction")

	if m.UserID == "" || m.AmountCents < 0 || !m.Status.Valid() {
		return nil, apperr.ErrInvalidInput
	}

	m.OrderID = uuid.New().String()
	m.CreatedAt = time.Now().UTC()

	const SQL = `
		INSERT INTO transactions (order_id, user_id, amount_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
`

	err := r.db.QueryRowContext(ctx, SQL, m.OrderID, m.UserID, m.AmountCents, m.Status, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		if pgErr, ok := err.(*pg.Error); ok {
			if pgerrcode.IsIntegrityConstraintViolation(string(pgErr.Code)) {
				return nil, apperr.ErrConflict
			}
		}

		return nil, apperr.Query(err)
	}

	return m, nil
}

// UpdateStatus implementation of interface storage.TransactionRepository.
// A single UPDATE..RETURNING statement keeps the write serialized per row.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, orderID string, status model.Status) (*model.Transaction, error) {
	if !status.Valid() {
		return nil, apperr.ErrInvalidInput
	}

	const SQL = `
		UPDATE transactions
		SET status=$1
		WHERE order_id=$2
		RETURNING ` + transactionColumns + `
`
	m := &model.Transaction{}

	err := r.db.QueryRowContext(ctx, SQL, status, orderID).
		Scan(&m.ID, &m.OrderID, &m.UserID, &m.AmountCents, &m.Status, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Query(err)
	}

	return m, nil
}

// BadQuery implementation of interface storage.TransactionRepository. The
// table does not exist, so the driver error propagates on every call.
func (r *TransactionRepository) BadQuery(ctx context.Context) error {
	const SQL = `SELECT * FROM not_a_real_table`

	rows, err := r.db.QueryContext(ctx, SQL)
	if err != nil {
		return apperr.Query(err)
	}
	_ = rows.Close()

	return nil
}

func scanTransactions(ctx context.Context, rows *sql.Rows) ([]*model.Transaction, error) {
	l := logger.Ctx(ctx).With().Str("method", "scanTransactions").Logger()
	defer func() {
		_ = rows.Close()
	}()

	res := make([]*model.Transaction, 0)

	for rows.Next() {
		m := &model.Transaction{}
		if err := rows.Scan(&m.ID, &m.OrderID, &m.UserID, &m.AmountCents, &m.Status, &m.CreatedAt); err != nil {
			l.Debug().Err(err).Send()
			return nil, fmt.Errorf("scan: %w", err)
		}
		res = append(res, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Query(err)
	}

	return res, nil
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
