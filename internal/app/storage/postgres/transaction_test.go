package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"opslab/internal/app/apperr"
	"opslab/internal/app/model"
)

func newMock(t *testing.T) (*TransactionRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo, err := NewTransactionRepository(db)
	if err != nil {
		t.Fatalf("repository init: %v", err)
	}

	return repo, mock
}

func txRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "order_id", "user_id", "amount_cents", "status", "created_at"})
}

func TestGetRecentDefaultsAndOrders(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(DefaultListLimit).
		WillReturnRows(txRows().
			AddRow(4, "ORD-1004", "U-003", 9999, "approved", now).
			AddRow(2, "ORD-1002", "U-002", 1099, "pending", now.Add(-time.Minute)))

	mm, err := repo.GetRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(mm) != 2 {
		t.Fatalf("got %d rows, want 2", len(mm))
	}
	if mm[0].OrderID != "ORD-1004" || mm[1].OrderID != "ORD-1002" {
		t.Errorf("unexpected order: %s, %s", mm[0].OrderID, mm[1].OrderID)
	}
	if mm[0].Status != model.StatusApproved {
		t.Errorf("status = %s, want approved", mm[0].Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetRecentClampsLimit(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(MaxLimit).
		WillReturnRows(txRows())

	if _, err := repo.GetRecent(context.Background(), 5000); err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAllByUserIDUnknownUserIsEmpty(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id=$1")).
		WithArgs("U-404", DefaultListLimit).
		WillReturnRows(txRows())

	mm, err := repo.AllByUserID(context.Background(), "U-404", 0)
	if err != nil {
		t.Fatalf("AllByUserID: %v", err)
	}
	if mm == nil || len(mm) != 0 {
		t.Fatalf("got %v, want empty slice", mm)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSearchComposesPresentFilters(t *testing.T) {
	repo, mock := newMock(t)

	min := int64(500)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status=$1 AND amount_cents>=$2 ORDER BY created_at DESC LIMIT $3")).
		WithArgs("pending", min, DefaultSearchLimit).
		WillReturnRows(txRows().AddRow(2, "ORD-1002", "U-002", 1099, "pending", time.Now()))

	mm, err := repo.Search(context.Background(), model.TransactionFilter{
		Status:         model.StatusPending,
		MinAmountCents: &min,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(mm) != 1 || mm[0].OrderID != "ORD-1002" {
		t.Fatalf("unexpected result: %+v", mm)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSearchWithoutFiltersIsBounded(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions ORDER BY created_at DESC LIMIT $1")).
		WithArgs(DefaultSearchLimit).
		WillReturnRows(txRows())

	if _, err := repo.Search(context.Background(), model.TransactionFilter{}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSearchRejectsInvalidFilter(t *testing.T) {
	repo, _ := newMock(t)

	_, err := repo.Search(context.Background(), model.TransactionFilter{Status: "bogus"})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	neg := int64(-1)
	_, err = repo.Search(context.Background(), model.TransactionFilter{MinAmountCents: &neg})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCreateValidatesBeforeInsert(t *testing.T) {
	repo, _ := newMock(t)

	cases := []model.Transaction{
		{UserID: "U-001", AmountCents: -1, Status: model.StatusPending},
		{UserID: "U-001", AmountCents: 100, Status: "bogus"},
		{UserID: "", AmountCents: 100, Status: model.StatusPending},
	}
	for _, m := range cases {
		m := m
		if _, err := repo.Create(context.Background(), &m); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("Create(%+v) err = %v, want ErrInvalidInput", m, err)
		}
	}
}

func TestCreateAssignsIdentity(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(sqlmock.AnyArg(), "U-009", int64(1250), "pending", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	m, err := repo.Create(context.Background(), &model.Transaction{
		UserID:      "U-009",
		AmountCents: 1250,
		Status:      model.StatusPending,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.ID != 7 {
		t.Errorf("ID = %d, want 7", m.ID)
	}
	if _, err := uuid.Parse(m.OrderID); err != nil {
		t.Errorf("order id %q is not a uuid: %v", m.OrderID, err)
	}
	if m.CreatedAt.IsZero() {
		t.Error("created_at not assigned")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE transactions")).
		WithArgs("approved", "ORD-9999").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), "ORD-9999", model.StatusApproved)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateStatusReturnsUpdatedRow(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE transactions")).
		WithArgs("approved", "ORD-1002").
		WillReturnRows(txRows().AddRow(2, "ORD-1002", "U-002", 1099, "approved", now))

	m, err := repo.UpdateStatus(context.Background(), "ORD-1002", model.StatusApproved)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if m.Status != model.StatusApproved || m.OrderID != "ORD-1002" {
		t.Errorf("unexpected row: %+v", m)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo, _ := newMock(t)

	_, err := repo.UpdateStatus(context.Background(), "ORD-1002", "shipped")
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestBadQuerySurfacesDriverError(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("not_a_real_table").
		WillReturnError(errors.New(`pq: relation "not_a_real_table" does not exist`))

	err := repo.BadQuery(context.Background())
	if !errors.Is(err, apperr.ErrQuery) {
		t.Fatalf("err = %v, want ErrQuery", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
