package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"opslab/internal/app/apperr"
	"opslab/internal/app/logger"
	"opslab/internal/app/model"
	"opslab/internal/app/storage"
)

type TransactionHandler struct {
	transactions storage.TransactionRepository
}

func NewTransactionHandler(transactions storage.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
	}
}

func (h *TransactionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Transaction.Recent")
	l.Debug().Send()

	limit, err := queryInt(r, "limit", 0)
	if err != nil || limit < 0 {
		l.Debug().Err(err).Msg("Invalid limit")
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	mm, err := h.transactions.GetRecent(ctx, limit)
	if err != nil {
		l.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	WriteResponse(w, mm, http.StatusOK)
}

func (h *TransactionHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Transaction.ByUser")
	l.Debug().Send()

	limit, err := queryInt(r, "limit", 0)
	if err != nil || limit < 0 {
		l.Debug().Err(err).Msg("Invalid limit")
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	// an unknown user yields an empty list, not an error
	mm, err := h.transactions.AllByUserID(ctx, chi.URLParam(r, "user_id"), limit)
	if err != nil {
		l.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	WriteResponse(w, mm, http.StatusOK)
}

func (h *TransactionHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Transaction.Search")
	l.Debug().Send()

	f, err := searchFilter(r)
	if err != nil {
		l.Debug().Err(err).Msg("Invalid filter")
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	mm, err := h.transactions.Search(ctx, f)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			l.Debug().Err(err).Msg("Validation error")
			WriteError(w, err, http.StatusBadRequest)
			return
		}

		l.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	WriteResponse(w, mm, http.StatusOK)
}

// searchFilter builds the typed filter from query parameters, rejecting
// malformed values before anything reaches the store.
func searchFilter(r *http.Request) (model.TransactionFilter, error) {
	f := model.TransactionFilter{
		UserID: r.URL.Query().Get("user_id"),
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		f.Status = model.Status(raw)
		if !f.Status.Valid() {
			return f, apperr.ErrInvalidInput
		}
	}

	min, err := queryInt64Ptr(r, "min_amount_cents")
	if err != nil {
		return f, err
	}
	if min != nil && *min < 0 {
		return f, apperr.ErrInvalidInput
	}
	f.MinAmountCents = min

	max, err := queryInt64Ptr(r, "max_amount_cents")
	if err != nil {
		return f, err
	}
	if max != nil && *max < 0 {
		return f, apperr.ErrInvalidInput
	}
	f.MaxAmountCents = max

	limit, err := queryInt(r, "limit", 0)
	if err != nil || limit < 0 {
		return f, apperr.ErrInvalidInput
	}
	f.Limit = limit

	return f, nil
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Transaction.Create")
	l.Debug().Send()

	in := struct {
		UserID      string `json:"user_id" validate:"required,min=2,max=50"`
		AmountCents int64  `json:"amount_cents" validate:"gte=0"`
		Status      string `json:"status" validate:"omitempty,oneof=pending approved declined"`
	}{}

	if err := readBody(r, &in); err != nil {
		l.Debug().Err(err).Msg("Body read failed")
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	if in.Status == "" {
		in.Status = string(model.StatusPending)
	}

	m, err := h.transactions.Create(ctx, &model.Transaction{
		UserID:      in.UserID,
		AmountCents: in.AmountCents,
		Status:      model.Status(in.Status),
	})

	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			l.Debug().Err(err).Msg("Validation error")
			WriteError(w, err, http.StatusBadRequest)
			return
		}

		if errors.Is(err, apperr.ErrConflict) {
			l.Debug().Err(err).Msg("Conflict")
			WriteError(w, err, http.StatusConflict)
			return
		}

		l.Error().Err(err).Msg("Internal error")
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	WriteResponse(w, m, http.StatusCreated)
}

func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Transaction.UpdateStatus")
	l.Debug().Send()

	orderID := chi.URLParam(r, "order_id")

	in := struct {
		Status string `json:"status" validate:"required,oneof=pending approved declined"`
	}{}

	if err := readBody(r, &in); err != nil {
		l.Debug().Err(err).Msg("Body read failed")
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	m, err := h.transactions.UpdateStatus(ctx, orderID, model.Status(in.Status))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			l.Debug().Err(err).Str("order_id", orderID).Msg("Unknown order")
			WriteError(w, err, http.StatusNotFound)
			return
		}

		if errors.Is(err, apperr.ErrInvalidInput) {
			l.Debug().Err(err).Msg("Validation error")
			WriteError(w, err, http.StatusBadRequest)
			return
		}

		l.Error().Err(err).Msg("Internal error")
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	WriteResponse(w, m, http.StatusOK)
}

// BadQuery runs the deliberately malformed store query so the data-layer
// incident class can be reproduced on demand.
func (h *TransactionHandler) BadQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Transaction.BadQuery")
	l.Debug().Send()

	if err := h.transactions.BadQuery(ctx); err != nil {
		l.Error().Err(err).Msg("Bad query drill")
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	WriteResponse(w, struct {
		OK bool `json:"ok"`
	}{true}, http.StatusOK)
}
