package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	transactionsdomain "opsboard/internal/domain/transactions"
	"opsboard/internal/transport/httpserver/middleware"
)

const maxListLimit = 500

type transactionRequest struct {
	Date        string      `json:"date"`
	Type        string      `json:"type"`
	Amount      json.Number `json:"amount"`
	Currency    string      `json:"currency"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	SeminarID   *string     `json:"seminar_id"`
}

func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	query := r.URL.Query()

	from, err := parseDateParam(query.Get("from"))
	if err != nil {
		writeInvalid(w, "invalid from")
		return
	}
	to, err := parseDateParam(query.Get("to"))
	if err != nil {
		writeInvalid(w, "invalid to")
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		writeInvalid(w, "from must be <= to")
		return
	}
	limit, err := parseIntParam(query.Get("limit"), 100)
	if err != nil || limit > maxListLimit {
		writeInvalid(w, "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeInvalid(w, "invalid offset")
		return
	}

	kind := transactionsdomain.Type(strings.ToUpper(strings.TrimSpace(query.Get("type"))))
	if kind != "" && kind != transactionsdomain.TypeIncome && kind != transactionsdomain.TypeExpense {
		writeInvalid(w, "type must be INCOME or EXPENSE")
		return
	}

	items, total, err := h.Transactions.List(r.Context(), unit.UnitID, transactionsdomain.ListFilter{
		From:      from,
		To:        to,
		Type:      kind,
		Category:  strings.TrimSpace(query.Get("category")),
		SeminarID: strings.TrimSpace(query.Get("seminar_id")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.logger(r).InternalError("transactions.list: list failed", err, "unit_id", unit.UnitID)
		writeInternalError(w)
		return
	}

	response := make([]transactionResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toTransactionResponse(item))
	}
	writeJSON(w, http.StatusOK, pagedResponse[transactionResponse]{
		Items:  response,
		Total:  int64(total),
		Limit:  limit,
		Offset: offset,
	})
}

func (h *Handlers) GetTransaction(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "transaction_not_found", "transaction not found")
		return
	}

	item, err := h.Transactions.Get(r.Context(), unit.UnitID, id)
	if err != nil {
		h.writeTransactionError(w, r, "transactions.get", err, unit.UnitID)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(*item))
}

func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	unit, _ := middleware.UnitFromContext(r.Context())

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, "invalid json")
		return
	}
	date, err := parseDateRequired(req.Date)
	if err != nil {
		writeInvalid(w, "date must be YYYY-MM-DD")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeInvalid(w, "amount must be a number")
		return
	}

	item, err := h.Transactions.Create(r.Context(), transactionsdomain.CreateInput{
		UnitID:      unit.UnitID,
		UserID:      user.ID,
		Date:        date,
		Type:        transactionsdomain.Type(req.Type),
		Amount:      amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: req.Description,
		SeminarID:   optionalString(req.SeminarID),
	})
	if err != nil {
		h.writeTransactionError(w, r, "transactions.create", err, unit.UnitID)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(*item))
}

func (h *Handlers) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "transaction_not_found", "transaction not found")
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, "invalid json")
		return
	}
	date, err := parseDateRequired(req.Date)
	if err != nil {
		writeInvalid(w, "date must be YYYY-MM-DD")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeInvalid(w, "amount must be a number")
		return
	}

	item, err := h.Transactions.Update(r.Context(), transactionsdomain.UpdateInput{
		ID:          id,
		UnitID:      unit.UnitID,
		Date:        date,
		Type:        transactionsdomain.Type(req.Type),
		Amount:      amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: req.Description,
		SeminarID:   optionalString(req.SeminarID),
	})
	if err != nil {
		h.writeTransactionError(w, r, "transactions.update", err, unit.UnitID)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(*item))
}

func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "transaction_not_found", "transaction not found")
		return
	}

	if err := h.Transactions.Delete(r.Context(), unit.UnitID, id); err != nil {
		h.writeTransactionError(w, r, "transactions.delete", err, unit.UnitID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeTransactionError(w http.ResponseWriter, r *http.Request, op string, err error, unitID string) {
	switch {
	case errors.Is(err, transactionsdomain.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, "transaction_not_found", "transaction not found")
	case errors.Is(err, transactionsdomain.ErrSeminarNotFound):
		h.logger(r).BusinessError(op+": seminar not found", err, "unit_id", unitID)
		writeError(w, http.StatusBadRequest, "seminar_not_found", "seminar not found")
	case errors.Is(err, transactionsdomain.ErrUnsupportedCurrency):
		h.logger(r).BusinessError(op+": unsupported currency", err, "unit_id", unitID)
		writeError(w, http.StatusBadRequest, "unsupported_currency", err.Error())
	case errors.Is(err, transactionsdomain.ErrInvalidType),
		errors.Is(err, transactionsdomain.ErrInvalidAmount),
		errors.Is(err, transactionsdomain.ErrInvalidCurrency),
		errors.Is(err, transactionsdomain.ErrInvalidDate),
		errors.Is(err, transactionsdomain.ErrDateOutOfRange),
		errors.Is(err, transactionsdomain.ErrCategoryTooLong),
		errors.Is(err, transactionsdomain.ErrDescriptionTooLong):
		h.logger(r).BusinessError(op+": invalid input", err, "unit_id", unitID)
		writeInvalid(w, err.Error())
	default:
		h.logger(r).InternalError(op+": failed", err, "unit_id", unitID)
		writeInternalError(w)
	}
}
