package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/danielokoh/accounts-transfer-service/internal/logging"
)

type transferService interface {
	Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) error
}

type TransferHandler struct {
	transfers transferService
}

func NewTransferHandler(transfers transferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type transferRequest struct {
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
}

func (r transferRequest) Validate() []FieldError {
	var errs []FieldError
	if r.FromAccount == "" {
		errs = append(errs, FieldError{Field: "from_account", Message: "required"})
	}
	if r.ToAccount == "" {
		errs = append(errs, FieldError{Field: "to_account", Message: "required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than zero"})
	}
	return errs
}

type transferDTO struct {
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if err := h.transfers.Transfer(r.Context(), req.FromAccount, req.ToAccount, req.Amount); err != nil {
		logging.FromContext(r.Context()).Error("failed to transfer", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, transferDTO{
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Amount:      req.Amount,
		Status:      "completed",
	})
}
