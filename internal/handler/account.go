package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danielokoh/accounts-transfer-service/internal/domain"
	"github.com/danielokoh/accounts-transfer-service/internal/logging"
)

type accountService interface {
	CreateAccount(ctx context.Context, id string, initialBalance decimal.Decimal) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	Deposit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type createAccountRequest struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

func (r createAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.AccountID == "" {
		errs = append(errs, FieldError{Field: "account_id", Message: "required"})
	}
	if r.Balance.IsNegative() {
		errs = append(errs, FieldError{Field: "balance", Message: "must not be negative"})
	}
	return errs
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (r amountRequest) Validate() []FieldError {
	var errs []FieldError
	if !r.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than zero"})
	}
	return errs
}

type accountDTO struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		AccountID: a.ID,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}

type balanceDTO struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req.AccountID, req.Balance)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountID")

	account, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountID")

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	newBalance, err := h.accounts.Deposit(r.Context(), accountID, req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to deposit", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, balanceDTO{AccountID: accountID, Balance: newBalance})
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountID")

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	newBalance, err := h.accounts.Withdraw(r.Context(), accountID, req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to withdraw", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, balanceDTO{AccountID: accountID, Balance: newBalance})
}
