package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KennyMack/jobs/internal/domain"
	"github.com/KennyMack/jobs/internal/logging"
	"github.com/KennyMack/jobs/internal/repository"
)

type accountService interface {
	CreateAccount(ctx context.Context, uow *repository.UnitOfWork, userID uuid.UUID, bankCode, bankName string) (*domain.Account, error)
}

type AccountHandler struct {
	accounts accountService

	// bank identity applied when the request leaves it out
	defaultBankCode string
	defaultBankName string
}

func NewAccountHandler(accounts accountService, defaultBankCode, defaultBankName string) *AccountHandler {
	return &AccountHandler{
		accounts:        accounts,
		defaultBankCode: defaultBankCode,
		defaultBankName: defaultBankName,
	}
}

type createAccountRequest struct {
	UserID   string `json:"user_id"`
	BankCode string `json:"bank_code"`
	BankName string `json:"bank_name"`
}

func (r createAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.UserID == "" {
		errs = append(errs, FieldError{Field: "user_id", Message: "required"})
	} else if _, err := uuid.Parse(r.UserID); err != nil {
		errs = append(errs, FieldError{Field: "user_id", Message: "must be a valid uuid"})
	}
	return errs
}

type accountDTO struct {
	ID            uuid.UUID `json:"id"`
	Version       int64     `json:"version"`
	UserID        uuid.UUID `json:"user_id"`
	AccountNumber string    `json:"account_number"`
	AccountDigit  string    `json:"account_digit"`
	AccountRef    string    `json:"account_ref"`
	BankCode      string    `json:"bank_code"`
	BankName      string    `json:"bank_name"`
	Status        string    `json:"status"`
	Balance       string    `json:"balance"`
	StartDate     time.Time `json:"start_date"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:            a.ID,
		Version:       a.Version,
		UserID:        a.UserID,
		AccountNumber: a.AccountNumber,
		AccountDigit:  a.AccountDigit,
		AccountRef:    a.Ref(),
		BankCode:      a.BankCode,
		BankName:      a.BankName,
		Status:        string(a.Status),
		Balance:       decimal.NewFromInt(a.Balance).Shift(-2).StringFixed(2),
		StartDate:     a.StartDate,
	}
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondFieldErrors(w, fields)
		return
	}

	bankCode, bankName := req.BankCode, req.BankName
	if bankCode == "" {
		bankCode = h.defaultBankCode
	}
	if bankName == "" {
		bankName = h.defaultBankName
	}

	userID := uuid.MustParse(req.UserID)
	account, err := h.accounts.CreateAccount(r.Context(), nil, userID, bankCode, bankName)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}
