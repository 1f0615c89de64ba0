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
	"github.com/KennyMack/jobs/internal/service/transfer"
)

type transferService interface {
	CreateTransfer(ctx context.Context, req transfer.CreateTransferRequest) (*domain.Transaction, error)
}

type TransferHandler struct {
	transfers transferService
}

func NewTransferHandler(transfers transferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type createTransferRequest struct {
	UserID          string `json:"user_id"`
	SenderAccount   string `json:"sender_account"`
	ReceiverAccount string `json:"receiver_account"`
	Value           string `json:"value"`
}

func (r createTransferRequest) Validate() []FieldError {
	var errs []FieldError
	if r.UserID == "" {
		errs = append(errs, FieldError{Field: "user_id", Message: "required"})
	} else if _, err := uuid.Parse(r.UserID); err != nil {
		errs = append(errs, FieldError{Field: "user_id", Message: "must be a valid uuid"})
	}
	if r.SenderAccount == "" {
		errs = append(errs, FieldError{Field: "sender_account", Message: "required"})
	}
	if r.ReceiverAccount == "" {
		errs = append(errs, FieldError{Field: "receiver_account", Message: "required"})
	}
	if r.Value == "" {
		errs = append(errs, FieldError{Field: "value", Message: "required"})
	} else if _, err := decimal.NewFromString(r.Value); err != nil {
		errs = append(errs, FieldError{Field: "value", Message: "must be a decimal amount"})
	}
	return errs
}

type transactionDTO struct {
	ID              uuid.UUID `json:"id"`
	OperationID     string    `json:"operation_id"`
	UserID          uuid.UUID `json:"user_id"`
	SenderID        uuid.UUID `json:"sender_id"`
	ReceiverID      uuid.UUID `json:"receiver_id"`
	Value           string    `json:"value"`
	TransactionDate time.Time `json:"transaction_date"`
	HashData        string    `json:"hash_data"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:              t.ID,
		OperationID:     t.OperationID,
		UserID:          t.UserID,
		SenderID:        t.SenderID,
		ReceiverID:      t.ReceiverID,
		Value:           decimal.NewFromInt(t.Value).Shift(-2).StringFixed(2),
		TransactionDate: t.TransactionDate,
		HashData:        t.HashData,
	}
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondFieldErrors(w, fields)
		return
	}

	value, ok := toMinorUnits(req.Value)
	if !ok {
		RespondFieldErrors(w, []FieldError{
			{Field: "value", Message: "must have at most two decimal places"},
		})
		return
	}

	txn, err := h.transfers.CreateTransfer(r.Context(), transfer.CreateTransferRequest{
		UserID:      uuid.MustParse(req.UserID),
		SenderRef:   req.SenderAccount,
		ReceiverRef: req.ReceiverAccount,
		Value:       value,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create transfer", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransactionDTO(txn))
}

// toMinorUnits converts a decimal amount string to the smallest currency
// unit, rejecting anything finer than two decimal places.
func toMinorUnits(value string) (int64, bool) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, false
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, false
	}
	return shifted.IntPart(), true
}
