package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KennyMack/jobs/internal/domain"
	"github.com/KennyMack/jobs/internal/repository"
)

type stubAccountService struct {
	gotUserID   uuid.UUID
	gotBankCode string
	gotBankName string
	account     *domain.Account
	err         error
}

func (s *stubAccountService) CreateAccount(ctx context.Context, uow *repository.UnitOfWork, userID uuid.UUID, bankCode, bankName string) (*domain.Account, error) {
	s.gotUserID = userID
	s.gotBankCode = bankCode
	s.gotBankName = bankName
	return s.account, s.err
}

func postAccount(t *testing.T, h *AccountHandler, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestAccountCreate_Success(t *testing.T) {
	userID := uuid.New()
	stub := &stubAccountService{
		account: &domain.Account{
			ID:            uuid.New(),
			Version:       1,
			UserID:        userID,
			AccountNumber: "1234567",
			AccountDigit:  "0",
			BankCode:      "237",
			BankName:      "Bradesco",
			Status:        domain.AccountStatusActive,
			Balance:       0,
			StartDate:     time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		},
	}
	h := NewAccountHandler(stub, "001", "ACME Bank")

	body := fmt.Sprintf(`{"user_id":%q,"bank_code":"237","bank_name":"Bradesco"}`, userID)
	rec, resp := postAccount(t, h, body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, userID, stub.gotUserID)
	assert.Equal(t, "237", stub.gotBankCode)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "1234567-0", data["account_ref"])
	assert.Equal(t, "0.00", data["balance"])
	assert.Equal(t, float64(1), data["version"])
}

func TestAccountCreate_DefaultsApplied(t *testing.T) {
	stub := &stubAccountService{account: &domain.Account{}}
	h := NewAccountHandler(stub, "001", "ACME Bank")

	body := fmt.Sprintf(`{"user_id":%q}`, uuid.New())
	rec, _ := postAccount(t, h, body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "001", stub.gotBankCode)
	assert.Equal(t, "ACME Bank", stub.gotBankName)
}

func TestAccountCreate_BadUserID(t *testing.T) {
	h := NewAccountHandler(&stubAccountService{}, "001", "ACME Bank")

	rec, resp := postAccount(t, h, `{"user_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Errors, "user_id: must be a valid uuid")
}

func TestAccountCreate_ValidationErrorPassthrough(t *testing.T) {
	stub := &stubAccountService{
		err: &domain.ValidationError{Messages: []string{"UserId is not valid"}},
	}
	h := NewAccountHandler(stub, "001", "ACME Bank")

	body := fmt.Sprintf(`{"user_id":%q}`, uuid.New())
	rec, resp := postAccount(t, h, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"UserId is not valid"}, resp.Error.Errors)
}

func TestAccountCreate_ExhaustionMapsTo409(t *testing.T) {
	stub := &stubAccountService{
		err: fmt.Errorf("CreateAccount: %w", domain.ErrAccountNumberExhausted),
	}
	h := NewAccountHandler(stub, "001", "ACME Bank")

	body := fmt.Sprintf(`{"user_id":%q}`, uuid.New())
	rec, resp := postAccount(t, h, body)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ACCOUNT_NUMBER_EXHAUSTED", resp.Error.Code)
}
