package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KennyMack/jobs/internal/accountid"
	"github.com/KennyMack/jobs/internal/domain"
)

func SeedTestUser(t *testing.T, db *sql.DB, email, name string) *domain.User {
	t.Helper()

	u := &domain.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Status:    domain.UserStatusActive,
		CreatedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO users (id, email, name, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Name, u.Status, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

// SeedTestAccount inserts an account with a derived check digit so the
// composite ref resolves the same way production accounts do.
func SeedTestAccount(t *testing.T, db *sql.DB, userID uuid.UUID, accountNumber string, balance int64, status domain.AccountStatus) *domain.Account {
	t.Helper()

	a := &domain.Account{
		ID:            uuid.New(),
		Version:       1,
		UserID:        userID,
		AccountNumber: accountNumber,
		AccountDigit:  accountid.CheckDigit(accountNumber),
		BankCode:      "001",
		BankName:      "ACME Bank",
		Status:        status,
		Balance:       balance,
		StartDate:     time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, version, user_id, account_number, account_digit,
			bank_code, bank_name, status, balance, start_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.Version, a.UserID, a.AccountNumber, a.AccountDigit,
		a.BankCode, a.BankName, a.Status, a.Balance, a.StartDate,
	)
	if err != nil {
		t.Fatalf("seed test account %s: %v", accountNumber, err)
	}
	return a
}

func GetAccountState(t *testing.T, db *sql.DB, accountID uuid.UUID) (balance, version int64) {
	t.Helper()

	err := db.QueryRow(
		`SELECT balance, version FROM accounts WHERE id = $1`, accountID,
	).Scan(&balance, &version)
	if err != nil {
		t.Fatalf("get account state %s: %v", accountID, err)
	}
	return balance, version
}

func CountTransactions(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return count
}
