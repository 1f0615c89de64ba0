package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusClosed AccountStatus = "closed"
)

// Account is the ledger record for a single bank account. Balance is held in
// the smallest currency unit. Balance and Version change only through the
// conditional update in the repository layer; Version increments by exactly
// one per successful write.
type Account struct {
	ID            uuid.UUID
	Version       int64
	UserID        uuid.UUID
	AccountNumber string
	AccountDigit  string
	BankCode      string
	BankName      string
	Status        AccountStatus
	Balance       int64
	StartDate     time.Time
	EndDate       *time.Time
}

// Ref renders the externally visible composite "<accountNumber>-<accountDigit>".
func (a *Account) Ref() string {
	return a.AccountNumber + "-" + a.AccountDigit
}
