// Package account owns account records: creation with collision-free
// identifiers and balance mutation under optimistic concurrency control.
package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KennyMack/jobs/internal/accountid"
	"github.com/KennyMack/jobs/internal/domain"
	"github.com/KennyMack/jobs/internal/logging"
	"github.com/KennyMack/jobs/internal/repository"
	"github.com/KennyMack/jobs/internal/validation"
)

type accountRepo interface {
	Create(ctx context.Context, ex repository.DBTX, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByNumber(ctx context.Context, ex repository.DBTX, accountNumber, accountDigit string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, ex repository.DBTX, id uuid.UUID, expectedVersion, newBalance int64) error
}

type userRepo interface {
	Exists(ctx context.Context, ex repository.DBTX, id uuid.UUID) (bool, error)
}

type numberGenerator interface {
	Generate(bankCode string) string
}

type Service struct {
	accounts    accountRepo
	users       userRepo
	gen         numberGenerator
	db          *sql.DB
	maxAttempts int
}

func NewService(accounts accountRepo, users userRepo, gen numberGenerator, db *sql.DB, maxAttempts int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Service{
		accounts:    accounts,
		users:       users,
		gen:         gen,
		db:          db,
		maxAttempts: maxAttempts,
	}
}

// scope returns the unit of work a method should run under: a participant
// view of the caller's scope when one is passed in, otherwise a fresh scope
// the method owns and must settle itself.
func (s *Service) scope(uow *repository.UnitOfWork) *repository.UnitOfWork {
	if uow != nil {
		return uow.Join()
	}
	return repository.NewUnitOfWork(s.db)
}

// CreateAccount verifies the owning user, allocates a unique account number
// with a bounded number of generation attempts, validates the assembled
// record and persists it with version 1, zero balance and active status.
func (s *Service) CreateAccount(ctx context.Context, uow *repository.UnitOfWork, userID uuid.UUID, bankCode, bankName string) (*domain.Account, error) {
	res := validation.NewResult()
	res.Reset()

	u := s.scope(uow)
	if err := u.Begin(ctx); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	defer u.End()

	exists, err := s.users.Exists(ctx, u.DB(), userID)
	if err != nil {
		u.Abort()
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	if !exists {
		u.Abort()
		res.AddError("UserId is not valid")
		return nil, res.Err()
	}

	number, digit, err := s.uniqueAccountNumber(ctx, u.DB(), bankCode)
	if err != nil {
		u.Abort()
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	acct := &domain.Account{
		ID:            uuid.New(),
		Version:       1,
		UserID:        userID,
		AccountNumber: number,
		AccountDigit:  digit,
		BankCode:      bankCode,
		BankName:      bankName,
		Status:        domain.AccountStatusActive,
		Balance:       0,
		StartDate:     time.Now().UTC(),
	}

	validateFields(res, acct)
	if !res.Finalize() {
		u.Abort()
		return nil, res.Err()
	}

	if err := s.accounts.Create(ctx, u.DB(), acct); err != nil {
		u.Abort()
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	if err := u.Commit(); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account created",
		"account_id", acct.ID,
		"account_ref", acct.Ref(),
		"user_id", userID,
	)

	return acct, nil
}

// FindByNumber resolves an account by its composite key, or nil when no such
// account exists.
func (s *Service) FindByNumber(ctx context.Context, uow *repository.UnitOfWork, accountNumber, accountDigit string) (*domain.Account, error) {
	u := s.scope(uow)
	acct, err := s.accounts.GetByNumber(ctx, u.DB(), accountNumber, accountDigit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("FindByNumber: %w", err)
	}
	return acct, nil
}

// UpdateBalance applies the conditional balance write. The caller supplies
// the version it read; a mismatch reports domain.ErrVersionConflict and the
// caller must treat the whole operation as failed, never retry silently.
func (s *Service) UpdateBalance(ctx context.Context, uow *repository.UnitOfWork, id uuid.UUID, expectedVersion, newBalance int64) error {
	u := s.scope(uow)
	if err := u.Begin(ctx); err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}
	defer u.End()

	if err := s.accounts.UpdateBalance(ctx, u.DB(), id, expectedVersion, newBalance); err != nil {
		u.Abort()
		return fmt.Errorf("UpdateBalance: %w", err)
	}
	if err := u.Commit(); err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}
	return nil
}

// uniqueAccountNumber draws candidate numbers until one is free. Generation
// mixes true randomness, so collisions are legitimate; the loop is bounded
// and exhaustion reports domain.ErrAccountNumberExhausted.
func (s *Service) uniqueAccountNumber(ctx context.Context, ex repository.DBTX, bankCode string) (string, string, error) {
	for range s.maxAttempts {
		number := s.gen.Generate(bankCode)
		digit := accountid.CheckDigit(number)

		_, err := s.accounts.GetByNumber(ctx, ex, number, digit)
		if errors.Is(err, domain.ErrNotFound) {
			return number, digit, nil
		}
		if err != nil {
			return "", "", fmt.Errorf("uniqueAccountNumber: %w", err)
		}
		// taken, draw again
	}
	return "", "", fmt.Errorf("uniqueAccountNumber: %w", domain.ErrAccountNumberExhausted)
}

func validateFields(res *validation.Result, a *domain.Account) {
	if a.UserID == uuid.Nil {
		res.AddError("UserId must be informed")
	}
	if a.AccountNumber == "" {
		res.AddError("Account number must be informed")
	}
	if a.AccountDigit == "" {
		res.AddError("Account digit must be informed")
	}
	if a.BankCode == "" {
		res.AddError("Bank code must be informed")
	}
	if a.BankName == "" {
		res.AddError("Bank name must be informed")
	}
}
