package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/KennyMack/jobs/internal/domain"
)

const accountColumns = `id, version, user_id, account_number, account_digit,
	bank_code, bank_name, status, balance, start_date, end_date`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

// GetByNumber looks an account up by its composite key. Runs on the caller's
// scope so uniqueness checks observe writes pending in the same transaction.
func (r *AccountRepository) GetByNumber(ctx context.Context, ex DBTX, accountNumber, accountDigit string) (*domain.Account, error) {
	row := ex.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		WHERE account_number = $1 AND account_digit = $2`,
		accountNumber, accountDigit,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByNumber: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByNumber: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, ex DBTX, account *domain.Account) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO accounts (
			id, version, user_id, account_number, account_digit,
			bank_code, bank_name, status, balance, start_date, end_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		account.ID, account.Version, account.UserID,
		account.AccountNumber, account.AccountDigit,
		account.BankCode, account.BankName,
		account.Status, account.Balance, account.StartDate, account.EndDate,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// UpdateBalance is the optimistic-concurrency write: a single conditional
// UPDATE guarded by the version the caller last read. Zero affected rows
// means another writer got there first and the call reports
// domain.ErrVersionConflict; the stored version advances by exactly one on
// success.
func (r *AccountRepository) UpdateBalance(ctx context.Context, ex DBTX, id uuid.UUID, expectedVersion, newBalance int64) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, version = version + 1
		WHERE id = $2 AND version = $3`,
		newBalance, id, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrVersionConflict)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.ID, &a.Version, &a.UserID,
		&a.AccountNumber, &a.AccountDigit,
		&a.BankCode, &a.BankName,
		&a.Status, &a.Balance, &a.StartDate, &a.EndDate,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
