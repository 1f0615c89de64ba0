package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/KennyMack/jobs/internal/domain"
)

const transactionColumns = `id, operation_id, user_id, sender_id, receiver_id,
	value, transaction_date, hash_data`

// TransactionRepository is insert-only: there is no update or delete path for
// a persisted ledger entry.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, ex DBTX, txn *domain.Transaction) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO transactions (
			id, operation_id, user_id, sender_id, receiver_id,
			value, transaction_date, hash_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		txn.ID, txn.OperationID, txn.UserID, txn.SenderID, txn.ReceiverID,
		txn.Value, txn.TransactionDate, txn.HashData,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) GetByOperationID(ctx context.Context, operationID string) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE operation_id = $1`, operationID,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByOperationID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByOperationID: %w", err)
	}
	return t, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(
		&t.ID, &t.OperationID, &t.UserID, &t.SenderID, &t.ReceiverID,
		&t.Value, &t.TransactionDate, &t.HashData,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
