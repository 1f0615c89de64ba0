package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type scanner interface {
	Scan(dest ...any) error
}

// DBTX is the querying surface shared by *sql.DB and *sql.Tx. Repository
// methods that must run inside an open scope take it explicitly.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UnitOfWork groups multiple writes into one all-or-nothing scope backed by a
// database transaction. The owner calls Begin, then exactly one of Commit or
// Abort, and End releases the scope regardless of outcome. A participant
// obtained through Join shares the open transaction but cannot settle or
// close it; its Begin, Commit, Abort and End are no-ops.
type UnitOfWork struct {
	db       *sql.DB
	tx       *sql.Tx
	external bool
	settled  bool
}

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Join returns a participant view over the caller's scope. Nested service
// calls receive the participant so their writes land in the same transaction
// without taking over its lifecycle.
func (u *UnitOfWork) Join() *UnitOfWork {
	return &UnitOfWork{db: u.db, tx: u.tx, external: true}
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.external || u.tx != nil {
		return nil
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Begin: %w", err)
	}
	u.tx = tx
	u.settled = false
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.external || u.tx == nil {
		return nil
	}
	u.settled = true
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("Commit: %w", err)
	}
	return nil
}

func (u *UnitOfWork) Abort() error {
	if u.external || u.tx == nil {
		return nil
	}
	u.settled = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("Abort: %w", err)
	}
	return nil
}

// End releases an owned scope. A scope that was never settled rolls back, so
// no partial write can survive an early return.
func (u *UnitOfWork) End() {
	if u.external || u.tx == nil {
		return
	}
	if !u.settled {
		_ = u.tx.Rollback()
	}
	u.tx = nil
	u.settled = false
}

// DB returns the open transaction, or the pool when no scope is active.
func (u *UnitOfWork) DB() DBTX {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}
