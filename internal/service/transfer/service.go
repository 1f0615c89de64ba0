// Package transfer orchestrates funds transfers between two accounts as a
// single atomic unit of work.
package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KennyMack/jobs/internal/domain"
	"github.com/KennyMack/jobs/internal/logging"
	"github.com/KennyMack/jobs/internal/repository"
	"github.com/KennyMack/jobs/internal/validation"
)

type accountLedger interface {
	FindByNumber(ctx context.Context, uow *repository.UnitOfWork, accountNumber, accountDigit string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, uow *repository.UnitOfWork, id uuid.UUID, expectedVersion, newBalance int64) error
}

type transactionRepo interface {
	Create(ctx context.Context, ex repository.DBTX, txn *domain.Transaction) error
}

type userRepo interface {
	Exists(ctx context.Context, ex repository.DBTX, id uuid.UUID) (bool, error)
}

type Service struct {
	ledger       accountLedger
	transactions transactionRepo
	users        userRepo
	db           *sql.DB
	scopeTimeout time.Duration
}

func NewService(ledger accountLedger, transactions transactionRepo, users userRepo, db *sql.DB, scopeTimeout time.Duration) *Service {
	return &Service{
		ledger:       ledger,
		transactions: transactions,
		users:        users,
		db:           db,
		scopeTimeout: scopeTimeout,
	}
}

// CreateTransferRequest carries one transfer order. Value is in the smallest
// currency unit; the account refs are the composite "<number>-<digit>" form.
type CreateTransferRequest struct {
	UserID      uuid.UUID
	SenderRef   string
	ReceiverRef string
	Value       int64
}

// CreateTransfer moves Value from the sender account to the receiver account
// in one pass: validate, resolve, debit and credit under optimistic version
// guards, then persist the immutable transaction record, all inside a single
// unit of work. A version conflict on either account aborts the whole scope;
// this layer never retries.
func (s *Service) CreateTransfer(ctx context.Context, req CreateTransferRequest) (*domain.Transaction, error) {
	res := validation.NewResult()
	res.Reset()

	if s.scopeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.scopeTimeout)
		defer cancel()
	}

	uow := repository.NewUnitOfWork(s.db)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("CreateTransfer: %w", err)
	}
	defer uow.End()

	senderNumber, senderDigit, receiverNumber, receiverDigit := s.validateRequest(res, req)
	if res.State() == validation.Invalid {
		uow.Abort()
		return nil, res.Err()
	}

	exists, err := s.users.Exists(ctx, uow.DB(), req.UserID)
	if err != nil {
		uow.Abort()
		return nil, fmt.Errorf("CreateTransfer: %w", err)
	}
	if !exists {
		uow.Abort()
		res.AddError("User not found")
		return nil, res.Err()
	}

	sender, receiver, err := s.resolveAccounts(ctx, uow, res,
		senderNumber, senderDigit, receiverNumber, receiverDigit)
	if err != nil {
		uow.Abort()
		return nil, fmt.Errorf("CreateTransfer: %w", err)
	}
	if res.State() == validation.Invalid {
		uow.Abort()
		return nil, res.Err()
	}

	s.validateBusiness(res, sender, receiver, req.Value)
	if !res.Finalize() {
		uow.Abort()
		return nil, res.Err()
	}

	// The two deltas are exact negatives of each other: the sum of both
	// balances is unchanged by a successful transfer.
	newSenderBalance := sender.Balance - req.Value
	newReceiverBalance := receiver.Balance + req.Value

	if err := s.ledger.UpdateBalance(ctx, uow, sender.ID, sender.Version, newSenderBalance); err != nil {
		uow.Abort()
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("CreateTransfer: sender: %w", domain.ErrVersionConflict)
		}
		return nil, fmt.Errorf("CreateTransfer: debit sender: %w", err)
	}
	if err := s.ledger.UpdateBalance(ctx, uow, receiver.ID, receiver.Version, newReceiverBalance); err != nil {
		uow.Abort()
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("CreateTransfer: receiver: %w", domain.ErrVersionConflict)
		}
		return nil, fmt.Errorf("CreateTransfer: credit receiver: %w", err)
	}

	// Whole-second precision so the persisted date reproduces the hash.
	now := time.Now().UTC().Truncate(time.Second)
	txn := &domain.Transaction{
		ID:              uuid.New(),
		OperationID:     uuid.NewString(),
		UserID:          req.UserID,
		SenderID:        sender.ID,
		ReceiverID:      receiver.ID,
		Value:           req.Value,
		TransactionDate: now,
	}
	txn.HashData = txn.ComputeHash()

	if err := s.transactions.Create(ctx, uow.DB(), txn); err != nil {
		uow.Abort()
		return nil, fmt.Errorf("CreateTransfer: create transaction: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("CreateTransfer: commit: %w", err)
	}

	logging.FromContext(ctx).Info("transfer completed",
		"operation_id", txn.OperationID,
		"sender_account", sender.ID,
		"receiver_account", receiver.ID,
		"value", req.Value,
	)

	return txn, nil
}

// validateRequest runs the structural checks, accumulating every violation
// instead of stopping at the first.
func (s *Service) validateRequest(res *validation.Result, req CreateTransferRequest) (senderNumber, senderDigit, receiverNumber, receiverDigit string) {
	var senderOK, receiverOK bool
	senderNumber, senderDigit, senderOK = ParseAccountRef(req.SenderRef)
	receiverNumber, receiverDigit, receiverOK = ParseAccountRef(req.ReceiverRef)

	if req.Value <= 0 {
		res.AddError("Value must be greater than zero")
	}
	if !senderOK {
		res.AddError("Sender account must be informed")
	}
	if !receiverOK {
		res.AddError("Receiver account must be informed")
	}
	if senderOK && receiverOK &&
		senderNumber == receiverNumber && senderDigit == receiverDigit {
		res.AddError("Sender and receiver accounts must be distinct")
	}
	if req.UserID == uuid.Nil {
		res.AddError("UserId must be informed")
	}
	return senderNumber, senderDigit, receiverNumber, receiverDigit
}

// resolveAccounts looks both parties up inside the open scope. A missing
// account records its own message so the caller can tell which side failed.
func (s *Service) resolveAccounts(ctx context.Context, uow *repository.UnitOfWork, res *validation.Result, senderNumber, senderDigit, receiverNumber, receiverDigit string) (*domain.Account, *domain.Account, error) {
	sender, err := s.ledger.FindByNumber(ctx, uow, senderNumber, senderDigit)
	if err != nil {
		return nil, nil, fmt.Errorf("resolveAccounts: sender: %w", err)
	}
	receiver, err := s.ledger.FindByNumber(ctx, uow, receiverNumber, receiverDigit)
	if err != nil {
		return nil, nil, fmt.Errorf("resolveAccounts: receiver: %w", err)
	}

	if sender == nil {
		res.AddError("Sender account not found")
	}
	if receiver == nil {
		res.AddError("Receiver account not found")
	}
	return sender, receiver, nil
}

// validateBusiness runs every business rule even after one has failed, so
// the caller sees all violations at once.
func (s *Service) validateBusiness(res *validation.Result, sender, receiver *domain.Account, value int64) {
	if sender.Status != domain.AccountStatusActive {
		res.AddError("Sender account is not active")
	}
	if receiver.Status != domain.AccountStatusActive {
		res.AddError("Receiver account is not active")
	}
	if sender.Balance < value {
		res.AddError("Insufficient funds")
	}
}

// ParseAccountRef splits the composite "<accountNumber>-<accountDigit>" form.
func ParseAccountRef(ref string) (accountNumber, accountDigit string, ok bool) {
	accountNumber, accountDigit, found := strings.Cut(strings.TrimSpace(ref), "-")
	if !found || accountNumber == "" || accountDigit == "" {
		return "", "", false
	}
	return accountNumber, accountDigit, true
}
