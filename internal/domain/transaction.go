package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Transaction is an immutable ledger entry for a completed transfer. Records
// are inserted exactly once and never updated or deleted.
type Transaction struct {
	ID              uuid.UUID
	OperationID     string
	UserID          uuid.UUID
	SenderID        uuid.UUID
	ReceiverID      uuid.UUID
	Value           int64
	TransactionDate time.Time
	HashData        string
}

// ComputeHash returns the SHA-256 fingerprint over the record's immutable
// fields. The date is rendered in RFC 3339 at second precision, so the stored
// TransactionDate must be truncated to whole seconds for the digest to
// survive a database round trip.
func (t *Transaction) ComputeHash() string {
	h := sha256.New()
	io.WriteString(h, t.OperationID)
	io.WriteString(h, t.UserID.String())
	io.WriteString(h, t.SenderID.String())
	io.WriteString(h, t.ReceiverID.String())
	io.WriteString(h, t.TransactionDate.UTC().Format(time.RFC3339))
	io.WriteString(h, strconv.FormatInt(t.Value, 10))
	return hex.EncodeToString(h.Sum(nil))
}
