package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is owned by the registration/auth layer; the ledger core only checks
// that a referenced user exists.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Status    UserStatus
	CreatedAt time.Time
}
