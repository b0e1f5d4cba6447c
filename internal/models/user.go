package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a customer account. Admin access is a separate session flag and has
// no user row.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
