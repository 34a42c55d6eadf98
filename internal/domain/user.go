package domain

import (
	"context"
	"time"
)

// User is the slice of the account record the backbone's consumers need.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserDirectory is the narrow read interface consumers use to look up
// users. Storage details live behind it.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
