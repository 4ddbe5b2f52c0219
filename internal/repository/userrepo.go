// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/dkrasnov/finledger/internal/model"
)

// UserRepository persists registered accounts and enforces email uniqueness.
type UserRepository interface {
	// Create inserts a new user and fills in the storage-assigned ID.
	// Returns errs.ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, email, passwordHash string) (*model.User, error)
	// GetByEmail loads a user by exact email. Returns errs.ErrNotFound on miss.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
