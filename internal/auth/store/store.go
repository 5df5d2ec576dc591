// Package store defines the persistence interfaces for the auth service.
// Only accounts are stored; tokens are self-contained and never persisted.
package store

import (
	"context"
	"errors"

	"github.com/trailpost/trailpost/internal/auth/domain"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists is returned on unique-constraint conflicts, e.g. a
	// taken username.
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the top-level persistence handle.
type Store interface {
	Users() Users
	Ping(ctx context.Context) error
	Close() error
}

// Users is the account repository.
type Users interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
}
