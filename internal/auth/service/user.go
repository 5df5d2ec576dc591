package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/trailpost/trailpost/internal/auth/domain"
	"github.com/trailpost/trailpost/internal/auth/store"
	"github.com/trailpost/trailpost/pkg/cryptox"
	"github.com/trailpost/trailpost/pkg/idx"
)

const minPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	ErrUsernameTaken      = errors.New("service: username or email taken")
)

// dummyHash gives failed lookups the same verification cost as real ones,
// so response timing doesn't reveal whether a username exists.
var dummyHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword("trailpost-dummy-credential")
	if err != nil {
		panic(err)
	}
	return h
})

// UserService manages accounts: registration and credential verification.
// Token issuance stays in TokenService; this service only establishes who
// the caller is.
type UserService struct {
	Store store.Store
}

// Register creates a new account with an Argon2id password hash and a fresh
// ULID as the subject identifier.
func (s *UserService) Register(
	ctx context.Context,
	username, email, password string,
) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	switch {
	case username == "":
		return domain.User{}, fmt.Errorf("%w: empty username", ErrInvalidArgument)
	case email == "" || !strings.Contains(email, "@"):
		return domain.User{}, fmt.Errorf("%w: invalid email", ErrInvalidArgument)
	case len(password) < minPasswordLength:
		return domain.User{}, fmt.Errorf("%w: password too short", ErrInvalidArgument)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	return user, nil
}

// Authenticate verifies a username/password pair and returns the account.
// Unknown usernames and wrong passwords are indistinguishable to the caller,
// in both result and cost.
func (s *UserService) Authenticate(
	ctx context.Context,
	username, password string,
) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, dummyHash())
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByID loads an account by subject identifier.
func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}
