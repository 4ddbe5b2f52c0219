// Package service contains application services for authentication and the ledger.
package service

import (
	"context"
	"errors"
	"strings"

	pkgcrypto "github.com/dkrasnov/finledger/internal/crypto"
	"github.com/dkrasnov/finledger/internal/errs"
	"github.com/dkrasnov/finledger/internal/limiter"
	"github.com/dkrasnov/finledger/internal/model"
	"github.com/dkrasnov/finledger/internal/repository"
	"github.com/dkrasnov/finledger/internal/token"
)

// AuthService defines registration and sign-in operations.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, email, password string) (*model.User, error)
	// Login applies rate limiting, verifies credentials and issues a token.
	Login(ctx context.Context, email, password, ip string) (model.Tokens, *model.User, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens *token.Manager
	lim    limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens *token.Manager, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, lim: lim}
}

// Register validates the pair, hashes the password and creates the user.
// The email is trimmed before the emptiness check and stored trimmed, so
// padded variants of one address cannot become separate accounts. A taken
// email surfaces as errs.ErrAlreadyExists; the uniqueness check is the
// storage constraint, not a precedent read.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errs.Validation("email", "must not be empty")
	}
	if password == "" {
		return nil, errs.Validation("password", "must not be empty")
	}
	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, email, hash)
}

// Login authenticates with rate limiting by (email, ip). An unknown email
// and a wrong password both come back as errs.ErrUnauthorized.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ip string) (model.Tokens, *model.User, error) {
	if email == "" {
		return model.Tokens{}, nil, errs.Validation("email", "must not be empty")
	}
	if password == "" {
		return model.Tokens{}, nil, errs.Validation("password", "must not be empty")
	}

	ipHash := limiter.HashIP(ip)
	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, nil, err
	}
	if !allowed {
		return model.Tokens{}, nil, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		// storage failure is not an authentication verdict
		return model.Tokens{}, nil, err
	}
	if err != nil || !pkgcrypto.VerifyPassword(password, u.PasswordHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, nil, errs.ErrRateLimited
		}
		// unknown account and wrong password are indistinguishable
		return model.Tokens{}, nil, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email, ipHash)

	toks, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return model.Tokens{}, nil, err
	}
	return toks, u, nil
}
