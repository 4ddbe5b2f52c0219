// Package token issues and verifies signed, time-limited access tokens.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dkrasnov/finledger/internal/errs"
	"github.com/dkrasnov/finledger/internal/model"
)

// DefaultTTL is the access token lifetime when none is configured.
const DefaultTTL = time.Hour

// Claims is the identity embedded in a verified token.
type Claims struct {
	UserID int64
	Email  string
}

type jwtClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 access tokens with a process-wide secret.
// The secret comes from configuration and is the single point of trust;
// it is never logged.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager constructs a Manager. ttl <= 0 falls back to DefaultTTL.
func NewManager(secret []byte, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: secret, ttl: ttl}
}

// Issue creates a signed HS256 token for the given subject, valid for the
// configured TTL from now.
func (m *Manager) Issue(userID int64, email string) (model.Tokens, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return model.Tokens{}, err
	}
	now := time.Now()
	exp := now.Add(m.ttl)
	claims := jwtClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}

// Verify validates the signature and expiry of raw and returns the embedded
// claims. Expired tokens yield errs.ErrTokenExpired; every other failure
// (bad signature, altered claims, wrong algorithm, malformed input) yields
// errs.ErrTokenInvalid so callers cannot tell which check rejected them.
func (m *Manager) Verify(raw string) (Claims, error) {
	var claims jwtClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, errs.ErrTokenExpired
		}
		return Claims{}, errs.ErrTokenInvalid
	}
	if !parsed.Valid {
		return Claims{}, errs.ErrTokenInvalid
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, errs.ErrTokenInvalid
	}
	return Claims{UserID: userID, Email: claims.Email}, nil
}
