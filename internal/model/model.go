// Package model defines domain entities used by services and repositories.
package model

import "time"

// TxType is the kind of a ledger entry.
type TxType string

const (
	TxIncome  TxType = "income"
	TxExpense TxType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TxType) Valid() bool { return t == TxIncome || t == TxExpense }

// User represents a registered account. The password is stored only as an
// argon2id hash; the plaintext never leaves the registration/sign-in path.
type User struct {
	ID           int64  // assigned by storage on insert
	Email        string // unique, case-sensitive as stored
	PasswordHash string // PHC-encoded argon2id hash (salt embedded)
	CreatedAt    time.Time
}

// Transaction is a single income/expense record owned by exactly one user.
// The owner is always taken from the authenticated identity, never from
// client input.
type Transaction struct {
	ID          int64
	UserID      int64
	Amount      float64
	Type        TxType
	Date        time.Time // calendar date, time part zero
	Category    string
	Description *string // nil when the client sent none
	CreatedAt   time.Time
}

// Tokens collects an issued access token and its expiry (for diagnostics).
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}
