package service

import (
	"context"
	"strings"
	"time"

	"github.com/dkrasnov/finledger/internal/errs"
	"github.com/dkrasnov/finledger/internal/model"
	"github.com/dkrasnov/finledger/internal/repository"
)

// dateLayout is the only accepted wire format for transaction dates.
const dateLayout = "2006-01-02"

// CreateTransactionInput carries client-supplied fields of a new ledger
// entry. The owner is not here: it always comes from the authenticated
// identity.
type CreateTransactionInput struct {
	Amount      float64
	Type        string
	Date        string
	Category    string
	Description string
}

// TransactionService defines owner-scoped ledger operations.
type TransactionService interface {
	// Create validates the input and inserts a transaction owned by ownerID.
	Create(ctx context.Context, ownerID int64, in CreateTransactionInput) (*model.Transaction, error)
	// ListByOwner returns all of ownerID's transactions, oldest first.
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Transaction, error)
	// Delete removes the transaction when id and owner both match.
	Delete(ctx context.Context, ownerID, id int64) (*model.Transaction, error)
}

type TransactionServiceImpl struct {
	repo repository.TransactionRepository
}

// NewTransactionService constructs TransactionService.
func NewTransactionService(repo repository.TransactionRepository) *TransactionServiceImpl {
	return &TransactionServiceImpl{repo: repo}
}

// Create checks every field before any storage call, so a violation never
// leaves a partial write. Validation rules:
// - amount > 0
// - type is income or expense
// - date is a real calendar date in YYYY-MM-DD
// - category non-empty after trimming
// - description trimmed, absent -> NULL
func (s *TransactionServiceImpl) Create(ctx context.Context, ownerID int64, in CreateTransactionInput) (*model.Transaction, error) {
	if in.Amount <= 0 {
		return nil, errs.Validation("amount", "must be a positive number")
	}
	typ := model.TxType(in.Type)
	if !typ.Valid() {
		return nil, errs.Validation("type", "must be 'income' or 'expense'")
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, errs.Validation("date", "must be a valid date in YYYY-MM-DD format")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, errs.Validation("category", "must not be empty")
	}
	var description *string
	if d := strings.TrimSpace(in.Description); d != "" {
		description = &d
	}

	return s.repo.Create(ctx, &model.Transaction{
		UserID:      ownerID,
		Amount:      in.Amount,
		Type:        typ,
		Date:        date,
		Category:    category,
		Description: description,
	})
}

// ListByOwner returns the owner's transactions; none is an empty slice.
func (s *TransactionServiceImpl) ListByOwner(ctx context.Context, ownerID int64) ([]model.Transaction, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete removes a single entry atomically; a missing id and someone
// else's id are the same errs.ErrNotFound.
func (s *TransactionServiceImpl) Delete(ctx context.Context, ownerID, id int64) (*model.Transaction, error) {
	if id <= 0 {
		return nil, errs.Validation("id", "must be a positive integer")
	}
	return s.repo.DeleteByIDAndOwner(ctx, id, ownerID)
}

// parseDate accepts strictly formatted YYYY-MM-DD and rejects impossible
// calendar dates (time.Parse normalizes nothing with this layout).
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return d, nil
}
