package repository

import (
	"context"

	"github.com/dkrasnov/finledger/internal/model"
)

// TransactionRepository provides owner-scoped access to ledger entries.
// Every operation filters by the owner's user ID; callers pass the
// authenticated identity, never a client-supplied one.
type TransactionRepository interface {
	// Create inserts a transaction and fills in the storage-assigned ID
	// and creation timestamp.
	Create(ctx context.Context, tx *model.Transaction) (*model.Transaction, error)

	// ListByOwner returns all transactions owned by userID in stable order.
	// No rows is an empty slice, not an error.
	ListByOwner(ctx context.Context, userID int64) ([]model.Transaction, error)

	// DeleteByIDAndOwner deletes the transaction in a single atomic statement
	// matching both id and owner, returning the deleted row. A missing row
	// and a row owned by someone else are both errs.ErrNotFound.
	DeleteByIDAndOwner(ctx context.Context, id, userID int64) (*model.Transaction, error)
}
