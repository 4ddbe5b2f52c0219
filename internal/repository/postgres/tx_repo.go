package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dkrasnov/finledger/internal/errs"
	"github.com/dkrasnov/finledger/internal/model"
)

// TxRepo implements TransactionRepository using PostgreSQL.
type TxRepo struct{ db *DB }

// NewTxRepo constructs a transaction repository.
func NewTxRepo(db *DB) *TxRepo { return &TxRepo{db: db} }

// Create inserts a transaction row and returns it with storage-assigned fields.
func (r *TxRepo) Create(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	const q = `
INSERT INTO transactions (user_id, amount, type, date, category, description)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`
	out := *tx
	err := r.db.Pool.QueryRow(ctx, q,
		tx.UserID, tx.Amount, string(tx.Type), tx.Date, tx.Category, tx.Description,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByOwner returns all transactions for userID ordered by id.
func (r *TxRepo) ListByOwner(ctx context.Context, userID int64) ([]model.Transaction, error) {
	const q = `
SELECT id, user_id, amount, type, date, category, description, created_at
FROM transactions
WHERE user_id=$1
ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		var typ string
		if err = rows.Scan(&t.ID, &t.UserID, &t.Amount, &typ, &t.Date, &t.Category, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Type = model.TxType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteByIDAndOwner deletes a transaction only when both id and owner match,
// as one atomic statement. No matching row (absent or owned by another user)
// maps to errs.ErrNotFound without distinguishing the two.
func (r *TxRepo) DeleteByIDAndOwner(ctx context.Context, id, userID int64) (*model.Transaction, error) {
	const q = `
DELETE FROM transactions
WHERE id=$1 AND user_id=$2
RETURNING id, user_id, amount, type, date, category, description, created_at`
	row := r.db.Pool.QueryRow(ctx, q, id, userID)
	var t model.Transaction
	var typ string
	if err := row.Scan(&t.ID, &t.UserID, &t.Amount, &typ, &t.Date, &t.Category, &t.Description, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	t.Type = model.TxType(typ)
	return &t, nil
}
