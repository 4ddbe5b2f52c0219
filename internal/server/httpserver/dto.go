package httpserver

import (
	"github.com/dkrasnov/finledger/internal/model"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createTransactionRequest struct {
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

type userJSON struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email"`
}

// transactionJSON is the wire shape of a ledger entry. The date renders
// as YYYY-MM-DD; description is null when the client sent none.
type transactionJSON struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

func toTransactionJSON(t model.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Date:        t.Date.Format("2006-01-02"),
		Category:    t.Category,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toTransactionListJSON(ts []model.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransactionJSON(t))
	}
	return out
}
