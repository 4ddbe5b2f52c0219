package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/dkrasnov/finledger/internal/errs"
)

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	// OK
	mock.ExpectQuery(`INSERT INTO users \(email, password_hash\) VALUES \(\$1, \$2\) RETURNING id, created_at`).
		WithArgs("a@x.com", "$argon2id$hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	u, err := r.Create(ctx, "a@x.com", "$argon2id$hash")
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, "a@x.com", u.Email)

	// Unique violation maps to ErrAlreadyExists
	mock.ExpectQuery(`INSERT INTO users \(email, password_hash\) VALUES \(\$1, \$2\) RETURNING id, created_at`).
		WithArgs("a@x.com", "$argon2id$hash").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err = r.Create(ctx, "a@x.com", "$argon2id$hash")
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at FROM users WHERE email=\$1`).
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(int64(7), "a@x.com", "$argon2id$hash", time.Now()))
	u, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at FROM users WHERE email=\$1`).
		WithArgs("missing@x.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "missing@x.com")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
