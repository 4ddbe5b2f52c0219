package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dkrasnov/finledger/internal/errs"
	"github.com/dkrasnov/finledger/internal/limiter"
	"github.com/dkrasnov/finledger/internal/model"
	"github.com/dkrasnov/finledger/internal/repository"
	"github.com/dkrasnov/finledger/internal/service"
	"github.com/dkrasnov/finledger/internal/token"
)

func init() { gin.SetMode(gin.TestMode) }

// In-memory repositories so handler tests run the real service stack.

type memUsers struct {
	byEmail map[string]*model.User
	nextID  int64
}

var _ repository.UserRepository = (*memUsers)(nil)

func (m *memUsers) Create(_ context.Context, email, passwordHash string) (*model.User, error) {
	if _, exists := m.byEmail[email]; exists {
		return nil, errs.ErrAlreadyExists
	}
	m.nextID++
	u := &model.User{ID: m.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.byEmail[email] = u
	cpy := *u
	return &cpy, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cpy := *u
	return &cpy, nil
}

type memTxs struct {
	byID   map[int64]*model.Transaction
	nextID int64
}

var _ repository.TransactionRepository = (*memTxs)(nil)

func (m *memTxs) Create(_ context.Context, tx *model.Transaction) (*model.Transaction, error) {
	m.nextID++
	cpy := *tx
	cpy.ID = m.nextID
	cpy.CreatedAt = time.Now()
	m.byID[cpy.ID] = &cpy
	out := cpy
	return &out, nil
}

func (m *memTxs) ListByOwner(_ context.Context, userID int64) ([]model.Transaction, error) {
	out := []model.Transaction{}
	for id := int64(1); id <= m.nextID; id++ {
		if t, ok := m.byID[id]; ok && t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTxs) DeleteByIDAndOwner(_ context.Context, id, userID int64) (*model.Transaction, error) {
	t, ok := m.byID[id]
	if !ok || t.UserID != userID {
		return nil, errs.ErrNotFound
	}
	delete(m.byID, id)
	cpy := *t
	return &cpy, nil
}

// allowAll is a limiter that never blocks.
type allowAll struct{}

var _ limiter.Limiter = allowAll{}

func (allowAll) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	return true, 0, nil
}
func (allowAll) Success(context.Context, string, []byte) error { return nil }
func (allowAll) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}

// denyAll simulates an active lockout.
type denyAll struct{}

var _ limiter.Limiter = denyAll{}

func (denyAll) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, time.Minute, nil
}
func (denyAll) Success(context.Context, string, []byte) error { return nil }
func (denyAll) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return true, time.Minute, nil
}

type testEnv struct {
	router *gin.Engine
	tokens *token.Manager
}

func newTestEnv(t *testing.T, lim limiter.Limiter) *testEnv {
	t.Helper()
	tokens := token.NewManager([]byte("test-secret"), time.Hour)
	auth := service.NewAuthService(&memUsers{byEmail: map[string]*model.User{}}, tokens, lim)
	txs := service.NewTransactionService(&memTxs{byID: map[int64]*model.Transaction{}})
	srv := New(auth, txs, tokens, zap.NewNop())
	return &testEnv{router: srv.Router(), tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// signup registers and signs in a user, returning the token and user id.
func (e *testEnv) signup(t *testing.T, email, password string) (string, int64) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/register", "", gin.H{"email": email, "password": password})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status=%d body=%s", email, w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/signin", "", gin.H{"email": email, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("signin %s: status=%d body=%s", email, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	decodeJSON(t, w, &resp)
	if resp.Token == "" || resp.User.ID == 0 {
		t.Fatalf("signin %s: bad response %s", email, w.Body.String())
	}
	return resp.Token, resp.User.ID
}
