package limiter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

/************ fake pgx ************/

type fakeRow struct{ scan func(dest ...any) error }

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakePool struct {
	qrErr         error
	qrBlockedTill *time.Time
	qrFailsRet    int

	lastExecSQL string
	execErr     error
}

func (f *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastExecSQL = sql
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "SELECT blocked_until"):
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			if f.qrBlockedTill != nil {
				*(dest[0].(*time.Time)) = *f.qrBlockedTill
			} else {
				*(dest[0].(*time.Time)) = time.Time{} // 'epoch'
			}
			return nil
		}}
	case strings.Contains(sql, "RETURNING fail_count"):
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			*(dest[0].(*int)) = f.qrFailsRet
			return nil
		}}
	default:
		return fakeRow{scan: func(dest ...any) error { return errors.New("unexpected query") }}
	}
}

func TestPG_Allow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ip := HashIP("1.2.3.4")

	// no row yet: allowed
	p := &fakePool{qrErr: pgx.ErrNoRows}
	l := NewPGWithQuerier(p, 15*time.Minute, 5, 15*time.Minute)
	ok, _, err := l.Allow(ctx, "a@x.com", ip)
	if err != nil || !ok {
		t.Fatalf("no-row: ok=%v err=%v", ok, err)
	}

	// blocked in the future: denied with retry-after
	till := time.Now().Add(10 * time.Minute)
	p = &fakePool{qrBlockedTill: &till}
	l = NewPGWithQuerier(p, 15*time.Minute, 5, 15*time.Minute)
	ok, retry, err := l.Allow(ctx, "a@x.com", ip)
	if err != nil || ok {
		t.Fatalf("blocked: ok=%v err=%v", ok, err)
	}
	if retry <= 0 || retry > 10*time.Minute {
		t.Fatalf("bad retry-after: %v", retry)
	}

	// block in the past: allowed again
	past := time.Now().Add(-time.Minute)
	p = &fakePool{qrBlockedTill: &past}
	l = NewPGWithQuerier(p, 15*time.Minute, 5, 15*time.Minute)
	if ok, _, _ = l.Allow(ctx, "a@x.com", ip); !ok {
		t.Fatalf("expired block should allow")
	}

	// storage error propagates
	p = &fakePool{qrErr: errors.New("boom")}
	l = NewPGWithQuerier(p, 15*time.Minute, 5, 15*time.Minute)
	if _, _, err = l.Allow(ctx, "a@x.com", ip); err == nil {
		t.Fatalf("want storage error")
	}
}

func TestPG_Failure_BlocksAtThreshold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ip := HashIP("1.2.3.4")

	p := &fakePool{qrFailsRet: 2}
	l := NewPGWithQuerier(p, 15*time.Minute, 5, 30*time.Minute)
	blocked, _, err := l.Failure(ctx, "a@x.com", ip)
	if err != nil || blocked {
		t.Fatalf("below threshold: blocked=%v err=%v", blocked, err)
	}

	p = &fakePool{qrFailsRet: 5}
	l = NewPGWithQuerier(p, 15*time.Minute, 5, 30*time.Minute)
	blocked, retry, err := l.Failure(ctx, "a@x.com", ip)
	if err != nil || !blocked {
		t.Fatalf("at threshold: blocked=%v err=%v", blocked, err)
	}
	if retry != 30*time.Minute {
		t.Fatalf("retry=%v, want 30m", retry)
	}
	if !strings.Contains(p.lastExecSQL, "UPDATE signin_attempts SET blocked_until") {
		t.Fatalf("expected block update, got %q", p.lastExecSQL)
	}
}

func TestPG_Success_Resets(t *testing.T) {
	t.Parallel()

	p := &fakePool{}
	l := NewPGWithQuerier(p, 15*time.Minute, 5, 30*time.Minute)
	if err := l.Success(context.Background(), "a@x.com", HashIP("::1")); err != nil {
		t.Fatalf("Success: %v", err)
	}
	if !strings.Contains(p.lastExecSQL, "fail_count=0") {
		t.Fatalf("expected reset, got %q", p.lastExecSQL)
	}
}

func TestHashIP_StableAndDistinct(t *testing.T) {
	t.Parallel()

	a1 := HashIP("10.0.0.1")
	a2 := HashIP("10.0.0.1")
	b := HashIP("10.0.0.2")
	if string(a1) != string(a2) {
		t.Fatalf("HashIP not stable")
	}
	if string(a1) == string(b) {
		t.Fatalf("distinct IPs hash equal")
	}
}
