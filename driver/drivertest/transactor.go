// Package drivertest provides an in-memory stand-in for driver.Transactor.
package drivertest

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"goflare.io/loyalty/driver"
)

var _ driver.Transactor = (*Transactor)(nil)

// Transactor runs each transaction function with a nil pgx.Tx, one at a
// time. OnBegin and OnRollback let a fake store snapshot and restore its
// state so tests can observe all-or-nothing behavior.
type Transactor struct {
	mu sync.Mutex

	OnBegin    func()
	OnRollback func()

	Transactions int
	Serializable int
}

func (t *Transactor) ExecuteTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	return t.run(ctx, false, fn)
}

func (t *Transactor) ExecuteSerializableTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	return t.run(ctx, true, fn)
}

func (t *Transactor) run(ctx context.Context, serializable bool, fn func(pgx.Tx) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	t.Transactions++
	if serializable {
		t.Serializable++
	}
	if t.OnBegin != nil {
		t.OnBegin()
	}
	if err := fn(nil); err != nil {
		if t.OnRollback != nil {
			t.OnRollback()
		}
		return err
	}
	return nil
}
