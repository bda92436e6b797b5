package database

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

type txKey struct{}

type afterCommitKey struct{}

// UnitOfWork runs a function inside one database transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// GormUnitOfWork implements UnitOfWork for GORM
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new GORM-based unit of work
func NewUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do commits when fn returns nil and rolls back otherwise. Calls nested in
// an existing unit of work join the outer transaction.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	hooks := &commitHooks{}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(context.WithValue(txCtx, afterCommitKey{}, hooks))
	})
	if err != nil {
		return err
	}

	hooks.run()
	return nil
}

// AfterCommit defers fn until the unit of work bound to ctx commits. fn is
// dropped on rollback, and runs at once when ctx has no unit of work.
func AfterCommit(ctx context.Context, fn func()) {
	hooks, ok := ctx.Value(afterCommitKey{}).(*commitHooks)
	if !ok {
		fn()
		return
	}
	hooks.add(fn)
}

type commitHooks struct {
	mu  sync.Mutex
	fns []func()
}

func (h *commitHooks) add(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *commitHooks) run() {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Conn returns the transaction bound to ctx, or db when there is none.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
