package mocks

import "context"

// UnitOfWork runs fn directly without a transaction.
type UnitOfWork struct {
	Calls int
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	u.Calls++
	return fn(ctx)
}
