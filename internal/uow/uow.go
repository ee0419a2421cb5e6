package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kirinyoku/valet-go/internal/repository"
	postgres "github.com/kirinyoku/valet-go/internal/repository/postgres"
)

const defaultMaxAttempts = 3

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

// Func is the body of a unit of work. repos are bound to the transaction;
// after registers hooks that run only once the transaction has committed.
type Func func(ctx context.Context, repos repository.Repositories, after func(AfterCommit)) error

// Runner runs a Func atomically.
type Runner interface {
	Do(ctx context.Context, fn Func) error
}

// txStore is the part of postgres.Store a unit of work drives.
type txStore interface {
	RunTx(ctx context.Context, opts *pgx.TxOptions, fn func(ctx context.Context, tx postgres.DB) error) error
	Bind(db postgres.DB) repository.Repositories
}

// UoW represents a unit of work over PostgreSQL.
type UoW struct {
	store       txStore
	maxAttempts int
}

func NewUoW(store *postgres.Store) *UoW {
	return &UoW{store: store, maxAttempts: defaultMaxAttempts}
}

// Do runs fn inside a serializable transaction. After a successful commit,
// it executes all after-commit hooks.
func (u *UoW) Do(ctx context.Context, fn Func) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts runs fn inside the transaction with the given options. Attempts
// that fail with a serialization failure or deadlock are retried from the
// start, so fn must not leak state between attempts.
func (u *UoW) DoWithOpts(ctx context.Context, opts *pgx.TxOptions, fn Func) error {
	var hooks []AfterCommit
	var err error

	for attempt := 1; ; attempt++ {
		hooks = hooks[:0]

		err = u.store.RunTx(ctx, opts, func(ctx context.Context, tx postgres.DB) error {
			return fn(ctx, u.store.Bind(tx), func(h AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if err == nil || !postgres.IsRetryable(err) || attempt >= u.maxAttempts {
			break
		}
	}
	if err != nil {
		return err
	}

	RunHooks(ctx, hooks)

	return nil
}

// RunHooks executes after-commit hooks in registration order.
func RunHooks(ctx context.Context, hooks []AfterCommit) {
	for _, h := range hooks {
		h(ctx)
	}
}
