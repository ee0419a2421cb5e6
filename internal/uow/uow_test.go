package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/valet-go/internal/repository"
	postgres "github.com/kirinyoku/valet-go/internal/repository/postgres"
)

// fakeStore runs fn without a database and fails the commit of the first
// failures attempts with commitErr.
type fakeStore struct {
	failures  int
	commitErr error
	attempts  int
}

func (f *fakeStore) RunTx(ctx context.Context, _ *pgx.TxOptions, fn func(ctx context.Context, tx postgres.DB) error) error {
	f.attempts++
	if err := fn(ctx, nil); err != nil {
		return err
	}
	if f.attempts <= f.failures {
		return f.commitErr
	}
	return nil
}

func (f *fakeStore) Bind(postgres.DB) repository.Repositories { return nil }

func serializationFailure() error {
	return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
}

func TestDoRetriesSerializationFailure(t *testing.T) {
	store := &fakeStore{failures: 1, commitErr: serializationFailure()}
	u := &UoW{store: store, maxAttempts: defaultMaxAttempts}

	var ran []int
	err := u.Do(context.Background(), func(ctx context.Context, _ repository.Repositories, after func(AfterCommit)) error {
		attempt := store.attempts
		after(func(context.Context) { ran = append(ran, attempt) })
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, store.attempts)
	// the hook of the failed attempt is dropped
	assert.Equal(t, []int{2}, ran)
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	store := &fakeStore{failures: 10, commitErr: &pgconn.PgError{Code: "40P01"}}
	u := &UoW{store: store, maxAttempts: 3}

	var ran bool
	err := u.Do(context.Background(), func(ctx context.Context, _ repository.Repositories, after func(AfterCommit)) error {
		after(func(context.Context) { ran = true })
		return nil
	})

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "40P01", pgErr.Code)
	assert.Equal(t, 3, store.attempts)
	assert.False(t, ran)
}

func TestDoDoesNotRetryOtherErrors(t *testing.T) {
	store := &fakeStore{}
	u := &UoW{store: store, maxAttempts: defaultMaxAttempts}
	boom := errors.New("boom")

	err := u.Do(context.Background(), func(context.Context, repository.Repositories, func(AfterCommit)) error {
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, store.attempts)

	store = &fakeStore{failures: 1, commitErr: &pgconn.PgError{Code: "23505"}}
	u = &UoW{store: store, maxAttempts: defaultMaxAttempts}

	err = u.Do(context.Background(), func(context.Context, repository.Repositories, func(AfterCommit)) error {
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 1, store.attempts)
}
