package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/valet-go/internal/repository"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
	}
}

func (s *Store) RunTx(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx DB) error,
) error {
	txOpts := pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	}

	if opts != nil {
		txOpts.IsoLevel = opts.IsoLevel
		txOpts.AccessMode = opts.AccessMode
		txOpts.DeferrableMode = opts.DeferrableMode
	}

	tx, err := s.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (s *Store) BookingRepo() *BookingRepo   { return &BookingRepo{pool: s.pool} }
func (s *Store) ScheduleRepo() *ScheduleRepo { return &ScheduleRepo{pool: s.pool} }
func (s *Store) LocationRepo() *LocationRepo { return &LocationRepo{pool: s.pool} }

func (s *Store) Bookings() repository.Bookings   { return s.BookingRepo() }
func (s *Store) Schedules() repository.Schedules { return s.ScheduleRepo() }
func (s *Store) Locations() repository.Locations { return s.LocationRepo() }

// Bind returns repositories that run every statement on db, typically a
// transaction opened by RunTx.
func (s *Store) Bind(db DB) repository.Repositories {
	return bound{store: s, db: db}
}

type bound struct {
	store *Store
	db    DB
}

func (b bound) Bookings() repository.Bookings   { return b.store.BookingRepo().With(b.db) }
func (b bound) Schedules() repository.Schedules { return b.store.ScheduleRepo().With(b.db) }
func (b bound) Locations() repository.Locations { return b.store.LocationRepo().With(b.db) }
