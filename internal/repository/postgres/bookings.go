package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository"
)

const bookingColumns = `id, user_id, location_id, start_time, end_time, status, price_cents, notes, created_at, updated_at`

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts a booking. The exclusion constraint on bookings rejects an
// overlapping active booking even if the caller skipped HasOverlap.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - b: booking to insert; ID is assigned when nil, timestamps are filled in.
//
// Returns:
//   - error: repository.ErrOverlap if the slot is taken.
//   - error: repository.ErrNotFound if the location does not exist.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.Create"

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	db := r.handle()

	err := db.QueryRow(ctx,
		`INSERT INTO bookings(id, user_id, location_id, start_time, end_time, status, price_cents, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		b.ID, b.UserID, b.LocationID, b.StartTime, b.EndTime, string(b.Status), b.PriceCents, b.Notes,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// Get retrieves a booking by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the booking does not exist.
func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	b, err := scanBooking(r.handle().QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

// GetForUpdate retrieves a booking and row-locks it. Only meaningful inside a
// transaction.
func (r *BookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.GetForUpdate"

	b, err := scanBooking(r.handle().QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

// LockLocation takes a transaction scoped advisory lock keyed by location so
// concurrent "check overlap, then write" sequences for one location run one
// after another.
func (r *BookingRepo) LockLocation(ctx context.Context, locationID int64) error {
	const op = "postgres.BookingRepo.LockLocation"

	if _, err := r.handle().Exec(ctx, `SELECT pg_advisory_xact_lock($1::bigint)`, locationID); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// HasOverlap reports whether an active booking intersects [start, end).
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - locationID: location to look at.
//   - start, end: half-open candidate interval.
//   - exclude: booking to ignore, uuid.Nil for none.
func (r *BookingRepo) HasOverlap(
	ctx context.Context,
	locationID int64,
	start, end time.Time,
	exclude uuid.UUID,
) (bool, error) {
	const op = "postgres.BookingRepo.HasOverlap"

	var exists bool
	err := r.handle().QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM bookings
		   WHERE location_id = $1
		     AND status = ANY($2)
		     AND start_time < $4
		     AND end_time > $3
		     AND id <> $5
		 )`,
		locationID, domain.ActiveStatusStrings(), start, end, exclude,
	).Scan(&exists)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return exists, nil
}

// Update persists the mutable non-status fields of b.
func (r *BookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.Update"

	err := r.handle().QueryRow(ctx,
		`UPDATE bookings
		 SET start_time = $2, end_time = $3, price_cents = $4, notes = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		b.ID, b.StartTime, b.EndTime, b.PriceCents, b.Notes,
	).Scan(&b.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// UpdateStatus conditionally moves a booking from one status to another.
//
// Returns:
//   - *domain.Booking: the updated booking.
//   - error: repository.ErrNotFound if the booking does not exist.
//   - error: repository.ErrStaleStatus if its status is no longer from.
func (r *BookingRepo) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.BookingStatus,
) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.UpdateStatus"

	db := r.handle()

	b, err := scanBooking(db.QueryRow(ctx,
		`UPDATE bookings
		 SET status = $3, updated_at = now()
		 WHERE id = $1 AND status = $2
		 RETURNING `+bookingColumns,
		id, string(from), string(to),
	))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapDBErr(op, err)
	}

	var exists bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, wrapDBErr(op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil, fmt.Errorf("%s:%w", op, repository.ErrStaleStatus)
}

func (r *BookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.BookingRepo.Delete"

	tag, err := r.handle().Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// List returns one page of bookings matching f together with the total number
// of matches.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - f: filter; Sort must pass repository.ParseBookingSort.
//
// Returns:
//   - []domain.Booking: the page.
//   - int64: total matches ignoring Limit/Offset.
func (r *BookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int64, error) {
	const op = "postgres.BookingRepo.List"

	sort, err := repository.ParseBookingSort(f.Sort)
	if err != nil {
		return nil, 0, fmt.Errorf("%s:%w", op, err)
	}

	where, args := bookingWhere(f)
	db := r.handle()

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY %s LIMIT $%d OFFSET $%d`,
			bookingColumns, where, sort.SQL(), len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := make([]domain.Booking, 0, f.Limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, wrapDBErr(op, err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s:%w", op, err)
	}

	return out, total, nil
}

func (r *BookingRepo) CountActiveByLocation(ctx context.Context, locationID int64) (int64, error) {
	const op = "postgres.BookingRepo.CountActiveByLocation"

	var n int64
	err := r.handle().QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE location_id = $1 AND status = ANY($2)`,
		locationID, domain.ActiveStatusStrings(),
	).Scan(&n)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

func (r *BookingRepo) CountActiveByUser(ctx context.Context, userID int64) (int64, error) {
	const op = "postgres.BookingRepo.CountActiveByUser"

	var n int64
	err := r.handle().QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE user_id = $1 AND status = ANY($2)`,
		userID, domain.ActiveStatusStrings(),
	).Scan(&n)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

// Revenue aggregates bookings whose start time falls inside [from, to]. Nil
// bounds are open.
func (r *BookingRepo) Revenue(ctx context.Context, from, to *time.Time) (*domain.RevenueSummary, error) {
	const op = "postgres.BookingRepo.Revenue"

	rows, err := r.handle().Query(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(price_cents), 0)
		 FROM bookings
		 WHERE ($1::timestamptz IS NULL OR start_time >= $1)
		   AND ($2::timestamptz IS NULL OR start_time <= $2)
		 GROUP BY status`,
		from, to,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	sum := &domain.RevenueSummary{ByStatus: make(map[domain.BookingStatus]int64)}
	for rows.Next() {
		var (
			status string
			count  int64
			cents  int64
		)
		if err := rows.Scan(&status, &count, &cents); err != nil {
			return nil, wrapDBErr(op, err)
		}

		st := domain.BookingStatus(status)
		sum.ByStatus[st] = count
		if st == domain.StatusCompleted {
			sum.CompletedCount = count
			sum.RevenueCents = cents
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sum, nil
}

func bookingWhere(f domain.BookingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != nil {
		add("status = $%d", string(*f.Status))
	}
	if f.LocationID != nil {
		add("location_id = $%d", *f.LocationID)
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.StartFrom != nil {
		add("start_time >= $%d", *f.StartFrom)
	}
	if f.StartTo != nil {
		add("start_time <= $%d", *f.StartTo)
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b      domain.Booking
		status string
	)

	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.LocationID,
		&b.StartTime,
		&b.EndTime,
		&status,
		&b.PriceCents,
		&b.Notes,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	b.Status = domain.BookingStatus(status)

	return &b, nil
}
