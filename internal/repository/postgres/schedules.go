package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository"
)

const scheduleColumns = `id, location_id, day_of_week, start_time, end_time, is_active, created_at, updated_at`

type ScheduleRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ScheduleRepo) With(db DB) *ScheduleRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ScheduleRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts a schedule.
//
// Returns:
//   - error: *repository.DuplicateKeyError if the location already has a
//     schedule for that day.
//   - error: repository.ErrNotFound if the location does not exist.
func (r *ScheduleRepo) Create(ctx context.Context, s *domain.Schedule) error {
	const op = "postgres.ScheduleRepo.Create"

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	err := r.handle().QueryRow(ctx,
		`INSERT INTO schedules(id, location_id, day_of_week, start_time, end_time, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		s.ID, s.LocationID, s.DayOfWeek, s.StartTime, s.EndTime, s.IsActive,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *ScheduleRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	const op = "postgres.ScheduleRepo.Get"

	s, err := scanSchedule(r.handle().QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return s, nil
}

func (r *ScheduleRepo) GetByDay(ctx context.Context, locationID int64, day int) (*domain.Schedule, error) {
	const op = "postgres.ScheduleRepo.GetByDay"

	s, err := scanSchedule(r.handle().QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE location_id = $1 AND day_of_week = $2`,
		locationID, day,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return s, nil
}

func (r *ScheduleRepo) ListByLocation(ctx context.Context, locationID int64) ([]domain.Schedule, error) {
	const op = "postgres.ScheduleRepo.ListByLocation"

	out, err := r.list(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE location_id = $1
		 ORDER BY day_of_week, start_time`,
		locationID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *ScheduleRepo) ListAll(ctx context.Context) ([]domain.Schedule, error) {
	const op = "postgres.ScheduleRepo.ListAll"

	out, err := r.list(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 ORDER BY location_id, day_of_week, start_time`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Update persists every mutable field of s. Moving a schedule onto a day that
// is already taken yields *repository.DuplicateKeyError.
func (r *ScheduleRepo) Update(ctx context.Context, s *domain.Schedule) error {
	const op = "postgres.ScheduleRepo.Update"

	err := r.handle().QueryRow(ctx,
		`UPDATE schedules
		 SET day_of_week = $2, start_time = $3, end_time = $4, is_active = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		s.ID, s.DayOfWeek, s.StartTime, s.EndTime, s.IsActive,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *ScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.ScheduleRepo.Delete"

	tag, err := r.handle().Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *ScheduleRepo) list(ctx context.Context, sql string, args ...any) ([]domain.Schedule, error) {
	rows, err := r.handle().Query(ctx, sql, args...)
	if err != nil {
		return nil, translateDBErr(err)
	}

	defer rows.Close()

	var out []domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, translateDBErr(err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var (
		s   domain.Schedule
		day int16
	)

	if err := row.Scan(
		&s.ID,
		&s.LocationID,
		&day,
		&s.StartTime,
		&s.EndTime,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.DayOfWeek = int(day)

	return &s, nil
}
