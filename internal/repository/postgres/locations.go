package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository"
)

// LocationRepo reads locations owned by the location collaborator. Writes
// other than the guarded delete belong to that collaborator.
type LocationRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *LocationRepo) With(db DB) *LocationRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *LocationRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *LocationRepo) Get(ctx context.Context, id int64) (*domain.Location, error) {
	const op = "postgres.LocationRepo.Get"

	var l domain.Location
	err := r.handle().QueryRow(ctx,
		`SELECT id, name, latitude, longitude, is_active
		 FROM locations WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.Name, &l.Latitude, &l.Longitude, &l.IsActive)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &l, nil
}

// Delete removes a location together with its schedules and booking history.
// Callers must check for active bookings in the same transaction.
func (r *LocationRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgres.LocationRepo.Delete"

	tag, err := r.handle().Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
