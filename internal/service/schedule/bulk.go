package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirinyoku/valet-go/internal/apperr"
	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository"
)

type BulkFailure struct {
	Schedule Input  `json:"schedule"`
	Error    string `json:"error"`
}

// BulkResult keeps both lists in input order.
type BulkResult struct {
	Successful []domain.Schedule `json:"successful"`
	Failed     []BulkFailure     `json:"failed"`
}

// CreateBulk creates the schedules one after another through Create. A
// failing entry is recorded in Failed and does not stop the batch.
//
// Parameters:
//   - ctx: request-scoped context.
//   - locationID: location every entry belongs to.
//   - entries: schedules to create.
//
// Returns:
//   - *BulkResult: per-entry outcome.
//   - error: schedule.ErrLocationNotFound when the location does not exist,
//     or a storage failure while checking it. Entry failures are not errors.
func (s *Service) CreateBulk(ctx context.Context, locationID int64, entries []Input) (*BulkResult, error) {
	const op = "service.schedule.CreateBulk"

	if _, err := s.repos.Locations().Get(ctx, locationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrLocationNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	res := &BulkResult{
		Successful: make([]domain.Schedule, 0, len(entries)),
		Failed:     make([]BulkFailure, 0),
	}

	for _, in := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}

		sched, err := s.Create(ctx, locationID, in)
		if err != nil {
			res.Failed = append(res.Failed, BulkFailure{Schedule: in, Error: apperr.MessageOf(err)})
			continue
		}

		res.Successful = append(res.Successful, *sched)
	}

	return res, nil
}
