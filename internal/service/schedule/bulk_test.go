package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBulkPartialFailure(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, locationID, Input{DayOfWeek: 3, StartTime: "09:00", EndTime: "18:00"})
	require.NoError(t, err)

	entries := []Input{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00"},
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "18:00"},
		{DayOfWeek: 3, StartTime: "10:00", EndTime: "16:00"},
		{DayOfWeek: 4, StartTime: "09:00", EndTime: "18:00"},
	}

	res, err := svc.CreateBulk(ctx, locationID, entries)
	require.NoError(t, err)

	require.Len(t, res.Successful, len(entries)-1)
	require.Len(t, res.Failed, 1)

	assert.Equal(t, 3, res.Failed[0].Schedule.DayOfWeek)
	assert.Equal(t, "10:00", res.Failed[0].Schedule.StartTime)
	assert.Equal(t, "Schedule for Wednesday already exists for this location", res.Failed[0].Error)

	days := make([]int, 0, len(res.Successful))
	for _, s := range res.Successful {
		days = append(days, s.DayOfWeek)
	}
	assert.Equal(t, []int{1, 2, 4}, days)
}

func TestCreateBulkDuplicateWithinBatch(t *testing.T) {
	svc := newService(t, nil)

	res, err := svc.CreateBulk(context.Background(), locationID, []Input{
		{DayOfWeek: 5, StartTime: "09:00", EndTime: "18:00"},
		{DayOfWeek: 5, StartTime: "12:00", EndTime: "20:00"},
		{DayOfWeek: 6, StartTime: "bad", EndTime: "20:00"},
	})
	require.NoError(t, err)

	require.Len(t, res.Successful, 1)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "12:00", res.Failed[0].Schedule.StartTime)
	assert.Equal(t, 6, res.Failed[1].Schedule.DayOfWeek)
	assert.Equal(t, ErrInvalidTime.Message, res.Failed[1].Error)
}

func TestCreateBulkUnknownLocation(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.CreateBulk(context.Background(), 99, []Input{{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00"}})
	require.ErrorIs(t, err, ErrLocationNotFound)
}

func TestCreateBulkEmpty(t *testing.T) {
	svc := newService(t, nil)

	res, err := svc.CreateBulk(context.Background(), locationID, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Successful)
	assert.Empty(t, res.Failed)
}
