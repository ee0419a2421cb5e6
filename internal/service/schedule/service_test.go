package schedule

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/valet-go/internal/apperr"
	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository/memory"
	redisrepo "github.com/kirinyoku/valet-go/internal/repository/redis"
)

const locationID = 1

func newService(t *testing.T, cache *redisrepo.Cache) *Service {
	t.Helper()

	store := memory.New()
	store.PutLocation(domain.Location{ID: locationID, Name: "Airport", IsActive: true})

	return New(store, store, cache, Config{})
}

func newCache(t *testing.T) *redisrepo.Cache {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return redisrepo.New(rdb)
}

func TestMondayScenario(t *testing.T) {
	for name, cache := range map[string]func(t *testing.T) *redisrepo.Cache{
		"no cache":   func(*testing.T) *redisrepo.Cache { return nil },
		"with redis": newCache,
	} {
		t.Run(name, func(t *testing.T) {
			svc := newService(t, cache(t))
			ctx := context.Background()

			_, err := svc.Create(ctx, locationID, Input{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00"})
			require.NoError(t, err)

			for clock, want := range map[string]bool{
				"10:00": true,
				"09:00": true,
				"20:00": false,
				"18:00": false,
				"17:59": true,
				"08:59": false,
			} {
				open, err := svc.IsLocationOpen(ctx, locationID, 1, clock)
				require.NoError(t, err)
				assert.Equal(t, want, open, clock)
			}
		})
	}
}

func TestIsLocationOpenEdgeCases(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	inactive := false
	_, err := svc.Create(ctx, locationID, Input{DayOfWeek: 2, StartTime: "09:00", EndTime: "18:00", IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.Create(ctx, locationID, Input{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		day   int
		clock string
	}{
		{"inactive day", 2, "10:00"},
		{"no schedule", 3, "10:00"},
		{"malformed time", 1, "ten"},
		{"hour out of range", 1, "24:00"},
		{"minute out of range", 1, "10:60"},
		{"day out of range", 9, "10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, err := svc.IsLocationOpen(ctx, locationID, tt.day, tt.clock)
			require.NoError(t, err)
			assert.False(t, open)
		})
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   Input
		want error
	}{
		{"day too large", Input{DayOfWeek: 7, StartTime: "09:00", EndTime: "18:00"}, ErrInvalidDay},
		{"negative day", Input{DayOfWeek: -1, StartTime: "09:00", EndTime: "18:00"}, ErrInvalidDay},
		{"bad start", Input{DayOfWeek: 1, StartTime: "9am", EndTime: "18:00"}, ErrInvalidTime},
		{"bad end", Input{DayOfWeek: 1, StartTime: "09:00", EndTime: "25:00"}, ErrInvalidTime},
		{"end before start", Input{DayOfWeek: 1, StartTime: "18:00", EndTime: "09:00"}, ErrInvalidWindow},
		{"empty window", Input{DayOfWeek: 1, StartTime: "09:00", EndTime: "09:00"}, ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, locationID, tt.in)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestCreateNormalizesTimes(t *testing.T) {
	svc := newService(t, nil)

	sched, err := svc.Create(context.Background(), locationID, Input{DayOfWeek: 0, StartTime: "9:05", EndTime: "17:30"})
	require.NoError(t, err)
	assert.Equal(t, "09:05", sched.StartTime)
	assert.Equal(t, "17:30", sched.EndTime)
	assert.True(t, sched.IsActive)
}

func TestCreateDuplicateDay(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, locationID, Input{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, locationID, Input{DayOfWeek: 1, StartTime: "10:00", EndTime: "12:00"})
	require.Error(t, err)

	var dup DuplicateDayError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, dup.Day)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "Schedule for Monday already exists for this location", apperr.MessageOf(err))
}

func TestCreateUnknownLocation(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.Create(context.Background(), 99, Input{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00"})
	require.ErrorIs(t, err, ErrLocationNotFound)
}

func TestUpdate(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	mon, err := svc.Create(ctx, locationID, Input{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, locationID, Input{DayOfWeek: 2, StartTime: "09:00", EndTime: "18:00"})
	require.NoError(t, err)

	end := "20:00"
	got, err := svc.Update(ctx, mon.ID, Patch{EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, "20:00", got.EndTime)

	early := "08:00"
	_, err = svc.Update(ctx, mon.ID, Patch{EndTime: &early})
	require.ErrorIs(t, err, ErrInvalidWindow)

	tuesday := 2
	_, err = svc.Update(ctx, mon.ID, Patch{DayOfWeek: &tuesday})
	var dup DuplicateDayError
	require.ErrorAs(t, err, &dup)

	_, err = svc.Update(ctx, uuid.New(), Patch{EndTime: &end})
	require.ErrorIs(t, err, ErrScheduleNotFound)

	stored, err := svc.Get(ctx, mon.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.DayOfWeek)
	assert.Equal(t, "20:00", stored.EndTime)
}

func TestDelete(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	sched, err := svc.Create(ctx, locationID, Input{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sched.ID))
	require.ErrorIs(t, svc.Delete(ctx, sched.ID), ErrScheduleNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.Delete(ctx, sched.ID)))
}

func TestScheduleChangesInvalidateCache(t *testing.T) {
	svc := newService(t, newCache(t))
	ctx := context.Background()

	mon, err := svc.Create(ctx, locationID, Input{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00"})
	require.NoError(t, err)

	open, err := svc.IsLocationOpen(ctx, locationID, 1, "19:00")
	require.NoError(t, err)
	assert.False(t, open)

	end := "22:00"
	_, err = svc.Update(ctx, mon.ID, Patch{EndTime: &end})
	require.NoError(t, err)

	open, err = svc.IsLocationOpen(ctx, locationID, 1, "19:00")
	require.NoError(t, err)
	assert.True(t, open)

	require.NoError(t, svc.Delete(ctx, mon.ID))

	list, err := svc.ListByLocation(ctx, locationID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListAllOrder(t *testing.T) {
	store := memory.New()
	store.PutLocation(domain.Location{ID: 1, IsActive: true})
	store.PutLocation(domain.Location{ID: 2, IsActive: true})
	svc := New(store, store, nil, Config{})
	ctx := context.Background()

	for _, c := range []struct {
		loc int64
		day int
	}{{2, 0}, {1, 3}, {1, 1}, {2, 5}} {
		_, err := svc.Create(ctx, c.loc, Input{DayOfWeek: c.day, StartTime: "09:00", EndTime: "17:00"})
		require.NoError(t, err)
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)

	var got [][2]int64
	for _, s := range all {
		got = append(got, [2]int64{s.LocationID, int64(s.DayOfWeek)})
	}
	assert.Equal(t, [][2]int64{{1, 1}, {1, 3}, {2, 0}, {2, 5}}, got)
}
