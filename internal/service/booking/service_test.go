package booking

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/valet-go/internal/apperr"
	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository/memory"
	"github.com/kirinyoku/valet-go/internal/service/availability"
)

const locationID = 1

type recorder struct {
	mu      sync.Mutex
	events  []domain.BookingEvent
	notices []domain.Notification
}

func (r *recorder) BookingUpdated(_ context.Context, ev domain.BookingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) Notify(_ context.Context, n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// 2030-01-07 is a Monday.
func at(hh, mm int) time.Time {
	return time.Date(2030, 1, 7, hh, mm, 0, 0, time.UTC)
}

func newService(t *testing.T, cfg availability.Config) (*Service, *recorder) {
	t.Helper()

	store := memory.New()
	store.PutLocation(domain.Location{ID: locationID, Name: "Downtown", IsActive: true})
	require.NoError(t, store.Schedules().Create(context.Background(), &domain.Schedule{
		LocationID: locationID,
		DayOfWeek:  1,
		StartTime:  "09:00",
		EndTime:    "18:00",
		IsActive:   true,
	}))

	rec := &recorder{}
	svc := New(store, store, availability.New(store, cfg), rec).
		WithClock(func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) })

	return svc, rec
}

func input(start, end time.Time) CreateInput {
	return CreateInput{UserID: 42, LocationID: locationID, StartTime: start, EndTime: end, PriceCents: 2500}
}

func TestBookingScenario(t *testing.T) {
	svc, _ := newService(t, availability.Config{})
	ctx := context.Background()

	first, err := svc.Create(ctx, input(at(10, 0), at(11, 0)))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, first.Status)

	_, err = svc.Create(ctx, input(at(10, 30), at(11, 30)))
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.Create(ctx, input(at(11, 0), at(12, 0)))
	require.NoError(t, err)

	confirmed, err := svc.UpdateStatus(ctx, first.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)

	_, err = svc.UpdateStatus(ctx, first.ID, domain.StatusPending)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	assert.Equal(t, "Cannot transition from CONFIRMED to PENDING", apperr.MessageOf(err))
}

func TestCreateOverlapSymmetry(t *testing.T) {
	a := [2]time.Time{at(10, 0), at(11, 0)}

	tests := []struct {
		name     string
		other    [2]time.Time
		conflict bool
	}{
		{"intersects end", [2]time.Time{at(10, 30), at(11, 30)}, true},
		{"intersects start", [2]time.Time{at(9, 30), at(10, 30)}, true},
		{"inside", [2]time.Time{at(10, 15), at(10, 45)}, true},
		{"identical", a, true},
		{"abuts after", [2]time.Time{at(11, 0), at(12, 0)}, false},
		{"abuts before", [2]time.Time{at(9, 0), at(10, 0)}, false},
		{"disjoint", [2]time.Time{at(14, 0), at(15, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, order := range [][2][2]time.Time{{a, tt.other}, {tt.other, a}} {
				svc, _ := newService(t, availability.Config{})
				ctx := context.Background()

				_, err := svc.Create(ctx, input(order[0][0], order[0][1]))
				require.NoError(t, err)

				_, err = svc.Create(ctx, input(order[1][0], order[1][1]))
				if tt.conflict {
					assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
				} else {
					assert.NoError(t, err)
				}
			}
		})
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t, availability.Config{})
	ctx := context.Background()

	longNotes := strings.Repeat("n", domain.MaxNotesLength+1)

	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"end before start", input(at(11, 0), at(10, 0)), availability.ErrInvalidWindow},
		{"empty window", input(at(11, 0), at(11, 0)), availability.ErrInvalidWindow},
		{"past start", input(at(10, 0).AddDate(-1, 0, 0), at(11, 0).AddDate(-1, 0, 0)), ErrStartInPast},
		{"negative price", func() CreateInput { in := input(at(10, 0), at(11, 0)); in.PriceCents = -1; return in }(), ErrNegativePrice},
		{"long notes", func() CreateInput { in := input(at(10, 0), at(11, 0)); in.Notes = longNotes; return in }(), ErrNotesTooLong},
		{"closed", input(at(19, 0), at(20, 0)), availability.ErrLocationClosed},
		{"unknown location", func() CreateInput { in := input(at(10, 0), at(11, 0)); in.LocationID = 9; return in }(), availability.ErrLocationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	page, _, err := svc.repos.Bookings().List(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, page, "rejected bookings must not be persisted")
}

func TestConcurrentCreateAdmitsOne(t *testing.T) {
	svc, _ := newService(t, availability.Config{})
	ctx := context.Background()

	const n = 16

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)

	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, input(at(10, 0), at(11, 0)))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if apperr.KindOf(err) == apperr.KindConflict {
				conflict++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflict)
}

func TestTransitionClosure(t *testing.T) {
	paths := map[domain.BookingStatus][]domain.BookingStatus{
		domain.StatusPending:    nil,
		domain.StatusConfirmed:  {domain.StatusConfirmed},
		domain.StatusInProgress: {domain.StatusConfirmed, domain.StatusInProgress},
		domain.StatusCompleted:  {domain.StatusConfirmed, domain.StatusInProgress, domain.StatusCompleted},
		domain.StatusCancelled:  {domain.StatusCancelled},
	}

	svc, _ := newService(t, availability.Config{SkipOperatingHours: true})
	ctx := context.Background()
	slot := 0

	for _, from := range domain.AllStatuses {
		for _, to := range domain.AllStatuses {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				start := at(0, 0).Add(time.Duration(slot) * time.Hour)
				slot++

				b, err := svc.Create(ctx, input(start, start.Add(time.Hour)))
				require.NoError(t, err)
				for _, st := range paths[from] {
					_, err := svc.UpdateStatus(ctx, b.ID, st)
					require.NoError(t, err)
				}

				got, err := svc.UpdateStatus(ctx, b.ID, to)
				if from.CanTransition(to) {
					require.NoError(t, err)
					assert.Equal(t, to, got.Status)

					stored, err := svc.Get(ctx, b.ID)
					require.NoError(t, err)
					assert.Equal(t, to, stored.Status)
					return
				}

				var ite InvalidTransitionError
				require.ErrorAs(t, err, &ite)
				assert.Equal(t, from, ite.From)
				assert.Equal(t, to, ite.To)
			})
		}
	}
}

func TestUpdateStatusUnknownBooking(t *testing.T) {
	svc, _ := newService(t, availability.Config{})

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), domain.StatusConfirmed)
	require.ErrorIs(t, err, ErrBookingNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _ := newService(t, availability.Config{})

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), domain.BookingStatus("PARKED"))
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCancel(t *testing.T) {
	svc, _ := newService(t, availability.Config{})
	ctx := context.Background()

	b, err := svc.Create(ctx, input(at(10, 0), at(11, 0)))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, b.ID)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, "Booking is already cancelled", apperr.MessageOf(err))

	// The slot is free again once cancelled.
	_, err = svc.Create(ctx, input(at(10, 0), at(11, 0)))
	require.NoError(t, err)
}

func TestCancelCompleted(t *testing.T) {
	svc, _ := newService(t, availability.Config{})
	ctx := context.Background()

	b, err := svc.Create(ctx, input(at(10, 0), at(11, 0)))
	require.NoError(t, err)
	for _, st := range []domain.BookingStatus{domain.StatusConfirmed, domain.StatusInProgress, domain.StatusCompleted} {
		_, err := svc.UpdateStatus(ctx, b.ID, st)
		require.NoError(t, err)
	}

	_, err = svc.Cancel(ctx, b.ID)
	require.ErrorIs(t, err, ErrCompletedNotCancellable)
	assert.Equal(t, "Completed bookings cannot be cancelled", apperr.MessageOf(err))
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestUpdateExcludesSelf(t *testing.T) {
	svc, _ := newService(t, availability.Config{})
	ctx := context.Background()

	b, err := svc.Create(ctx, input(at(10, 0), at(11, 0)))
	require.NoError(t, err)

	start, end := at(10, 0), at(11, 0)
	_, err = svc.Update(ctx, b.ID, Patch{StartTime: &start, EndTime: &end})
	require.NoError(t, err)

	shifted := at(10, 30)
	shiftedEnd := at(11, 30)
	got, err := svc.Update(ctx, b.ID, Patch{StartTime: &shifted, EndTime: &shiftedEnd})
	require.NoError(t, err)
	assert.True(t, got.StartTime.Equal(shifted))
	assert.True(t, got.EndTime.Equal(shiftedEnd))
}

func TestUpdateConflict(t *testing.T) {
	svc, _ := newService(t, availability.Config{})
	ctx := context.Background()

	_, err := svc.Create(ctx, input(at(10, 0), at(11, 0)))
	require.NoError(t, err)
	b, err := svc.Create(ctx, input(at(12, 0), at(13, 0)))
	require.NoError(t, err)

	start, end := at(10, 30), at(11, 30)
	_, err = svc.Update(ctx, b.ID, Patch{StartTime: &start, EndTime: &end})
	require.ErrorIs(t, err, ErrUpdatedSlotUnavailable)
	assert.Equal(t, "Updated booking time slot is not available", apperr.MessageOf(err))

	stored, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(at(12, 0)))
}

func TestUpdateFields(t *testing.T) {
	svc, _ := newService(t, availability.Config{})
	ctx := context.Background()

	b, err := svc.Create(ctx, input(at(10, 0), at(11, 0)))
	require.NoError(t, err)

	price := int64(4000)
	notes := "black sedan"
	got, err := svc.Update(ctx, b.ID, Patch{PriceCents: &price, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, price, got.PriceCents)
	assert.Equal(t, notes, got.Notes)

	negative := int64(-5)
	_, err = svc.Update(ctx, b.ID, Patch{PriceCents: &negative})
	require.ErrorIs(t, err, ErrNegativePrice)
}

func TestUpdateTerminalBookingTimes(t *testing.T) {
	svc, _ := newService(t, availability.Config{})
	ctx := context.Background()

	b, err := svc.Create(ctx, input(at(10, 0), at(11, 0)))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, b.ID)
	require.NoError(t, err)

	start, end := at(12, 0), at(13, 0)
	_, err = svc.Update(ctx, b.ID, Patch{StartTime: &start, EndTime: &end})
	require.ErrorIs(t, err, ErrNotReschedulable)
}

func TestDelete(t *testing.T) {
	svc, _ := newService(t, availability.Config{})
	ctx := context.Background()

	pending, err := svc.Create(ctx, input(at(10, 0), at(11, 0)))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, pending.ID))

	_, err = svc.Get(ctx, pending.ID)
	require.ErrorIs(t, err, ErrBookingNotFound)

	running, err := svc.Create(ctx, input(at(12, 0), at(13, 0)))
	require.NoError(t, err)
	for _, st := range []domain.BookingStatus{domain.StatusConfirmed, domain.StatusInProgress} {
		_, err := svc.UpdateStatus(ctx, running.ID, st)
		require.NoError(t, err)
	}

	err = svc.Delete(ctx, running.ID)
	require.ErrorIs(t, err, ErrNotDeletable)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.ErrorIs(t, svc.Delete(ctx, uuid.New()), ErrBookingNotFound)
}

func TestHasActiveForUser(t *testing.T) {
	svc, _ := newService(t, availability.Config{})
	ctx := context.Background()

	active, err := svc.HasActiveForUser(ctx, 42)
	require.NoError(t, err)
	assert.False(t, active)

	b, err := svc.Create(ctx, input(at(10, 0), at(11, 0)))
	require.NoError(t, err)

	active, err = svc.HasActiveForUser(ctx, 42)
	require.NoError(t, err)
	assert.True(t, active)

	_, err = svc.Cancel(ctx, b.ID)
	require.NoError(t, err)

	active, err = svc.HasActiveForUser(ctx, 42)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestSideEffects(t *testing.T) {
	svc, rec := newService(t, availability.Config{})
	ctx := context.Background()

	b, err := svc.Create(ctx, input(at(10, 0), at(11, 0)))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, b.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, b.ID)
	require.NoError(t, err)

	// Rejected changes emit nothing.
	_, err = svc.Cancel(ctx, b.ID)
	require.Error(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	require.Len(t, rec.events, 3)
	assert.Equal(t, domain.StatusPending, rec.events[0].Status)
	assert.Equal(t, domain.StatusConfirmed, rec.events[1].Status)
	assert.Equal(t, domain.StatusCancelled, rec.events[2].Status)
	assert.Equal(t, b.ID, rec.events[2].BookingID)
	assert.Equal(t, int64(42), rec.events[2].UserID)

	require.Len(t, rec.notices, 2)
	assert.Equal(t, NoticeCreated, rec.notices[0].Type)
	assert.Equal(t, NoticeCancelled, rec.notices[1].Type)
	assert.Equal(t, int64(42), rec.notices[1].UserID)
}
