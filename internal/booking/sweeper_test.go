package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Leganyst/therapy-booking/internal/model"
)

func TestSweep_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.confirm(t, f.reserve(t, "2025-01-06", "09:00"))
	second := f.confirm(t, f.reserve(t, "2025-01-06", "10:00"))
	later := f.confirm(t, f.reserve(t, "2025-01-06", "16:00"))
	pending := f.reserve(t, "2025-01-06", "11:00")

	f.clock.Set(time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC))

	res, err := f.svc.SweepCompletions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.UpdatedCount)

	res, err = f.svc.SweepCompletions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.UpdatedCount)

	assert.Equal(t, model.BookingStatusCompleted, f.stored(t, first).Status)
	assert.Equal(t, model.BookingStatusCompleted, f.stored(t, second).Status)
	assert.Equal(t, model.BookingStatusConfirmed, f.stored(t, later).Status)
	// Прошедшие pending не завершаются автоматически.
	assert.Equal(t, model.BookingStatusPending, f.stored(t, pending).Status)
}

func TestSweep_SessionEndingAtMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SetAvailability(ctx, f.provider.ID.String(), model.AvailabilityModel{
		SessionDurationMinutes: 60,
		WeeklySchedule: []model.DaySchedule{
			{DayOfWeek: int(time.Monday), Slots: []model.TimeRange{{StartTime: "23:00", EndTime: "24:00", Active: true}}},
		},
	}, "UTC", f.providerActor)
	require.NoError(t, err)

	b := f.confirm(t, f.reserve(t, "2025-01-06", "23:00"))
	assert.Equal(t, "24:00", b.EndTime)

	// Утро того же дня: сеанс ещё не начался.
	f.clock.Set(time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC))
	res, err := f.svc.SweepCompletions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.UpdatedCount)
	assert.Equal(t, model.BookingStatusConfirmed, f.stored(t, b).Status)

	meeting, err := f.svc.ProvisionMeeting(ctx, b.ID.String(), f.providerActor)
	require.NoError(t, err)
	// Фейковый Zoom кладёт длительность в пароль.
	assert.Equal(t, "60", meeting.Meeting.Password)

	f.clock.Set(time.Date(2025, 1, 7, 0, 30, 0, 0, time.UTC))
	res, err = f.svc.SweepCompletions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.UpdatedCount)
	assert.Equal(t, model.BookingStatusCompleted, f.stored(t, b).Status)
}

func TestSweep_EndBoundaryIsExclusive(t *testing.T) {
	f := newFixture(t)
	b := f.confirm(t, f.reserve(t, "2025-01-06", "09:00"))

	f.clock.Set(time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC))
	res, err := f.svc.SweepCompletions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.UpdatedCount)
	assert.Equal(t, model.BookingStatusConfirmed, f.stored(t, b).Status)
}

func TestSweep_OperatingTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	f := newFixture(t, func(_ *Deps, o *Options) { o.Location = loc })
	b := f.confirm(t, f.reserve(t, "2025-01-06", "09:00"))

	// 12:00 UTC = 07:00 в Нью-Йорке: сеанс ещё не начался.
	f.clock.Set(time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC))
	res, err := f.svc.SweepCompletions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.UpdatedCount)

	f.clock.Set(time.Date(2025, 1, 6, 15, 1, 0, 0, time.UTC))
	res, err = f.svc.SweepCompletions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.UpdatedCount)
	assert.Equal(t, model.BookingStatusCompleted, f.stored(t, b).Status)
}

func TestSweeperRun_RespectsLock(t *testing.T) {
	f := newFixture(t)
	b := f.confirm(t, f.reserve(t, "2025-01-06", "09:00"))
	f.clock.Set(time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC))

	busy := &fakeLocker{free: false}
	sweeper := NewSweeper(f.bookings, time.UTC, f.clock.Now, busy, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	require.NoError(t, sweeper.Run(ctx, 10*time.Millisecond))

	assert.Positive(t, busy.attempts)
	assert.Equal(t, model.BookingStatusConfirmed, f.stored(t, b).Status)

	free := &fakeLocker{free: true}
	sweeper = NewSweeper(f.bookings, time.UTC, f.clock.Now, free, zaptest.NewLogger(t))

	ctx, cancel = context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	require.NoError(t, sweeper.Run(ctx, 10*time.Millisecond))

	assert.Equal(t, model.BookingStatusCompleted, f.stored(t, b).Status)
}

func TestSweeperRun_RejectsNonPositiveInterval(t *testing.T) {
	s := NewSweeper(nil, nil, nil, nil, nil)
	assert.Error(t, s.Run(context.Background(), 0))
}

func TestFeeBreakdown_NetRefundNeverNegative(t *testing.T) {
	assert.Equal(t, int64(11622), FeeBreakdown{CapturedCents: 12000, FeeCents: 378}.NetRefundCents())
	assert.Equal(t, int64(0), FeeBreakdown{CapturedCents: 100, FeeCents: 330}.NetRefundCents())
}
