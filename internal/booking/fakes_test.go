package booking

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/Leganyst/therapy-booking/internal/calendar"
	"github.com/Leganyst/therapy-booking/internal/db"
	"github.com/Leganyst/therapy-booking/internal/model"
	"github.com/Leganyst/therapy-booking/internal/repository"
)

// 2025-01-06 — понедельник; "сейчас" в тестах — среда перед ним.
var testNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakePayments struct {
	mu        sync.Mutex
	fees      FeeBreakdown
	feesErr   error
	refundErr error
	captured  []int64
	refunds   []int64
}

func (p *fakePayments) Capture(_ context.Context, amountCents int64, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.captured = append(p.captured, amountCents)
	return fmt.Sprintf("pi_%d", len(p.captured)), nil
}

func (p *fakePayments) Fees(context.Context, string) (FeeBreakdown, error) {
	return p.fees, p.feesErr
}

func (p *fakePayments) Refund(_ context.Context, _ string, amountCents int64) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refundErr != nil {
		return "", p.refundErr
	}
	p.refunds = append(p.refunds, amountCents)
	return fmt.Sprintf("re_%d", len(p.refunds)), nil
}

type fakeMeetings struct {
	mu        sync.Mutex
	deleteErr error
	deleted   []string
}

func (m *fakeMeetings) CreateMeeting(_ context.Context, req MeetingRequest) (model.MeetingRef, error) {
	return model.MeetingRef{
		MeetingID: "85746065",
		JoinURL:   "https://zoom.us/j/85746065",
		Password:  fmt.Sprintf("%d", req.DurationMinutes),
	}, nil
}

func (m *fakeMeetings) DeleteMeeting(_ context.Context, meetingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, meetingID)
	return m.deleteErr
}

// fakeNotifier запоминает письма; sent, subjects и bodies идут в одном порядке.
type fakeNotifier struct {
	mu       sync.Mutex
	err      error
	block    chan struct{}
	sent     [][]string
	subjects []string
	bodies   []string
}

func (n *fakeNotifier) Send(_ context.Context, recipients []string, subject, body string) error {
	if n.block != nil {
		<-n.block
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, recipients)
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
	return n.err
}

type fakeLocker struct {
	mu       sync.Mutex
	free     bool
	attempts int
}

func (l *fakeLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts++
	return func() {}, l.free, nil
}

// barrierStore задерживает Find, пока его не вызовут все участники,
// так что оба конкурента гарантированно читают один и тот же статус.
type barrierStore struct {
	repository.BookingRepository
	arrived sync.WaitGroup
}

func (s *barrierStore) Find(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.BookingRepository.Find(ctx, id)
	s.arrived.Done()
	s.arrived.Wait()
	return b, err
}

type fixture struct {
	svc      *Service
	db       *gorm.DB
	bookings *repository.GormBookingRepository
	clock    *fakeClock
	payments *fakePayments
	meetings *fakeMeetings
	notifier *fakeNotifier

	provider *model.Provider
	client   *model.Client

	providerActor calendar.Actor
	clientActor   calendar.Actor
}

func newFixture(t *testing.T, configure ...func(*Deps, *Options)) *fixture {
	t.Helper()

	gdb, err := db.NewSQLite(filepath.Join(t.TempDir(), "booking.db"))
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		db:            gdb,
		bookings:      repository.NewGormBookingRepository(gdb),
		clock:         &fakeClock{now: testNow},
		payments:      &fakePayments{},
		meetings:      &fakeMeetings{},
		notifier:      &fakeNotifier{},
		providerActor: calendar.Actor{UserID: "provider-user", Role: calendar.RoleProvider},
		clientActor:   calendar.Actor{UserID: "client-user", Role: calendar.RoleClient},
	}

	ctx := context.Background()
	providers := repository.NewGormProviderRepository(gdb)
	clients := repository.NewGormClientRepository(gdb)
	schedules := repository.NewGormScheduleRepository(gdb)

	f.provider = &model.Provider{UserID: "provider-user", DisplayName: "Dr. Smith", Email: "smith@example.com", PriceCents: 12000, Currency: "usd"}
	require.NoError(t, providers.Create(ctx, f.provider))
	f.client = &model.Client{UserID: "client-user", DisplayName: "Jane", Email: "jane@example.com"}
	require.NoError(t, gdb.Create(f.client).Error)

	schedule, err := model.NewSchedule(f.provider.ID, "UTC", model.AvailabilityModel{
		SessionDurationMinutes: 60,
		WeeklySchedule: []model.DaySchedule{
			{DayOfWeek: int(time.Monday), Slots: []model.TimeRange{{StartTime: "09:00", EndTime: "17:00", Active: true}}},
		},
	})
	require.NoError(t, err)
	require.NoError(t, schedules.Upsert(ctx, schedule))

	deps := Deps{
		Bookings:  f.bookings,
		Schedules: schedules,
		Providers: providers,
		Clients:   clients,
		Payments:  f.payments,
		Meetings:  f.meetings,
		Notifier:  f.notifier,
		Logger:    zaptest.NewLogger(t),
	}
	opts := Options{
		Location:          time.UTC,
		InitialStatus:     model.BookingStatusPending,
		SlotHorizonDays:   30,
		CancelStepTimeout: time.Second,
		Now:               f.clock.Now,
	}
	for _, fn := range configure {
		fn(&deps, &opts)
	}
	f.svc = NewService(deps, opts)
	return f
}

func (f *fixture) reserve(t *testing.T, date, start string) *model.Booking {
	t.Helper()
	b, err := f.svc.ReserveSlot(context.Background(), ReserveRequest{
		ProviderID: f.provider.ID.String(),
		ClientID:   f.client.ID.String(),
		Date:       date,
		StartTime:  start,
	}, f.clientActor)
	require.NoError(t, err)
	return b
}

func (f *fixture) confirm(t *testing.T, b *model.Booking) *model.Booking {
	t.Helper()
	confirmed, err := f.svc.ConfirmBooking(context.Background(), b.ID.String(), f.providerActor)
	require.NoError(t, err)
	return confirmed
}

func (f *fixture) stored(t *testing.T, b *model.Booking) *model.Booking {
	t.Helper()
	got, err := f.bookings.Find(context.Background(), b.ID.String())
	require.NoError(t, err)
	return got
}
