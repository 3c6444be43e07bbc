package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Leganyst/therapy-booking/internal/calendar"
	"github.com/Leganyst/therapy-booking/internal/model"
	"github.com/Leganyst/therapy-booking/internal/repository"
)

// Ключ распределённой блокировки фонового свипа.
const sweepLockKey = "booking:completion-sweep"

type SweepResult struct {
	UpdatedCount int
}

// Sweeper переводит прошедшие confirmed-записи в completed.
// Побочных эффектов, кроме смены статуса, нет.
type Sweeper struct {
	bookings repository.BookingRepository
	loc      *time.Location
	now      func() time.Time
	locker   Locker
	log      *zap.Logger
}

func NewSweeper(
	bookings repository.BookingRepository,
	loc *time.Location,
	now func() time.Time,
	locker Locker,
	log *zap.Logger,
) *Sweeper {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{bookings: bookings, loc: loc, now: now, locker: locker, log: log}
}

// Sweep идемпотентен: повторный запуск на тех же данных ничего не меняет.
// Проигранные гонки (запись уже отменили или завершили) пропускаются.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	confirmed, err := s.bookings.ListByStatus(ctx, model.BookingStatusConfirmed)
	if err != nil {
		return res, fmt.Errorf("list confirmed bookings: %w", err)
	}

	ctx = calendar.WithActor(ctx, calendar.System)
	now := s.now()

	for i := range confirmed {
		b := &confirmed[i]
		end, err := b.EndsAt(s.loc)
		if err != nil {
			s.log.Warn("skip booking with malformed time", zap.String("booking_id", b.ID.String()), zap.Error(err))
			continue
		}
		if !end.Before(now) {
			continue
		}

		_, err = s.bookings.Transition(ctx, b.ID.String(), model.BookingStatusConfirmed, model.BookingStatusCompleted, nil)
		var stale *model.StaleStateError
		if errors.As(err, &stale) {
			s.log.Debug("booking already handled", zap.String("booking_id", b.ID.String()), zap.String("actual", string(stale.Actual)))
			continue
		}
		if err != nil {
			return res, fmt.Errorf("complete booking %s: %w", b.ID, err)
		}
		res.UpdatedCount++
	}

	if res.UpdatedCount > 0 {
		s.log.Info("completion sweep finished", zap.Int("updated", res.UpdatedCount))
	}
	return res, nil
}

// Run запускает свип по таймеру до отмены ctx.
// С Locker тик пропускается, если блокировку держит другая реплика.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.tick(ctx, interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.tick(ctx, interval)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context, ttl time.Duration) {
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, sweepLockKey, ttl)
		if err != nil {
			s.log.Warn("sweep lock failed", zap.Error(err))
			return
		}
		if !ok {
			s.log.Debug("sweep lock held elsewhere, skipping tick")
			return
		}
		defer release()
	}

	if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
		s.log.Error("completion sweep failed", zap.Error(err))
	}
}
