package main

import (
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/therapy-booking/internal/booking"
	"github.com/Leganyst/therapy-booking/internal/config"
	"github.com/Leganyst/therapy-booking/internal/db"
	"github.com/Leganyst/therapy-booking/internal/integrations/meeting"
	"github.com/Leganyst/therapy-booking/internal/integrations/notify"
	"github.com/Leganyst/therapy-booking/internal/integrations/payment"
	"github.com/Leganyst/therapy-booking/internal/integrations/redislock"
	"github.com/Leganyst/therapy-booking/internal/logger"
	"github.com/Leganyst/therapy-booking/internal/model"
	"github.com/Leganyst/therapy-booking/internal/repository"
)

// app — собранные зависимости процесса.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
	svc *booking.Service

	closers []func() error
}

// loadCore читает конфиг и поднимает логгер; БД не трогает.
func loadCore() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log}, nil
}

// loadBase — loadCore плюс подключение к БД.
func loadBase() (*app, error) {
	a, err := loadCore()
	if err != nil {
		return nil, err
	}

	gormDB, err := db.NewGormDB(a.cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("sql DB: %w", err)
	}

	a.db = gormDB
	a.closers = append(a.closers, sqlDB.Close)
	return a, nil
}

// bootstrap собирает сервис записей со всеми сконфигурированными интеграциями.
func bootstrap() (*app, error) {
	a, err := loadBase()
	if err != nil {
		return nil, err
	}

	if err := model.AutoMigrate(a.db); err != nil {
		a.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	loc, err := a.cfg.App.Location()
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := booking.Deps{
		Bookings:  repository.NewGormBookingRepository(a.db),
		Schedules: repository.NewGormScheduleRepository(a.db),
		Providers: repository.NewGormProviderRepository(a.db),
		Clients:   repository.NewGormClientRepository(a.db),
		Logger:    a.log,
	}

	// Интеграции подключаются, только если заданы ключи; иначе соответствующие операции
	// отвечают ErrIntegrationDisabled, а шаги отмены помечаются как failed/skipped.
	if a.cfg.Stripe.Enabled() {
		deps.Payments = payment.NewStripeProcessor(a.cfg.Stripe, a.log.Named("stripe"))
	}
	if a.cfg.Zoom.Enabled() {
		deps.Meetings = meeting.NewZoomClient(a.cfg.Zoom, a.log.Named("zoom"))
	}

	switch {
	case a.cfg.Redis.Enabled():
		queue := asynq.NewClient(redisOpt(a.cfg.Redis))
		a.closers = append(a.closers, queue.Close)
		deps.Notifier = notify.NewQueueNotifier(queue, a.log.Named("notify"))

		rdb := redislock.NewClient(a.cfg.Redis)
		a.closers = append(a.closers, rdb.Close)
		deps.Locker = redislock.New(rdb, a.log.Named("lock"))
	case a.cfg.Brevo.Enabled():
		deps.Notifier = notify.NewBrevoMailer(a.cfg.Brevo)
	}

	a.svc = booking.NewService(deps, booking.Options{
		Location:          loc,
		InitialStatus:     model.BookingStatus(a.cfg.App.InitialStatus),
		SlotHorizonDays:   a.cfg.App.SlotHorizonDays,
		SweepOnRead:       a.cfg.App.SweepOnRead,
		CancelStepTimeout: a.cfg.App.CancelStepTimeout,
	})

	a.log.Info("booking service ready",
		zap.String("operating_tz", loc.String()),
		zap.String("initial_status", a.cfg.App.InitialStatus),
		zap.Bool("payments", deps.Payments != nil),
		zap.Bool("meetings", deps.Meetings != nil),
		zap.Bool("notifications", deps.Notifier != nil),
		zap.Bool("distributed_lock", deps.Locker != nil),
	)
	return a, nil
}

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// Close закрывает ресурсы в обратном порядке.
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn("shutdown: close resources", zap.Error(err))
	}
	_ = a.log.Sync()
}
