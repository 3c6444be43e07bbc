package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Leganyst/therapy-booking/internal/calendar"
	"github.com/Leganyst/therapy-booking/internal/model"
	"github.com/Leganyst/therapy-booking/internal/repository"
)

// Options — параметры жизненного цикла записи.
type Options struct {
	// Рабочий часовой пояс для сравнения с "сейчас".
	Location *time.Location
	// Начальный статус новой записи: pending или confirmed.
	InitialStatus model.BookingStatus
	// Горизонт выдачи слотов в днях.
	SlotHorizonDays int
	// Запускать свип перед чтением списков.
	SweepOnRead bool
	// Таймаут одного шага компенсации при отмене.
	CancelStepTimeout time.Duration
	// Источник времени, по умолчанию time.Now.
	Now func() time.Time
}

// Deps — хранилища и внешние коллабораторы. Интеграции могут быть nil.
type Deps struct {
	Bookings  repository.BookingRepository
	Schedules repository.ScheduleRepository
	Providers repository.ProviderRepository
	Clients   repository.ClientRepository

	Payments PaymentProcessor
	Meetings MeetingProvider
	Notifier Notifier
	Locker   Locker

	Logger *zap.Logger
}

// ReserveRequest — входные данные бронирования.
type ReserveRequest struct {
	ProviderID string
	ClientID   string
	Date       string // model.DateLayout
	StartTime  string // "HH:MM"
	Notes      string
}

func (r ReserveRequest) Validate() error {
	if _, err := uuid.Parse(r.ProviderID); err != nil {
		return fmt.Errorf("%w: provider id must be a uuid", model.ErrInvalidArgument)
	}
	if _, err := uuid.Parse(r.ClientID); err != nil {
		return fmt.Errorf("%w: client id must be a uuid", model.ErrInvalidArgument)
	}
	if _, err := time.Parse(model.DateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", model.ErrInvalidArgument)
	}
	if _, err := model.ParseClock(r.StartTime); err != nil {
		return fmt.Errorf("%w: start time must be HH:MM", model.ErrInvalidArgument)
	}
	if len(r.Notes) > 500 {
		return fmt.Errorf("%w: notes are limited to 500 characters", model.ErrInvalidArgument)
	}
	return nil
}

// Service — жизненный цикл записи: бронирование, подтверждение, отмена, автозавершение.
type Service struct {
	bookings  repository.BookingRepository
	schedules repository.ScheduleRepository
	providers repository.ProviderRepository
	clients   repository.ClientRepository
	payments  PaymentProcessor
	meetings  MeetingProvider
	notifier  Notifier

	generator   calendar.Generator
	sweeper     *Sweeper
	coordinator *CancellationCoordinator

	opts Options
	log  *zap.Logger
}

func NewService(deps Deps, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.InitialStatus == "" {
		opts.InitialStatus = model.BookingStatusPending
	}
	if opts.SlotHorizonDays <= 0 {
		opts.SlotHorizonDays = 30
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		bookings:  deps.Bookings,
		schedules: deps.Schedules,
		providers: deps.Providers,
		clients:   deps.Clients,
		payments:  deps.Payments,
		meetings:  deps.Meetings,
		notifier:  deps.Notifier,
		generator: calendar.NewGenerator(opts.Location),
		sweeper:   NewSweeper(deps.Bookings, opts.Location, opts.Now, deps.Locker, log.Named("sweeper")),
		coordinator: NewCancellationCoordinator(
			deps.Bookings,
			deps.Payments,
			deps.Meetings,
			deps.Notifier,
			opts.CancelStepTimeout,
			opts.Location,
			opts.Now,
			log.Named("cancellation"),
		),
		opts: opts,
		log:  log,
	}
}

// Sweeper отдаёт свипер сервиса для фонового режима.
func (s *Service) Sweeper() *Sweeper {
	return s.sweeper
}

// ListAvailableSlots возвращает свободные слоты провайдера на даты [from, to].
// Нулевые границы означают "с сегодняшнего дня на весь горизонт"; диапазон обрезается по горизонту.
func (s *Service) ListAvailableSlots(ctx context.Context, providerID string, from, to time.Time) ([]calendar.Slot, error) {
	now := s.opts.Now()
	if from.IsZero() {
		from = now
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, s.opts.SlotHorizonDays)
	}
	tr, err := calendar.NormalizeTimeRange(from, to, s.opts.Location, time.Duration(s.opts.SlotHorizonDays)*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidArgument, err)
	}

	s.sweepOnRead(ctx)

	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return nil, err
	}
	availability, err := s.availability(ctx, providerID)
	if errors.Is(err, model.ErrNoAvailability) {
		return []calendar.Slot{}, nil
	}
	if err != nil {
		return nil, err
	}

	fromDate := tr.Start.Format(model.DateLayout)
	toDate := tr.End.Format(model.DateLayout)
	reserved, err := s.bookings.ReservedSlots(ctx, providerID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("reserved slots: %w", err)
	}

	slots := slices.Collect(s.generator.Slots(availability, tr.Start, tr.End, reserved, now))
	if slots == nil {
		slots = []calendar.Slot{}
	}
	return slots, nil
}

// ReserveSlot бронирует слот от имени клиента.
// Гонку за слот разрешает уникальный индекс хранилища: проигравший получает *model.SlotAlreadyTakenError.
func (s *Service) ReserveSlot(ctx context.Context, req ReserveRequest, actor calendar.Actor) (*model.Booking, error) {
	actor, err := calendar.ValidateActor(actor)
	if err != nil {
		return nil, err
	}
	ctx = calendar.WithActor(ctx, actor)

	// Клиент без карточки бронирует от своего имени: карточка заводится по внешнему ID.
	if req.ClientID == "" && actor.Role == calendar.RoleClient {
		c, err := s.clients.EnsureByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		req.ClientID = c.ID.String()
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case calendar.RoleSystem:
	case calendar.RoleClient:
		if client.UserID != actor.UserID {
			return nil, unauthorized(actor, actionReserve)
		}
	default:
		return nil, unauthorized(actor, actionReserve)
	}

	provider, err := s.providers.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	availability, err := s.availability(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	// Время должно попадать в сетку расписания на момент бронирования.
	slot, ok := s.generator.Offers(availability, req.Date, req.StartTime)
	if !ok {
		return nil, model.ErrSlotNotOffered
	}
	if !slot.StartsAt.After(s.opts.Now()) {
		return nil, fmt.Errorf("%w: slot has already started", model.ErrSlotNotOffered)
	}

	b := &model.Booking{
		ProviderID:      provider.ID,
		ClientID:        client.ID,
		AppointmentDate: slot.Date,
		StartTime:       slot.StartTime,
		EndTime:         slot.EndTime,
		Status:          s.opts.InitialStatus,
		PriceCents:      provider.PriceCents,
		Currency:        provider.Currency,
		PaymentState:    model.PaymentStateUnpaid,
		Notes:           req.Notes,
	}
	if err := s.bookings.Reserve(ctx, b); err != nil {
		return nil, err
	}
	b.Provider = provider
	b.Client = client

	s.log.Info("booking reserved",
		zap.String("booking_id", b.ID.String()),
		zap.String("provider_id", req.ProviderID),
		zap.String("date", b.AppointmentDate),
		zap.String("start", b.StartTime),
		zap.String("status", string(b.Status)),
	)
	return b, nil
}

// ConfirmBooking: pending -> confirmed, только провайдер записи.
func (s *Service) ConfirmBooking(ctx context.Context, id string, actor calendar.Actor) (*model.Booking, error) {
	actor, err := calendar.ValidateActor(actor)
	if err != nil {
		return nil, err
	}
	ctx = calendar.WithActor(ctx, actor)

	b, err := s.bookings.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	// Права проверяются раньше статуса: чужой записи 403, а не 400.
	if err := authorizeProvider(actor, b, actionConfirm); err != nil {
		return nil, err
	}
	if err := checkTransition(b.Status, model.BookingStatusConfirmed); err != nil {
		return nil, err
	}

	confirmed, err := s.bookings.Transition(ctx, id, b.Status, model.BookingStatusConfirmed, nil)
	if err != nil {
		return nil, err
	}
	s.log.Info("booking confirmed", zap.String("booking_id", id), zap.String("actor", actor.UserID))
	return confirmed, nil
}

// CancelBooking отменяет незавершённую запись и запускает компенсации.
// Частичный неуспех компенсаций отражается в Outcome, а не в ошибке.
func (s *Service) CancelBooking(ctx context.Context, id string, actor calendar.Actor, reason string) (*CancellationResult, error) {
	actor, err := calendar.ValidateActor(actor)
	if err != nil {
		return nil, err
	}
	ctx = calendar.WithActor(ctx, actor)

	b, err := s.bookings.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	by, err := authorizeParticipant(actor, b, actionCancel)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(b.Status, model.BookingStatusCancelled); err != nil {
		return nil, err
	}

	res, err := s.coordinator.Cancel(ctx, b, by, reason)
	if err != nil {
		return nil, err
	}
	s.log.Info("booking cancelled",
		zap.String("booking_id", id),
		zap.String("cancelled_by", string(by)),
		zap.Bool("needs_follow_up", res.Outcome.NeedsFollowUp()),
	)
	return res, nil
}

// SweepCompletions — свип по требованию.
func (s *Service) SweepCompletions(ctx context.Context) (SweepResult, error) {
	return s.sweeper.Sweep(ctx)
}

// GetBooking доступен участникам записи и системе.
func (s *Service) GetBooking(ctx context.Context, id string, actor calendar.Actor) (*model.Booking, error) {
	actor, err := calendar.ValidateActor(actor)
	if err != nil {
		return nil, err
	}
	s.sweepOnRead(ctx)

	b, err := s.bookings.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeParticipant(actor, b, actionView); err != nil {
		return nil, err
	}
	return b, nil
}

// ListProviderBookings — записи провайдера с фильтрами, только для самого провайдера или системы.
// Пустой providerID у провайдера означает "мои записи".
func (s *Service) ListProviderBookings(
	ctx context.Context,
	providerID string,
	filter model.BookingFilter,
	actor calendar.Actor,
) ([]model.Booking, error) {
	actor, err := calendar.ValidateActor(actor)
	if err != nil {
		return nil, err
	}
	for _, st := range filter.Statuses {
		if !st.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidArgument, st)
		}
	}

	var provider *model.Provider
	if providerID == "" && actor.Role == calendar.RoleProvider {
		provider, err = s.providers.GetByUserID(ctx, actor.UserID)
	} else {
		provider, err = s.providers.GetByID(ctx, providerID)
	}
	if err != nil {
		return nil, err
	}
	if actor.Role != calendar.RoleSystem && (actor.Role != calendar.RoleProvider || provider.UserID != actor.UserID) {
		return nil, unauthorized(actor, actionList)
	}

	s.sweepOnRead(ctx)
	return s.bookings.FindByProvider(ctx, provider.ID.String(), filter)
}

// PayBooking списывает цену записи через платёжный процессор: unpaid -> paid.
func (s *Service) PayBooking(ctx context.Context, id string, actor calendar.Actor) (*model.Booking, error) {
	actor, err := calendar.ValidateActor(actor)
	if err != nil {
		return nil, err
	}
	ctx = calendar.WithActor(ctx, actor)

	b, err := s.bookings.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeClient(actor, b, actionPay); err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() || b.PaymentState != model.PaymentStateUnpaid {
		return nil, fmt.Errorf("%w: status %s, payment %s", model.ErrPaymentNotAllowed, b.Status, b.PaymentState)
	}
	if s.payments == nil {
		return nil, fmt.Errorf("payments: %w", model.ErrIntegrationDisabled)
	}

	paymentRef, err := s.payments.Capture(ctx, b.PriceCents, b.Currency)
	if err != nil {
		return nil, fmt.Errorf("capture payment: %w", err)
	}

	paid, err := s.bookings.UpdatePayment(ctx, id, model.PaymentStateUnpaid, func(x *model.Booking) {
		x.PaymentState = model.PaymentStatePaid
		x.PaymentRef = paymentRef
	})
	if err != nil {
		// Параллельная оплата успела раньше: возвращаем лишнее списание.
		s.log.Error("payment captured but not recorded, refunding",
			zap.String("booking_id", id),
			zap.String("payment_ref", paymentRef),
			zap.Error(err),
		)
		if _, refundErr := s.payments.Refund(context.WithoutCancel(ctx), paymentRef, b.PriceCents); refundErr != nil {
			s.log.Error("refund of unrecorded payment failed", zap.String("payment_ref", paymentRef), zap.Error(refundErr))
		}
		return nil, err
	}

	s.log.Info("booking paid", zap.String("booking_id", id), zap.String("payment_ref", paymentRef))
	return paid, nil
}

// ProvisionMeeting создаёт видеовстречу для подтверждённой записи. Повторный вызов возвращает существующую.
func (s *Service) ProvisionMeeting(ctx context.Context, id string, actor calendar.Actor) (*model.Booking, error) {
	actor, err := calendar.ValidateActor(actor)
	if err != nil {
		return nil, err
	}
	ctx = calendar.WithActor(ctx, actor)

	b, err := s.bookings.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeProvider(actor, b, actionProvision); err != nil {
		return nil, err
	}
	if b.Status != model.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: status %s", model.ErrMeetingNotAllowed, b.Status)
	}
	if !b.Meeting.IsZero() {
		return b, nil
	}
	if s.meetings == nil {
		return nil, fmt.Errorf("meetings: %w", model.ErrIntegrationDisabled)
	}

	start, err := b.StartsAt(s.opts.Location)
	if err != nil {
		return nil, err
	}
	end, err := b.EndsAt(s.opts.Location)
	if err != nil {
		return nil, err
	}
	req := MeetingRequest{
		Topic:           "Therapy session",
		StartsAt:        start,
		DurationMinutes: int(end.Sub(start) / time.Minute),
		TimeZone:        s.opts.Location.String(),
	}
	if b.Provider != nil {
		req.Topic = "Therapy session with " + b.Provider.DisplayName
		req.HostEmail = b.Provider.Email
	}

	ref, err := s.meetings.CreateMeeting(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	updated, err := s.bookings.AttachMeeting(ctx, id, model.BookingStatusConfirmed, ref)
	if err != nil {
		// Запись успели отменить или завершить: встреча больше не нужна.
		if delErr := s.meetings.DeleteMeeting(context.WithoutCancel(ctx), ref.MeetingID); delErr != nil && !errors.Is(delErr, ErrMeetingNotFound) {
			s.log.Error("orphan meeting teardown failed", zap.String("meeting_id", ref.MeetingID), zap.Error(delErr))
		}
		return nil, err
	}

	s.log.Info("meeting provisioned", zap.String("booking_id", id), zap.String("meeting_id", ref.MeetingID))
	s.sendMeetingInvite(ctx, updated)
	return updated, nil
}

// sendMeetingInvite рассылает ссылку на встречу обеим сторонам.
// Недоставленное письмо встречу не откатывает: ссылка остаётся в записи.
func (s *Service) sendMeetingInvite(ctx context.Context, b *model.Booking) {
	log := s.log.With(zap.String("booking_id", b.ID.String()))
	recipients := contactAddresses(b)
	if len(recipients) == 0 {
		return
	}
	if s.notifier == nil {
		log.Warn("notifier is not configured, meeting invite dropped")
		return
	}

	subject, body := meetingInvite(b, s.opts.Location)
	err := s.coordinator.runStep(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.notifier.Send(ctx, recipients, subject, body)
	})
	if err != nil {
		log.Error("meeting invite failed", zap.Strings("recipients", recipients), zap.Error(err))
	}
}

// SetAvailability валидирует и сохраняет недельное расписание провайдера.
// Уже созданные записи не пересчитываются.
func (s *Service) SetAvailability(
	ctx context.Context,
	providerID string,
	m model.AvailabilityModel,
	timeZone string,
	actor calendar.Actor,
) (*model.Schedule, error) {
	actor, err := calendar.ValidateActor(actor)
	if err != nil {
		return nil, err
	}
	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if actor.Role != calendar.RoleSystem && (actor.Role != calendar.RoleProvider || provider.UserID != actor.UserID) {
		return nil, unauthorized(actor, actionSchedule)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if timeZone == "" {
		timeZone = s.opts.Location.String()
	}
	if _, err := time.LoadLocation(timeZone); err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q", model.ErrInvalidArgument, timeZone)
	}

	schedule, err := model.NewSchedule(provider.ID, timeZone, m)
	if err != nil {
		return nil, err
	}
	if err := s.schedules.Upsert(ctx, schedule); err != nil {
		return nil, fmt.Errorf("save schedule: %w", err)
	}
	return schedule, nil
}

// GetAvailability возвращает сохранённое расписание провайдера.
func (s *Service) GetAvailability(ctx context.Context, providerID string) (model.AvailabilityModel, error) {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return model.AvailabilityModel{}, err
	}
	return s.availability(ctx, providerID)
}

func (s *Service) availability(ctx context.Context, providerID string) (model.AvailabilityModel, error) {
	schedule, err := s.schedules.GetByProvider(ctx, providerID)
	if err != nil {
		return model.AvailabilityModel{}, err
	}
	return schedule.Availability()
}

// sweepOnRead — ленивый режим свипа; ошибка не мешает чтению.
func (s *Service) sweepOnRead(ctx context.Context) {
	if !s.opts.SweepOnRead {
		return
	}
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.log.Warn("lazy completion sweep failed", zap.Error(err))
	}
}
