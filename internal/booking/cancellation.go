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

const defaultStepTimeout = 10 * time.Second

// StepStatus — итог одного компенсирующего шага отмены.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// Outcome — результаты шагов после смены статуса на cancelled.
type Outcome struct {
	Refund          StepStatus
	MeetingTeardown StepStatus
	Notification    StepStatus
}

// NeedsFollowUp: возврат или удаление встречи не прошли, нужен ручной разбор.
// Неудачное уведомление только логируется.
func (o Outcome) NeedsFollowUp() bool {
	return o.Refund == StepFailed || o.MeetingTeardown == StepFailed
}

type CancellationResult struct {
	Booking *model.Booking
	Outcome Outcome
}

// CancellationCoordinator отменяет запись и выполняет компенсации по принципу best-effort:
// ошибка одного шага не мешает остальным и не поднимается выше координатора.
type CancellationCoordinator struct {
	bookings    repository.BookingRepository
	payments    PaymentProcessor
	meetings    MeetingProvider
	notifier    Notifier
	stepTimeout time.Duration
	loc         *time.Location
	now         func() time.Time
	log         *zap.Logger
}

func NewCancellationCoordinator(
	bookings repository.BookingRepository,
	payments PaymentProcessor,
	meetings MeetingProvider,
	notifier Notifier,
	stepTimeout time.Duration,
	loc *time.Location,
	now func() time.Time,
	log *zap.Logger,
) *CancellationCoordinator {
	if stepTimeout <= 0 {
		stepTimeout = defaultStepTimeout
	}
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CancellationCoordinator{
		bookings:    bookings,
		payments:    payments,
		meetings:    meetings,
		notifier:    notifier,
		stepTimeout: stepTimeout,
		loc:         loc,
		now:         now,
		log:         log,
	}
}

// Cancel переводит b из текущего статуса в cancelled и запускает компенсации.
// Ошибка возвращается только если не удалась сама смена статуса.
func (c *CancellationCoordinator) Cancel(
	ctx context.Context,
	b *model.Booking,
	by model.CancelledBy,
	reason string,
) (*CancellationResult, error) {
	at := c.now().UTC()
	cancelled, err := c.bookings.Transition(ctx, b.ID.String(), b.Status, model.BookingStatusCancelled, func(x *model.Booking) {
		x.CancellationReason = reason
		x.CancelledBy = by
		x.CancelledAt = &at
	})
	if err != nil {
		return nil, err
	}

	log := c.log.With(zap.String("booking_id", cancelled.ID.String()))
	// Отмена клиентского запроса не должна оборвать уже начатые компенсации.
	bg := context.WithoutCancel(ctx)

	res := &CancellationResult{Booking: cancelled}
	res.Outcome.Refund = c.refund(bg, res, log)
	res.Outcome.MeetingTeardown = c.teardownMeeting(bg, cancelled, log)
	// Письмо строим по записи после возврата, чтобы упомянуть refund.
	res.Outcome.Notification = c.notify(bg, res.Booking, reason, log)

	if res.Outcome.NeedsFollowUp() {
		log.Warn("booking cancelled with failed compensations",
			zap.String("refund", string(res.Outcome.Refund)),
			zap.String("meeting_teardown", string(res.Outcome.MeetingTeardown)),
		)
	}
	return res, nil
}

// runStep ограничивает шаг таймаутом; таймаут равносилен ошибке шага,
// даже если коллаборатор игнорирует ctx.
func (c *CancellationCoordinator) runStep(ctx context.Context, step func(context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, c.stepTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- step(stepCtx) }()

	select {
	case err := <-done:
		return err
	case <-stepCtx.Done():
		return stepCtx.Err()
	}
}

func (c *CancellationCoordinator) refund(ctx context.Context, res *CancellationResult, log *zap.Logger) StepStatus {
	b := res.Booking
	if b.PaymentState != model.PaymentStatePaid {
		return StepSkipped
	}
	if c.payments == nil {
		log.Error("refund needed but payments are not configured")
		return StepFailed
	}

	var refundRef string
	err := c.runStep(ctx, func(ctx context.Context) error {
		fees, err := c.payments.Fees(ctx, b.PaymentRef)
		if err != nil {
			return fmt.Errorf("fees: %w", err)
		}
		if fees.CapturedCents == 0 {
			fees.CapturedCents = b.PriceCents
		}
		amount := fees.NetRefundCents()
		if amount == 0 {
			return nil
		}
		refundRef, err = c.payments.Refund(ctx, b.PaymentRef, amount)
		return err
	})
	if err != nil {
		log.Error("refund failed", zap.String("payment_ref", b.PaymentRef), zap.Error(err))
		return StepFailed
	}

	updated, err := c.bookings.UpdatePayment(ctx, b.ID.String(), model.PaymentStatePaid, func(x *model.Booking) {
		x.PaymentState = model.PaymentStateRefunded
		x.RefundRef = refundRef
	})
	if err != nil {
		// Деньги вернули, а отметить не смогли — тоже ручной разбор.
		log.Error("refund issued but not persisted", zap.String("refund_ref", refundRef), zap.Error(err))
		return StepFailed
	}
	res.Booking = updated
	return StepOK
}

func (c *CancellationCoordinator) teardownMeeting(ctx context.Context, b *model.Booking, log *zap.Logger) StepStatus {
	if b.Meeting.IsZero() {
		return StepSkipped
	}
	if c.meetings == nil {
		log.Error("meeting teardown needed but meetings are not configured")
		return StepFailed
	}

	err := c.runStep(ctx, func(ctx context.Context) error {
		return c.meetings.DeleteMeeting(ctx, b.Meeting.MeetingID)
	})
	if err != nil && !errors.Is(err, ErrMeetingNotFound) {
		log.Error("meeting teardown failed", zap.String("meeting_id", b.Meeting.MeetingID), zap.Error(err))
		return StepFailed
	}
	return StepOK
}

func (c *CancellationCoordinator) notify(ctx context.Context, b *model.Booking, reason string, log *zap.Logger) StepStatus {
	// Исход уведомления только ok|failed: без адресов отправлять некому, это не ошибка.
	recipients := contactAddresses(b)
	if len(recipients) == 0 {
		log.Warn("no contact addresses, cancellation notice not sent")
		return StepOK
	}
	if c.notifier == nil {
		log.Error("notifier is not configured, cancellation notice dropped")
		return StepFailed
	}

	subject, body := cancellationNotice(b, reason, c.loc)
	err := c.runStep(ctx, func(ctx context.Context) error {
		return c.notifier.Send(ctx, recipients, subject, body)
	})
	if err != nil {
		log.Error("cancellation notice failed", zap.Strings("recipients", recipients), zap.Error(err))
		return StepFailed
	}
	return StepOK
}

// contactAddresses — известные адреса обеих сторон, пустые пропускаются.
func contactAddresses(b *model.Booking) []string {
	var out []string
	if b.Client != nil && b.Client.Email != "" {
		out = append(out, b.Client.Email)
	}
	if b.Provider != nil && b.Provider.Email != "" {
		out = append(out, b.Provider.Email)
	}
	return out
}

// sessionTime — время сеанса для писем.
func sessionTime(b *model.Booking, loc *time.Location) string {
	start, errStart := b.StartsAt(loc)
	end, errEnd := b.EndsAt(loc)
	if errStart != nil || errEnd != nil {
		return b.AppointmentDate + " " + b.StartTime
	}
	return calendar.FormatSlotForUser(calendar.TimeRange{Start: start, End: end}, loc)
}

func meetingInvite(b *model.Booking, loc *time.Location) (subject, body string) {
	subject = "Your session link"
	body = fmt.Sprintf("Your session on %s will take place online.\nJoin: %s", sessionTime(b, loc), b.Meeting.JoinURL)
	if b.Meeting.Password != "" {
		body += "\nPasscode: " + b.Meeting.Password
	}
	return subject, body
}

func cancellationNotice(b *model.Booking, reason string, loc *time.Location) (subject, body string) {
	when := sessionTime(b, loc)

	subject = "Session cancelled"
	body = fmt.Sprintf("The session on %s has been cancelled by the %s.", when, b.CancelledBy)
	if reason != "" {
		body += "\nReason: " + reason
	}
	if b.PaymentState == model.PaymentStateRefunded {
		body += "\nA refund has been issued to the original payment method."
	}
	return subject, body
}
