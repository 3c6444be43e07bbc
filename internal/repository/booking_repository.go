package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/therapy-booking/internal/calendar"
	"github.com/Leganyst/therapy-booking/internal/model"
)

type BookingRepository interface {
	// Атомарно создать запись. Проигранная гонка за слот — *model.SlotAlreadyTakenError.
	Reserve(ctx context.Context, booking *model.Booking) error
	// Получить запись по ID вместе с провайдером и клиентом.
	Find(ctx context.Context, id string) (*model.Booking, error)
	// Записи провайдера с фильтрами.
	FindByProvider(ctx context.Context, providerID string, filter model.BookingFilter) ([]model.Booking, error)
	// Все записи в статусе (для свипера).
	ListByStatus(ctx context.Context, status model.BookingStatus) ([]model.Booking, error)
	// Занятые (pending/confirmed) слоты провайдера в диапазоне дат.
	ReservedSlots(ctx context.Context, providerID, fromDate, toDate string) (calendar.Reserved, error)
	// Условная смена статуса: expected -> next.
	Transition(
		ctx context.Context,
		id string,
		expected, next model.BookingStatus,
		mutate func(*model.Booking),
	) (*model.Booking, error)
	// Условное обновление платёжных полей, статус записи не трогает.
	UpdatePayment(
		ctx context.Context,
		id string,
		expected model.PaymentState,
		mutate func(*model.Booking),
	) (*model.Booking, error)
	// Привязать видеовстречу к записи в статусе status.
	AttachMeeting(ctx context.Context, id string, status model.BookingStatus, ref model.MeetingRef) (*model.Booking, error)
	// Журнал событий записи, от старых к новым.
	Events(ctx context.Context, id string) ([]model.Event, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Reserve(ctx context.Context, booking *model.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(booking).Error; err != nil {
			return err
		}
		return tx.Create(newEvent(ctx, booking.ID, model.EventTypeBookingCreated, string(booking.Status))).Error
	})
	if isUniqueViolation(err) {
		return &model.SlotAlreadyTakenError{
			ProviderID:      booking.ProviderID.String(),
			AppointmentDate: booking.AppointmentDate,
			StartTime:       booking.StartTime,
		}
	}
	if err != nil {
		return fmt.Errorf("reserve booking: %w", err)
	}
	return nil
}

func (r *GormBookingRepository) Find(ctx context.Context, id string) (*model.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrBookingNotFound
	}
	var b model.Booking
	if err := loadBooking(r.db.WithContext(ctx), bookingID, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) FindByProvider(
	ctx context.Context,
	providerID string,
	filter model.BookingFilter,
) ([]model.Booking, error) {
	var bookings []model.Booking

	q := r.db.WithContext(ctx).
		Preload("Provider").
		Preload("Client").
		Where("provider_id = ?", providerID)

	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	// Даты в формате YYYY-MM-DD сравниваются строками корректно.
	if filter.FromDate != "" {
		q = q.Where("appointment_date >= ?", filter.FromDate)
	}
	if filter.ToDate != "" {
		q = q.Where("appointment_date <= ?", filter.ToDate)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}

	if err := q.Order("appointment_date ASC, start_time ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) ListByStatus(ctx context.Context, status model.BookingStatus) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("appointment_date ASC, start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) ReservedSlots(
	ctx context.Context,
	providerID, fromDate, toDate string,
) (calendar.Reserved, error) {
	var rows []struct {
		AppointmentDate string
		StartTime       string
	}
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Select("appointment_date, start_time").
		Where("provider_id = ?", providerID).
		Where("status IN ?", model.ActiveBookingStatuses).
		Where("appointment_date >= ? AND appointment_date <= ?", fromDate, toDate).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	reserved := make(calendar.Reserved, len(rows))
	for _, row := range rows {
		reserved.Add(row.AppointmentDate, row.StartTime)
	}
	return reserved, nil
}

// Transition в одной транзакции:
//   - читает запись и сверяет статус с expected;
//   - применяет mutate (учитываются только поля отмены и Notes);
//   - делает UPDATE ... WHERE id = ? AND status = expected;
//   - пишет событие в журнал.
//
// Расхождение статуса или 0 обновлённых строк — *model.StaleStateError.
func (r *GormBookingRepository) Transition(
	ctx context.Context,
	id string,
	expected, next model.BookingStatus,
	mutate func(*model.Booking),
) (*model.Booking, error) {
	if !expected.CanTransitionTo(next) {
		return nil, &model.InvalidTransitionError{Attempted: next, Actual: expected}
	}
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrBookingNotFound
	}

	var b model.Booking
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadBooking(tx, bookingID, &b); err != nil {
			return err
		}
		if b.Status != expected {
			return &model.StaleStateError{BookingID: id, Expected: expected, Actual: b.Status}
		}

		if mutate != nil {
			mutate(&b)
		}
		b.Status = next
		b.UpdatedAt = time.Now().UTC()

		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status = ?", bookingID, expected).
			Updates(map[string]any{
				"status":              b.Status,
				"cancellation_reason": b.CancellationReason,
				"cancelled_by":        b.CancelledBy,
				"cancelled_at":        b.CancelledAt,
				"notes":               b.Notes,
				"updated_at":          b.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &model.StaleStateError{BookingID: id, Expected: expected}
		}

		details := fmt.Sprintf("%s -> %s", expected, next)
		return tx.Create(newEvent(ctx, bookingID, model.EventTypeForStatus(next), details)).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) UpdatePayment(
	ctx context.Context,
	id string,
	expected model.PaymentState,
	mutate func(*model.Booking),
) (*model.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrBookingNotFound
	}

	var b model.Booking
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadBooking(tx, bookingID, &b); err != nil {
			return err
		}
		if b.PaymentState != expected {
			return model.ErrPaymentStateChanged
		}

		if mutate != nil {
			mutate(&b)
		}
		b.UpdatedAt = time.Now().UTC()

		res := tx.Model(&model.Booking{}).
			Where("id = ? AND payment_state = ?", bookingID, expected).
			Updates(map[string]any{
				"payment_state": b.PaymentState,
				"payment_ref":   b.PaymentRef,
				"refund_ref":    b.RefundRef,
				"updated_at":    b.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrPaymentStateChanged
		}

		details := fmt.Sprintf("%s -> %s", expected, b.PaymentState)
		return tx.Create(newEvent(ctx, bookingID, model.EventTypeBookingPaymentUpdated, details)).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) AttachMeeting(
	ctx context.Context,
	id string,
	status model.BookingStatus,
	ref model.MeetingRef,
) (*model.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrBookingNotFound
	}

	var b model.Booking
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadBooking(tx, bookingID, &b); err != nil {
			return err
		}
		if b.Status != status {
			return &model.StaleStateError{BookingID: id, Expected: status, Actual: b.Status}
		}

		b.Meeting = ref
		b.UpdatedAt = time.Now().UTC()

		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status = ?", bookingID, status).
			Updates(map[string]any{
				"meeting_id":       ref.MeetingID,
				"meeting_join_url": ref.JoinURL,
				"meeting_password": ref.Password,
				"updated_at":       b.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &model.StaleStateError{BookingID: id, Expected: status}
		}

		return tx.Create(newEvent(ctx, bookingID, model.EventTypeBookingMeetingAttached, ref.MeetingID)).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) Events(ctx context.Context, id string) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", id).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// loadBooking читает запись через переданный хэндл; внутри транзакции это должен быть tx.
func loadBooking(db *gorm.DB, id uuid.UUID, b *model.Booking) error {
	err := db.Preload("Provider").Preload("Client").First(b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ErrBookingNotFound
	}
	return err
}

// newEvent — строка журнала; автор берётся из контекста запроса, по умолчанию system.
func newEvent(ctx context.Context, bookingID uuid.UUID, t model.EventType, details string) *model.Event {
	actorID := calendar.System.UserID
	if a, ok := calendar.ActorFromContext(ctx); ok && a.UserID != "" {
		actorID = a.UserID
	}
	return &model.Event{
		EventType: t,
		BookingID: &bookingID,
		ActorID:   actorID,
		Details:   details,
	}
}

// isUniqueViolation распознаёт нарушение уникального индекса у обоих драйверов.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
