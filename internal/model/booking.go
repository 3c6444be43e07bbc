package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Разрешённые переходы. Терминальные статусы переходов не имеют.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted: {},
	BookingStatusCancelled: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// IsTerminal — completed и cancelled неизменяемы.
func (s BookingStatus) IsTerminal() bool {
	next, ok := bookingTransitions[s]
	return !ok || len(next) == 0
}

// CanTransitionTo сообщает, разрешён ли переход s -> target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// ActiveBookingStatuses — статусы, которые занимают слот.
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

type PaymentState string

const (
	PaymentStateUnpaid   PaymentState = "unpaid"
	PaymentStatePaid     PaymentState = "paid"
	PaymentStateRefunded PaymentState = "refunded"
)

// Кто отменил запись.
type CancelledBy string

const (
	CancelledByClient   CancelledBy = "client"
	CancelledByProvider CancelledBy = "provider"
	CancelledBySystem   CancelledBy = "system"
)

// MeetingRef — ссылка на внешнюю видеовстречу.
type MeetingRef struct {
	MeetingID string `gorm:"column:meeting_id;type:varchar(128)"`
	JoinURL   string `gorm:"column:meeting_join_url;type:text"`
	Password  string `gorm:"column:meeting_password;type:varchar(128)"`
}

func (m MeetingRef) IsZero() bool { return m.MeetingID == "" }

// bookings
//
// Уникальность активного слота обеспечивается частичным индексом
// idx_bookings_active_slot (см. migrate.go), а не проверкой в коде.
type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProviderID uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_provider_status,priority:1"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;index"`

	// Дата без часового пояса в формате DateLayout, время "HH:MM".
	AppointmentDate string `gorm:"type:varchar(10);not null;index"`
	StartTime       string `gorm:"type:varchar(5);not null"`
	EndTime         string `gorm:"type:varchar(5);not null"`

	Status BookingStatus `gorm:"type:varchar(32);not null;index:idx_bookings_provider_status,priority:2"`

	// Цена фиксируется в момент записи, в минимальных единицах валюты.
	PriceCents int64  `gorm:"not null"`
	Currency   string `gorm:"type:varchar(3);not null;default:'usd'"`

	PaymentState PaymentState `gorm:"type:varchar(16);not null;default:'unpaid'"`
	PaymentRef   string       `gorm:"type:varchar(128)"`
	RefundRef    string       `gorm:"type:varchar(128)"`

	CancellationReason string      `gorm:"type:text"`
	CancelledBy        CancelledBy `gorm:"type:varchar(16)"`
	CancelledAt        *time.Time

	Meeting MeetingRef `gorm:"embedded"`

	Notes string `gorm:"type:varchar(500)"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Provider *Provider `gorm:"foreignKey:ProviderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Client   *Client   `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// BookingFilter — фильтры выборки записей провайдера. Пустые поля не фильтруют.
type BookingFilter struct {
	Statuses []BookingStatus
	// Диапазон дат включительно, формат DateLayout.
	FromDate string
	ToDate   string
	ClientID string
}

// BeforeCreate проставляет ID на стороне приложения (sqlite не умеет gen_random_uuid()).
func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// EndsAt — конец сеанса в рабочем часовом поясе.
// Конец не позже начала (записи с "00:00") относится к следующему дню.
func (b *Booking) EndsAt(loc *time.Location) (time.Time, error) {
	end, err := combineDateClock(b.AppointmentDate, b.EndTime, loc)
	if err != nil {
		return time.Time{}, err
	}
	start, err := combineDateClock(b.AppointmentDate, b.StartTime, loc)
	if err != nil {
		return time.Time{}, err
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return end, nil
}

// StartsAt — начало сеанса в рабочем часовом поясе.
func (b *Booking) StartsAt(loc *time.Location) (time.Time, error) {
	return combineDateClock(b.AppointmentDate, b.StartTime, loc)
}

func combineDateClock(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minutes, 0, 0, loc), nil
}
