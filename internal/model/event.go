package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated         EventType = "booking_created"
	EventTypeBookingConfirmed       EventType = "booking_confirmed"
	EventTypeBookingCancelled       EventType = "booking_cancelled"
	EventTypeBookingCompleted       EventType = "booking_completed"
	EventTypeBookingPaymentUpdated  EventType = "booking_payment_updated"
	EventTypeBookingMeetingAttached EventType = "booking_meeting_attached"
)

// EventTypeForStatus — какое событие пишем при переходе в статус.
func EventTypeForStatus(s BookingStatus) EventType {
	switch s {
	case BookingStatusConfirmed:
		return EventTypeBookingConfirmed
	case BookingStatusCancelled:
		return EventTypeBookingCancelled
	case BookingStatusCompleted:
		return EventTypeBookingCompleted
	default:
		return EventTypeBookingCreated
	}
}

// events — журнал изменений записей. Пишется в той же транзакции, что и изменение.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	BookingID *uuid.UUID `gorm:"type:uuid;index"`
	ActorID   string     `gorm:"type:varchar(128)"`

	Details string `gorm:"type:text"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
