package model

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrNoAvailability      = errors.New("provider has no availability configured")
	ErrPaymentStateChanged = errors.New("payment state changed concurrently")
	ErrInvalidArgument     = errors.New("invalid argument")

	// Время не совпадает ни с одним слотом, который выдаёт расписание.
	ErrSlotNotOffered = errors.New("requested time is not an offered slot")

	// Побочные операции над записью, недоступные в её текущем состоянии.
	ErrPaymentNotAllowed = errors.New("booking cannot be paid in its current state")
	ErrMeetingNotAllowed = errors.New("meeting can only be provisioned for a confirmed booking")

	// Внешняя интеграция не сконфигурирована.
	ErrIntegrationDisabled = errors.New("integration is not configured")
)

// InvalidScheduleError — некорректное расписание; исправить ввод, не ретраить.
type InvalidScheduleError struct {
	Field  string
	Reason string
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("invalid schedule: %s: %s", e.Field, e.Reason)
}

// SlotAlreadyTakenError — проиграли гонку за слот.
// Клиенту нужно заново получить свободные слоты и выбрать другой.
type SlotAlreadyTakenError struct {
	ProviderID      string
	AppointmentDate string
	StartTime       string
}

func (e *SlotAlreadyTakenError) Error() string {
	return fmt.Sprintf("slot %s %s of provider %s is already taken", e.AppointmentDate, e.StartTime, e.ProviderID)
}

// StaleStateError — статус записи изменился между чтением и обновлением.
// Обычно значит «уже обработано кем-то другим».
type StaleStateError struct {
	BookingID string
	Expected  BookingStatus
	Actual    BookingStatus
}

func (e *StaleStateError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("booking %s: expected status %s, state changed concurrently", e.BookingID, e.Expected)
	}
	return fmt.Sprintf("booking %s: expected status %s, actual %s", e.BookingID, e.Expected, e.Actual)
}

// InvalidTransitionError — переход не разрешён из текущего статуса.
type InvalidTransitionError struct {
	Attempted BookingStatus
	Actual    BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move booking from %s to %s", e.Actual, e.Attempted)
}

// UnauthorizedActionError — у актора нет прав на действие (403, а не 400).
type UnauthorizedActionError struct {
	ActorID string
	Action  string
}

func (e *UnauthorizedActionError) Error() string {
	return fmt.Sprintf("actor %q is not allowed to %s", e.ActorID, e.Action)
}
