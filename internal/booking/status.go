package booking

import (
	"github.com/Leganyst/therapy-booking/internal/calendar"
	"github.com/Leganyst/therapy-booking/internal/model"
)

// Действия для UnauthorizedActionError.
const (
	actionReserve   = "reserve a slot"
	actionConfirm   = "confirm the booking"
	actionCancel    = "cancel the booking"
	actionView      = "view the booking"
	actionList      = "list provider bookings"
	actionPay       = "pay for the booking"
	actionProvision = "provision a meeting"
	actionSchedule  = "edit the schedule"
)

// checkTransition — guard по таблице переходов model.BookingStatus.
func checkTransition(actual, next model.BookingStatus) error {
	if !actual.CanTransitionTo(next) {
		return &model.InvalidTransitionError{Attempted: next, Actual: actual}
	}
	return nil
}

func isProviderOwner(a calendar.Actor, b *model.Booking) bool {
	return a.Role == calendar.RoleProvider && b.Provider != nil && b.Provider.UserID == a.UserID
}

func isClientOwner(a calendar.Actor, b *model.Booking) bool {
	return a.Role == calendar.RoleClient && b.Client != nil && b.Client.UserID == a.UserID
}

func unauthorized(a calendar.Actor, action string) error {
	return &model.UnauthorizedActionError{ActorID: a.UserID, Action: action}
}

// authorizeProvider: подтверждать и заводить встречу может только провайдер записи или система.
func authorizeProvider(a calendar.Actor, b *model.Booking, action string) error {
	if a.Role == calendar.RoleSystem || isProviderOwner(a, b) {
		return nil
	}
	return unauthorized(a, action)
}

// authorizeClient: оплачивать может только клиент записи или система.
func authorizeClient(a calendar.Actor, b *model.Booking, action string) error {
	if a.Role == calendar.RoleSystem || isClientOwner(a, b) {
		return nil
	}
	return unauthorized(a, action)
}

// authorizeParticipant возвращает, от чьего имени выполняется действие.
func authorizeParticipant(a calendar.Actor, b *model.Booking, action string) (model.CancelledBy, error) {
	switch {
	case a.Role == calendar.RoleSystem:
		return model.CancelledBySystem, nil
	case isProviderOwner(a, b):
		return model.CancelledByProvider, nil
	case isClientOwner(a, b):
		return model.CancelledByClient, nil
	default:
		return "", unauthorized(a, action)
	}
}
