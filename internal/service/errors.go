package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/therapy-booking/internal/calendar"
	"github.com/Leganyst/therapy-booking/internal/model"
)

// toStatus переводит доменную ошибку в gRPC-статус. Неизвестные ошибки уходят как Internal без деталей.
func toStatus(log *zap.Logger, op string, err error) error {
	var (
		invalidSchedule *model.InvalidScheduleError
		slotTaken       *model.SlotAlreadyTakenError
		stale           *model.StaleStateError
		invalidTrans    *model.InvalidTransitionError
		unauthorized    *model.UnauthorizedActionError
	)

	switch {
	case errors.As(err, &invalidSchedule),
		errors.Is(err, model.ErrInvalidArgument),
		errors.Is(err, model.ErrSlotNotOffered):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.As(err, &slotTaken),
		errors.As(err, &stale),
		errors.Is(err, model.ErrPaymentStateChanged):
		return status.Error(codes.Aborted, err.Error())

	case errors.As(err, &invalidTrans),
		errors.Is(err, model.ErrPaymentNotAllowed),
		errors.Is(err, model.ErrMeetingNotAllowed),
		errors.Is(err, model.ErrIntegrationDisabled):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.As(err, &unauthorized):
		return status.Error(codes.PermissionDenied, err.Error())

	case errors.Is(err, calendar.ErrMissingActor),
		errors.Is(err, calendar.ErrInvalidActor):
		return status.Error(codes.Unauthenticated, err.Error())

	case errors.Is(err, model.ErrBookingNotFound),
		errors.Is(err, model.ErrProviderNotFound),
		errors.Is(err, model.ErrClientNotFound),
		errors.Is(err, model.ErrNoAvailability):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}

	log.Error(op+" failed", zap.Error(err))
	return status.Errorf(codes.Internal, "%s: internal error", op)
}
