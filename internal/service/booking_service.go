package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	bookingpb "github.com/Leganyst/therapy-booking/internal/api/booking/v1"
	"github.com/Leganyst/therapy-booking/internal/booking"
	"github.com/Leganyst/therapy-booking/internal/calendar"
	"github.com/Leganyst/therapy-booking/internal/model"
)

const defaultPageSize = 20

// PublicMethods — RPC, доступные без токена.
var PublicMethods = []string{
	bookingpb.BookingService_ListAvailableSlots_FullMethodName,
	bookingpb.BookingService_GetAvailability_FullMethodName,
}

type BookingService struct {
	bookingpb.UnimplementedBookingServiceServer

	svc *booking.Service
	log *zap.Logger
}

func NewBookingService(svc *booking.Service, log *zap.Logger) *BookingService {
	return &BookingService{svc: svc, log: log}
}

func actorFrom(ctx context.Context) (calendar.Actor, error) {
	actor, ok := calendar.ActorFromContext(ctx)
	if !ok {
		return calendar.Actor{}, status.Error(codes.Unauthenticated, "authentication required")
	}
	return actor, nil
}

func pageParams(page, size int32) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	return int(page), int(size)
}

func (s *BookingService) ListAvailableSlots(
	ctx context.Context,
	req *bookingpb.ListAvailableSlotsRequest,
) (*bookingpb.ListAvailableSlotsResponse, error) {
	if req.GetProviderId() == "" {
		return nil, status.Error(codes.InvalidArgument, "provider_id is required")
	}

	// Нулевые границы сервис заменяет на "сегодня + горизонт".
	var from, to time.Time
	if req.GetStart() != nil {
		from = req.GetStart().AsTime()
	}
	if req.GetEnd() != nil {
		to = req.GetEnd().AsTime()
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, status.Error(codes.InvalidArgument, "end must not be before start")
	}

	slots, err := s.svc.ListAvailableSlots(ctx, req.GetProviderId(), from, to)
	if err != nil {
		return nil, toStatus(s.log, "list available slots", err)
	}

	page, size := pageParams(req.GetPage(), req.GetPageSize())
	p := calendar.Paginate(slots, page, size)

	resp := &bookingpb.ListAvailableSlotsResponse{
		Slots:      make([]*bookingpb.Slot, 0, len(p.Items)),
		TotalCount: int32(p.Total),
		HasNext:    p.HasNext,
	}
	for _, slot := range p.Items {
		resp.Slots = append(resp.Slots, &bookingpb.Slot{
			Date:      slot.Date,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			StartsAt:  timestamppb.New(slot.StartsAt),
			EndsAt:    timestamppb.New(slot.EndsAt),
		})
	}
	return resp, nil
}

func (s *BookingService) ReserveSlot(ctx context.Context, req *bookingpb.ReserveSlotRequest) (*bookingpb.BookingResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.svc.ReserveSlot(ctx, booking.ReserveRequest{
		ProviderID: req.GetProviderId(),
		ClientID:   req.GetClientId(),
		Date:       req.GetDate(),
		StartTime:  req.GetStartTime(),
		Notes:      req.GetNotes(),
	}, actor)
	if err != nil {
		return nil, toStatus(s.log, "reserve slot", err)
	}
	return &bookingpb.BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, req *bookingpb.BookingRequest) (*bookingpb.BookingResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	b, err := s.svc.ConfirmBooking(ctx, req.GetBookingId(), actor)
	if err != nil {
		return nil, toStatus(s.log, "confirm booking", err)
	}
	return &bookingpb.BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, req *bookingpb.CancelBookingRequest) (*bookingpb.CancelBookingResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.svc.CancelBooking(ctx, req.GetBookingId(), actor, req.GetReason())
	if err != nil {
		return nil, toStatus(s.log, "cancel booking", err)
	}
	return &bookingpb.CancelBookingResponse{
		Booking: mapBooking(res.Booking),
		Outcome: &bookingpb.CancellationOutcome{
			Refund:          string(res.Outcome.Refund),
			MeetingTeardown: string(res.Outcome.MeetingTeardown),
			Notification:    string(res.Outcome.Notification),
			NeedsFollowUp:   res.Outcome.NeedsFollowUp(),
		},
	}, nil
}

// SweepCompletions — только для системного актора (cron, админка).
func (s *BookingService) SweepCompletions(ctx context.Context, _ *bookingpb.SweepCompletionsRequest) (*bookingpb.SweepCompletionsResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if actor.Role != calendar.RoleSystem {
		return nil, status.Error(codes.PermissionDenied, "sweep is restricted to system actors")
	}
	res, err := s.svc.SweepCompletions(ctx)
	if err != nil {
		return nil, toStatus(s.log, "sweep completions", err)
	}
	return &bookingpb.SweepCompletionsResponse{UpdatedCount: int32(res.UpdatedCount)}, nil
}

func (s *BookingService) GetBooking(ctx context.Context, req *bookingpb.BookingRequest) (*bookingpb.BookingResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	b, err := s.svc.GetBooking(ctx, req.GetBookingId(), actor)
	if err != nil {
		return nil, toStatus(s.log, "get booking", err)
	}
	return &bookingpb.BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *BookingService) ListProviderBookings(
	ctx context.Context,
	req *bookingpb.ListProviderBookingsRequest,
) (*bookingpb.ListProviderBookingsResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	filter := model.BookingFilter{FromDate: req.FromDate, ToDate: req.ToDate, ClientID: req.ClientId}
	for _, st := range req.GetStatuses() {
		filter.Statuses = append(filter.Statuses, model.BookingStatus(st))
	}

	bookings, err := s.svc.ListProviderBookings(ctx, req.GetProviderId(), filter, actor)
	if err != nil {
		return nil, toStatus(s.log, "list provider bookings", err)
	}

	page, size := pageParams(req.GetPage(), req.GetPageSize())
	p := calendar.Paginate(bookings, page, size)

	resp := &bookingpb.ListProviderBookingsResponse{
		Bookings:   make([]*bookingpb.Booking, 0, len(p.Items)),
		TotalCount: int32(p.Total),
		HasNext:    p.HasNext,
	}
	for i := range p.Items {
		resp.Bookings = append(resp.Bookings, mapBooking(&p.Items[i]))
	}
	return resp, nil
}

func (s *BookingService) PayBooking(ctx context.Context, req *bookingpb.BookingRequest) (*bookingpb.BookingResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	b, err := s.svc.PayBooking(ctx, req.GetBookingId(), actor)
	if err != nil {
		return nil, toStatus(s.log, "pay booking", err)
	}
	return &bookingpb.BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *BookingService) ProvisionMeeting(ctx context.Context, req *bookingpb.BookingRequest) (*bookingpb.BookingResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	b, err := s.svc.ProvisionMeeting(ctx, req.GetBookingId(), actor)
	if err != nil {
		return nil, toStatus(s.log, "provision meeting", err)
	}
	return &bookingpb.BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *BookingService) SetAvailability(ctx context.Context, req *bookingpb.SetAvailabilityRequest) (*bookingpb.AvailabilityResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.GetAvailability() == nil {
		return nil, status.Error(codes.InvalidArgument, "availability is required")
	}

	schedule, err := s.svc.SetAvailability(ctx, req.GetProviderId(), availabilityFromPB(req.GetAvailability()), req.TimeZone, actor)
	if err != nil {
		return nil, toStatus(s.log, "set availability", err)
	}
	m, err := schedule.Availability()
	if err != nil {
		return nil, toStatus(s.log, "set availability", err)
	}
	return &bookingpb.AvailabilityResponse{
		ProviderId:   schedule.ProviderID.String(),
		TimeZone:     schedule.TimeZone,
		Availability: availabilityToPB(m),
	}, nil
}

func (s *BookingService) GetAvailability(ctx context.Context, req *bookingpb.GetAvailabilityRequest) (*bookingpb.AvailabilityResponse, error) {
	m, err := s.svc.GetAvailability(ctx, req.GetProviderId())
	if err != nil {
		return nil, toStatus(s.log, "get availability", err)
	}
	return &bookingpb.AvailabilityResponse{
		ProviderId:   req.GetProviderId(),
		Availability: availabilityToPB(m),
	}, nil
}

func mapBooking(b *model.Booking) *bookingpb.Booking {
	if b == nil {
		return nil
	}
	out := &bookingpb.Booking{
		Id:                 b.ID.String(),
		ProviderId:         b.ProviderID.String(),
		ClientId:           b.ClientID.String(),
		Date:               b.AppointmentDate,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             string(b.Status),
		PriceCents:         b.PriceCents,
		Currency:           b.Currency,
		PaymentState:       string(b.PaymentState),
		PaymentRef:         b.PaymentRef,
		RefundRef:          b.RefundRef,
		CancellationReason: b.CancellationReason,
		CancelledBy:        string(b.CancelledBy),
		Notes:              b.Notes,
		CreatedAt:          timestamppb.New(b.CreatedAt),
		UpdatedAt:          timestamppb.New(b.UpdatedAt),
	}
	if b.CancelledAt != nil {
		out.CancelledAt = timestamppb.New(*b.CancelledAt)
	}
	if !b.Meeting.IsZero() {
		out.Meeting = &bookingpb.Meeting{
			Id:       b.Meeting.MeetingID,
			JoinUrl:  b.Meeting.JoinURL,
			Password: b.Meeting.Password,
		}
	}
	return out
}

func availabilityFromPB(a *bookingpb.Availability) model.AvailabilityModel {
	m := model.AvailabilityModel{SessionDurationMinutes: int(a.SessionDuration)}
	for _, d := range a.Schedule {
		if d == nil {
			continue
		}
		day := model.DaySchedule{DayOfWeek: int(d.DayOfWeek)}
		for _, tr := range d.Slots {
			if tr == nil {
				continue
			}
			day.Slots = append(day.Slots, model.TimeRange{StartTime: tr.StartTime, EndTime: tr.EndTime, Active: tr.IsActive})
		}
		m.WeeklySchedule = append(m.WeeklySchedule, day)
	}
	return m
}

func availabilityToPB(m model.AvailabilityModel) *bookingpb.Availability {
	out := &bookingpb.Availability{SessionDuration: int32(m.SessionDurationMinutes)}
	for _, d := range m.WeeklySchedule {
		day := &bookingpb.DaySchedule{DayOfWeek: int32(d.DayOfWeek)}
		for _, tr := range d.Slots {
			day.Slots = append(day.Slots, &bookingpb.TimeRange{StartTime: tr.StartTime, EndTime: tr.EndTime, IsActive: tr.Active})
		}
		out.Schedule = append(out.Schedule, day)
	}
	return out
}
