package bookingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "booking.v1.BookingService"

const (
	BookingService_ListAvailableSlots_FullMethodName   = "/booking.v1.BookingService/ListAvailableSlots"
	BookingService_ReserveSlot_FullMethodName          = "/booking.v1.BookingService/ReserveSlot"
	BookingService_ConfirmBooking_FullMethodName       = "/booking.v1.BookingService/ConfirmBooking"
	BookingService_CancelBooking_FullMethodName        = "/booking.v1.BookingService/CancelBooking"
	BookingService_SweepCompletions_FullMethodName     = "/booking.v1.BookingService/SweepCompletions"
	BookingService_GetBooking_FullMethodName           = "/booking.v1.BookingService/GetBooking"
	BookingService_ListProviderBookings_FullMethodName = "/booking.v1.BookingService/ListProviderBookings"
	BookingService_PayBooking_FullMethodName           = "/booking.v1.BookingService/PayBooking"
	BookingService_ProvisionMeeting_FullMethodName     = "/booking.v1.BookingService/ProvisionMeeting"
	BookingService_SetAvailability_FullMethodName      = "/booking.v1.BookingService/SetAvailability"
	BookingService_GetAvailability_FullMethodName      = "/booking.v1.BookingService/GetAvailability"
)

// BookingServiceServer — серверная сторона booking.v1.BookingService.
type BookingServiceServer interface {
	ListAvailableSlots(context.Context, *ListAvailableSlotsRequest) (*ListAvailableSlotsResponse, error)
	ReserveSlot(context.Context, *ReserveSlotRequest) (*BookingResponse, error)
	ConfirmBooking(context.Context, *BookingRequest) (*BookingResponse, error)
	CancelBooking(context.Context, *CancelBookingRequest) (*CancelBookingResponse, error)
	SweepCompletions(context.Context, *SweepCompletionsRequest) (*SweepCompletionsResponse, error)
	GetBooking(context.Context, *BookingRequest) (*BookingResponse, error)
	ListProviderBookings(context.Context, *ListProviderBookingsRequest) (*ListProviderBookingsResponse, error)
	PayBooking(context.Context, *BookingRequest) (*BookingResponse, error)
	ProvisionMeeting(context.Context, *BookingRequest) (*BookingResponse, error)
	SetAvailability(context.Context, *SetAvailabilityRequest) (*AvailabilityResponse, error)
	GetAvailability(context.Context, *GetAvailabilityRequest) (*AvailabilityResponse, error)
	mustEmbedUnimplementedBookingServiceServer()
}

// UnimplementedBookingServiceServer встраивается в реализации для совместимости вперёд.
type UnimplementedBookingServiceServer struct{}

func (UnimplementedBookingServiceServer) ListAvailableSlots(context.Context, *ListAvailableSlotsRequest) (*ListAvailableSlotsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAvailableSlots not implemented")
}
func (UnimplementedBookingServiceServer) ReserveSlot(context.Context, *ReserveSlotRequest) (*BookingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReserveSlot not implemented")
}
func (UnimplementedBookingServiceServer) ConfirmBooking(context.Context, *BookingRequest) (*BookingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ConfirmBooking not implemented")
}
func (UnimplementedBookingServiceServer) CancelBooking(context.Context, *CancelBookingRequest) (*CancelBookingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelBooking not implemented")
}
func (UnimplementedBookingServiceServer) SweepCompletions(context.Context, *SweepCompletionsRequest) (*SweepCompletionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SweepCompletions not implemented")
}
func (UnimplementedBookingServiceServer) GetBooking(context.Context, *BookingRequest) (*BookingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetBooking not implemented")
}
func (UnimplementedBookingServiceServer) ListProviderBookings(context.Context, *ListProviderBookingsRequest) (*ListProviderBookingsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListProviderBookings not implemented")
}
func (UnimplementedBookingServiceServer) PayBooking(context.Context, *BookingRequest) (*BookingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PayBooking not implemented")
}
func (UnimplementedBookingServiceServer) ProvisionMeeting(context.Context, *BookingRequest) (*BookingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ProvisionMeeting not implemented")
}
func (UnimplementedBookingServiceServer) SetAvailability(context.Context, *SetAvailabilityRequest) (*AvailabilityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetAvailability not implemented")
}
func (UnimplementedBookingServiceServer) GetAvailability(context.Context, *GetAvailabilityRequest) (*AvailabilityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAvailability not implemented")
}
func (UnimplementedBookingServiceServer) mustEmbedUnimplementedBookingServiceServer() {}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingService_ServiceDesc, srv)
}

// unary собирает MethodHandler для метода с запросом Req.
func unary[Req any, Resp any](
	fullMethod string,
	call func(BookingServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var BookingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListAvailableSlots",
			Handler:    unary(BookingService_ListAvailableSlots_FullMethodName, BookingServiceServer.ListAvailableSlots),
		},
		{
			MethodName: "ReserveSlot",
			Handler:    unary(BookingService_ReserveSlot_FullMethodName, BookingServiceServer.ReserveSlot),
		},
		{
			MethodName: "ConfirmBooking",
			Handler:    unary(BookingService_ConfirmBooking_FullMethodName, BookingServiceServer.ConfirmBooking),
		},
		{
			MethodName: "CancelBooking",
			Handler:    unary(BookingService_CancelBooking_FullMethodName, BookingServiceServer.CancelBooking),
		},
		{
			MethodName: "SweepCompletions",
			Handler:    unary(BookingService_SweepCompletions_FullMethodName, BookingServiceServer.SweepCompletions),
		},
		{
			MethodName: "GetBooking",
			Handler:    unary(BookingService_GetBooking_FullMethodName, BookingServiceServer.GetBooking),
		},
		{
			MethodName: "ListProviderBookings",
			Handler:    unary(BookingService_ListProviderBookings_FullMethodName, BookingServiceServer.ListProviderBookings),
		},
		{
			MethodName: "PayBooking",
			Handler:    unary(BookingService_PayBooking_FullMethodName, BookingServiceServer.PayBooking),
		},
		{
			MethodName: "ProvisionMeeting",
			Handler:    unary(BookingService_ProvisionMeeting_FullMethodName, BookingServiceServer.ProvisionMeeting),
		},
		{
			MethodName: "SetAvailability",
			Handler:    unary(BookingService_SetAvailability_FullMethodName, BookingServiceServer.SetAvailability),
		},
		{
			MethodName: "GetAvailability",
			Handler:    unary(BookingService_GetAvailability_FullMethodName, BookingServiceServer.GetAvailability),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "booking/v1/booking.proto",
}

// BookingServiceClient — клиентская сторона; все вызовы идут с content-subtype json.
type BookingServiceClient interface {
	ListAvailableSlots(ctx context.Context, in *ListAvailableSlotsRequest, opts ...grpc.CallOption) (*ListAvailableSlotsResponse, error)
	ReserveSlot(ctx context.Context, in *ReserveSlotRequest, opts ...grpc.CallOption) (*BookingResponse, error)
	ConfirmBooking(ctx context.Context, in *BookingRequest, opts ...grpc.CallOption) (*BookingResponse, error)
	CancelBooking(ctx context.Context, in *CancelBookingRequest, opts ...grpc.CallOption) (*CancelBookingResponse, error)
	SweepCompletions(ctx context.Context, in *SweepCompletionsRequest, opts ...grpc.CallOption) (*SweepCompletionsResponse, error)
	GetBooking(ctx context.Context, in *BookingRequest, opts ...grpc.CallOption) (*BookingResponse, error)
	ListProviderBookings(ctx context.Context, in *ListProviderBookingsRequest, opts ...grpc.CallOption) (*ListProviderBookingsResponse, error)
	PayBooking(ctx context.Context, in *BookingRequest, opts ...grpc.CallOption) (*BookingResponse, error)
	ProvisionMeeting(ctx context.Context, in *BookingRequest, opts ...grpc.CallOption) (*BookingResponse, error)
	SetAvailability(ctx context.Context, in *SetAvailabilityRequest, opts ...grpc.CallOption) (*AvailabilityResponse, error)
	GetAvailability(ctx context.Context, in *GetAvailabilityRequest, opts ...grpc.CallOption) (*AvailabilityResponse, error)
}

type bookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) BookingServiceClient {
	return &bookingServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *bookingServiceClient) ListAvailableSlots(ctx context.Context, in *ListAvailableSlotsRequest, opts ...grpc.CallOption) (*ListAvailableSlotsResponse, error) {
	return invoke[ListAvailableSlotsResponse](ctx, c.cc, BookingService_ListAvailableSlots_FullMethodName, in, opts)
}

func (c *bookingServiceClient) ReserveSlot(ctx context.Context, in *ReserveSlotRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, BookingService_ReserveSlot_FullMethodName, in, opts)
}

func (c *bookingServiceClient) ConfirmBooking(ctx context.Context, in *BookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, BookingService_ConfirmBooking_FullMethodName, in, opts)
}

func (c *bookingServiceClient) CancelBooking(ctx context.Context, in *CancelBookingRequest, opts ...grpc.CallOption) (*CancelBookingResponse, error) {
	return invoke[CancelBookingResponse](ctx, c.cc, BookingService_CancelBooking_FullMethodName, in, opts)
}

func (c *bookingServiceClient) SweepCompletions(ctx context.Context, in *SweepCompletionsRequest, opts ...grpc.CallOption) (*SweepCompletionsResponse, error) {
	return invoke[SweepCompletionsResponse](ctx, c.cc, BookingService_SweepCompletions_FullMethodName, in, opts)
}

func (c *bookingServiceClient) GetBooking(ctx context.Context, in *BookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, BookingService_GetBooking_FullMethodName, in, opts)
}

func (c *bookingServiceClient) ListProviderBookings(ctx context.Context, in *ListProviderBookingsRequest, opts ...grpc.CallOption) (*ListProviderBookingsResponse, error) {
	return invoke[ListProviderBookingsResponse](ctx, c.cc, BookingService_ListProviderBookings_FullMethodName, in, opts)
}

func (c *bookingServiceClient) PayBooking(ctx context.Context, in *BookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, BookingService_PayBooking_FullMethodName, in, opts)
}

func (c *bookingServiceClient) ProvisionMeeting(ctx context.Context, in *BookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, BookingService_ProvisionMeeting_FullMethodName, in, opts)
}

func (c *bookingServiceClient) SetAvailability(ctx context.Context, in *SetAvailabilityRequest, opts ...grpc.CallOption) (*AvailabilityResponse, error) {
	return invoke[AvailabilityResponse](ctx, c.cc, BookingService_SetAvailability_FullMethodName, in, opts)
}

func (c *bookingServiceClient) GetAvailability(ctx context.Context, in *GetAvailabilityRequest, opts ...grpc.CallOption) (*AvailabilityResponse, error) {
	return invoke[AvailabilityResponse](ctx, c.cc, BookingService_GetAvailability_FullMethodName, in, opts)
}
