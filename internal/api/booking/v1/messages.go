package bookingv1

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Slot — свободный слот в ответе ListAvailableSlots.
type Slot struct {
	Date      string                 `json:"date"`
	StartTime string                 `json:"start_time"`
	EndTime   string                 `json:"end_time"`
	StartsAt  *timestamppb.Timestamp `json:"starts_at,omitempty"`
	EndsAt    *timestamppb.Timestamp `json:"ends_at,omitempty"`
}

type Meeting struct {
	Id       string `json:"id"`
	JoinUrl  string `json:"join_url"`
	Password string `json:"password,omitempty"`
}

type Booking struct {
	Id                 string                 `json:"id"`
	ProviderId         string                 `json:"provider_id"`
	ClientId           string                 `json:"client_id"`
	Date               string                 `json:"date"`
	StartTime          string                 `json:"start_time"`
	EndTime            string                 `json:"end_time"`
	Status             string                 `json:"status"`
	PriceCents         int64                  `json:"price_cents"`
	Currency           string                 `json:"currency"`
	PaymentState       string                 `json:"payment_state"`
	PaymentRef         string                 `json:"payment_ref,omitempty"`
	RefundRef          string                 `json:"refund_ref,omitempty"`
	CancellationReason string                 `json:"cancellation_reason,omitempty"`
	CancelledBy        string                 `json:"cancelled_by,omitempty"`
	CancelledAt        *timestamppb.Timestamp `json:"cancelled_at,omitempty"`
	Meeting            *Meeting               `json:"meeting,omitempty"`
	Notes              string                 `json:"notes,omitempty"`
	CreatedAt          *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt          *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type ListAvailableSlotsRequest struct {
	ProviderId string                 `json:"provider_id"`
	Start      *timestamppb.Timestamp `json:"start,omitempty"`
	End        *timestamppb.Timestamp `json:"end,omitempty"`
	Page       int32                  `json:"page,omitempty"`
	PageSize   int32                  `json:"page_size,omitempty"`
}

func (x *ListAvailableSlotsRequest) GetProviderId() string {
	if x != nil {
		return x.ProviderId
	}
	return ""
}

func (x *ListAvailableSlotsRequest) GetStart() *timestamppb.Timestamp {
	if x != nil {
		return x.Start
	}
	return nil
}

func (x *ListAvailableSlotsRequest) GetEnd() *timestamppb.Timestamp {
	if x != nil {
		return x.End
	}
	return nil
}

func (x *ListAvailableSlotsRequest) GetPage() int32 {
	if x != nil {
		return x.Page
	}
	return 0
}

func (x *ListAvailableSlotsRequest) GetPageSize() int32 {
	if x != nil {
		return x.PageSize
	}
	return 0
}

type ListAvailableSlotsResponse struct {
	Slots      []*Slot `json:"slots"`
	TotalCount int32   `json:"total_count"`
	HasNext    bool    `json:"has_next,omitempty"`
}

type ReserveSlotRequest struct {
	ProviderId string `json:"provider_id"`
	ClientId   string `json:"client_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	Notes      string `json:"notes,omitempty"`
}

func (x *ReserveSlotRequest) GetProviderId() string {
	if x != nil {
		return x.ProviderId
	}
	return ""
}

func (x *ReserveSlotRequest) GetClientId() string {
	if x != nil {
		return x.ClientId
	}
	return ""
}

func (x *ReserveSlotRequest) GetDate() string {
	if x != nil {
		return x.Date
	}
	return ""
}

func (x *ReserveSlotRequest) GetStartTime() string {
	if x != nil {
		return x.StartTime
	}
	return ""
}

func (x *ReserveSlotRequest) GetNotes() string {
	if x != nil {
		return x.Notes
	}
	return ""
}

// BookingRequest — запрос с одним идентификатором записи
// (ConfirmBooking, GetBooking, PayBooking, ProvisionMeeting).
type BookingRequest struct {
	BookingId string `json:"booking_id"`
}

func (x *BookingRequest) GetBookingId() string {
	if x != nil {
		return x.BookingId
	}
	return ""
}

type BookingResponse struct {
	Booking *Booking `json:"booking"`
}

type CancelBookingRequest struct {
	BookingId string `json:"booking_id"`
	Reason    string `json:"reason,omitempty"`
}

func (x *CancelBookingRequest) GetBookingId() string {
	if x != nil {
		return x.BookingId
	}
	return ""
}

func (x *CancelBookingRequest) GetReason() string {
	if x != nil {
		return x.Reason
	}
	return ""
}

// CancellationOutcome — статусы компенсаций: ok, failed, skipped.
type CancellationOutcome struct {
	Refund          string `json:"refund"`
	MeetingTeardown string `json:"meeting_teardown"`
	Notification    string `json:"notification"`
	NeedsFollowUp   bool   `json:"needs_follow_up"`
}

type CancelBookingResponse struct {
	Booking *Booking             `json:"booking"`
	Outcome *CancellationOutcome `json:"outcome"`
}

type SweepCompletionsRequest struct{}

type SweepCompletionsResponse struct {
	UpdatedCount int32 `json:"updated_count"`
}

type ListProviderBookingsRequest struct {
	ProviderId string   `json:"provider_id"`
	Statuses   []string `json:"statuses,omitempty"`
	FromDate   string   `json:"from_date,omitempty"`
	ToDate     string   `json:"to_date,omitempty"`
	ClientId   string   `json:"client_id,omitempty"`
	Page       int32    `json:"page,omitempty"`
	PageSize   int32    `json:"page_size,omitempty"`
}

func (x *ListProviderBookingsRequest) GetProviderId() string {
	if x != nil {
		return x.ProviderId
	}
	return ""
}

func (x *ListProviderBookingsRequest) GetStatuses() []string {
	if x != nil {
		return x.Statuses
	}
	return nil
}

func (x *ListProviderBookingsRequest) GetPage() int32 {
	if x != nil {
		return x.Page
	}
	return 0
}

func (x *ListProviderBookingsRequest) GetPageSize() int32 {
	if x != nil {
		return x.PageSize
	}
	return 0
}

type ListProviderBookingsResponse struct {
	Bookings   []*Booking `json:"bookings"`
	TotalCount int32      `json:"total_count"`
	HasNext    bool       `json:"has_next,omitempty"`
}

type TimeRange struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsActive  bool   `json:"isActive"`
}

type DaySchedule struct {
	DayOfWeek int32        `json:"dayOfWeek"`
	Slots     []*TimeRange `json:"slots"`
}

// Availability — недельное расписание в том же JSON-виде, что хранится в БД.
type Availability struct {
	SessionDuration int32          `json:"sessionDuration"`
	Schedule        []*DaySchedule `json:"schedule"`
}

type SetAvailabilityRequest struct {
	ProviderId   string        `json:"provider_id"`
	TimeZone     string        `json:"time_zone,omitempty"`
	Availability *Availability `json:"availability"`
}

func (x *SetAvailabilityRequest) GetProviderId() string {
	if x != nil {
		return x.ProviderId
	}
	return ""
}

func (x *SetAvailabilityRequest) GetAvailability() *Availability {
	if x != nil {
		return x.Availability
	}
	return nil
}

type GetAvailabilityRequest struct {
	ProviderId string `json:"provider_id"`
}

func (x *GetAvailabilityRequest) GetProviderId() string {
	if x != nil {
		return x.ProviderId
	}
	return ""
}

type AvailabilityResponse struct {
	ProviderId   string        `json:"provider_id"`
	TimeZone     string        `json:"time_zone,omitempty"`
	Availability *Availability `json:"availability"`
}
