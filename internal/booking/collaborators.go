package booking

import (
	"context"
	"errors"
	"time"

	"github.com/Leganyst/therapy-booking/internal/model"
)

// ErrMeetingNotFound — встречи у провайдера уже нет; для удаления это успех.
var ErrMeetingNotFound = errors.New("meeting not found")

// FeeBreakdown — сколько списано и какую комиссию процессор не вернёт.
type FeeBreakdown struct {
	CapturedCents int64
	FeeCents      int64
	Currency      string
}

// NetRefundCents — сумма возврата: списанное минус невозвратная комиссия, не меньше нуля.
func (f FeeBreakdown) NetRefundCents() int64 {
	net := f.CapturedCents - f.FeeCents
	if net < 0 {
		return 0
	}
	return net
}

// PaymentProcessor — внешний платёжный провайдер.
type PaymentProcessor interface {
	Capture(ctx context.Context, amountCents int64, currency string) (paymentRef string, err error)
	Fees(ctx context.Context, paymentRef string) (FeeBreakdown, error)
	Refund(ctx context.Context, paymentRef string, amountCents int64) (refundRef string, err error)
}

// MeetingRequest — параметры создаваемой видеовстречи.
type MeetingRequest struct {
	Topic           string
	StartsAt        time.Time
	DurationMinutes int
	TimeZone        string
	HostEmail       string
}

// MeetingProvider — внешний сервис видеовстреч.
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, req MeetingRequest) (model.MeetingRef, error)
	// DeleteMeeting возвращает ErrMeetingNotFound, если встречи уже нет.
	DeleteMeeting(ctx context.Context, meetingID string) error
}

// Notifier отправляет письма участникам.
type Notifier interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// Locker — распределённая блокировка между репликами.
// ok=false без ошибки значит, что блокировку держит кто-то другой.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}
