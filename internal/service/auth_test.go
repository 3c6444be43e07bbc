package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Leganyst/therapy-booking/internal/calendar"
	"github.com/Leganyst/therapy-booking/internal/model"
)

func timestamp(t time.Time) *timestamppb.Timestamp { return timestamppb.New(t) }

func TestParseToken_RoundTrip(t *testing.T) {
	token, err := IssueToken(testSecret, providerActor, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	actor, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if actor != providerActor {
		t.Fatalf("actor = %+v, want %+v", actor, providerActor)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	expired, _ := IssueToken(testSecret, clientActor, -time.Minute)
	otherKey, _ := IssueToken([]byte("another-secret"), clientActor, time.Minute)
	unknownRole, _ := IssueToken(testSecret, calendar.Actor{UserID: "u1", Role: "admin"}, time.Minute)
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Role:             "system",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong key", otherKey},
		{"unknown role", unknownRole},
		{"alg none", noneAlg},
		{"garbage", "abc.def.ghi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(testSecret, tt.token); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestAuthInterceptor(t *testing.T) {
	interceptor := AuthInterceptor(testSecret, "/public")
	handler := func(ctx context.Context, _ any) (any, error) {
		actor, ok := calendar.ActorFromContext(ctx)
		if !ok {
			return "anonymous", nil
		}
		return actor.UserID, nil
	}
	call := func(ctx context.Context, method string) (any, error) {
		return interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, handler)
	}

	got, err := call(context.Background(), "/public")
	if err != nil || got != "anonymous" {
		t.Fatalf("public without token: got %v, %v", got, err)
	}

	_, err = call(context.Background(), "/private")
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("private without token: code %s", status.Code(err))
	}

	basic := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic dXNlcjpwYXNz"))
	_, err = call(basic, "/public")
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("malformed header on public method: code %s", status.Code(err))
	}

	token, _ := IssueToken(testSecret, clientActor, time.Minute)
	authed := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
	got, err = call(authed, "/private")
	if err != nil || got != "client-user" {
		t.Fatalf("private with token: got %v, %v", got, err)
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{&model.InvalidScheduleError{Field: "sessionDuration", Reason: "must be positive"}, codes.InvalidArgument},
		{model.ErrSlotNotOffered, codes.InvalidArgument},
		{&model.SlotAlreadyTakenError{}, codes.Aborted},
		{&model.StaleStateError{Expected: model.BookingStatusPending}, codes.Aborted},
		{&model.InvalidTransitionError{}, codes.FailedPrecondition},
		{model.ErrIntegrationDisabled, codes.FailedPrecondition},
		{&model.UnauthorizedActionError{ActorID: "x", Action: "confirm the booking"}, codes.PermissionDenied},
		{calendar.ErrMissingActor, codes.Unauthenticated},
		{model.ErrBookingNotFound, codes.NotFound},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("disk full"), codes.Internal},
	}
	for _, tt := range tests {
		if got := status.Code(toStatus(zap.NewNop(), "op", tt.err)); got != tt.want {
			t.Errorf("toStatus(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
