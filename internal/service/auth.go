package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/therapy-booking/internal/calendar"
)

// Claims — токен внешнего сервиса авторизации: sub = идентификатор пользователя, role = роль.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IssueToken подписывает HS256-токен для актора (локальная разработка, тесты).
func IssueToken(secret []byte, actor calendar.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: string(actor.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken проверяет подпись и срок действия и возвращает актора.
func ParseToken(secret []byte, raw string) (calendar.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return calendar.Actor{}, fmt.Errorf("parse token: %w", err)
	}
	return calendar.ValidateActor(calendar.Actor{UserID: claims.Subject, Role: calendar.Role(claims.Role)})
}

var errNoToken = errors.New("missing bearer token")

func bearerToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errNoToken
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", errNoToken
	}
	scheme, token, found := strings.Cut(values[0], " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization format")
	}
	return strings.TrimSpace(token), nil
}

// AuthInterceptor кладёт актора из bearer-токена в контекст.
// Методы из public доступны и без токена.
func AuthInterceptor(secret []byte, public ...string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		raw, err := bearerToken(ctx)
		if err != nil {
			if errors.Is(err, errNoToken) && slices.Contains(public, info.FullMethod) {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		actor, err := ParseToken(secret, raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(calendar.WithActor(ctx, actor), req)
	}
}
