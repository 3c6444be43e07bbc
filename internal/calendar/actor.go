package calendar

import (
	"context"
	"errors"
)

// Ошибки валидации актора.
var (
	ErrMissingActor = errors.New("actor is required")
	ErrInvalidActor = errors.New("invalid actor")
)

// Роль актора в системе.
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleSystem   Role = "system"
)

// Actor — проверенный внешним сервисом авторизации пользователь, выполняющий действие.
// Живёт в контексте запроса, глобальных флагов нет.
type Actor struct {
	UserID string
	Role   Role
}

// System — актор для фоновых процессов (автозавершение, админские отмены).
var System = Actor{UserID: "system", Role: RoleSystem}

// ValidateActor:
//   - проверяет, что идентификатор не пустой;
//   - проверяет, что роль известна;
//   - возвращает нормализованного актора или ошибку.
func ValidateActor(a Actor) (Actor, error) {
	if a.UserID == "" {
		return Actor{}, ErrMissingActor
	}
	switch a.Role {
	case RoleClient, RoleProvider, RoleSystem:
		return a, nil
	default:
		return Actor{}, ErrInvalidActor
	}
}

type actorKey struct{}

// WithActor кладёт актора в контекст запроса.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext достаёт актора, положенного WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
