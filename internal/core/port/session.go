package port

import (
	"context"
	"real-estate-web/internal/core/domain"
)

// SessionProviderPort отдает текущую сессию или nil, если пользователь не вошел.
type SessionProviderPort interface {
	Current() *domain.Session
}

// AuthPort - граница аутентификации (вход по одноразовому коду и проверка токена).
type AuthPort interface {
	SendOTP(ctx context.Context, mobile string) error
	VerifyOTP(ctx context.Context, mobile, code string) (*domain.Session, error)
	Validate(ctx context.Context, token string) (*domain.Session, error)
}

// SessionManagerPort - владелец сессии: вход и выход с оповещением подписчиков.
type SessionManagerPort interface {
	SessionProviderPort
	SignIn(s *domain.Session)
	SignOut()
}
