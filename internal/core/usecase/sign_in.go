package usecase

import (
	"context"
	"fmt"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/port"
	"strings"
)

// SignInUseCase - вход по одноразовому коду и восстановление сессии по токену.
type SignInUseCase struct {
	auth     port.AuthPort
	sessions port.SessionManagerPort
}

func NewSignInUseCase(auth port.AuthPort, sessions port.SessionManagerPort) *SignInUseCase {
	return &SignInUseCase{auth: auth, sessions: sessions}
}

func (uc *SignInUseCase) RequestCode(ctx context.Context, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "RequestCode"})
	if mobile == "" {
		return fmt.Errorf("%w: empty mobile number", domain.ErrInvalidInput)
	}
	if err := uc.auth.SendOTP(ctx, mobile); err != nil {
		logger.Error("Failed to send one-time code", err, nil)
		return err
	}
	logger.Info("One-time code sent", nil)
	return nil
}

func (uc *SignInUseCase) VerifyCode(ctx context.Context, mobile, code string) (*domain.Session, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "VerifyCode"})
	mobile, code = strings.TrimSpace(mobile), strings.TrimSpace(code)
	if mobile == "" || code == "" {
		return nil, fmt.Errorf("%w: mobile and code are required", domain.ErrInvalidInput)
	}

	session, err := uc.auth.VerifyOTP(ctx, mobile, code)
	if err != nil {
		logger.Warn("One-time code rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	uc.sessions.SignIn(session)
	logger.Info("User signed in", port.Fields{"user_id": session.User.ID})
	return uc.sessions.Current(), nil
}

// Restore проверяет сохраненный токен. Отклоненный токен не считается ошибкой
// запуска: пользователь просто остается гостем.
func (uc *SignInUseCase) Restore(ctx context.Context, token string) (*domain.Session, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "RestoreSession"})
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	session, err := uc.auth.Validate(ctx, token)
	if err != nil {
		logger.Warn("Stored token is not valid, continuing as guest", port.Fields{"error": err.Error()})
		return nil, err
	}
	uc.sessions.SignIn(session)
	return uc.sessions.Current(), nil
}

func (uc *SignInUseCase) SignOut(ctx context.Context) {
	contextkeys.LoggerFromContext(ctx).Info("User signed out", port.Fields{"use_case": "SignOut"})
	uc.sessions.SignOut()
}
