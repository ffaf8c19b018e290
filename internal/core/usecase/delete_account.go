package usecase

import (
	"context"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/port"
)

type DeleteAccountUseCase struct {
	api      port.AccountPort
	sessions port.SessionManagerPort
}

func NewDeleteAccountUseCase(api port.AccountPort, sessions port.SessionManagerPort) *DeleteAccountUseCase {
	return &DeleteAccountUseCase{api: api, sessions: sessions}
}

// Execute удаляет учетную запись и завершает сессию. Обработчики выхода
// (сброс избранного) срабатывают только после успешного удаления.
func (uc *DeleteAccountUseCase) Execute(ctx context.Context) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "DeleteAccount"})

	session := uc.sessions.Current()
	if session == nil {
		ucLogger.Warn("Delete account requested without a session", nil)
		return domain.ErrAuthRequired
	}
	ucLogger = ucLogger.WithFields(port.Fields{"user_id": session.User.ID})
	ucLogger.Info("Use case started", nil)

	if err := uc.api.DeleteAccount(ctx, session); err != nil {
		ucLogger.Error("Backend failed to delete account", err, nil)
		return err
	}

	uc.sessions.SignOut()
	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
