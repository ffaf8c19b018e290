package usecase

import (
	"context"
	"errors"
	"fmt"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/port"
	"strings"

	"github.com/go-playground/validator/v10"
)

type SubmitInquiryUseCase struct {
	api      port.InquiryPort
	sessions port.SessionProviderPort
	validate *validator.Validate
}

func NewSubmitInquiryUseCase(api port.InquiryPort, sessions port.SessionProviderPort, validate *validator.Validate) *SubmitInquiryUseCase {
	if validate == nil {
		validate = validator.New()
	}
	return &SubmitInquiryUseCase{api: api, sessions: sessions, validate: validate}
}

// Execute проверяет форму и отправляет заявку. Сессия не обязательна:
// для гостя контакты берутся только из формы.
func (uc *SubmitInquiryUseCase) Execute(ctx context.Context, inquiry domain.Inquiry) (*domain.InquiryReceipt, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "SubmitInquiry",
		"property_id": inquiry.PropertyID,
	})
	ucLogger.Info("Use case started", nil)

	session := uc.sessions.Current()
	if session != nil {
		if inquiry.Email == "" {
			inquiry.Email = session.User.Email
		}
		if inquiry.Mobile == "" {
			inquiry.Mobile = session.User.Mobile
		}
		if inquiry.Name == "" {
			inquiry.Name = session.User.Name
		}
	}
	inquiry.Name = strings.TrimSpace(inquiry.Name)
	inquiry.Message = strings.TrimSpace(inquiry.Message)

	if err := uc.validate.Struct(inquiry); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			ucLogger.Warn("Inquiry rejected by validation", port.Fields{"fields": fields})
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
		}
		return nil, err
	}

	receipt, err := uc.api.SubmitInquiry(ctx, session, inquiry)
	if err != nil {
		ucLogger.Error("Backend failed to accept inquiry", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"inquiry_id": receipt.ID})
	return receipt, nil
}
