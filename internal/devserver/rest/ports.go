package rest

import (
	"context"
	"real-estate-web/internal/core/domain"
)

// Хранилища, с которыми работают обработчики dev-сервера.

type PropertyRepository interface {
	List(ctx context.Context) ([]domain.Property, error)
	BySlug(ctx context.Context, slug string) (*domain.Property, error)
	ByID(ctx context.Context, id int64) (*domain.Property, error)
}

type WishlistRepository interface {
	Add(ctx context.Context, email string, propertyID int64, title string) error
	Remove(ctx context.Context, email string, propertyID int64) error
	ListByUser(ctx context.Context, email string) ([]domain.WishlistItem, error)
	DeleteUser(ctx context.Context, email string) error
}

type AuthService interface {
	SendOTP(ctx context.Context, mobile string) error
	VerifyOTP(ctx context.Context, mobile, code string) (*domain.Session, error)
	Lookup(ctx context.Context, token string) (*domain.Session, error)
	DeleteUser(ctx context.Context, userID string) error
}

type InquiryRepository interface {
	Save(ctx context.Context, inquiry domain.Inquiry) (*domain.InquiryReceipt, error)
}
