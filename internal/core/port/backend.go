package port

import (
	"context"
	"real-estate-web/internal/core/domain"
)

// WishlistAPIPort - три логические операции над избранным на стороне бэкенда.
type WishlistAPIPort interface {
	AddToWishlist(ctx context.Context, session *domain.Session, propertyID int64, propertyTitle string) error
	RemoveFromWishlist(ctx context.Context, session *domain.Session, propertyID int64) error
	// SearchWishlist возвращает одну страницу избранного, отобранную расширенным запросом.
	SearchWishlist(ctx context.Context, session *domain.Session, req domain.AdvancedSearchRequest, page, size int) (*domain.PaginatedResult[domain.WishlistItem], error)
}

// PropertySearchPort - постраничный поиск объектов.
type PropertySearchPort interface {
	SearchProperties(ctx context.Context, req domain.AdvancedSearchRequest, sort domain.SortSpec, page, size int) (*domain.PaginatedResult[domain.Property], error)
}

// PropertyCatalogPort - получение одного объекта для страницы деталей.
type PropertyCatalogPort interface {
	GetPropertyBySlug(ctx context.Context, slug string) (*domain.Property, error)
}

// InquiryPort - отправка заявок.
type InquiryPort interface {
	SubmitInquiry(ctx context.Context, session *domain.Session, inquiry domain.Inquiry) (*domain.InquiryReceipt, error)
}

// AccountPort - операции над учетной записью.
type AccountPort interface {
	DeleteAccount(ctx context.Context, session *domain.Session) error
}
