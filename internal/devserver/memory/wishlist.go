package memory

import (
	"context"
	"real-estate-web/internal/core/domain"
	"sort"
	"strings"
	"sync"
)

type wishlistKey struct {
	email      string
	propertyID int64
}

// WishlistRepository - избранное в памяти. Пара (email, объект) уникальна.
type WishlistRepository struct {
	mu     sync.Mutex
	nextID int64
	items  map[wishlistKey]domain.WishlistItem
}

func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{items: make(map[wishlistKey]domain.WishlistItem)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Add идемпотентен: повторное добавление не создает дубль.
func (r *WishlistRepository) Add(_ context.Context, email string, propertyID int64, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := wishlistKey{normalizeEmail(email), propertyID}
	if _, ok := r.items[key]; ok {
		return nil
	}
	r.nextID++
	r.items[key] = domain.WishlistItem{
		ID:            r.nextID,
		PropertyID:    propertyID,
		PropertyTitle: title,
		Email:         key.email,
	}
	return nil
}

func (r *WishlistRepository) Remove(_ context.Context, email string, propertyID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, wishlistKey{normalizeEmail(email), propertyID})
	return nil
}

// ListByUser возвращает избранное пользователя в порядке добавления.
func (r *WishlistRepository) ListByUser(_ context.Context, email string) ([]domain.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = normalizeEmail(email)
	out := make([]domain.WishlistItem, 0)
	for k, item := range r.items {
		if k.email == email {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *WishlistRepository) DeleteUser(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = normalizeEmail(email)
	for k := range r.items {
		if k.email == email {
			delete(r.items, k)
		}
	}
	return nil
}
