// Package memory - хранилища dev-сервера в памяти процесса.
package memory

import (
	"context"
	"real-estate-web/internal/core/domain"
	"sync"
)

type PropertyRepository struct {
	mu    sync.RWMutex
	items []domain.Property
}

func NewPropertyRepository(seed []domain.Property) *PropertyRepository {
	items := make([]domain.Property, len(seed))
	copy(items, seed)
	return &PropertyRepository{items: items}
}

// List возвращает копию каталога.
func (r *PropertyRepository) List(_ context.Context) ([]domain.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Property, len(r.items))
	copy(out, r.items)
	return out, nil
}

// BySlug возвращает nil, если объекта нет.
func (r *PropertyRepository) BySlug(_ context.Context, slug string) (*domain.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.Slug == slug {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *PropertyRepository) ByID(_ context.Context, id int64) (*domain.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}
