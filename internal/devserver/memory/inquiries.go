package memory

import (
	"context"
	"real-estate-web/internal/core/domain"
	"sync"

	"github.com/google/uuid"
)

type InquiryRepository struct {
	mu    sync.Mutex
	items map[string]domain.Inquiry
}

func NewInquiryRepository() *InquiryRepository {
	return &InquiryRepository{items: make(map[string]domain.Inquiry)}
}

func (r *InquiryRepository) Save(_ context.Context, inquiry domain.Inquiry) (*domain.InquiryReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.items[id] = inquiry
	return &domain.InquiryReceipt{ID: id, Status: "received"}, nil
}

func (r *InquiryRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
