package backend_api_client

import "real-estate-web/internal/core/domain"

// propertyDTO - объект в том виде, в котором его отдает бэкенд.
type propertyDTO struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Location string   `json:"location"`
	Type     string   `json:"type"`
	Price    float64  `json:"price"`
	Bedrooms int      `json:"bedrooms"`
	Featured bool     `json:"featured"`
	Images   []string `json:"images"`
}

type paginatedResponse[T any] struct {
	Data         []T `json:"data"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

type wishlistItemDTO struct {
	ID            int64        `json:"id"`
	PropertyID    int64        `json:"propertyId"`
	PropertyTitle string       `json:"propertyTitle"`
	Email         string       `json:"email"`
	Property      *propertyDTO `json:"property,omitempty"`
}

type addToWishlistRequest struct {
	PropertyID    int64  `json:"propertyId"`
	PropertyTitle string `json:"propertyTitle"`
}

type inquiryRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Mobile     string `json:"mobile,omitempty"`
	Message    string `json:"message"`
	PropertyID int64  `json:"propertyId,omitempty"`
}

type inquiryReceiptDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (d propertyDTO) toDomain() domain.Property {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return domain.Property{
		ID:       d.ID,
		Title:    d.Title,
		Slug:     d.Slug,
		Location: d.Location,
		Type:     d.Type,
		Price:    d.Price,
		Bedrooms: d.Bedrooms,
		Featured: d.Featured,
		Images:   images,
	}
}

func (d wishlistItemDTO) toDomain() domain.WishlistItem {
	item := domain.WishlistItem{
		ID:            d.ID,
		PropertyID:    d.PropertyID,
		PropertyTitle: d.PropertyTitle,
		Email:         d.Email,
	}
	if d.Property != nil {
		p := d.Property.toDomain()
		item.Property = &p
	}
	return item
}

// toDomainPage маппит страницу DTO. Отсутствующий data превращается в пустой список.
func toDomainPage[D any, T any](resp paginatedResponse[D], mapFn func(D) T) *domain.PaginatedResult[T] {
	data := make([]T, len(resp.Data))
	for i, dto := range resp.Data {
		data[i] = mapFn(dto)
	}
	return &domain.PaginatedResult[T]{
		Data:         data,
		TotalRecords: resp.TotalRecords,
		TotalPages:   resp.TotalPages,
		CurrentPage:  resp.CurrentPage,
	}
}
