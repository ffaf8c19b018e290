package rest

import "real-estate-web/internal/core/domain"

type PropertyResponse struct {
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

type WishlistItemResponse struct {
	ID            int64             `json:"id"`
	PropertyID    int64             `json:"propertyId"`
	PropertyTitle string            `json:"propertyTitle"`
	Email         string            `json:"email"`
	Property      *PropertyResponse `json:"property,omitempty"`
}

type PaginatedResponse[T any] struct {
	Data         []T `json:"data"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

type AddToWishlistRequest struct {
	PropertyID    int64  `json:"propertyId" validate:"required,gt=0"`
	PropertyTitle string `json:"propertyTitle" validate:"max=300"`
}

type InquiryRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile"`
	Message    string `json:"message"`
	PropertyID int64  `json:"propertyId"`
}

type InquiryReceiptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type OTPSendRequest struct {
	Mobile string `json:"mobile" validate:"required,e164"`
}

type OTPVerifyRequest struct {
	Mobile string `json:"mobile" validate:"required"`
	Code   string `json:"code" validate:"required,numeric"`
}

type UserResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Name   string `json:"name,omitempty"`
}

type SessionResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toPropertyResponse(p domain.Property) PropertyResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return PropertyResponse{
		ID:       p.ID,
		Title:    p.Title,
		Slug:     p.Slug,
		Location: p.Location,
		Type:     p.Type,
		Price:    p.Price,
		Bedrooms: p.Bedrooms,
		Featured: p.Featured,
		Images:   images,
	}
}

func toWishlistItemResponse(w domain.WishlistItem) WishlistItemResponse {
	resp := WishlistItemResponse{
		ID:            w.ID,
		PropertyID:    w.PropertyID,
		PropertyTitle: w.PropertyTitle,
		Email:         w.Email,
	}
	if w.Property != nil {
		p := toPropertyResponse(*w.Property)
		resp.Property = &p
	}
	return resp
}

func toPaginatedResponse[T any, R any](page *domain.PaginatedResult[T], mapFn func(T) R) PaginatedResponse[R] {
	data := make([]R, len(page.Data))
	for i, item := range page.Data {
		data[i] = mapFn(item)
	}
	return PaginatedResponse[R]{
		Data:         data,
		TotalRecords: page.TotalRecords,
		TotalPages:   page.TotalPages,
		CurrentPage:  page.CurrentPage,
	}
}

func toSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		Token: s.Token,
		User: UserResponse{
			ID:     s.User.ID,
			Email:  s.User.Email,
			Mobile: s.User.Mobile,
			Name:   s.User.Name,
		},
	}
}
