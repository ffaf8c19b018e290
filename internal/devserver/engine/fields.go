package engine

import (
	"real-estate-web/internal/core/domain"
	"strconv"
)

// PropertyField - поля объекта, доступные в критериях.
func PropertyField(p domain.Property, key string) (string, bool) {
	switch key {
	case "id":
		return strconv.FormatInt(p.ID, 10), true
	case "title":
		return p.Title, true
	case "slug":
		return p.Slug, true
	case "location":
		return p.Location, true
	case "type":
		return p.Type, true
	case "price":
		return strconv.FormatFloat(p.Price, 'f', -1, 64), true
	case "bedrooms":
		return strconv.Itoa(p.Bedrooms), true
	case "featured":
		return strconv.FormatBool(p.Featured), true
	}
	return "", false
}

// WishlistField - поля записи избранного, доступные в критериях.
func WishlistField(w domain.WishlistItem, key string) (string, bool) {
	switch key {
	case "id":
		return strconv.FormatInt(w.ID, 10), true
	case "email":
		return w.Email, true
	case "propertyId":
		return strconv.FormatInt(w.PropertyID, 10), true
	case "propertyTitle":
		return w.PropertyTitle, true
	}
	return "", false
}
