package search

import (
	"fmt"
	"real-estate-web/internal/core/domain"
	"strings"
)

var sortTable = map[domain.SortKey]domain.SortSpec{
	domain.SortPriceLow:  {Field: "price", Direction: domain.Asc},
	domain.SortPriceHigh: {Field: "price", Direction: domain.Desc},
	domain.SortBeds:      {Field: "bedrooms", Direction: domain.Desc},
	domain.SortFeatured:  {Field: "featured", Direction: domain.Desc},
}

// SortFor возвращает поле и направление сортировки для ключа из интерфейса.
// Неизвестный ключ сортирует как featured.
func SortFor(key domain.SortKey) domain.SortSpec {
	if spec, ok := sortTable[key]; ok {
		return spec
	}
	return sortTable[domain.SortFeatured]
}

// SortKeys - ключи в порядке показа в селекторе.
func SortKeys() []domain.SortKey {
	return []domain.SortKey{domain.SortFeatured, domain.SortPriceLow, domain.SortPriceHigh, domain.SortBeds}
}

// ParseSortKey разбирает ключ сортировки, введенный пользователем.
func ParseSortKey(s string) (domain.SortKey, error) {
	key := domain.SortKey(strings.ToLower(strings.TrimSpace(s)))
	if key == "" {
		return domain.SortFeatured, nil
	}
	if _, ok := sortTable[key]; !ok {
		return "", fmt.Errorf("unknown sort key %q", s)
	}
	return key, nil
}
