package engine

import (
	"real-estate-web/internal/core/domain"
	"sort"
	"strings"
)

const DefaultPageSize = 9

// Paginate режет отфильтрованный список на страницы. Страницы нумеруются с 1.
func Paginate[T any](items []T, page, size int) *domain.PaginatedResult[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	result := domain.EmptyPage[T](page)
	if len(items) == 0 {
		return result
	}

	result.TotalRecords = len(items)
	result.TotalPages = (len(items) + size - 1) / size
	start := (result.CurrentPage - 1) * size
	if start >= len(items) {
		return result
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	result.Data = append(result.Data, items[start:end]...)
	return result
}

// SortProperties сортирует объекты по полю спецификации. При равенстве порядок по ID,
// чтобы страницы не перемешивались между запросами.
func SortProperties(items []domain.Property, spec domain.SortSpec) {
	compare := propertyCompare(spec.Field)
	desc := strings.EqualFold(string(spec.Direction), string(domain.Desc))
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if c := compare(a, b); c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		return a.ID < b.ID
	})
}

func propertyCompare(field string) func(a, b domain.Property) int {
	switch field {
	case "price":
		return func(a, b domain.Property) int { return cmpFloat(a.Price, b.Price) }
	case "bedrooms":
		return func(a, b domain.Property) int { return a.Bedrooms - b.Bedrooms }
	case "featured":
		return func(a, b domain.Property) int { return boolInt(a.Featured) - boolInt(b.Featured) }
	case "title":
		return func(a, b domain.Property) int { return strings.Compare(fold(a.Title), fold(b.Title)) }
	default:
		return func(a, b domain.Property) int { return 0 }
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
