// Package engine исполняет расширенные запросы поиска над данными dev-сервера:
// фильтрация критериями, сортировка и пагинация.
package engine

import (
	"fmt"
	"real-estate-web/internal/core/domain"
	"strings"

	"golang.org/x/text/cases"
)

// FieldFunc возвращает строковое значение поля записи. ok=false - у записи нет такого поля.
type FieldFunc[T any] func(item T, key string) (value string, ok bool)

var folder = cases.Fold()

func fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// Matches применяет запрос к одной записи. Операции сворачиваются слева направо
// без приоритета: ((c0 op0 c1) op1 c2) ...
// Пустой запрос подходит любой записи.
func Matches[T any](item T, req domain.AdvancedSearchRequest, field FieldFunc[T]) bool {
	if len(req.CriteriaList) == 0 {
		return true
	}
	result := evalCriteria(item, req.CriteriaList[0], field)
	for i, op := range req.Operations {
		next := evalCriteria(item, req.CriteriaList[i+1], field)
		if op == domain.And {
			result = result && next
		} else {
			result = result || next
		}
	}
	return result
}

func evalCriteria[T any](item T, c domain.SearchCriteria, field FieldFunc[T]) bool {
	value, ok := field(item, c.Key)
	if !ok {
		// Неизвестное поле считается пустым.
		value = ""
	}
	switch c.Operation {
	case domain.OpIsEmpty:
		return strings.TrimSpace(value) == ""
	case domain.OpIsNotEmpty:
		return strings.TrimSpace(value) != ""
	case domain.OpEquals:
		return fold(value) == fold(stringify(c.Value))
	case domain.OpContains:
		return strings.Contains(fold(value), fold(stringify(c.Value)))
	}
	return false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// числа из JSON приходят как float64
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

// Filter возвращает записи, подходящие под запрос. Порядок сохраняется.
func Filter[T any](items []T, req domain.AdvancedSearchRequest, field FieldFunc[T]) ([]T, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(item, req, field) {
			out = append(out, item)
		}
	}
	return out, nil
}
