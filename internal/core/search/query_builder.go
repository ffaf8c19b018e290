package search

import (
	"real-estate-web/internal/core/domain"
	"strings"
)

// Поля, по которым ищет свободный текст.
var textSearchFields = []string{"title", "location", "type"}

// BuildRequest переводит состояние страницы в расширенный запрос.
// Функция чистая: один и тот же state всегда дает один и тот же запрос.
//
// Свободный текст дает три критерия contains, соединенных OR ("совпадение в любом поле"),
// фильтр типа - один критерий equals, присоединенный через AND.
// Пустое состояние дает запрос без критериев, который совпадает со всем.
func BuildRequest(state domain.SearchPageState) domain.AdvancedSearchRequest {
	req := domain.MatchAll()

	if q := strings.TrimSpace(state.DebouncedQuery); q != "" {
		for _, field := range textSearchFields {
			req.Append(domain.Or, domain.SearchCriteria{
				Key:       field,
				Operation: domain.OpContains,
				Value:     q,
			})
		}
	}

	if t := strings.TrimSpace(state.TypeFilter); t != "" && t != domain.TypeAll {
		req.Append(domain.And, domain.SearchCriteria{
			Key:       "type",
			Operation: domain.OpEquals,
			Value:     t,
		})
	}

	return req
}
