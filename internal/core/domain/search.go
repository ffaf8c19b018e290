package domain

import (
	"encoding/json"
	"fmt"
)

// SearchOperation - операция сравнения одного критерия.
type SearchOperation string

const (
	OpEquals     SearchOperation = "equals"
	OpContains   SearchOperation = "contains"
	OpIsEmpty    SearchOperation = "isEmpty"
	OpIsNotEmpty SearchOperation = "isNotEmpty"
)

// Valid сообщает, знает ли бэкенд такую операцию.
func (o SearchOperation) Valid() bool {
	switch o {
	case OpEquals, OpContains, OpIsEmpty, OpIsNotEmpty:
		return true
	}
	return false
}

// LogicalOperator соединяет два соседних критерия.
type LogicalOperator string

const (
	And LogicalOperator = "AND"
	Or  LogicalOperator = "OR"
)

// SearchCriteria - один критерий расширенного поиска.
type SearchCriteria struct {
	Key       string          `json:"key"`
	Operation SearchOperation `json:"operation"`
	Value     any             `json:"value,omitempty"`
}

// AdvancedSearchRequest - структурированный запрос к спискам бэкенда.
// Operations[i] применяется между CriteriaList[i] и CriteriaList[i+1],
// свертка слева направо, без приоритетов и группировки.
type AdvancedSearchRequest struct {
	CriteriaList []SearchCriteria  `json:"criteriaList"`
	Operations   []LogicalOperator `json:"operations"`
}

// MatchAll возвращает запрос без критериев: бэкенд трактует его как "все объекты".
func MatchAll() AdvancedSearchRequest {
	return AdvancedSearchRequest{
		CriteriaList: []SearchCriteria{},
		Operations:   []LogicalOperator{},
	}
}

// Append добавляет критерий. Для непервого критерия op соединяет его с предыдущим.
func (r *AdvancedSearchRequest) Append(op LogicalOperator, c SearchCriteria) {
	if len(r.CriteriaList) > 0 {
		r.Operations = append(r.Operations, op)
	}
	r.CriteriaList = append(r.CriteriaList, c)
}

// Validate проверяет инвариант длины операций и допустимость операций.
func (r AdvancedSearchRequest) Validate() error {
	if len(r.CriteriaList) == 0 {
		if len(r.Operations) != 0 {
			return fmt.Errorf("operations without criteria: %d", len(r.Operations))
		}
		return nil
	}
	if len(r.Operations) != len(r.CriteriaList)-1 {
		return fmt.Errorf("expected %d operations for %d criteria, got %d",
			len(r.CriteriaList)-1, len(r.CriteriaList), len(r.Operations))
	}
	for i, c := range r.CriteriaList {
		if c.Key == "" {
			return fmt.Errorf("criteria %d: empty key", i)
		}
		if !c.Operation.Valid() {
			return fmt.Errorf("criteria %d: unknown operation %q", i, c.Operation)
		}
	}
	for i, op := range r.Operations {
		if op != And && op != Or {
			return fmt.Errorf("operation %d: unknown combinator %q", i, op)
		}
	}
	return nil
}

// MarshalJSON гарантирует пустые массивы вместо null.
func (r AdvancedSearchRequest) MarshalJSON() ([]byte, error) {
	type plain AdvancedSearchRequest
	out := plain(r)
	if out.CriteriaList == nil {
		out.CriteriaList = []SearchCriteria{}
	}
	if out.Operations == nil {
		out.Operations = []LogicalOperator{}
	}
	return json.Marshal(out)
}

// SortKey - выбор сортировки в интерфейсе.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortBeds      SortKey = "beds"
)

// SortDirection - направление сортировки в запросе к бэкенду.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SortSpec - поле и направление сортировки, как их понимает бэкенд.
type SortSpec struct {
	Field     string
	Direction SortDirection
}

// TypeAll - значение фильтра типа, при котором фильтр не применяется.
const TypeAll = "All"

// SearchPageState - состояние страницы поиска.
type SearchPageState struct {
	Query          string
	DebouncedQuery string
	TypeFilter     string
	SortKey        SortKey
	Page           int
	PageSize       int
}
