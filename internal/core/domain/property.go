package domain

// Property - минимальное представление объекта недвижимости, с которым работает клиент.
// Данные принадлежат бэкенду, ядро их только читает.
type Property struct {
	ID       int64
	Title    string
	Slug     string
	Location string
	Type     string
	Price    float64
	Bedrooms int
	Featured bool
	Images   []string
}

// PaginatedResult - страница результатов, которую возвращает бэкенд.
type PaginatedResult[T any] struct {
	Data         []T
	TotalRecords int
	TotalPages   int
	CurrentPage  int
}

// EmptyPage возвращает пустую страницу с номером не меньше 1.
func EmptyPage[T any](page int) *PaginatedResult[T] {
	if page < 1 {
		page = 1
	}
	return &PaginatedResult[T]{
		Data:        []T{},
		CurrentPage: page,
	}
}
