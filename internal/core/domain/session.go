package domain

// User - данные пользователя, которые клиент получает от сервиса аутентификации.
type User struct {
	ID     string
	Email  string
	Mobile string
	Name   string
}

// Session - текущая сессия. Отсутствие сессии выражается nil.
type Session struct {
	Token string
	User  User
}

// Identity возвращает ключ, по которому бэкенд ищет избранное пользователя.
func (s *Session) Identity() string {
	if s == nil {
		return ""
	}
	if s.User.Email != "" {
		return s.User.Email
	}
	return s.User.Mobile
}
