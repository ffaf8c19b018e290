package rest

import (
	"context"
	"net/http"
	"real-estate-web/internal/core/domain"
	"strings"
)

type contextKey string

const sessionKey = contextKey("session")

func sessionFromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey).(*domain.Session)
	return s
}

// AuthMiddleware проверяет Bearer-токен. При required=false запрос без токена
// проходит анонимно, но неверный токен все равно отклоняется.
type AuthMiddleware struct {
	auth AuthService
}

func NewAuthMiddleware(auth AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return m.handler(next, true)
}

func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return m.handler(next, false)
}

func (m *AuthMiddleware) handler(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if required {
				WriteJSONError(w, http.StatusUnauthorized, "Authorization header is missing")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			WriteJSONError(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		session, err := m.auth.Lookup(r.Context(), strings.TrimSpace(token))
		if err != nil {
			WriteJSONError(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
