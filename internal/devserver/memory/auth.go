package memory

import (
	"context"
	"errors"
	"fmt"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/devserver/token"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenService выпускает и проверяет токены сессий.
type TokenService interface {
	Generate(userID, mobile string) (string, error)
	Validate(tokenString string) (*token.Claims, error)
}

// AuthStore - вход по одноразовому коду для dev-сервера. Код фиксирован конфигурацией,
// SMS не отправляются. В памяти хранится только bcrypt-хеш кода.
type AuthStore struct {
	mu       sync.Mutex
	codeHash []byte
	tokens   TokenService
	pending  map[string]bool
	users    map[string]domain.User // по номеру телефона
}

func NewAuthStore(code string, tokens TokenService) (*AuthStore, error) {
	if code == "" {
		return nil, errors.New("otp code cannot be empty")
	}
	if tokens == nil {
		return nil, errors.New("token service is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash otp code: %w", err)
	}
	return &AuthStore{
		codeHash: hash,
		tokens:   tokens,
		pending:  make(map[string]bool),
		users:    make(map[string]domain.User),
	}, nil
}

func (s *AuthStore) SendOTP(_ context.Context, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[mobile] = true
	return nil
}

// VerifyOTP погашает код и выдает новый токен. Пользователь создается при первом входе.
func (s *AuthStore) VerifyOTP(_ context.Context, mobile, code string) (*domain.Session, error) {
	mobile = strings.TrimSpace(mobile)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending[mobile] {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(s.codeHash, []byte(code)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	delete(s.pending, mobile)

	user, ok := s.users[mobile]
	if !ok {
		user = domain.User{ID: uuid.NewString(), Mobile: mobile}
		s.users[mobile] = user
	}
	signed, err := s.tokens.Generate(user.ID, mobile)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: signed, User: user}, nil
}

// Lookup принимает только токены существующих пользователей: после удаления
// учетной записи старые токены перестают работать, даже если их срок не истек.
func (s *AuthStore) Lookup(_ context.Context, tokenString string) (*domain.Session, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[claims.Mobile]
	if !ok || user.ID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Session{Token: tokenString, User: user}, nil
}

func (s *AuthStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for mobile, u := range s.users {
		if u.ID == userID {
			delete(s.users, mobile)
		}
	}
	return nil
}
