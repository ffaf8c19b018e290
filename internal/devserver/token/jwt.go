// Package token выпускает и проверяет JWT сессий dev-сервера.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("token is invalid or expired")

const issuer = "estate-devserver"

// Claims - полезная нагрузка токена.
type Claims struct {
	UserID string
	Mobile string
}

type jwtCustomClaims struct {
	UserID string `json:"user_id"`
	Mobile string `json:"mobile"`
	jwt.RegisteredClaims
}

// Service подписывает токены HS256.
type Service struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewService(signingKey string, ttl time.Duration) (*Service, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("JWT signing key cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &Service{signingKey: []byte(signingKey), ttl: ttl, now: time.Now}, nil
}

func (s *Service) Generate(userID, mobile string) (string, error) {
	now := s.now()
	claims := &jwtCustomClaims{
		UserID: userID,
		Mobile: mobile,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate проверяет подпись, срок и издателя.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*jwtCustomClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return &Claims{UserID: claims.UserID, Mobile: claims.Mobile}, nil
}
