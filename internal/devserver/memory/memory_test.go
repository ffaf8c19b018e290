package memory

import (
	"context"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/devserver/token"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewWishlistRepository()

	require.NoError(t, repo.Add(ctx, "Alice@Example.com", 1, "Villa"))
	require.NoError(t, repo.Add(ctx, "alice@example.com", 1, "Villa"))
	require.NoError(t, repo.Add(ctx, "alice@example.com", 2, "Flat"))
	require.NoError(t, repo.Add(ctx, "bob@example.com", 1, "Villa"))

	items, err := repo.ListByUser(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].PropertyID)
	assert.Equal(t, int64(2), items[1].PropertyID)

	require.NoError(t, repo.Remove(ctx, "alice@example.com", 1))
	items, _ = repo.ListByUser(ctx, "alice@example.com")
	assert.Len(t, items, 1)

	require.NoError(t, repo.DeleteUser(ctx, "alice@example.com"))
	items, _ = repo.ListByUser(ctx, "alice@example.com")
	assert.Empty(t, items)
	items, _ = repo.ListByUser(ctx, "bob@example.com")
	assert.Len(t, items, 1)
}

func TestAuthStore(t *testing.T) {
	ctx := context.Background()
	tokens, err := token.NewService("test-secret", time.Hour)
	require.NoError(t, err)
	store, err := NewAuthStore("1234", tokens)
	require.NoError(t, err)

	_, err = store.VerifyOTP(ctx, "+375291111111", "1234")
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "code was never requested")

	require.NoError(t, store.SendOTP(ctx, "+375291111111"))
	_, err = store.VerifyOTP(ctx, "+375291111111", "0000")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	s, err := store.VerifyOTP(ctx, "+375291111111", "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)

	_, err = store.VerifyOTP(ctx, "+375291111111", "1234")
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "code is single use")

	got, err := store.Lookup(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, got.User.ID)

	_, err = store.Lookup(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, store.DeleteUser(ctx, s.User.ID))
	_, err = store.Lookup(ctx, s.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "token outlives its user")

	// повторная регистрация дает новый ID, старый токен не оживает
	require.NoError(t, store.SendOTP(ctx, "+375291111111"))
	_, err = store.VerifyOTP(ctx, "+375291111111", "1234")
	require.NoError(t, err)
	_, err = store.Lookup(ctx, s.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNewAuthStore_Validation(t *testing.T) {
	tokens, err := token.NewService("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = NewAuthStore("", tokens)
	assert.Error(t, err)
	_, err = NewAuthStore("1234", nil)
	assert.Error(t, err)
}

func TestPropertyRepository(t *testing.T) {
	repo := NewPropertyRepository(SeedProperties())

	p, err := repo.BySlug(context.Background(), "forest-plot")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Plot", p.Type)

	p, err = repo.BySlug(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, p)

	all, _ := repo.List(context.Background())
	all[0].Title = "mutated"
	again, _ := repo.List(context.Background())
	assert.Equal(t, "Lakeside Villa", again[0].Title)
}
