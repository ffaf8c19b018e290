package session

import (
	"real-estate-web/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SignInSignOut(t *testing.T) {
	m := NewManager()
	assert.Nil(t, m.Current())

	var signOuts int
	m.OnSignOut(func() { signOuts++ })

	m.SignIn(&domain.Session{Token: "t1", User: domain.User{Email: "a@example.com"}})
	require.NotNil(t, m.Current())
	assert.Equal(t, "t1", m.Current().Token)
	assert.Equal(t, 0, signOuts)

	m.SignOut()
	assert.Nil(t, m.Current())
	assert.Equal(t, 1, signOuts)

	// Повторный выход без сессии обработчики не дергает.
	m.SignOut()
	assert.Equal(t, 1, signOuts)
}

func TestManager_SwitchingUserCountsAsSignOut(t *testing.T) {
	m := NewManager()
	var signOuts, signIns int
	m.OnSignOut(func() { signOuts++ })
	m.OnSignIn(func(*domain.Session) { signIns++ })

	m.SignIn(&domain.Session{Token: "t1", User: domain.User{Email: "a@example.com"}})
	m.SignIn(&domain.Session{Token: "t2", User: domain.User{Email: "a@example.com"}})
	assert.Equal(t, 0, signOuts, "token refresh for the same user is not a sign-out")

	m.SignIn(&domain.Session{Token: "t3", User: domain.User{Email: "b@example.com"}})
	assert.Equal(t, 1, signOuts)
	assert.Equal(t, 3, signIns)
}

func TestManager_CurrentReturnsCopy(t *testing.T) {
	m := NewManager()
	m.SignIn(&domain.Session{Token: "t1"})

	s := m.Current()
	s.Token = "mutated"
	assert.Equal(t, "t1", m.Current().Token)
}
