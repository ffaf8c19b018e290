// Package session хранит текущую сессию пользователя и оповещает о выходе.
package session

import (
	"real-estate-web/internal/core/domain"
	"sync"
)

// Manager реализует port.SessionProviderPort.
type Manager struct {
	mu        sync.RWMutex
	current   *domain.Session
	onSignIn  []func(*domain.Session)
	onSignOut []func()
}

func NewManager() *Manager {
	return &Manager{}
}

// Current возвращает копию текущей сессии или nil.
func (m *Manager) Current() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// SignIn устанавливает сессию. Смена пользователя без явного выхода
// тоже считается выходом предыдущего.
func (m *Manager) SignIn(s *domain.Session) {
	if s == nil {
		m.SignOut()
		return
	}
	m.mu.Lock()
	prev := m.current
	cp := *s
	m.current = &cp
	signOut := append([]func(){}, m.onSignOut...)
	signIn := append([]func(*domain.Session){}, m.onSignIn...)
	m.mu.Unlock()

	if prev != nil && prev.Identity() != cp.Identity() {
		for _, fn := range signOut {
			fn()
		}
	}
	for _, fn := range signIn {
		fn(&cp)
	}
}

// SignOut сбрасывает сессию и вызывает обработчики выхода.
func (m *Manager) SignOut() {
	m.mu.Lock()
	hadSession := m.current != nil
	m.current = nil
	handlers := append([]func(){}, m.onSignOut...)
	m.mu.Unlock()

	if !hadSession {
		return
	}
	for _, fn := range handlers {
		fn()
	}
}

// OnSignOut регистрирует обработчик выхода (например, сброс избранного).
func (m *Manager) OnSignOut(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSignOut = append(m.onSignOut, fn)
}

// OnSignIn регистрирует обработчик входа.
func (m *Manager) OnSignIn(fn func(*domain.Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSignIn = append(m.onSignIn, fn)
}
