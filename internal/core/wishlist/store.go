// Package wishlist - общий для всех карточек источник правды о том,
// находится ли объект в избранном текущего пользователя.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/port"
	"sync"
)

var (
	// ErrAuthRequired - действие с избранным без сессии. Сетевой вызов не выполняется.
	ErrAuthRequired = domain.ErrAuthRequired
	// ErrToggleInProgress - другой toggle этого хранилища еще не завершился.
	ErrToggleInProgress = errors.New("wishlist toggle already in progress")
	// ErrSessionChanged - сессия сменилась, пока запрос был в полете; результат отброшен.
	ErrSessionChanged = errors.New("session changed during wishlist request")
)

const (
	loadPageSize = 100
	loadMaxPages = 50
)

// ChangeKind - причина уведомления подписчиков.
type ChangeKind int

const (
	ChangeToggled ChangeKind = iota
	ChangeLoaded
	ChangeReset
	ChangeBusy
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeToggled:
		return "toggled"
	case ChangeLoaded:
		return "loaded"
	case ChangeReset:
		return "reset"
	case ChangeBusy:
		return "busy"
	}
	return "unknown"
}

// Change описывает изменение хранилища.
// PropertyID и Present заполнены только для ChangeToggled, Loading - для ChangeBusy.
type Change struct {
	Kind       ChangeKind
	PropertyID int64
	Present    bool
	Loading    bool
}

// Store - наблюдаемое отображение propertyID -> в избранном.
// Один экземпляр на приложение; передается всем потребителям явно.
type Store struct {
	api      port.WishlistAPIPort
	sessions port.SessionProviderPort
	logger   port.LoggerPort

	mu         sync.RWMutex
	entries    map[int64]bool
	loading    bool
	loaded     bool
	generation uint64

	// toggle, подтвержденные во время загрузки: снимок сервера мог их не увидеть
	mutations    uint64
	activeLoads  int
	confirmedDue map[int64]confirmedToggle

	subMu     sync.RWMutex
	subs      map[int]func(Change)
	subOrder  []int
	nextSubID int
}

type confirmedToggle struct {
	seq     uint64
	present bool
}

// NewStore - конструктор.
func NewStore(api port.WishlistAPIPort, sessions port.SessionProviderPort, logger port.LoggerPort) *Store {
	if logger == nil {
		logger = contextkeys.NoopLogger()
	}
	return &Store{
		api:          api,
		sessions:     sessions,
		logger:       logger.WithFields(port.Fields{"component": "WishlistStore"}),
		entries:      make(map[int64]bool),
		confirmedDue: make(map[int64]confirmedToggle),
		subs:         make(map[int]func(Change)),
	}
}

// IsInWishlist - чистый поиск в памяти. Неизвестный id означает "еще не загружен", а не ошибку.
func (s *Store) IsInWishlist(propertyID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[propertyID]
}

// Loading сообщает, выполняется ли сейчас toggle.
// Флаг общий для всего хранилища: пока он поднят, все кнопки избранного заняты.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Loaded сообщает, было ли хранилище загружено с сервера в текущей сессии.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Len возвращает число объектов в избранном.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, present := range s.entries {
		if present {
			n++
		}
	}
	return n
}

// Snapshot возвращает копию отображения.
func (s *Store) Snapshot() map[int64]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]bool, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Toggle инвертирует членство объекта в избранном.
// Возвращает членство после вызова. Флаг меняется только после подтверждения бэкендом;
// при ошибке состояние не меняется, возвращается прежнее значение и ошибка.
func (s *Store) Toggle(ctx context.Context, propertyID int64, propertyTitle string) (bool, error) {
	logger := s.logger.WithFields(port.Fields{
		"method":      "Toggle",
		"property_id": propertyID,
		"trace_id":    contextkeys.TraceIDFromContext(ctx),
	})

	session := s.currentSession()
	if session == nil {
		logger.Warn("Wishlist toggle rejected: no session.", nil)
		return s.IsInWishlist(propertyID), ErrAuthRequired
	}

	s.mu.Lock()
	if s.loading {
		present := s.entries[propertyID]
		s.mu.Unlock()
		logger.Debug("Wishlist toggle rejected: another toggle is in flight.", nil)
		return present, ErrToggleInProgress
	}
	s.loading = true
	present := s.entries[propertyID]
	generation := s.generation
	s.mu.Unlock()
	s.notify(Change{Kind: ChangeBusy, Loading: true})

	var err error
	if present {
		logger.Debug("Removing property from wishlist.", nil)
		err = s.api.RemoveFromWishlist(ctx, session, propertyID)
	} else {
		logger.Debug("Adding property to wishlist.", port.Fields{"property_title": propertyTitle})
		err = s.api.AddToWishlist(ctx, session, propertyID, propertyTitle)
	}

	s.mu.Lock()
	s.loading = false
	switch {
	case err != nil:
		s.mu.Unlock()
		s.notify(Change{Kind: ChangeBusy, Loading: false})
		logger.Error("Wishlist toggle failed, state left unchanged.", err, nil)
		return present, fmt.Errorf("toggle wishlist for property %d: %w", propertyID, err)
	case generation != s.generation:
		s.mu.Unlock()
		s.notify(Change{Kind: ChangeBusy, Loading: false})
		logger.Warn("Wishlist was reset during toggle, result discarded.", nil)
		return false, ErrSessionChanged
	}
	s.entries[propertyID] = !present
	s.mutations++
	if s.activeLoads > 0 {
		s.confirmedDue[propertyID] = confirmedToggle{seq: s.mutations, present: !present}
	}
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeBusy, Loading: false})
	s.notify(Change{Kind: ChangeToggled, PropertyID: propertyID, Present: !present})
	logger.Info("Wishlist toggled.", port.Fields{"present": !present})
	return !present, nil
}

// Load заменяет содержимое хранилища целиком списком избранного с сервера.
// При ошибке прежнее содержимое сохраняется.
func (s *Store) Load(ctx context.Context) error {
	logger := s.logger.WithFields(port.Fields{
		"method":   "Load",
		"trace_id": contextkeys.TraceIDFromContext(ctx),
	})

	session := s.currentSession()
	if session == nil {
		logger.Debug("Wishlist load skipped: no session.", nil)
		return ErrAuthRequired
	}

	s.mu.Lock()
	generation := s.generation
	startSeq := s.mutations
	s.activeLoads++
	s.mu.Unlock()
	defer s.finishLoad()

	req := domain.MatchAll()
	req.Append(domain.And, domain.SearchCriteria{
		Key:       "email",
		Operation: domain.OpEquals,
		Value:     session.Identity(),
	})

	fresh := make(map[int64]bool)
	for page := 1; page <= loadMaxPages; page++ {
		result, err := s.api.SearchWishlist(ctx, session, req, page, loadPageSize)
		if err != nil {
			logger.Error("Failed to load wishlist, keeping previous state.", err, port.Fields{"page": page})
			return fmt.Errorf("load wishlist page %d: %w", page, err)
		}
		if result == nil {
			break
		}
		for _, item := range result.Data {
			fresh[item.PropertyID] = true
		}
		if page >= result.TotalPages || len(result.Data) == 0 {
			break
		}
	}

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		logger.Warn("Wishlist was reset during load, result discarded.", nil)
		return ErrSessionChanged
	}
	// toggle, подтвержденный после начала загрузки, новее снимка
	for id, t := range s.confirmedDue {
		if t.seq > startSeq {
			fresh[id] = t.present
		}
	}
	s.entries = fresh
	s.loaded = true
	s.mu.Unlock()

	logger.Info("Wishlist loaded.", port.Fields{"items": len(fresh)})
	s.notify(Change{Kind: ChangeLoaded})
	return nil
}

func (s *Store) finishLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeLoads--
	if s.activeLoads == 0 {
		clear(s.confirmedDue)
	}
}

// EnsureLoaded загружает избранное один раз за сессию.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}
	return s.Load(ctx)
}

// Reset очищает хранилище. Вызывается при выходе пользователя,
// чтобы избранное одного пользователя не было видно следующему.
func (s *Store) Reset() {
	s.mu.Lock()
	s.entries = make(map[int64]bool)
	s.loaded = false
	s.generation++
	clear(s.confirmedDue)
	s.mu.Unlock()

	s.logger.Info("Wishlist reset.", nil)
	s.notify(Change{Kind: ChangeReset})
}

// Subscribe регистрирует слушателя изменений. Возвращает функцию отписки.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.subOrder = append(s.subOrder, id)
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, id)
			for i, sid := range s.subOrder {
				if sid == id {
					s.subOrder = append(s.subOrder[:i], s.subOrder[i+1:]...)
					break
				}
			}
		})
	}
}

// notify вызывает слушателей вне блокировки хранилища, в порядке подписки.
func (s *Store) notify(change Change) {
	s.subMu.RLock()
	listeners := make([]func(Change), 0, len(s.subOrder))
	for _, id := range s.subOrder {
		listeners = append(listeners, s.subs[id])
	}
	s.subMu.RUnlock()

	for _, fn := range listeners {
		fn(change)
	}
}

func (s *Store) currentSession() *domain.Session {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Current()
}
