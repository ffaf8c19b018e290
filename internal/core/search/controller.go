// Package search - контроллер страницы поиска: текст, фильтр типа, сортировка и пагинация,
// переведенные в один расширенный запрос к бэкенду.
package search

import (
	"context"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/core/debounce"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/port"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultPageSize - размер страницы каталога.
const DefaultPageSize = 9

// Status - состояние конечного автомата контроллера.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Snapshot - копия состояния контроллера, готовая к отрисовке.
type Snapshot struct {
	State        domain.SearchPageState
	Status       Status
	Items        []domain.Property
	TotalRecords int
	TotalPages   int
	Err          error
}

// Option настраивает Controller.
type Option func(*Controller)

// WithPageSize - размер страницы; неположительные значения игнорируются.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.state.PageSize = n
		}
	}
}

// WithDebounce - пауза ввода перед поиском.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounceWindow = d }
}

// WithOnChange задает колбэк, вызываемый после каждого изменения состояния.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithOnScrollTop задает косметический колбэк смены страницы.
func WithOnScrollTop(fn func()) Option {
	return func(c *Controller) { c.onScrollTop = fn }
}

// Controller хранит состояние одной страницы поиска. Между страницами не разделяется.
type Controller struct {
	api    port.PropertySearchPort
	logger port.LoggerPort

	debounceWindow time.Duration
	debouncer      *debounce.Debouncer
	onChange       func(Snapshot)
	onScrollTop    func()

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	state        domain.SearchPageState
	status       Status
	items        []domain.Property
	totalRecords int
	totalPages   int
	lastErr      error
	generation   uint64

	inflight sync.WaitGroup
}

type fetchJob struct {
	generation uint64
	request    domain.AdvancedSearchRequest
	sort       domain.SortSpec
	page       int
	size       int
}

// NewController - конструктор. clock нужен дебаунсеру; nil означает реальное время.
func NewController(api port.PropertySearchPort, clock clockwork.Clock, logger port.LoggerPort, opts ...Option) *Controller {
	if logger == nil {
		logger = contextkeys.NoopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		api:            api,
		logger:         logger.WithFields(port.Fields{"component": "SearchController"}),
		debounceWindow: debounce.DefaultWindow,
		ctx:            ctx,
		cancel:         cancel,
		state: domain.SearchPageState{
			TypeFilter: domain.TypeAll,
			SortKey:    domain.SortFeatured,
			Page:       1,
			PageSize:   DefaultPageSize,
		},
		items: []domain.Property{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.debouncer = debounce.New(clock, c.debounceWindow)
	return c
}

// Start выполняет первую загрузку страницы (Idle -> Loading).
func (c *Controller) Start() {
	c.mu.Lock()
	job := c.beginFetchLocked()
	c.mu.Unlock()
	c.dispatch(job)
}

// SetQuery сразу обновляет текст в поле, но поиск запускает только после паузы ввода.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	c.state.Query = text
	c.mu.Unlock()
	c.emit()

	c.debouncer.Trigger(func() { c.commitQuery(text) })
}

// SubmitQuery фиксирует текст сразу, без ожидания паузы (Enter в поле поиска).
func (c *Controller) SubmitQuery(text string) {
	c.debouncer.Cancel()
	c.mu.Lock()
	c.state.Query = text
	c.mu.Unlock()
	c.commitQuery(text)
}

// commitQuery фиксирует значение после паузы. Поиск идет только если значение изменилось
// без учета пробелов по краям.
func (c *Controller) commitQuery(text string) {
	c.mu.Lock()
	if strings.TrimSpace(c.state.DebouncedQuery) == strings.TrimSpace(text) {
		c.mu.Unlock()
		return
	}
	c.state.DebouncedQuery = text
	c.state.Page = 1
	job := c.beginFetchLocked()
	c.mu.Unlock()

	c.logger.Debug("Debounced query committed.", port.Fields{"query": text})
	c.dispatch(job)
}

// SetType меняет фильтр типа. Номер страницы сбрасывается до запроса.
func (c *Controller) SetType(typeFilter string) {
	typeFilter = strings.TrimSpace(typeFilter)
	if typeFilter == "" {
		typeFilter = domain.TypeAll
	}

	c.mu.Lock()
	if c.state.TypeFilter == typeFilter {
		c.mu.Unlock()
		return
	}
	c.state.TypeFilter = typeFilter
	c.state.Page = 1
	job := c.beginFetchLocked()
	c.mu.Unlock()
	c.dispatch(job)
}

// SetSort меняет сортировку. Номер страницы сбрасывается до запроса.
func (c *Controller) SetSort(key domain.SortKey) {
	c.mu.Lock()
	if c.state.SortKey == key {
		c.mu.Unlock()
		return
	}
	c.state.SortKey = key
	c.state.Page = 1
	job := c.beginFetchLocked()
	c.mu.Unlock()
	c.dispatch(job)
}

// NextPage - переход на следующую страницу, см. GoToPage.
func (c *Controller) NextPage() {
	c.mu.Lock()
	page := c.state.Page + 1
	c.mu.Unlock()
	c.GoToPage(page)
}

// PrevPage - переход на предыдущую страницу, см. GoToPage.
func (c *Controller) PrevPage() {
	c.mu.Lock()
	page := c.state.Page - 1
	c.mu.Unlock()
	c.GoToPage(page)
}

// GoToPage переходит на страницу n, ограничивая ее диапазоном [1, totalPages].
// Остальные фильтры и сортировка сохраняются.
func (c *Controller) GoToPage(n int) {
	c.mu.Lock()
	maxPage := c.totalPages
	if maxPage < 1 {
		maxPage = 1
	}
	if n > maxPage {
		n = maxPage
	}
	if n < 1 {
		n = 1
	}
	if n == c.state.Page {
		c.mu.Unlock()
		return
	}
	c.state.Page = n
	job := c.beginFetchLocked()
	c.mu.Unlock()

	if c.onScrollTop != nil {
		c.onScrollTop()
	}
	c.dispatch(job)
}

// Refresh повторяет текущий запрос. Автоматических повторов нет, это ручной retry.
func (c *Controller) Refresh() {
	c.mu.Lock()
	job := c.beginFetchLocked()
	c.mu.Unlock()
	c.dispatch(job)
}

// State возвращает копию текущего состояния.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait блокируется, пока не завершатся все выпущенные запросы.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close отменяет ожидающий дебаунс и контекст запросов.
func (c *Controller) Close() {
	c.debouncer.Cancel()
	c.cancel()
}

// beginFetchLocked переводит автомат в Loading и выдает задание с новым поколением.
// Вызывается под c.mu.
func (c *Controller) beginFetchLocked() fetchJob {
	c.generation++
	c.status = StatusLoading
	return fetchJob{
		generation: c.generation,
		request:    BuildRequest(c.state),
		sort:       SortFor(c.state.SortKey),
		page:       c.state.Page,
		size:       c.state.PageSize,
	}
}

func (c *Controller) dispatch(job fetchJob) {
	c.emit()
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.fetch(job)
	}()
}

// fetch выполняет один сетевой вызов. Ответ на устаревший запрос отбрасывается,
// поэтому медленный старый ответ не перезапишет результаты нового.
func (c *Controller) fetch(job fetchJob) {
	ctx, traceID := contextkeys.EnsureTraceID(c.ctx)
	logger := c.logger.WithFields(port.Fields{
		"method":     "fetch",
		"generation": job.generation,
		"page":       job.page,
		"trace_id":   traceID,
	})
	ctx = contextkeys.ContextWithLogger(ctx, logger)

	logger.Debug("Fetching properties page.", port.Fields{
		"criteria": len(job.request.CriteriaList),
		"sort_by":  job.sort.Field,
		"sort_dir": job.sort.Direction,
	})
	result, err := c.api.SearchProperties(ctx, job.request, job.sort, job.page, job.size)

	c.mu.Lock()
	if latest := c.generation; job.generation != latest {
		c.mu.Unlock()
		logger.Debug("Discarding response of a superseded request.", port.Fields{"latest_generation": latest})
		return
	}
	if err != nil {
		c.status = StatusFailed
		c.lastErr = err
		c.mu.Unlock()
		logger.Error("Property search failed, keeping previous results.", err, nil)
		c.emit()
		return
	}

	c.status = StatusLoaded
	c.lastErr = nil
	if result == nil || result.Data == nil {
		c.items = []domain.Property{}
		c.totalRecords, c.totalPages = 0, 0
	} else {
		c.items = result.Data
		c.totalRecords = result.TotalRecords
		c.totalPages = result.TotalPages
	}
	loaded := len(c.items)
	c.mu.Unlock()

	logger.Debug("Properties page loaded.", port.Fields{"items": loaded})
	c.emit()
}

func (c *Controller) snapshotLocked() Snapshot {
	items := make([]domain.Property, len(c.items))
	copy(items, c.items)
	return Snapshot{
		State:        c.state,
		Status:       c.status,
		Items:        items,
		TotalRecords: c.totalRecords,
		TotalPages:   c.totalPages,
		Err:          c.lastErr,
	}
}

func (c *Controller) emit() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.State())
}
