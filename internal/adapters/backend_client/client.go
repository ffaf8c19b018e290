package backend_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/contracts"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/port"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

const maxErrorBody = 4 << 10

// errMalformedResponse - 2xx, тело которого не совпало со схемой или не декодируется.
var errMalformedResponse = errors.New("malformed backend response")

// BreakerConfig - настройки предохранителя.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureRatio - доля неудачных запросов, при которой предохранитель размыкается.
	FailureRatio float64
	MinRequests  uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "backend-api",
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker BreakerConfig
	// Registerer для метрик клиента. nil - метрики не регистрируются.
	Registerer prometheus.Registerer
	HTTPClient *http.Client
}

// Client - клиент REST API бэкенда. Реализует порты поиска, избранного, каталога,
// заявок и учетной записи.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*rawResponse]
	metrics    *clientMetrics
}

type rawResponse struct {
	status int
	body   []byte
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	bc := cfg.Breaker
	if bc.Name == "" {
		bc = DefaultBreakerConfig()
	}

	metrics := newClientMetrics(cfg.Registerer)
	settings := gobreaker.Settings{
		Name:        bc.Name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bc.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}
	metrics.breakerState.WithLabelValues(bc.Name).Set(0)

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		breaker:    gobreaker.NewCircuitBreaker[*rawResponse](settings),
		metrics:    metrics,
	}
}

// BreakerState - текущее состояние предохранителя.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// apiCall описывает один запрос к бэкенду.
type apiCall struct {
	method  string
	route   string // шаблон пути для метрик
	path    string
	query   url.Values
	session *domain.Session
	body    any
	schema  string // пусто - тело ответа не проверяется
}

// doRequest выполняет запрос через предохранитель и декодирует ответ в out.
// 5xx и сетевые ошибки считаются отказами предохранителя, 4xx - нет.
func (c *Client) doRequest(ctx context.Context, call apiCall, out any) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "BackendAPIClient",
		"route":     call.route,
		"method":    call.method,
	})

	var payload []byte
	if call.body != nil {
		var err error
		payload, err = json.Marshal(call.body)
		if err != nil {
			logger.Error("Failed to marshal request body", err, nil)
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	target := c.baseURL + call.path
	if len(call.query) > 0 {
		target += "?" + call.query.Encode()
	}

	started := time.Now()
	raw, err := c.breaker.Execute(func() (*rawResponse, error) {
		return c.send(ctx, call, target, payload)
	})
	c.metrics.duration.WithLabelValues(call.method, call.route).Observe(time.Since(started).Seconds())

	if err != nil {
		c.metrics.requests.WithLabelValues(call.method, call.route, "error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logger.Warn("Circuit breaker rejected request", port.Fields{"state": c.breaker.State().String()})
		} else {
			logger.Error("Failed to perform request to backend", err, nil)
		}
		return fmt.Errorf("%w: %w", domain.ErrBackend, err)
	}

	if raw.status < 200 || raw.status >= 300 {
		c.metrics.requests.WithLabelValues(call.method, call.route, strconv.Itoa(raw.status)).Inc()
		err := statusError(raw)
		logger.Warn("Received non-success response from backend", port.Fields{
			"status_code": raw.status,
			"error":       err.Error(),
		})
		return err
	}
	if out == nil {
		c.metrics.requests.WithLabelValues(call.method, call.route, "ok").Inc()
		return nil
	}
	if call.schema != "" {
		if err := contracts.ValidateResponse(call.schema, raw.body); err != nil {
			c.metrics.requests.WithLabelValues(call.method, call.route, "malformed").Inc()
			logger.Error("Backend response does not match schema", err, port.Fields{"schema": call.schema})
			return fmt.Errorf("%w: %w: %w", domain.ErrBackend, errMalformedResponse, err)
		}
	}
	if err := json.Unmarshal(raw.body, out); err != nil {
		c.metrics.requests.WithLabelValues(call.method, call.route, "malformed").Inc()
		logger.Error("Failed to decode response from backend", err, nil)
		return fmt.Errorf("%w: %w: %w", domain.ErrBackend, errMalformedResponse, err)
	}
	c.metrics.requests.WithLabelValues(call.method, call.route, "ok").Inc()
	return nil
}

func (c *Client) send(ctx context.Context, call apiCall, target string, payload []byte) (*rawResponse, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, call.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	if call.session != nil && call.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+call.session.Token)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, truncate(data))
	}
	return &rawResponse{status: resp.StatusCode, body: data}, nil
}

func statusError(raw *rawResponse) error {
	switch raw.status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrUnauthorized, raw.status)
	case http.StatusNotFound:
		return fmt.Errorf("%w: status %d", domain.ErrNotFound, raw.status)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: backend rejected request: %s", domain.ErrInvalidInput, truncate(raw.body))
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrBackend, raw.status, truncate(raw.body))
	}
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

// SearchProperties реализует port.PropertySearchPort.
func (c *Client) SearchProperties(ctx context.Context, req domain.AdvancedSearchRequest, sort domain.SortSpec, page, size int) (*domain.PaginatedResult[domain.Property], error) {
	q := pageQuery(page, size)
	if sort.Field != "" {
		q.Set("sortBy", sort.Field)
		q.Set("sortDirection", string(sort.Direction))
	}

	var resp paginatedResponse[propertyDTO]
	err := c.doRequest(ctx, apiCall{
		method: http.MethodPost,
		route:  "/api/properties",
		path:   "/api/properties",
		query:  q,
		body:   req,
		schema: contracts.PropertiesPage,
	}, &resp)
	// страница в неожиданной форме показывается как пустой список
	if errors.Is(err, errMalformedResponse) {
		return domain.EmptyPage[domain.Property](page), nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainPage(resp, propertyDTO.toDomain), nil
}

// SearchWishlist реализует port.WishlistAPIPort.
func (c *Client) SearchWishlist(ctx context.Context, session *domain.Session, req domain.AdvancedSearchRequest, page, size int) (*domain.PaginatedResult[domain.WishlistItem], error) {
	var resp paginatedResponse[wishlistItemDTO]
	err := c.doRequest(ctx, apiCall{
		method:  http.MethodPost,
		route:   "/api/wishlistSearch",
		path:    "/api/wishlistSearch",
		query:   pageQuery(page, size),
		session: session,
		body:    req,
		schema:  contracts.WishlistPage,
	}, &resp)
	// страница в неожиданной форме показывается как пустой список
	if errors.Is(err, errMalformedResponse) {
		return domain.EmptyPage[domain.WishlistItem](page), nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainPage(resp, wishlistItemDTO.toDomain), nil
}

func (c *Client) AddToWishlist(ctx context.Context, session *domain.Session, propertyID int64, propertyTitle string) error {
	return c.doRequest(ctx, apiCall{
		method:  http.MethodPost,
		route:   "/api/wishlist",
		path:    "/api/wishlist",
		session: session,
		body:    addToWishlistRequest{PropertyID: propertyID, PropertyTitle: propertyTitle},
	}, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, session *domain.Session, propertyID int64) error {
	return c.doRequest(ctx, apiCall{
		method:  http.MethodDelete,
		route:   "/api/wishlist/{propertyId}",
		path:    "/api/wishlist/" + strconv.FormatInt(propertyID, 10),
		session: session,
	}, nil)
}

// GetPropertyBySlug реализует port.PropertyCatalogPort.
func (c *Client) GetPropertyBySlug(ctx context.Context, slug string) (*domain.Property, error) {
	var dto propertyDTO
	err := c.doRequest(ctx, apiCall{
		method: http.MethodGet,
		route:  "/api/properties/slug/{slug}",
		path:   "/api/properties/slug/" + url.PathEscape(slug),
		schema: contracts.Property,
	}, &dto)
	if err != nil {
		return nil, err
	}
	p := dto.toDomain()
	return &p, nil
}

// SubmitInquiry реализует port.InquiryPort. Сессия может быть nil.
func (c *Client) SubmitInquiry(ctx context.Context, session *domain.Session, inquiry domain.Inquiry) (*domain.InquiryReceipt, error) {
	var dto inquiryReceiptDTO
	err := c.doRequest(ctx, apiCall{
		method:  http.MethodPost,
		route:   "/api/inquiries",
		path:    "/api/inquiries",
		session: session,
		body: inquiryRequest{
			Name:       inquiry.Name,
			Email:      inquiry.Email,
			Mobile:     inquiry.Mobile,
			Message:    inquiry.Message,
			PropertyID: inquiry.PropertyID,
		},
		schema: contracts.InquiryReceipt,
	}, &dto)
	if err != nil {
		return nil, err
	}
	return &domain.InquiryReceipt{ID: dto.ID, Status: dto.Status}, nil
}

// DeleteAccount реализует port.AccountPort.
func (c *Client) DeleteAccount(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrAuthRequired
	}
	return c.doRequest(ctx, apiCall{
		method:  http.MethodDelete,
		route:   "/api/account",
		path:    "/api/account",
		session: session,
	}, nil)
}
