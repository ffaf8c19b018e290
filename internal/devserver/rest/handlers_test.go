package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/devserver/events"
	"real-estate-web/internal/devserver/memory"
	"real-estate-web/internal/devserver/token"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type fixture struct {
	server    *httptest.Server
	inquiries *memory.InquiryRepository
	events    *recordingPublisher
}

func newTestAuthStore(t *testing.T) *memory.AuthStore {
	t.Helper()
	tokens, err := token.NewService("test-secret", time.Hour)
	require.NoError(t, err)
	auth, err := memory.NewAuthStore("1234", tokens)
	require.NoError(t, err)
	return auth
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	auth := newTestAuthStore(t)
	inquiries := memory.NewInquiryRepository()
	handlers := NewHandlers(
		memory.NewPropertyRepository(memory.SeedProperties()),
		memory.NewWishlistRepository(),
		auth,
		inquiries,
	)
	published := &recordingPublisher{}
	handlers.WithEvents(events.NewEmitter(published, "test"))
	router := NewRouter(ServerConfig{Registry: prometheus.NewRegistry()}, handlers, NewAuthMiddleware(auth), contextkeys.NoopLogger())
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &fixture{server: server, inquiries: inquiries, events: published}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (f *fixture) signIn(t *testing.T, mobile string) string {
	t.Helper()
	resp, _ := f.do(t, http.MethodPost, "/api/auth/otp/send", "", OTPSendRequest{Mobile: mobile})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp, body := f.do(t, http.MethodPost, "/api/auth/otp/verify", "", OTPVerifyRequest{Mobile: mobile, Code: "1234"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session SessionResponse
	require.NoError(t, json.Unmarshal(body, &session))
	return session.Token
}

func TestSearchProperties_DefaultPage(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/properties?page=1&size=9", "", map[string]any{"criteriaList": []any{}, "operations": []any{}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page PaginatedResponse[PropertyResponse]
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Data, 9)
	assert.Equal(t, 12, page.TotalRecords)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.Data[0].Featured, "featured objects come first by default")
}

func TestSearchProperties_FilterAndSort(t *testing.T) {
	f := newFixture(t)
	req := map[string]any{
		"criteriaList": []map[string]any{
			{"key": "title", "operation": "contains", "value": "lake"},
			{"key": "location", "operation": "contains", "value": "lake"},
			{"key": "type", "operation": "contains", "value": "lake"},
			{"key": "type", "operation": "equals", "value": "Plot"},
		},
		"operations": []string{"OR", "OR", "AND"},
	}

	resp, body := f.do(t, http.MethodPost, "/api/properties?page=1&size=9&sortBy=price&sortDirection=desc", "", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page PaginatedResponse[PropertyResponse]
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Data, 2)
	assert.Equal(t, "lake-view-plot", page.Data[0].Slug)
	assert.Equal(t, "plot-near-the-lake", page.Data[1].Slug)
}

func TestSearchProperties_MalformedRequest(t *testing.T) {
	f := newFixture(t)
	req := map[string]any{
		"criteriaList": []map[string]any{{"key": "title", "operation": "contains", "value": "x"}},
		"operations":   []string{"AND"},
	}
	resp, _ := f.do(t, http.MethodPost, "/api/properties", "", req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPropertyBySlug(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/properties/slug/forest-plot", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"slug":"forest-plot"`)

	resp, _ = f.do(t, http.MethodGet, "/api/properties/slug/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWishlist_RequiresToken(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/api/wishlist", "", AddToWishlistRequest{PropertyID: 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/wishlist", "bogus", AddToWishlistRequest{PropertyID: 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWishlist_AddSearchRemove(t *testing.T) {
	f := newFixture(t)
	token := f.signIn(t, "+375291111111")
	other := f.signIn(t, "+375292222222")

	resp, _ := f.do(t, http.MethodPost, "/api/wishlist", token, AddToWishlistRequest{PropertyID: 3, PropertyTitle: "Plot near the Lake"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPost, "/api/wishlist", other, AddToWishlistRequest{PropertyID: 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/wishlist", token, AddToWishlistRequest{PropertyID: 999})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	search := map[string]any{
		"criteriaList": []map[string]any{{"key": "email", "operation": "equals", "value": "+375291111111"}},
		"operations":   []string{},
	}
	resp, body := f.do(t, http.MethodPost, "/api/wishlistSearch?page=1&size=100", token, search)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page PaginatedResponse[WishlistItemResponse]
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Data, 1, "users only see their own wishlist")
	assert.Equal(t, int64(3), page.Data[0].PropertyID)
	require.NotNil(t, page.Data[0].Property)
	assert.Equal(t, "plot-near-the-lake", page.Data[0].Property.Slug)

	resp, _ = f.do(t, http.MethodDelete, "/api/wishlist/3", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = f.do(t, http.MethodPost, "/api/wishlistSearch?page=1&size=100", token, search)
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
}

func TestSubmitInquiry(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/inquiries", "", InquiryRequest{
		Name: "Bob", Email: "bob@example.com", Message: "Is this still available?", PropertyID: 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var receipt InquiryReceiptResponse
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.NotEmpty(t, receipt.ID)
	assert.Equal(t, 1, f.inquiries.Count())

	resp, _ = f.do(t, http.MethodPost, "/api/inquiries", "", InquiryRequest{Name: "Bob", Message: "too short"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSessionAndDeleteAccount(t *testing.T) {
	f := newFixture(t)
	token := f.signIn(t, "+375291111111")

	resp, body := f.do(t, http.MethodGet, "/api/auth/session", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "+375291111111")

	resp, _ = f.do(t, http.MethodDelete, "/api/account", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOTP_RejectsBadInput(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/api/auth/otp/send", "", OTPSendRequest{Mobile: "12345"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f.do(t, http.MethodPost, "/api/auth/otp/send", "", OTPSendRequest{Mobile: "+375291111111"})
	resp, _ = f.do(t, http.MethodPost, "/api/auth/otp/verify", "", OTPVerifyRequest{Mobile: "+375291111111", Code: "0000"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/properties/slug/forest-plot", "", nil)

	resp, body := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `devserver_http_requests_total{method="GET",route="/api/properties/slug/{slug}",status="200"} 1`))
}

func TestDomainEventsArePublished(t *testing.T) {
	f := newFixture(t)
	token := f.signIn(t, "+375291111111")

	f.do(t, http.MethodPost, "/api/wishlist", token, AddToWishlistRequest{PropertyID: 3})
	f.do(t, http.MethodDelete, "/api/wishlist/3", token, nil)
	f.do(t, http.MethodPost, "/api/inquiries", token, InquiryRequest{Name: "Bob", Email: "bob@example.com", Message: "Is this still available?"})
	// отклоненная заявка события не дает
	f.do(t, http.MethodPost, "/api/inquiries", "", InquiryRequest{Name: "Bob", Message: "short"})
	f.do(t, http.MethodDelete, "/api/account", token, nil)

	assert.Equal(t, []string{
		events.WishlistAdded,
		events.WishlistRemoved,
		events.InquirySubmitted,
		events.AccountDeleted,
	}, f.events.published())
}
