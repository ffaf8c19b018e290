package auth_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"real-estate-web/internal/contextkeys"
	"real-estate-web/internal/contracts"
	"real-estate-web/internal/core/domain"
	"real-estate-web/internal/core/port"
	"strings"
	"time"
)

type sendOTPRequest struct {
	Mobile string `json:"mobile"`
}

type verifyOTPRequest struct {
	Mobile string `json:"mobile"`
	Code   string `json:"code"`
}

type userDTO struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
	Name   string `json:"name"`
}

type sessionResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

// Client - клиент сервиса аутентификации. Реализует port.AuthPort.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) doRequest(ctx context.Context, method, url, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal auth request: %w", err)
		}
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request to auth service: %w", domain.ErrBackend, err)
	}
	return resp, nil
}

// checkStatus превращает неуспешный ответ в ошибку. 401 - невалидный код или токен,
// это не внутренняя ошибка сервиса.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: auth service returned %d", domain.ErrUnauthorized, resp.StatusCode)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, string(bodyBytes))
	default:
		return fmt.Errorf("%w: auth service returned non-200 status: %d, body: %s", domain.ErrBackend, resp.StatusCode, string(bodyBytes))
	}
}

func (c *Client) SendOTP(ctx context.Context, mobile string) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "AuthAPIClient",
		"method":    "SendOTP",
	})

	resp, err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/api/auth/otp/send", "", sendOTPRequest{Mobile: mobile})
	if err != nil {
		logger.Error("Failed to perform request to auth service", err, nil)
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		logger.Warn("Auth service refused to send code", port.Fields{"status_code": resp.StatusCode})
		return err
	}
	return nil
}

func (c *Client) VerifyOTP(ctx context.Context, mobile, code string) (*domain.Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/api/auth/otp/verify", "", verifyOTPRequest{Mobile: mobile, Code: code})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return decodeSession(resp.Body, "")
}

// Validate проверяет токен и возвращает сессию с данными пользователя.
func (c *Client) Validate(ctx context.Context, token string) (*domain.Session, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/api/auth/session", token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return decodeSession(resp.Body, token)
}

// decodeSession проверяет ответ по схеме и маппит его. fallbackToken используется,
// если сервис не вернул токен повторно.
func decodeSession(r io.Reader, fallbackToken string) (*domain.Session, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	var dto sessionResponse
	if fallbackToken != "" {
		if err := json.Unmarshal(body, &dto); err == nil && dto.Token == "" {
			dto.Token = fallbackToken
			body, _ = json.Marshal(dto)
		}
	}
	if err := contracts.ValidateResponse(contracts.AuthSession, body); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackend, err)
	}
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}

	return &domain.Session{
		Token: dto.Token,
		User: domain.User{
			ID:     dto.User.ID,
			Email:  dto.User.Email,
			Mobile: dto.User.Mobile,
			Name:   dto.User.Name,
		},
	}, nil
}
