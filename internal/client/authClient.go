package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"habitflow-payments/internal/config"

	"github.com/google/uuid"
)

// ErrEmailExists signals that the auth service already holds an account for
// the email, even though no profile row was found.
var ErrEmailExists = errors.New("email already registered")

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type AuthClient interface {
	CreateUser(ctx context.Context, email, fullName string) (*AuthUser, error)
	ListUsers(ctx context.Context, page, perPage int) ([]*AuthUser, error)
}

type authClientImpl struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
}

func NewAuthClient(authCfg *config.Auth) AuthClient {
	return &authClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:    authCfg.BaseURL,
		serviceKey: authCfg.ServiceKey,
	}
}

func (c *authClientImpl) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
}

// CreateUser provisions an account with a random throwaway password. The user
// resets it through the normal recovery flow on first login.
func (c *authClientImpl) CreateUser(ctx context.Context, email, fullName string) (*AuthUser, error) {
	payload := map[string]interface{}{
		"email":         email,
		"password":      uuid.NewString(),
		"email_confirm": true,
		"user_metadata": map[string]string{
			"full_name": fullName,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/admin/users",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusConflict {
		return nil, ErrEmailExists
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("auth create user %d: %s", resp.StatusCode, string(b))
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}

	return &user, nil
}

func (c *authClientImpl) ListUsers(ctx context.Context, page, perPage int) ([]*AuthUser, error) {
	url := fmt.Sprintf("%s/admin/users?page=%d&per_page=%d", c.baseURL, page, perPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("auth list users %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Users []*AuthUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}

	return result.Users, nil
}
