package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"habitflow-payments/internal/config"
)

type MarketingContact struct {
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	City        string    `json:"city,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Source      string    `json:"source"`
	ProductName string    `json:"product_name"`
	Amount      int64     `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Tags        []string  `json:"tags"`
}

type MarketingClient interface {
	SyncContact(ctx context.Context, contact *MarketingContact) error
}

type marketingClientImpl struct {
	httpClient *http.Client
	syncURL    string
	serviceKey string
}

func NewMarketingClient(marketingCfg *config.Marketing) MarketingClient {
	return &marketingClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		syncURL:    marketingCfg.SyncURL,
		serviceKey: marketingCfg.ServiceKey,
	}
}

func (c *marketingClientImpl) SyncContact(ctx context.Context, contact *MarketingContact) error {
	body, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("marshal contact: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.syncURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("marketing sync %d: %s", resp.StatusCode, string(b))
	}

	return nil
}
