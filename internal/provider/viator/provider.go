// Package viator adapts the activities vendor to the activity provider
// contract.
package viator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/provider"
)

// ProviderName is the vendor key this adapter registers under.
const ProviderName = "viator"

const defaultBaseURL = "https://api.viator.com"

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client is the raw HTTP client for the activities API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an activities API client.
func NewClient(apiKey string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Destination string `json:"destination"`
	StartDate   string `json:"startDate,omitempty"`
	Category    string `json:"category,omitempty"`
}

type searchResponse struct {
	Products []rawProduct `json:"products"`
}

type rawProduct struct {
	ProductCode string  `json:"productCode"`
	Title       string  `json:"title"`
	Destination string  `json:"primaryDestinationName"`
	Price       float64 `json:"fromPrice"`
	Currency    string  `json:"currencyCode"`
}

func (c *Client) search(ctx context.Context, params domain.ActivitySearchParams) (*searchResponse, error) {
	payload := searchRequest{
		Destination: params.Location,
		StartDate:   params.Date,
		Category:    params.Category,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.ErrUnknown(fmt.Sprintf("marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/partner/products/search", bytes.NewReader(encoded))
	if err != nil {
		return nil, domain.ErrUnknown(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("exp-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.ErrUnknown(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrUnknown(fmt.Sprintf("read response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, provider.NormalizeHTTPResponse(resp.StatusCode, resp.Header, body)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, domain.ErrInvalidResponse(fmt.Sprintf("unexpected products payload: %v", err))
	}
	if result.Products == nil {
		return nil, domain.ErrInvalidResponse("products payload missing products array")
	}
	return &result, nil
}

func (c *Client) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/partner/health", nil)
	if err != nil {
		return domain.ErrUnknown(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("exp-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ErrUnknown(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return provider.NormalizeHTTPResponse(resp.StatusCode, resp.Header, body)
	}
	return nil
}

// Searcher implements the activity searcher contract.
type Searcher struct {
	client *Client
}

// New builds the viator activity provider from configuration.
func New(cfg domain.ProviderConfig, logger *slog.Logger, opts ...ClientOption) (*provider.ActivityProvider, error) {
	cfg.Name = ProviderName
	if cfg.BaseURL != "" {
		opts = append([]ClientOption{WithBaseURL(cfg.BaseURL)}, opts...)
	}
	s := &Searcher{client: NewClient(cfg.APIKey, cfg.Timeout, opts...)}
	return provider.NewActivityProvider(cfg, s, logger)
}

func (s *Searcher) Name() string { return ProviderName }

func (s *Searcher) ExecuteSearch(ctx context.Context, params domain.ActivitySearchParams) ([]domain.Activity, error) {
	resp, err := s.client.search(ctx, params)
	if err != nil {
		return nil, err
	}
	activities := make([]domain.Activity, 0, len(resp.Products))
	for _, raw := range resp.Products {
		currency := raw.Currency
		if currency == "" {
			currency = "USD"
		}
		activities = append(activities, domain.Activity{
			ID:       raw.ProductCode,
			Provider: ProviderName,
			Title:    raw.Title,
			Location: raw.Destination,
			Price:    raw.Price,
			Currency: currency,
		})
	}
	return activities, nil
}

func (s *Searcher) ExecuteHealthCheck(ctx context.Context) error {
	return s.client.probe(ctx)
}
