// Package hotelbeds adapts the hotel availability vendor to the hotel
// provider contract.
package hotelbeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/provider"
)

// ProviderName is the vendor key this adapter registers under.
const ProviderName = "hotelbeds"

const defaultBaseURL = "https://api.hotelbeds.com"

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

// Client is the raw HTTP client for the hotel availability API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an availability API client.
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

type searchResponse struct {
	Hotels []rawHotel `json:"hotels"`
}

type rawHotel struct {
	Code     int     `json:"code"`
	Name     string  `json:"name"`
	Zone     string  `json:"zoneName"`
	MinRate  float64 `json:"minRate"`
	Currency string  `json:"currency"`
}

func (c *Client) search(ctx context.Context, params domain.HotelSearchParams) (*searchResponse, error) {
	q := url.Values{}
	q.Set("destination", params.Destination)
	q.Set("checkIn", params.CheckIn)
	q.Set("checkOut", params.CheckOut)
	q.Set("occupancy", strconv.Itoa(max(params.Guests, 1)))
	q.Set("rooms", strconv.Itoa(max(params.Rooms, 1)))

	body, err := c.get(ctx, "/hotel-api/1.0/hotels?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, domain.ErrInvalidResponse(fmt.Sprintf("unexpected availability payload: %v", err))
	}
	if result.Hotels == nil {
		return nil, domain.ErrInvalidResponse("availability payload missing hotels array")
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, domain.ErrUnknown(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

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
	return body, nil
}

// Searcher implements the hotel searcher contract.
type Searcher struct {
	client *Client
}

// New builds the hotelbeds hotel provider from configuration.
func New(cfg domain.ProviderConfig, logger *slog.Logger, opts ...ClientOption) (*provider.HotelProvider, error) {
	cfg.Name = ProviderName
	if cfg.BaseURL != "" {
		opts = append([]ClientOption{WithBaseURL(cfg.BaseURL)}, opts...)
	}
	s := &Searcher{client: NewClient(cfg.APIKey, cfg.Timeout, opts...)}
	return provider.NewHotelProvider(cfg, s, logger)
}

func (s *Searcher) Name() string { return ProviderName }

func (s *Searcher) ExecuteSearch(ctx context.Context, params domain.HotelSearchParams) ([]domain.Hotel, error) {
	resp, err := s.client.search(ctx, params)
	if err != nil {
		return nil, err
	}
	hotels := make([]domain.Hotel, 0, len(resp.Hotels))
	for _, raw := range resp.Hotels {
		currency := raw.Currency
		if currency == "" {
			currency = "EUR"
		}
		hotels = append(hotels, domain.Hotel{
			ID:            strconv.Itoa(raw.Code),
			Provider:      ProviderName,
			Name:          raw.Name,
			Location:      raw.Zone,
			PricePerNight: raw.MinRate,
			Currency:      currency,
		})
	}
	return hotels, nil
}

// ExecuteHealthCheck hits the API status endpoint.
func (s *Searcher) ExecuteHealthCheck(ctx context.Context) error {
	_, err := s.client.get(ctx, "/hotel-api/1.0/status")
	return err
}
