// Package pointme adapts the points-redemption aggregator to the flight
// provider contract.
package pointme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/provider"
)

const defaultBaseURL = "https://api.point.me"

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

// Client is the raw HTTP client for the redemption API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a redemption API client.
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

// Search posts a redemption search for a route and date.
func (c *Client) Search(ctx context.Context, params domain.FlightSearchParams) (*searchResponse, error) {
	travelers := params.Passengers.Adults + params.Passengers.Children + params.Passengers.Infants
	if travelers == 0 {
		travelers = 1
	}
	payload := searchRequest{
		Origin:        params.Origin,
		Destination:   params.Destination,
		DepartureDate: params.DepartDate,
		ReturnDate:    params.ReturnDate,
		Cabin:         params.Cabin,
		Travelers:     travelers,
	}

	body, err := c.do(ctx, http.MethodPost, "/api/v1/search", payload)
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, domain.ErrInvalidResponse(fmt.Sprintf("unexpected search payload: %v", err))
	}
	if result.Results == nil {
		return nil, domain.ErrInvalidResponse("search payload missing results array")
	}
	return &result, nil
}

// Probe lists loyalty programs as a lightweight health check.
func (c *Client) Probe(ctx context.Context) error {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/programs", nil)
	if err != nil {
		return err
	}
	var result programsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.ErrInvalidResponse(fmt.Sprintf("unexpected programs payload: %v", err))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, domain.ErrUnknown(fmt.Sprintf("marshal request: %v", err))
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, domain.ErrUnknown(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

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
