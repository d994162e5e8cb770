// Package seatsaero adapts the award-availability aggregator to the flight
// provider contract.
package seatsaero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/provider"
)

const defaultBaseURL = "https://seats.aero"

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

// Client is the raw HTTP client for the partner API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a partner API client.
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

// cabinCodes maps canonical cabin names onto the partner API's codes.
var cabinCodes = map[string]string{
	"economy":         "economy",
	"premium_economy": "premium",
	"business":        "business",
	"first":           "first",
}

// Search queries award availability for a route and date.
func (c *Client) Search(ctx context.Context, params domain.FlightSearchParams) (*searchResponse, error) {
	q := url.Values{}
	q.Set("origin_airport", params.Origin)
	q.Set("destination_airport", params.Destination)
	q.Set("start_date", params.DepartDate)
	q.Set("end_date", params.DepartDate)
	if code, ok := cabinCodes[params.Cabin]; ok {
		q.Set("cabin", code)
	}

	body, err := c.get(ctx, "/partners/search?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, domain.ErrInvalidResponse(fmt.Sprintf("unexpected search payload: %v", err))
	}
	if result.Data == nil {
		return nil, domain.ErrInvalidResponse("search payload missing availability array")
	}
	return &result, nil
}

// Probe hits the routes endpoint as a lightweight health check.
func (c *Client) Probe(ctx context.Context) error {
	body, err := c.get(ctx, "/partners/routes")
	if err != nil {
		return err
	}
	var result routesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.ErrInvalidResponse(fmt.Sprintf("unexpected routes payload: %v", err))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, domain.ErrUnknown(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Partner-Authorization", c.apiKey)
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
