// Package kiwi adapts the Tequila cash-fare aggregator to the flight
// provider contract.
package kiwi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/provider"
)

const defaultBaseURL = "https://api.tequila.kiwi.com"

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

// Client is the raw HTTP client for the Tequila API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Tequila API client.
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

// cabinCodes maps canonical cabin names onto Tequila's single-letter codes.
var cabinCodes = map[string]string{
	"economy":         "M",
	"premium_economy": "W",
	"business":        "C",
	"first":           "F",
}

// Search runs a one-way or round-trip fare search.
func (c *Client) Search(ctx context.Context, params domain.FlightSearchParams) (*searchResponse, error) {
	q := url.Values{}
	q.Set("fly_from", params.Origin)
	q.Set("fly_to", params.Destination)
	q.Set("date_from", vendorDate(params.DepartDate))
	q.Set("date_to", vendorDate(params.DepartDate))
	if params.ReturnDate != "" {
		q.Set("return_from", vendorDate(params.ReturnDate))
		q.Set("return_to", vendorDate(params.ReturnDate))
	}
	q.Set("adults", strconv.Itoa(max(params.Passengers.Adults, 1)))
	if params.Passengers.Children > 0 {
		q.Set("children", strconv.Itoa(params.Passengers.Children))
	}
	if params.Passengers.Infants > 0 {
		q.Set("infants", strconv.Itoa(params.Passengers.Infants))
	}
	if code, ok := cabinCodes[params.Cabin]; ok {
		q.Set("selected_cabins", code)
	}
	q.Set("curr", "USD")

	body, err := c.get(ctx, "/v2/search?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, domain.ErrInvalidResponse(fmt.Sprintf("unexpected search payload: %v", err))
	}
	if result.Data == nil {
		return nil, domain.ErrInvalidResponse("search payload missing data array")
	}
	return &result, nil
}

// Probe hits the locations endpoint as a lightweight health check.
func (c *Client) Probe(ctx context.Context) error {
	body, err := c.get(ctx, "/locations/query?term=LON&limit=1")
	if err != nil {
		return err
	}
	var result locationsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.ErrInvalidResponse(fmt.Sprintf("unexpected locations payload: %v", err))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, domain.ErrUnknown(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("apikey", c.apiKey)
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

// vendorDate converts an ISO date into Tequila's DD/MM/YYYY form. Strings the
// vendor format can't be derived from pass through untouched; the vendor
// rejects them with its own error.
func vendorDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
