package provider

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
)

const defaultRetryAfterSeconds = 60

// NormalizeHTTPResponse maps a non-2xx vendor response onto the error
// taxonomy. Every adapter funnels its HTTP failures through here so the
// status-to-code mapping is identical across vendors.
func NormalizeHTTPResponse(status int, header http.Header, body []byte) *domain.ProviderError {
	switch {
	case status == http.StatusTooManyRequests:
		return domain.ErrRateLimit(fmt.Sprintf("vendor rate limit exceeded: %s", summarize(body)), retryAfterSeconds(header))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrAuthentication(fmt.Sprintf("vendor rejected credentials (status %d)", status)).WithStatusCode(status)
	default:
		return domain.ErrHTTP(status, summarize(body))
	}
}

// retryAfterSeconds parses the Retry-After header, accepting both the
// delta-seconds and HTTP-date forms. Missing or unparseable values fall back
// to 60 seconds.
func retryAfterSeconds(header http.Header) int {
	raw := header.Get("Retry-After")
	if raw == "" {
		return defaultRetryAfterSeconds
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && secs >= 0 {
		return secs
	}
	if at, err := http.ParseTime(raw); err == nil {
		if secs := int(time.Until(at).Seconds()); secs > 0 {
			return secs
		}
	}
	return defaultRetryAfterSeconds
}

// summarize keeps error messages readable when vendors return page-sized
// bodies.
func summarize(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty response body"
	}
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
