package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *ProviderError
		wantCode   ErrorCode
		wantStatus int
		wantRetry  bool
	}{
		{"validation", ErrValidation("origin", "origin is required"), ErrorCodeValidation, 400, false},
		{"authentication", ErrAuthentication("bad key"), ErrorCodeAuthentication, 401, false},
		{"rate limit", ErrRateLimit("slow down", 30), ErrorCodeRateLimit, 429, true},
		{"http 500", ErrHTTP(503, "upstream down"), ErrorCodeHTTP, 503, true},
		{"http 404", ErrHTTP(404, "not found"), ErrorCodeHTTP, 404, false},
		{"invalid response", ErrInvalidResponse("not an array"), ErrorCodeInvalidResponse, 0, false},
		{"unknown", ErrUnknown("boom"), ErrorCodeUnknown, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.wantStatus)
			}
			if tt.err.Retryable != tt.wantRetry {
				t.Errorf("Retryable = %v, want %v", tt.err.Retryable, tt.wantRetry)
			}
		})
	}
}

func TestErrorCarriesDetails(t *testing.T) {
	if got := ErrValidation("departDate", "departDate is required").Field; got != "departDate" {
		t.Errorf("Field = %q, want departDate", got)
	}
	if got := ErrRateLimit("throttled", 90).RetryAfterSeconds; got != 90 {
		t.Errorf("RetryAfterSeconds = %d, want 90", got)
	}
}

func TestNormalize(t *testing.T) {
	orig := ErrRateLimit("throttled", 60)
	if got := Normalize(orig); got != orig {
		t.Error("Normalize should pass ProviderError through unchanged")
	}

	wrapped := fmt.Errorf("call failed: %w", orig)
	if got := Normalize(wrapped); got != orig {
		t.Error("Normalize should unwrap to the underlying ProviderError")
	}

	got := Normalize(errors.New("connection reset"))
	if got.Code != ErrorCodeUnknown {
		t.Errorf("Code = %s, want %s", got.Code, ErrorCodeUnknown)
	}
	if got.Retryable {
		t.Error("unknown errors must not be retryable")
	}
}

func TestErrorString(t *testing.T) {
	e := ErrHTTP(502, "bad gateway")
	want := "HTTP_ERROR (status 502): bad gateway"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}
