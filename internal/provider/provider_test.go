package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
)

// stubFlightSearcher scripts a sequence of outcomes for ExecuteSearch.
type stubFlightSearcher struct {
	name     string
	calls    int
	outcomes []error
	flights  []domain.Flight
	probeErr error
}

func (s *stubFlightSearcher) Name() string { return s.name }

func (s *stubFlightSearcher) ExecuteSearch(ctx context.Context, params domain.FlightSearchParams) ([]domain.Flight, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.outcomes) && s.outcomes[idx] != nil {
		return nil, s.outcomes[idx]
	}
	return s.flights, nil
}

func (s *stubFlightSearcher) ExecuteHealthCheck(ctx context.Context) error { return s.probeErr }

func validFlightParams() domain.FlightSearchParams {
	return domain.FlightSearchParams{
		Origin:      "SFO",
		Destination: "NRT",
		DepartDate:  "2026-11-03",
		Passengers:  domain.Passengers{Adults: 1},
	}
}

func newTestFlightProvider(t *testing.T, searcher FlightSearcher, cfg domain.ProviderConfig) *FlightProvider {
	t.Helper()
	if cfg.Name == "" {
		cfg.Name = "stub"
	}
	p, err := NewFlightProvider(cfg, searcher, nil)
	if err != nil {
		t.Fatalf("NewFlightProvider: %v", err)
	}
	return p
}

func TestFlightSearchValidationShortCircuits(t *testing.T) {
	stub := &stubFlightSearcher{name: "stub"}
	p := newTestFlightProvider(t, stub, domain.ProviderConfig{})

	resp := p.Search(context.Background(), domain.FlightSearchParams{Destination: "NRT", DepartDate: "2026-11-03"})
	if resp.Success {
		t.Fatal("expected failure for missing origin")
	}
	if resp.Error.Code != domain.ErrorCodeValidation {
		t.Errorf("Code = %s, want VALIDATION_ERROR", resp.Error.Code)
	}
	if stub.calls != 0 {
		t.Errorf("searcher called %d times, want 0: validation must precede any vendor call", stub.calls)
	}
}

func TestFlightSearchRetriesUntilSuccess(t *testing.T) {
	transient := domain.ErrHTTP(503, "flaky upstream")
	stub := &stubFlightSearcher{
		name:     "stub",
		outcomes: []error{transient, transient, transient, nil},
		flights:  []domain.Flight{{ID: "f1"}},
	}
	p := newTestFlightProvider(t, stub, domain.ProviderConfig{
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})

	start := time.Now()
	resp := p.Search(context.Background(), validFlightParams())
	if !resp.Success {
		t.Fatalf("expected success after retries, got %+v", resp.Error)
	}
	if stub.calls != 4 {
		t.Errorf("attempts = %d, want maxRetries+1 = 4", stub.calls)
	}
	// Backoffs: 1ms + 2ms + 4ms.
	if elapsed := time.Since(start); elapsed < 7*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 7ms of exponential backoff", elapsed)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "f1" {
		t.Errorf("Data = %+v, want the stub flight", resp.Data)
	}
}

func TestFlightSearchExhaustsRetryBudget(t *testing.T) {
	transient := domain.ErrHTTP(500, "still broken")
	stub := &stubFlightSearcher{
		name:     "stub",
		outcomes: []error{transient, transient, transient},
	}
	p := newTestFlightProvider(t, stub, domain.ProviderConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})

	resp := p.Search(context.Background(), validFlightParams())
	if resp.Success {
		t.Fatal("expected failure after exhausting retries")
	}
	if stub.calls != 3 {
		t.Errorf("attempts = %d, want 3", stub.calls)
	}
	if resp.Error.Code != domain.ErrorCodeHTTP {
		t.Errorf("Code = %s, want the last error surfaced", resp.Error.Code)
	}
}

func TestFlightSearchDoesNotRetryAuthErrors(t *testing.T) {
	stub := &stubFlightSearcher{
		name:     "stub",
		outcomes: []error{domain.ErrAuthentication("key revoked")},
	}
	p := newTestFlightProvider(t, stub, domain.ProviderConfig{
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})

	resp := p.Search(context.Background(), validFlightParams())
	if resp.Success {
		t.Fatal("expected failure")
	}
	if stub.calls != 1 {
		t.Errorf("attempts = %d, want 1: auth errors must not consume retry budget", stub.calls)
	}
	if resp.Error.Code != domain.ErrorCodeAuthentication {
		t.Errorf("Code = %s, want AUTHENTICATION_ERROR", resp.Error.Code)
	}
}

func TestFlightSearchNormalizesArbitraryErrors(t *testing.T) {
	stub := &stubFlightSearcher{
		name:     "stub",
		outcomes: []error{errors.New("tcp reset"), errors.New("tcp reset"), errors.New("tcp reset"), errors.New("tcp reset")},
	}
	p := newTestFlightProvider(t, stub, domain.ProviderConfig{MaxRetries: 3, RetryDelay: time.Millisecond})

	resp := p.Search(context.Background(), validFlightParams())
	if resp.Success {
		t.Fatal("expected failure")
	}
	if resp.Error.Code != domain.ErrorCodeUnknown {
		t.Errorf("Code = %s, want UNKNOWN_ERROR", resp.Error.Code)
	}
}

type stubHotelSearcher struct {
	calls int
	err   error
}

func (s *stubHotelSearcher) Name() string { return "stubhotel" }
func (s *stubHotelSearcher) ExecuteSearch(ctx context.Context, params domain.HotelSearchParams) ([]domain.Hotel, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Hotel{{ID: "h1"}}, nil
}
func (s *stubHotelSearcher) ExecuteHealthCheck(ctx context.Context) error { return nil }

func TestHotelSearchSingleAttempt(t *testing.T) {
	stub := &stubHotelSearcher{err: domain.ErrHTTP(500, "transient")}
	p, err := NewHotelProvider(domain.ProviderConfig{Name: "stubhotel", MaxRetries: 3, RetryDelay: time.Millisecond}, stub, nil)
	if err != nil {
		t.Fatal(err)
	}

	resp := p.Search(context.Background(), domain.HotelSearchParams{Destination: "Kyoto", CheckIn: "2026-11-03", CheckOut: "2026-11-07"})
	if resp.Success {
		t.Fatal("expected failure")
	}
	if stub.calls != 1 {
		t.Errorf("attempts = %d, want 1: the hotel vertical does not retry", stub.calls)
	}
}

type stubActivitySearcher struct{ probeErr error }

func (s *stubActivitySearcher) Name() string { return "stubact" }
func (s *stubActivitySearcher) ExecuteSearch(ctx context.Context, params domain.ActivitySearchParams) ([]domain.Activity, error) {
	return []domain.Activity{{ID: "a1", Title: "food tour"}}, nil
}
func (s *stubActivitySearcher) ExecuteHealthCheck(ctx context.Context) error { return s.probeErr }

func TestActivitySearchSuccess(t *testing.T) {
	p, err := NewActivityProvider(domain.ProviderConfig{Name: "stubact"}, &stubActivitySearcher{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp := p.Search(context.Background(), domain.ActivitySearchParams{Location: "Lisbon"})
	if !resp.Success {
		t.Fatalf("unexpected failure: %+v", resp.Error)
	}
	if len(resp.Data) != 1 {
		t.Errorf("Data length = %d, want 1", len(resp.Data))
	}
}

func TestHealthCheckNeverErrors(t *testing.T) {
	healthy, err := NewActivityProvider(domain.ProviderConfig{Name: "up"}, &stubActivitySearcher{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	check := healthy.HealthCheck(context.Background())
	if check.Status != domain.HealthStatusHealthy {
		t.Errorf("Status = %s, want healthy", check.Status)
	}
	if check.LastChecked.IsZero() {
		t.Error("LastChecked should be set")
	}

	down, err := NewActivityProvider(domain.ProviderConfig{Name: "down"}, &stubActivitySearcher{probeErr: errors.New("probe timeout")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	check = down.HealthCheck(context.Background())
	if check.Status != domain.HealthStatusDown {
		t.Errorf("Status = %s, want down", check.Status)
	}
	if check.Error != "probe timeout" {
		t.Errorf("Error = %q, want the probe error message", check.Error)
	}
}

func TestProviderConfigDefaults(t *testing.T) {
	p := newTestFlightProvider(t, &stubFlightSearcher{name: "stub"}, domain.ProviderConfig{})
	cfg := p.Config()
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != time.Second {
		t.Errorf("RetryDelay = %v, want default 1s", cfg.RetryDelay)
	}
	if cfg.Vertical != domain.VerticalFlight {
		t.Errorf("Vertical = %s, want flight", cfg.Vertical)
	}
}
