package kiwi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/testutil"
)

func searchParams() domain.FlightSearchParams {
	return domain.FlightSearchParams{
		Origin:      "SFO",
		Destination: "NRT",
		DepartDate:  "2026-11-03",
		Passengers:  domain.Passengers{Adults: 1},
	}
}

func TestSearchMapsRecordedPayload(t *testing.T) {
	rec, cleanup := testutil.NewVCRRecorder(t, "kiwi_search")
	defer cleanup()

	p, err := New(domain.ProviderConfig{APIKey: "test-key"}, nil, WithHTTPClient(testutil.VCRHTTPClient(rec)))
	if err != nil {
		t.Fatal(err)
	}

	resp := p.Search(context.Background(), searchParams())
	if !resp.Success {
		t.Fatalf("search failed: %+v", resp.Error)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d flights, want 2", len(resp.Data))
	}

	f := resp.Data[0]
	if f.ID != "0f9b0e2a4d7c" || f.Origin != "SFO" || f.Destination != "NRT" {
		t.Errorf("identity fields not preserved: %+v", f)
	}
	if f.Price != 612.48 || f.Currency != "USD" {
		t.Errorf("price = %v %s, want 612.48 USD", f.Price, f.Currency)
	}
	if f.Provider != ProviderName {
		t.Errorf("Provider = %q, want %q", f.Provider, ProviderName)
	}
	if len(f.PricingOptions) != 1 {
		t.Fatalf("got %d pricing options, want 1", len(f.PricingOptions))
	}
	opt := f.PricingOptions[0]
	if opt.Type != domain.PricingTypeCash {
		t.Errorf("option type = %s, want cash", opt.Type)
	}
	if opt.CashCurrency != f.Currency {
		t.Errorf("option currency %s does not match flight currency %s", opt.CashCurrency, f.Currency)
	}
	if opt.CashAmount != f.Price {
		t.Errorf("option amount %v does not match flight price %v", opt.CashAmount, f.Price)
	}

	// The second itinerary has a connection; segments map one to one.
	conn := resp.Data[1]
	if len(conn.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(conn.Segments))
	}
	if conn.Segments[1].Carrier != "NH" || conn.Segments[1].FlightNumber != "NH175" {
		t.Errorf("segment carrier mapping wrong: %+v", conn.Segments[1])
	}
	if conn.Segments[0].FareClass != "GAA2PLMN" {
		t.Errorf("fare class not copied: %+v", conn.Segments[0])
	}
}

func TestSearchErrorNormalization(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		header     map[string]string
		body       string
		wantCode   domain.ErrorCode
		wantAfter  int
	}{
		{"rate limited", 429, map[string]string{"Retry-After": "30"}, `{"error":"too many requests"}`, domain.ErrorCodeRateLimit, 30},
		{"rate limited no header", 429, nil, ``, domain.ErrorCodeRateLimit, 60},
		{"bad key", 401, nil, `{"error":"unauthorized"}`, domain.ErrorCodeAuthentication, 0},
		{"forbidden", 403, nil, ``, domain.ErrorCodeAuthentication, 0},
		{"server error", 500, nil, `oops`, domain.ErrorCodeHTTP, 0},
		{"malformed body", 200, nil, `{"currency":"USD","data":"not-an-array"}`, domain.ErrorCodeInvalidResponse, 0},
		{"missing data", 200, nil, `{"currency":"USD"}`, domain.ErrorCodeInvalidResponse, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := &Searcher{client: NewClient("k", time.Second, WithBaseURL(srv.URL))}
			_, err := s.ExecuteSearch(context.Background(), searchParams())
			if err == nil {
				t.Fatal("expected error")
			}
			perr := domain.Normalize(err)
			if perr.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", perr.Code, tt.wantCode)
			}
			if tt.wantAfter != 0 && perr.RetryAfterSeconds != tt.wantAfter {
				t.Errorf("RetryAfterSeconds = %d, want %d", perr.RetryAfterSeconds, tt.wantAfter)
			}
		})
	}
}

func TestSearchSendsVendorRequestShape(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"currency":"USD","data":[]}`))
	}))
	defer srv.Close()

	s := &Searcher{client: NewClient("secret", time.Second, WithBaseURL(srv.URL))}
	params := searchParams()
	params.ReturnDate = "2026-11-10"
	params.Cabin = "business"
	params.Passengers.Children = 1
	if _, err := s.ExecuteSearch(context.Background(), params); err != nil {
		t.Fatal(err)
	}

	if got.Header.Get("apikey") != "secret" {
		t.Error("apikey header not sent")
	}
	q := got.URL.Query()
	if q.Get("date_from") != "03/11/2026" {
		t.Errorf("date_from = %q, want vendor DD/MM/YYYY form", q.Get("date_from"))
	}
	if q.Get("return_from") != "10/11/2026" {
		t.Errorf("return_from = %q", q.Get("return_from"))
	}
	if q.Get("selected_cabins") != "C" {
		t.Errorf("selected_cabins = %q, want C", q.Get("selected_cabins"))
	}
	if q.Get("adults") != "1" || q.Get("children") != "1" {
		t.Errorf("passenger counts wrong: adults=%q children=%q", q.Get("adults"), q.Get("children"))
	}
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/locations/query" {
			t.Errorf("probe hit %s", r.URL.Path)
		}
		w.Write([]byte(`{"locations":[{"code":"LON"}]}`))
	}))
	defer srv.Close()

	s := &Searcher{client: NewClient("k", time.Second, WithBaseURL(srv.URL))}
	if err := s.ExecuteHealthCheck(context.Background()); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
}

func TestVendorDate(t *testing.T) {
	if got := vendorDate("2026-01-09"); got != "09/01/2026" {
		t.Errorf("vendorDate = %q, want 09/01/2026", got)
	}
	if got := vendorDate("not-a-date"); got != "not-a-date" {
		t.Errorf("unparseable dates should pass through, got %q", got)
	}
}
