package hotelbeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
)

func TestSearchMapsAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Api-Key") != "k" {
			t.Error("api key header not sent")
		}
		q := r.URL.Query()
		if q.Get("destination") != "BCN" || q.Get("checkIn") != "2026-09-10" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"hotels":[{"code":8821,"name":"Hotel Arts","zoneName":"Port Olimpic","minRate":289.5,"currency":"EUR"}]}`))
	}))
	defer srv.Close()

	s := &Searcher{client: NewClient("k", time.Second, WithBaseURL(srv.URL))}
	hotels, err := s.ExecuteSearch(context.Background(), domain.HotelSearchParams{
		Destination: "BCN", CheckIn: "2026-09-10", CheckOut: "2026-09-13", Guests: 2, Rooms: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(hotels) != 1 {
		t.Fatalf("got %d hotels, want 1", len(hotels))
	}
	h := hotels[0]
	if h.ID != "8821" || h.Name != "Hotel Arts" || h.PricePerNight != 289.5 || h.Currency != "EUR" {
		t.Errorf("mapping wrong: %+v", h)
	}
	if h.Provider != ProviderName {
		t.Errorf("Provider = %q", h.Provider)
	}
}

func TestSearchRejectsMissingHotelsArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	s := &Searcher{client: NewClient("k", time.Second, WithBaseURL(srv.URL))}
	_, err := s.ExecuteSearch(context.Background(), domain.HotelSearchParams{
		Destination: "BCN", CheckIn: "2026-09-10", CheckOut: "2026-09-13",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := domain.Normalize(err).Code; got != domain.ErrorCodeInvalidResponse {
		t.Errorf("Code = %s, want INVALID_RESPONSE", got)
	}
}
