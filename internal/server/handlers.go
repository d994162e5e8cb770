package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/triporbit/triporbit/internal/cache"
	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/obs"
	"github.com/triporbit/triporbit/internal/registry"
)

// Caches holds the per-vertical search-result caches.
type Caches struct {
	Flights    *cache.Cache[domain.ProviderResponse[domain.Flight]]
	Hotels     *cache.Cache[domain.ProviderResponse[domain.Hotel]]
	Activities *cache.Cache[domain.ProviderResponse[domain.Activity]]
}

func NewCaches(size int, ttl time.Duration, metrics *obs.Metrics) *Caches {
	return &Caches{
		Flights:    cache.New[domain.ProviderResponse[domain.Flight]]("flight", size, ttl, metrics),
		Hotels:     cache.New[domain.ProviderResponse[domain.Hotel]]("hotel", size, ttl, metrics),
		Activities: cache.New[domain.ProviderResponse[domain.Activity]]("activity", size, ttl, metrics),
	}
}

// Handler exposes the registry over HTTP. It parses parameters and passes
// envelopes through verbatim; only infrastructure errors map to HTTP errors.
type Handler struct {
	registry *registry.Registry
	caches   *Caches
	metrics  *obs.Metrics
	logger   *slog.Logger
}

// NewHandler builds the HTTP handler set. caches and metrics may be nil.
func NewHandler(reg *registry.Registry, caches *Caches, metrics *obs.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{registry: reg, caches: caches, metrics: metrics, logger: logger}
}

// Mount attaches all routes to r.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/flights/search", h.searchFlights)
		r.Get("/flights/search/all", h.searchFlightsAll)
		r.Get("/hotels/search", h.searchHotels)
		r.Get("/hotels/search/all", h.searchHotelsAll)
		r.Get("/activities/search", h.searchActivities)
		r.Get("/activities/search/all", h.searchActivitiesAll)
		r.Get("/providers", h.listProviders)
		r.Get("/health/providers", h.providerHealth)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler())
	}
}

func (h *Handler) searchFlights(w http.ResponseWriter, r *http.Request) {
	params, err := flightParamsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	vendor := r.URL.Query().Get("provider")
	AddLogField(r.Context(), "provider", vendor)

	run := func(ctx context.Context) (domain.ProviderResponse[domain.Flight], error) {
		return h.registry.SearchFlights(ctx, params, vendor)
	}
	resp, err := cached(r.Context(), h.caches.flights(), cache.FlightKey(params, vendor), run)
	if err != nil {
		writeInfraError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) searchFlightsAll(w http.ResponseWriter, r *http.Request) {
	params, err := flightParamsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results := h.registry.SearchFlightsAcrossProviders(r.Context(), params)
	writeJSON(w, http.StatusOK, fanOutBody(results))
}

func (h *Handler) searchHotels(w http.ResponseWriter, r *http.Request) {
	params := hotelParamsFromQuery(r)
	vendor := r.URL.Query().Get("provider")
	AddLogField(r.Context(), "provider", vendor)

	run := func(ctx context.Context) (domain.ProviderResponse[domain.Hotel], error) {
		return h.registry.SearchHotels(ctx, params, vendor)
	}
	resp, err := cached(r.Context(), h.caches.hotels(), cache.HotelKey(params, vendor), run)
	if err != nil {
		writeInfraError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) searchHotelsAll(w http.ResponseWriter, r *http.Request) {
	results := h.registry.SearchHotelsAcrossProviders(r.Context(), hotelParamsFromQuery(r))
	writeJSON(w, http.StatusOK, fanOutBody(results))
}

func (h *Handler) searchActivities(w http.ResponseWriter, r *http.Request) {
	params := activityParamsFromQuery(r)
	vendor := r.URL.Query().Get("provider")
	AddLogField(r.Context(), "provider", vendor)

	run := func(ctx context.Context) (domain.ProviderResponse[domain.Activity], error) {
		return h.registry.SearchActivities(ctx, params, vendor)
	}
	resp, err := cached(r.Context(), h.caches.activities(), cache.ActivityKey(params, vendor), run)
	if err != nil {
		writeInfraError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) searchActivitiesAll(w http.ResponseWriter, r *http.Request) {
	results := h.registry.SearchActivitiesAcrossProviders(r.Context(), activityParamsFromQuery(r))
	writeJSON(w, http.StatusOK, fanOutBody(results))
}

func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	vertical := r.URL.Query().Get("vertical")
	verticals := []domain.Vertical{domain.VerticalFlight, domain.VerticalHotel, domain.VerticalActivity}
	if vertical != "" {
		verticals = []domain.Vertical{domain.Vertical(vertical)}
	}

	out := make(map[string][]string, len(verticals))
	for _, v := range verticals {
		names := h.registry.ListProviders(v)
		if names == nil {
			names = []string{}
		}
		out[string(v)] = names
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"providers": out})
}

func (h *Handler) providerHealth(w http.ResponseWriter, r *http.Request) {
	var health map[string]domain.ProviderHealthCheck
	if r.URL.Query().Get("refresh") == "true" {
		health = h.registry.CheckAllHealth(r.Context())
	} else {
		health = h.registry.HealthSnapshot()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"providers": health})
}

func (c *Caches) flights() *cache.Cache[domain.ProviderResponse[domain.Flight]] {
	if c == nil {
		return nil
	}
	return c.Flights
}

func (c *Caches) hotels() *cache.Cache[domain.ProviderResponse[domain.Hotel]] {
	if c == nil {
		return nil
	}
	return c.Hotels
}

func (c *Caches) activities() *cache.Cache[domain.ProviderResponse[domain.Activity]] {
	if c == nil {
		return nil
	}
	return c.Activities
}

// cached runs fn through the cache when one is configured.
func cached[T any](ctx context.Context, c *cache.Cache[T], key string, fn func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return fn(ctx)
	}
	return c.GetOrCompute(ctx, key, fn)
}

// fanOutEntry is the wire form of one fan-out outcome.
type fanOutEntry[T any] struct {
	Provider string                      `json:"provider"`
	Result   *domain.ProviderResponse[T] `json:"result,omitempty"`
	Error    string                      `json:"error,omitempty"`
}

func fanOutBody[T any](results []registry.Result[T]) map[string]interface{} {
	entries := make([]fanOutEntry[T], len(results))
	for i, res := range results {
		entries[i].Provider = res.Provider
		if res.Err != nil {
			entries[i].Error = res.Err.Error()
			continue
		}
		resp := res.Response
		entries[i].Result = &resp
	}
	return map[string]interface{}{"results": entries}
}

func flightParamsFromQuery(r *http.Request) (domain.FlightSearchParams, error) {
	q := r.URL.Query()
	adults, err := intQuery(q.Get("adults"), 1)
	if err != nil {
		return domain.FlightSearchParams{}, errors.New("adults must be an integer")
	}
	children, err := intQuery(q.Get("children"), 0)
	if err != nil {
		return domain.FlightSearchParams{}, errors.New("children must be an integer")
	}
	infants, err := intQuery(q.Get("infants"), 0)
	if err != nil {
		return domain.FlightSearchParams{}, errors.New("infants must be an integer")
	}
	return domain.FlightSearchParams{
		Origin:      q.Get("origin"),
		Destination: q.Get("destination"),
		DepartDate:  q.Get("depart_date"),
		ReturnDate:  q.Get("return_date"),
		Cabin:       q.Get("cabin"),
		Passengers:  domain.Passengers{Adults: adults, Children: children, Infants: infants},
	}, nil
}

func hotelParamsFromQuery(r *http.Request) domain.HotelSearchParams {
	q := r.URL.Query()
	guests, _ := intQuery(q.Get("guests"), 1)
	rooms, _ := intQuery(q.Get("rooms"), 1)
	return domain.HotelSearchParams{
		Destination: q.Get("destination"),
		CheckIn:     q.Get("check_in"),
		CheckOut:    q.Get("check_out"),
		Guests:      guests,
		Rooms:       rooms,
	}
}

func activityParamsFromQuery(r *http.Request) domain.ActivitySearchParams {
	q := r.URL.Query()
	return domain.ActivitySearchParams{
		Location: q.Get("location"),
		Date:     q.Get("date"),
		Category: q.Get("category"),
	}
}

func intQuery(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeInfraError maps registry infrastructure errors to HTTP. Provider
// failures never reach here; they travel inside the envelope.
func writeInfraError(w http.ResponseWriter, err error) {
	if errors.Is(err, registry.ErrNoProvider) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
