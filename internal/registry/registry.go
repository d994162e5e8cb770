// Package registry is the process-wide directory of provider instances. It
// coordinates single-provider search, fan-out search with per-provider
// failure isolation, and the periodic health-check loop.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/obs"
)

// ErrNoProvider is wrapped by the per-vertical "no provider available"
// errors. It marks infrastructure misconfiguration, not a vendor failure,
// and is the one case surfaced as a returned error instead of an envelope.
var ErrNoProvider = errors.New("no provider available")

// FlightSearchProvider is the registry's view of a flight provider.
type FlightSearchProvider interface {
	Name() string
	Search(ctx context.Context, params domain.FlightSearchParams) domain.ProviderResponse[domain.Flight]
	HealthCheck(ctx context.Context) domain.ProviderHealthCheck
}

// HotelSearchProvider is the registry's view of a hotel provider.
type HotelSearchProvider interface {
	Name() string
	Search(ctx context.Context, params domain.HotelSearchParams) domain.ProviderResponse[domain.Hotel]
	HealthCheck(ctx context.Context) domain.ProviderHealthCheck
}

// ActivitySearchProvider is the registry's view of an activity provider.
type ActivitySearchProvider interface {
	Name() string
	Search(ctx context.Context, params domain.ActivitySearchParams) domain.ProviderResponse[domain.Activity]
	HealthCheck(ctx context.Context) domain.ProviderHealthCheck
}

// Result pairs one provider's fan-out outcome with its vendor name. Err is
// only set when the provider escaped its own never-fail contract by
// panicking; every other failure arrives inside Response.
type Result[T any] struct {
	Provider string                     `json:"provider"`
	Response domain.ProviderResponse[T] `json:"result"`
	Err      error                      `json:"-"`
}

// Registry coordinates all registered providers. Registration is expected at
// startup; the maps are read-mostly afterwards and guarded for the health
// loop's sake.
type Registry struct {
	mu         sync.RWMutex
	flights    map[string]FlightSearchProvider
	hotels     map[string]HotelSearchProvider
	activities map[string]ActivitySearchProvider

	healthMu sync.RWMutex
	health   map[string]domain.ProviderHealthCheck

	loopMu   sync.Mutex
	loopStop chan struct{}

	logger  *slog.Logger
	metrics *obs.Metrics
}

// New creates an empty registry. A nil metrics is tolerated and disables
// instrumentation.
func New(logger *slog.Logger, metrics *obs.Metrics) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		flights:    make(map[string]FlightSearchProvider),
		hotels:     make(map[string]HotelSearchProvider),
		activities: make(map[string]ActivitySearchProvider),
		health:     make(map[string]domain.ProviderHealthCheck),
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterFlightProvider stores a flight provider under its vendor name.
// Re-registering a name replaces the prior instance.
func (r *Registry) RegisterFlightProvider(name string, p FlightSearchProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flights[name] = p
	r.logger.Info("provider registered", slog.String("vertical", "flight"), slog.String("provider", name))
}

// RegisterHotelProvider stores a hotel provider under its vendor name.
func (r *Registry) RegisterHotelProvider(name string, p HotelSearchProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hotels[name] = p
	r.logger.Info("provider registered", slog.String("vertical", "hotel"), slog.String("provider", name))
}

// RegisterActivityProvider stores an activity provider under its vendor name.
func (r *Registry) RegisterActivityProvider(name string, p ActivitySearchProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities[name] = p
	r.logger.Info("provider registered", slog.String("vertical", "activity"), slog.String("provider", name))
}

// ListProviders returns the registered vendor names for a vertical, sorted.
func (r *Registry) ListProviders(vertical domain.Vertical) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	switch vertical {
	case domain.VerticalFlight:
		names = mapKeys(r.flights)
	case domain.VerticalHotel:
		names = mapKeys(r.hotels)
	case domain.VerticalActivity:
		names = mapKeys(r.activities)
	}
	sort.Strings(names)
	return names
}

// SearchFlights runs a search against one flight provider: the named vendor,
// or the first registered one when vendor is empty.
func (r *Registry) SearchFlights(ctx context.Context, params domain.FlightSearchParams, vendor string) (domain.ProviderResponse[domain.Flight], error) {
	p, err := pick(r, r.flightsSnapshot, vendor, "flight")
	if err != nil {
		return domain.ProviderResponse[domain.Flight]{}, err
	}
	return observeWith(r, "flight", p.Name(), func() domain.ProviderResponse[domain.Flight] {
		return p.Search(ctx, params)
	}), nil
}

// SearchHotels runs a search against one hotel provider.
func (r *Registry) SearchHotels(ctx context.Context, params domain.HotelSearchParams, vendor string) (domain.ProviderResponse[domain.Hotel], error) {
	p, err := pick(r, r.hotelsSnapshot, vendor, "hotel")
	if err != nil {
		return domain.ProviderResponse[domain.Hotel]{}, err
	}
	return observeWith(r, "hotel", p.Name(), func() domain.ProviderResponse[domain.Hotel] {
		return p.Search(ctx, params)
	}), nil
}

// SearchActivities runs a search against one activity provider.
func (r *Registry) SearchActivities(ctx context.Context, params domain.ActivitySearchParams, vendor string) (domain.ProviderResponse[domain.Activity], error) {
	p, err := pick(r, r.activitiesSnapshot, vendor, "activity")
	if err != nil {
		return domain.ProviderResponse[domain.Activity]{}, err
	}
	return observeWith(r, "activity", p.Name(), func() domain.ProviderResponse[domain.Activity] {
		return p.Search(ctx, params)
	}), nil
}

// SearchFlightsAcrossProviders fans the search out to every registered
// flight provider concurrently. Every provider yields exactly one entry, in
// sorted vendor-name order, regardless of individual failures.
func (r *Registry) SearchFlightsAcrossProviders(ctx context.Context, params domain.FlightSearchParams) []Result[domain.Flight] {
	providers := r.flightsSnapshot()
	return fanOut(ctx, r, "flight", sortedKeys(providers), func(ctx context.Context, name string) domain.ProviderResponse[domain.Flight] {
		return providers[name].Search(ctx, params)
	})
}

// SearchHotelsAcrossProviders fans the search out to every hotel provider.
func (r *Registry) SearchHotelsAcrossProviders(ctx context.Context, params domain.HotelSearchParams) []Result[domain.Hotel] {
	providers := r.hotelsSnapshot()
	return fanOut(ctx, r, "hotel", sortedKeys(providers), func(ctx context.Context, name string) domain.ProviderResponse[domain.Hotel] {
		return providers[name].Search(ctx, params)
	})
}

// SearchActivitiesAcrossProviders fans the search out to every activity provider.
func (r *Registry) SearchActivitiesAcrossProviders(ctx context.Context, params domain.ActivitySearchParams) []Result[domain.Activity] {
	providers := r.activitiesSnapshot()
	return fanOut(ctx, r, "activity", sortedKeys(providers), func(ctx context.Context, name string) domain.ProviderResponse[domain.Activity] {
		return providers[name].Search(ctx, params)
	})
}

// healthChecker is the probe surface common to all verticals.
type healthChecker interface {
	HealthCheck(ctx context.Context) domain.ProviderHealthCheck
}

// CheckAllHealth probes every registered provider across all verticals
// concurrently, refreshes the last-known health map, and returns a copy of
// it. A panicking probe is tolerated; that provider's entry is simply left
// at its previous value for the round.
func (r *Registry) CheckAllHealth(ctx context.Context) map[string]domain.ProviderHealthCheck {
	type probe struct {
		key      string
		vertical string
		name     string
		target   healthChecker
	}

	r.mu.RLock()
	var probes []probe
	for name, p := range r.flights {
		probes = append(probes, probe{"flight:" + name, "flight", name, p})
	}
	for name, p := range r.hotels {
		probes = append(probes, probe{"hotel:" + name, "hotel", name, p})
	}
	for name, p := range r.activities {
		probes = append(probes, probe{"activity:" + name, "activity", name, p})
	}
	r.mu.RUnlock()

	var wg sync.WaitGroup
	results := make(chan struct {
		probe
		check domain.ProviderHealthCheck
		ok    bool
	}, len(probes))

	for _, pr := range probes {
		wg.Add(1)
		go func(pr probe) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("health probe panicked",
						slog.String("provider", pr.key),
						slog.Any("panic", rec),
					)
					results <- struct {
						probe
						check domain.ProviderHealthCheck
						ok    bool
					}{pr, domain.ProviderHealthCheck{}, false}
				}
			}()
			check := pr.target.HealthCheck(ctx)
			results <- struct {
				probe
				check domain.ProviderHealthCheck
				ok    bool
			}{pr, check, true}
		}(pr)
	}
	wg.Wait()
	close(results)

	r.healthMu.Lock()
	for res := range results {
		if !res.ok {
			continue
		}
		r.health[res.key] = res.check
		r.metrics.ObserveHealth(res.vertical, res.name, res.check.Status == domain.HealthStatusHealthy)
	}
	snapshot := make(map[string]domain.ProviderHealthCheck, len(r.health))
	for k, v := range r.health {
		snapshot[k] = v
	}
	r.healthMu.Unlock()
	return snapshot
}

// HealthSnapshot returns a copy of the last-known health map without probing.
func (r *Registry) HealthSnapshot() map[string]domain.ProviderHealthCheck {
	r.healthMu.RLock()
	defer r.healthMu.RUnlock()
	snapshot := make(map[string]domain.ProviderHealthCheck, len(r.health))
	for k, v := range r.health {
		snapshot[k] = v
	}
	return snapshot
}

// StartHealthCheckLoop begins periodic health probing. Calling it while a
// loop is already running is a no-op; there is never more than one timer.
func (r *Registry) StartHealthCheckLoop(interval time.Duration) {
	r.loopMu.Lock()
	defer r.loopMu.Unlock()
	if r.loopStop != nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	stop := make(chan struct{})
	r.loopStop = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.CheckAllHealth(context.Background())
			case <-stop:
				return
			}
		}
	}()
	r.logger.Info("health check loop started", slog.Duration("interval", interval))
}

// StopHealthCheckLoop stops the periodic probing. Safe to call when no loop
// is running.
func (r *Registry) StopHealthCheckLoop() {
	r.loopMu.Lock()
	defer r.loopMu.Unlock()
	if r.loopStop == nil {
		return
	}
	close(r.loopStop)
	r.loopStop = nil
	r.logger.Info("health check loop stopped")
}

func (r *Registry) flightsSnapshot() map[string]FlightSearchProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]FlightSearchProvider, len(r.flights))
	for k, v := range r.flights {
		out[k] = v
	}
	return out
}

func (r *Registry) hotelsSnapshot() map[string]HotelSearchProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]HotelSearchProvider, len(r.hotels))
	for k, v := range r.hotels {
		out[k] = v
	}
	return out
}

func (r *Registry) activitiesSnapshot() map[string]ActivitySearchProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]ActivitySearchProvider, len(r.activities))
	for k, v := range r.activities {
		out[k] = v
	}
	return out
}

// pick resolves the target provider for a single-vendor search.
func pick[P any](r *Registry, snapshot func() map[string]P, vendor, vertical string) (P, error) {
	providers := snapshot()
	var zero P
	if len(providers) == 0 {
		return zero, fmt.Errorf("no %s provider available: %w", vertical, ErrNoProvider)
	}
	if vendor == "" {
		vendor = sortedKeys(providers)[0]
	}
	p, ok := providers[vendor]
	if !ok {
		return zero, fmt.Errorf("no %s provider available: %q not registered: %w", vertical, vendor, ErrNoProvider)
	}
	return p, nil
}

// observeWith wraps a provider call with latency and failure instrumentation.
func observeWith[T any](r *Registry, vertical, name string, call func() domain.ProviderResponse[T]) domain.ProviderResponse[T] {
	start := time.Now()
	resp := call()
	r.metrics.ObserveSearch(vertical, name, time.Since(start).Seconds(), !resp.Success)
	return resp
}

// fanOut issues one goroutine per provider and collects every outcome over a
// buffered channel. A panic in one provider becomes that provider's Err
// entry and never disturbs its siblings. Entries come back in the order of
// names.
func fanOut[T any](ctx context.Context, r *Registry, vertical string, names []string, call func(context.Context, string) domain.ProviderResponse[T]) []Result[T] {
	type indexed struct {
		i int
		r Result[T]
	}
	ch := make(chan indexed, len(names))
	var wg sync.WaitGroup

	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("provider panicked during fan-out",
						slog.String("vertical", vertical),
						slog.String("provider", name),
						slog.Any("panic", rec),
					)
					ch <- indexed{i, Result[T]{Provider: name, Err: fmt.Errorf("provider %s panicked: %v", name, rec)}}
				}
			}()
			resp := observeWith(r, vertical, name, func() domain.ProviderResponse[T] {
				return call(ctx, name)
			})
			ch <- indexed{i, Result[T]{Provider: name, Response: resp}}
		}(i, name)
	}
	wg.Wait()
	close(ch)

	results := make([]Result[T], len(names))
	for item := range ch {
		results[item.i] = item.r
	}
	return results
}

func mapKeys[P any](m map[string]P) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func sortedKeys[P any](m map[string]P) []string {
	keys := mapKeys(m)
	sort.Strings(keys)
	return keys
}
