// Package provider implements the per-vertical provider contracts. Each
// vertical wraps a vendor-specific searcher with the shared pipeline:
// validate, schedule through the rate limiter, execute, and fold the outcome
// into the response envelope. Search and HealthCheck never return a Go error.
package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/ratelimit"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
	defaultTimeout    = 30 * time.Second
)

// FlightSearcher is the vendor-specific surface a flight adapter implements.
type FlightSearcher interface {
	Name() string
	ExecuteSearch(ctx context.Context, params domain.FlightSearchParams) ([]domain.Flight, error)
	ExecuteHealthCheck(ctx context.Context) error
}

// HotelSearcher is the vendor-specific surface a hotel adapter implements.
type HotelSearcher interface {
	Name() string
	ExecuteSearch(ctx context.Context, params domain.HotelSearchParams) ([]domain.Hotel, error)
	ExecuteHealthCheck(ctx context.Context) error
}

// ActivitySearcher is the vendor-specific surface an activity adapter implements.
type ActivitySearcher interface {
	Name() string
	ExecuteSearch(ctx context.Context, params domain.ActivitySearchParams) ([]domain.Activity, error)
	ExecuteHealthCheck(ctx context.Context) error
}

// base carries the state shared by all vertical providers.
type base struct {
	cfg     domain.ProviderConfig
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

func newBase(cfg domain.ProviderConfig, logger *slog.Logger, withReservoir bool) (base, error) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	rpm := 0
	if cfg.RateLimit != nil {
		rpm = cfg.RateLimit.RequestsPerMinute
	}
	limiter, err := ratelimit.New(rpm, withReservoir)
	if err != nil {
		return base{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		cfg:     cfg,
		limiter: limiter,
		logger:  logger.With(slog.String("provider", cfg.Name), slog.String("vertical", string(cfg.Vertical))),
	}, nil
}

// Config returns the immutable configuration this provider was built from.
func (b *base) Config() domain.ProviderConfig { return b.cfg }

// validatable is implemented by every search parameter type.
type validatable interface {
	Validate() *domain.ProviderError
}

// runSearch is the shared template: validate, schedule, execute, envelope.
// attempts controls the retry loop; 1 means a single attempt.
func runSearch[P validatable, T any](
	ctx context.Context,
	b *base,
	params P,
	attempts int,
	exec func(context.Context, P) ([]T, error),
) domain.ProviderResponse[T] {
	if verr := params.Validate(); verr != nil {
		return domain.Fail[T](verr)
	}

	start := time.Now()
	var results []T
	err := b.limiter.Do(ctx, func(ctx context.Context) error {
		var execErr error
		results, execErr = executeWithRetry(ctx, b, params, attempts, exec)
		return execErr
	})
	if err != nil {
		perr := domain.Normalize(err)
		b.logger.Warn("search failed",
			slog.String("code", string(perr.Code)),
			slog.String("error", perr.Message),
		)
		return domain.Fail[T](perr)
	}
	return domain.OK(results, time.Since(start))
}

// executeWithRetry runs exec up to attempts times with exponential backoff
// between failures. Validation and authentication errors surface immediately;
// they never consume retry budget. Exhausting the budget returns the last
// error.
func executeWithRetry[P any, T any](
	ctx context.Context,
	b *base,
	params P,
	attempts int,
	exec func(context.Context, P) ([]T, error),
) ([]T, error) {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// retryDelay * 2^(attempt-1): first retry waits one delay.
			backoff := b.cfg.RetryDelay * (1 << (attempt - 1))
			b.logger.Debug("retrying search",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
			)
			timer := time.NewTimer(backoff)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			}
		}
		results, err := exec(ctx, params)
		if err == nil {
			return results, nil
		}
		lastErr = err
		switch domain.Normalize(err).Code {
		case domain.ErrorCodeValidation, domain.ErrorCodeAuthentication:
			return nil, err
		}
	}
	return nil, lastErr
}

// runHealthCheck times a vendor probe and folds the outcome into a snapshot.
func runHealthCheck(ctx context.Context, probe func(context.Context) error) domain.ProviderHealthCheck {
	start := time.Now()
	err := probe(ctx)
	check := domain.ProviderHealthCheck{
		LastChecked:  time.Now(),
		ResponseTime: time.Since(start),
	}
	if err != nil {
		check.Status = domain.HealthStatusDown
		check.Error = err.Error()
		return check
	}
	check.Status = domain.HealthStatusHealthy
	return check
}

// FlightProvider wraps a flight searcher with validation, rate limiting, and
// the flight vertical's retry policy.
type FlightProvider struct {
	base
	searcher FlightSearcher
}

// NewFlightProvider builds a flight provider. Flight limiters carry the token
// reservoir in addition to the dispatch gap.
func NewFlightProvider(cfg domain.ProviderConfig, searcher FlightSearcher, logger *slog.Logger) (*FlightProvider, error) {
	cfg.Vertical = domain.VerticalFlight
	b, err := newBase(cfg, logger, true)
	if err != nil {
		return nil, err
	}
	return &FlightProvider{base: b, searcher: searcher}, nil
}

func (p *FlightProvider) Name() string { return p.cfg.Name }

// Search runs a flight search. Transient failures are retried up to
// MaxRetries extra attempts with exponential backoff.
func (p *FlightProvider) Search(ctx context.Context, params domain.FlightSearchParams) domain.ProviderResponse[domain.Flight] {
	return runSearch(ctx, &p.base, params, p.cfg.MaxRetries+1, p.searcher.ExecuteSearch)
}

// HealthCheck probes the vendor and returns the snapshot.
func (p *FlightProvider) HealthCheck(ctx context.Context) domain.ProviderHealthCheck {
	return runHealthCheck(ctx, p.searcher.ExecuteHealthCheck)
}

// HotelProvider wraps a hotel searcher. Hotels run a single attempt per
// search; the vertical has no retry policy.
type HotelProvider struct {
	base
	searcher HotelSearcher
}

func NewHotelProvider(cfg domain.ProviderConfig, searcher HotelSearcher, logger *slog.Logger) (*HotelProvider, error) {
	cfg.Vertical = domain.VerticalHotel
	b, err := newBase(cfg, logger, true)
	if err != nil {
		return nil, err
	}
	return &HotelProvider{base: b, searcher: searcher}, nil
}

func (p *HotelProvider) Name() string { return p.cfg.Name }

func (p *HotelProvider) Search(ctx context.Context, params domain.HotelSearchParams) domain.ProviderResponse[domain.Hotel] {
	return runSearch(ctx, &p.base, params, 1, p.searcher.ExecuteSearch)
}

func (p *HotelProvider) HealthCheck(ctx context.Context) domain.ProviderHealthCheck {
	return runHealthCheck(ctx, p.searcher.ExecuteHealthCheck)
}

// ActivityProvider wraps an activity searcher. Single attempt per search, and
// its limiter runs without the reservoir: dispatch gap and concurrency cap
// only.
type ActivityProvider struct {
	base
	searcher ActivitySearcher
}

func NewActivityProvider(cfg domain.ProviderConfig, searcher ActivitySearcher, logger *slog.Logger) (*ActivityProvider, error) {
	cfg.Vertical = domain.VerticalActivity
	b, err := newBase(cfg, logger, false)
	if err != nil {
		return nil, err
	}
	return &ActivityProvider{base: b, searcher: searcher}, nil
}

func (p *ActivityProvider) Name() string { return p.cfg.Name }

func (p *ActivityProvider) Search(ctx context.Context, params domain.ActivitySearchParams) domain.ProviderResponse[domain.Activity] {
	return runSearch(ctx, &p.base, params, 1, p.searcher.ExecuteSearch)
}

func (p *ActivityProvider) HealthCheck(ctx context.Context) domain.ProviderHealthCheck {
	return runHealthCheck(ctx, p.searcher.ExecuteHealthCheck)
}
