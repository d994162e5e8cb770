package domain

import "time"

// Vertical is a category of travel inventory with its own search shape.
type Vertical string

const (
	VerticalFlight   Vertical = "flight"
	VerticalHotel    Vertical = "hotel"
	VerticalActivity Vertical = "activity"
)

// RateLimitConfig bounds a provider's outbound throughput.
type RateLimitConfig struct {
	RequestsPerMinute int `koanf:"requests_per_minute" json:"requestsPerMinute"`
	RequestsPerHour   int `koanf:"requests_per_hour" json:"requestsPerHour"`
}

// ProviderConfig is the immutable configuration a provider instance is built
// from. It is owned exclusively by that instance for the process lifetime.
type ProviderConfig struct {
	Name       string
	Vertical   Vertical
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	RateLimit  *RateLimitConfig
}

// Passengers is the traveller count breakdown for a flight search.
type Passengers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

// FlightSearchParams describes a flight search. Dates are caller-supplied
// ISO-style strings; each adapter applies its vendor's date format.
type FlightSearchParams struct {
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	DepartDate  string     `json:"departDate"`
	ReturnDate  string     `json:"returnDate,omitempty"`
	Passengers  Passengers `json:"passengers"`
	Cabin       string     `json:"cabin,omitempty"`
}

// Validate checks required fields. It is the single validation point; adapters
// must not re-validate.
func (p FlightSearchParams) Validate() *ProviderError {
	switch {
	case p.Origin == "":
		return ErrValidation("origin", "origin is required")
	case p.Destination == "":
		return ErrValidation("destination", "destination is required")
	case p.DepartDate == "":
		return ErrValidation("departDate", "departDate is required")
	}
	return nil
}

// HotelSearchParams describes a hotel search.
type HotelSearchParams struct {
	Destination string `json:"destination"`
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
	Guests      int    `json:"guests"`
	Rooms       int    `json:"rooms"`
}

func (p HotelSearchParams) Validate() *ProviderError {
	switch {
	case p.Destination == "":
		return ErrValidation("destination", "destination is required")
	case p.CheckIn == "":
		return ErrValidation("checkIn", "checkIn is required")
	case p.CheckOut == "":
		return ErrValidation("checkOut", "checkOut is required")
	}
	return nil
}

// ActivitySearchParams describes an activity search.
type ActivitySearchParams struct {
	Location string `json:"location"`
	Date     string `json:"date,omitempty"`
	Category string `json:"category,omitempty"`
}

func (p ActivitySearchParams) Validate() *ProviderError {
	if p.Location == "" {
		return ErrValidation("location", "location is required")
	}
	return nil
}

// ResponseMetadata records when a search completed and how long it took.
type ResponseMetadata struct {
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// ProviderResponse is the discriminated envelope every provider call resolves
// to. Search never returns a Go error; failures are captured here.
type ProviderResponse[T any] struct {
	Success  bool              `json:"success"`
	Data     []T               `json:"data"`
	Error    *ProviderError    `json:"error,omitempty"`
	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// OK wraps successful results in the envelope.
func OK[T any](data []T, duration time.Duration) ProviderResponse[T] {
	return ProviderResponse[T]{
		Success: true,
		Data:    data,
		Metadata: &ResponseMetadata{
			Timestamp: time.Now(),
			Duration:  duration,
		},
	}
}

// Fail wraps a failure in the envelope, normalizing the error into the
// taxonomy first.
func Fail[T any](err error) ProviderResponse[T] {
	return ProviderResponse[T]{
		Success: false,
		Data:    []T{},
		Error:   Normalize(err),
	}
}

// HealthStatus is the coarse availability classification of a provider.
type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
)

// ProviderHealthCheck is the last-known health snapshot for one provider.
// Only the latest value is retained; no history is kept.
type ProviderHealthCheck struct {
	Status       HealthStatus  `json:"status"`
	LastChecked  time.Time     `json:"lastChecked"`
	ResponseTime time.Duration `json:"responseTime"`
	Error        string        `json:"error,omitempty"`
}
