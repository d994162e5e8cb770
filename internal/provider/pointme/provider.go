package pointme

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/provider"
)

// ProviderName is the vendor key this adapter registers under.
const ProviderName = "pointme"

// Buy-back heuristic for the derived points-plus-cash option: offset 35% of
// the miles at an assumed valuation of 1.35 cents per point.
const (
	offsetFraction = 0.35
	centsPerPoint  = 1.35
)

// Searcher implements the flight searcher contract over the redemption client.
type Searcher struct {
	client *Client
}

// New builds the pointme flight provider from configuration.
func New(cfg domain.ProviderConfig, logger *slog.Logger, opts ...ClientOption) (*provider.FlightProvider, error) {
	cfg.Name = ProviderName
	if cfg.BaseURL != "" {
		opts = append([]ClientOption{WithBaseURL(cfg.BaseURL)}, opts...)
	}
	s := &Searcher{client: NewClient(cfg.APIKey, cfg.Timeout, opts...)}
	return provider.NewFlightProvider(cfg, s, logger)
}

func (s *Searcher) Name() string { return ProviderName }

func (s *Searcher) ExecuteSearch(ctx context.Context, params domain.FlightSearchParams) ([]domain.Flight, error) {
	resp, err := s.client.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return mapFlights(resp), nil
}

func (s *Searcher) ExecuteHealthCheck(ctx context.Context) error {
	return s.client.Probe(ctx)
}

// mapFlights converts raw redemptions into canonical flights: an award option
// per result plus the estimated points-plus-cash option where the mileage is
// usable.
func mapFlights(resp *searchResponse) []domain.Flight {
	flights := make([]domain.Flight, 0, len(resp.Results))
	for _, raw := range resp.Results {
		currency := raw.TaxesCurrency
		if currency == "" {
			currency = "USD"
		}
		miles := int(raw.Miles)

		options := []domain.PricingOption{
			{
				Type:         domain.PricingTypeAward,
				CashAmount:   raw.Taxes,
				CashCurrency: currency,
				Miles:        miles,
				Provider:     ProviderName,
				BookingURL:   raw.BookingLink,
				Description:  fmt.Sprintf("book through %s", raw.Program),
			},
		}
		if remaining, totalCash, ok := domain.PointsPlusCash(raw.Miles, raw.Taxes, offsetFraction, centsPerPoint); ok {
			options = append(options, domain.PricingOption{
				Type:         domain.PricingTypePointsPlusCash,
				CashAmount:   totalCash,
				CashCurrency: currency,
				Miles:        remaining,
				Provider:     ProviderName,
				BookingURL:   raw.BookingLink,
				Description:  "estimated points plus cash via partial mileage buy-back",
				IsEstimated:  true,
			})
		}

		flights = append(flights, domain.Flight{
			ID:            raw.ID,
			Provider:      ProviderName,
			Origin:        raw.Origin,
			Destination:   raw.Destination,
			DepartureTime: raw.DepartureTime,
			ArrivalTime:   raw.ArrivalTime,
			Price:         raw.Taxes,
			Currency:      currency,
			Airline:       raw.Airline,
			FlightNumber:  raw.FlightNumber,
			Cabin:         raw.Cabin,
			MilesRequired: miles,
			BookingURL:    raw.BookingLink,
			Availability:  raw.Seats,
			Taxes:         raw.Taxes,
			Segments: []domain.Segment{
				{
					Origin:        raw.Origin,
					Destination:   raw.Destination,
					DepartureTime: raw.DepartureTime,
					ArrivalTime:   raw.ArrivalTime,
					Carrier:       raw.Airline,
					FlightNumber:  raw.FlightNumber,
					Cabin:         raw.Cabin,
				},
			},
			PricingOptions: options,
		})
	}
	return flights
}
