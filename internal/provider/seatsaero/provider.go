package seatsaero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/provider"
)

// ProviderName is the vendor key this adapter registers under.
const ProviderName = "seatsaero"

// Buy-back heuristic for the derived points-plus-cash option: offset 40% of
// the miles at an assumed valuation of 1.3 cents per point.
const (
	offsetFraction = 0.40
	centsPerPoint  = 1.3
)

// Searcher implements the flight searcher contract over the partner client.
type Searcher struct {
	client *Client
}

// New builds the seatsaero flight provider from configuration.
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

// mapFlights converts raw award availability into canonical flights. Each
// result yields an award option for the full mileage cost plus, when the
// mileage is usable, an estimated points-plus-cash option from the buy-back
// heuristic. Price carries the cash-due portion of the award fare.
func mapFlights(resp *searchResponse) []domain.Flight {
	flights := make([]domain.Flight, 0, len(resp.Data))
	for _, raw := range resp.Data {
		currency := raw.TaxesCurrency
		if currency == "" {
			currency = "USD"
		}
		miles := int(raw.MileageCost)

		options := []domain.PricingOption{
			{
				Type:         domain.PricingTypeAward,
				CashAmount:   raw.TotalTaxes,
				CashCurrency: currency,
				Miles:        miles,
				Provider:     ProviderName,
				BookingURL:   raw.BookingURL,
				Description:  fmt.Sprintf("%s award, taxes and fees due in cash", raw.Source),
			},
		}
		if remaining, totalCash, ok := domain.PointsPlusCash(raw.MileageCost, raw.TotalTaxes, offsetFraction, centsPerPoint); ok {
			options = append(options, domain.PricingOption{
				Type:         domain.PricingTypePointsPlusCash,
				CashAmount:   totalCash,
				CashCurrency: currency,
				Miles:        remaining,
				Provider:     ProviderName,
				BookingURL:   raw.BookingURL,
				Description:  "estimated points plus cash via partial mileage buy-back",
				IsEstimated:  true,
			})
		}

		flights = append(flights, domain.Flight{
			ID:            raw.ID,
			Provider:      ProviderName,
			Origin:        raw.OriginAirport,
			Destination:   raw.DestinationAirport,
			DepartureTime: raw.Date,
			ArrivalTime:   raw.Date,
			Price:         raw.TotalTaxes,
			Currency:      currency,
			Airline:       raw.Airlines,
			FlightNumber:  raw.FlightNumbers,
			Cabin:         raw.Cabin,
			MilesRequired: miles,
			BookingURL:    raw.BookingURL,
			Availability:  raw.RemainingSeats,
			Taxes:         raw.TotalTaxes,
			Segments: []domain.Segment{
				{
					Origin:        raw.OriginAirport,
					Destination:   raw.DestinationAirport,
					DepartureTime: raw.Date,
					ArrivalTime:   raw.Date,
					Carrier:       raw.Airlines,
					Cabin:         raw.Cabin,
				},
			},
			PricingOptions: options,
		})
	}
	return flights
}
