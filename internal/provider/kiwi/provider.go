package kiwi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/provider"
)

// ProviderName is the vendor key this adapter registers under.
const ProviderName = "kiwi"

// Searcher implements the flight searcher contract over the Tequila client.
type Searcher struct {
	client *Client
}

// New builds the kiwi flight provider from configuration.
func New(cfg domain.ProviderConfig, logger *slog.Logger, opts ...ClientOption) (*provider.FlightProvider, error) {
	cfg.Name = ProviderName
	if cfg.BaseURL != "" {
		opts = append([]ClientOption{WithBaseURL(cfg.BaseURL)}, opts...)
	}
	s := &Searcher{client: NewClient(cfg.APIKey, cfg.Timeout, opts...)}
	return provider.NewFlightProvider(cfg, s, logger)
}

func (s *Searcher) Name() string { return ProviderName }

// ExecuteSearch runs the vendor call and maps the payload into canonical
// flights.
func (s *Searcher) ExecuteSearch(ctx context.Context, params domain.FlightSearchParams) ([]domain.Flight, error) {
	resp, err := s.client.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return mapFlights(resp), nil
}

// ExecuteHealthCheck probes the locations endpoint.
func (s *Searcher) ExecuteHealthCheck(ctx context.Context) error {
	return s.client.Probe(ctx)
}

// mapFlights converts the raw Tequila payload into canonical flights. Cash
// fares produce a single cash pricing option; segments are copied one to one.
func mapFlights(resp *searchResponse) []domain.Flight {
	currency := resp.Currency
	if currency == "" {
		currency = "USD"
	}

	flights := make([]domain.Flight, 0, len(resp.Data))
	for _, raw := range resp.Data {
		segments := make([]domain.Segment, 0, len(raw.Route))
		for _, leg := range raw.Route {
			segments = append(segments, domain.Segment{
				Origin:        leg.FlyFrom,
				Destination:   leg.FlyTo,
				DepartureTime: leg.LocalDeparture,
				ArrivalTime:   leg.LocalArrival,
				Carrier:       leg.Airline,
				FlightNumber:  fmt.Sprintf("%s%d", leg.Airline, leg.FlightNo),
				Cabin:         leg.FareCategory,
				FareClass:     leg.FareBasis,
			})
		}

		airline := ""
		if len(raw.Airlines) > 0 {
			airline = raw.Airlines[0]
		}
		flightNumber := ""
		if len(segments) > 0 {
			flightNumber = segments[0].FlightNumber
		}

		flights = append(flights, domain.Flight{
			ID:            raw.ID,
			Provider:      ProviderName,
			Origin:        raw.FlyFrom,
			Destination:   raw.FlyTo,
			DepartureTime: raw.LocalDeparture,
			ArrivalTime:   raw.LocalArrival,
			Price:         raw.Price,
			Currency:      currency,
			Airline:       airline,
			FlightNumber:  flightNumber,
			BookingURL:    raw.DeepLink,
			Availability:  raw.Availability.Seats,
			Segments:      segments,
			PricingOptions: []domain.PricingOption{
				{
					Type:         domain.PricingTypeCash,
					CashAmount:   raw.Price,
					CashCurrency: currency,
					Provider:     ProviderName,
					BookingURL:   raw.DeepLink,
				},
			},
		})
	}
	return flights
}
