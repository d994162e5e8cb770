package domain

import "math"

// PricingType distinguishes the payment modes a flight can be booked with.
type PricingType string

const (
	PricingTypeAward          PricingType = "award"
	PricingTypeCash           PricingType = "cash"
	PricingTypePointsPlusCash PricingType = "points_plus_cash"
)

// PricingOption is one way to pay for a flight. PricingOptions is the
// authoritative multi-modal price list; the Flight's Price and MilesRequired
// fields are legacy scalar projections of it.
type PricingOption struct {
	Type         PricingType `json:"type"`
	CashAmount   float64     `json:"cashAmount"`
	CashCurrency string      `json:"cashCurrency"`
	Miles        int         `json:"miles,omitempty"`
	Provider     string      `json:"provider"`
	BookingURL   string      `json:"bookingUrl,omitempty"`
	Description  string      `json:"description,omitempty"`
	IsEstimated  bool        `json:"isEstimated,omitempty"`
}

// Segment is one leg of a flight itinerary.
type Segment struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	Carrier       string `json:"carrier,omitempty"`
	FlightNumber  string `json:"flightNumber,omitempty"`
	Cabin         string `json:"cabin,omitempty"`
	FareClass     string `json:"fareClass,omitempty"`
}

// Flight is the canonical flight result shape handed downstream. When award
// pricing exists, Price still reflects the cash-due portion (0 when fully
// covered by miles).
type Flight struct {
	ID            string          `json:"id"`
	Provider      string          `json:"provider"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DepartureTime string          `json:"departureTime"`
	ArrivalTime   string          `json:"arrivalTime"`
	Price         float64         `json:"price"`
	Currency      string          `json:"currency"`
	Airline       string          `json:"airline,omitempty"`
	FlightNumber  string          `json:"flightNumber,omitempty"`
	Cabin         string          `json:"cabin,omitempty"`
	MilesRequired int             `json:"milesRequired,omitempty"`
	BookingURL    string          `json:"bookingUrl,omitempty"`
	Availability  int             `json:"availability,omitempty"`
	Taxes         float64         `json:"taxes,omitempty"`
	Fees          float64         `json:"fees,omitempty"`
	Segments      []Segment       `json:"segments"`
	PricingOptions []PricingOption `json:"pricingOptions"`
}

// PointsPlusCash derives a blended pricing option from an award price by
// buying back a fraction of the miles at an assumed valuation.
//
// offsetMiles   = round(miles * offsetFrac)
// remaining     = max(round(miles - offsetMiles), 0)
// cashFromMiles = round(offsetMiles * centsPerPoint) / 100
// totalCash     = round((cashDue + cashFromMiles) * 100) / 100
//
// The second return value is false when miles is not a positive finite
// number, in which case no option should be emitted.
func PointsPlusCash(miles float64, cashDue float64, offsetFrac, centsPerPoint float64) (remainingMiles int, totalCash float64, ok bool) {
	if miles <= 0 || math.IsInf(miles, 0) || math.IsNaN(miles) {
		return 0, 0, false
	}
	offsetMiles := math.Round(miles * offsetFrac)
	remaining := math.Round(miles - offsetMiles)
	if remaining < 0 {
		remaining = 0
	}
	cashFromMiles := math.Round(offsetMiles*centsPerPoint) / 100
	total := math.Round((cashDue+cashFromMiles)*100) / 100
	return int(remaining), total, true
}
