package seatsaero

// searchResponse is the raw partner-search payload shape.
type searchResponse struct {
	Data  []rawAvailability `json:"data"`
	Count int               `json:"count"`
}

type rawAvailability struct {
	ID                 string  `json:"ID"`
	OriginAirport      string  `json:"OriginAirport"`
	DestinationAirport string  `json:"DestinationAirport"`
	Date               string  `json:"Date"`
	Source             string  `json:"Source"`
	Cabin              string  `json:"Cabin"`
	MileageCost        float64 `json:"MileageCost"`
	TotalTaxes         float64 `json:"TotalTaxes"`
	TaxesCurrency      string  `json:"TaxesCurrency"`
	RemainingSeats     int     `json:"RemainingSeats"`
	Airlines           string  `json:"Airlines"`
	FlightNumbers      string  `json:"FlightNumbers"`
	BookingURL         string  `json:"BookingUrl"`
}

type routesResponse struct {
	Data []struct {
		ID string `json:"ID"`
	} `json:"data"`
}
