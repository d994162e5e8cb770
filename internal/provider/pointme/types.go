package pointme

// searchRequest is the wire shape of the redemption search call.
type searchRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	Cabin         string `json:"cabin,omitempty"`
	Travelers     int    `json:"travelers"`
}

// searchResponse is the raw redemption-search payload shape.
type searchResponse struct {
	Results []rawRedemption `json:"results"`
}

type rawRedemption struct {
	ID            string  `json:"id"`
	Program       string  `json:"program"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	Miles         float64 `json:"miles"`
	Taxes         float64 `json:"taxes"`
	TaxesCurrency string  `json:"taxes_currency"`
	Cabin         string  `json:"cabin"`
	Airline       string  `json:"airline"`
	FlightNumber  string  `json:"flight_number"`
	BookingLink   string  `json:"booking_link"`
	Seats         int     `json:"seats"`
}

type programsResponse struct {
	Programs []struct {
		Code string `json:"code"`
	} `json:"programs"`
}
