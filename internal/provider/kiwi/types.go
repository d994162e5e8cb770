package kiwi

// searchResponse is the raw Tequila search payload shape.
type searchResponse struct {
	Currency string       `json:"currency"`
	Data     []rawFlight  `json:"data"`
}

type rawFlight struct {
	ID             string       `json:"id"`
	FlyFrom        string       `json:"flyFrom"`
	FlyTo          string       `json:"flyTo"`
	LocalDeparture string       `json:"local_departure"`
	LocalArrival   string       `json:"local_arrival"`
	Price          float64      `json:"price"`
	Airlines       []string     `json:"airlines"`
	Route          []rawSegment `json:"route"`
	DeepLink       string       `json:"deep_link"`
	Availability   rawSeats     `json:"availability"`
}

type rawSegment struct {
	FlyFrom        string `json:"flyFrom"`
	FlyTo          string `json:"flyTo"`
	LocalDeparture string `json:"local_departure"`
	LocalArrival   string `json:"local_arrival"`
	Airline        string `json:"airline"`
	FlightNo       int    `json:"flight_no"`
	FareCategory   string `json:"fare_category"`
	FareBasis      string `json:"fare_basis"`
}

type rawSeats struct {
	Seats int `json:"seats"`
}

// locationsResponse is the shape of the lightweight probe endpoint.
type locationsResponse struct {
	Locations []struct {
		Code string `json:"code"`
	} `json:"locations"`
}
