package domain

// Hotel is the canonical hotel result shape.
type Hotel struct {
	ID            string  `json:"id"`
	Provider      string  `json:"provider"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	PricePerNight float64 `json:"pricePerNight"`
	Currency      string  `json:"currency"`
}

// Activity is the canonical activity result shape.
type Activity struct {
	ID       string  `json:"id"`
	Provider string  `json:"provider"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}
