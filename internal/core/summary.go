package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"category"`
	Amount Money  `json:"amount"`
}

// MonthAmount is the spend for one "YYYY-MM" bucket.
type MonthAmount struct {
	Month  string `json:"month"`
	Amount Money  `json:"amount"`
}

// DayAmount is the spend for one day of a month.
type DayAmount struct {
	Day    int   `json:"day"`
	Amount Money `json:"amount"`
}
