package models

import "time"

// Quote is one point of a price series: the close price at a timestamp.
// Points with missing closes are dropped at ingestion.
type Quote struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// QuoteSeries is the chart payload for one canonical symbol.
type QuoteSeries struct {
	Symbol   string  `json:"symbol"`
	Interval string  `json:"interval"`
	Range    string  `json:"range"`
	Quotes   []Quote `json:"quotes"`
}
