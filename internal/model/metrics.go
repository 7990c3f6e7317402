package model

import "time"

// MetricRecord is one fused row per ticker per date, the unit handed to the
// risk repository.
type MetricRecord struct {
	Date          time.Time
	Ticker        string
	Close         float64
	DailyReturn   float64
	Volatility21d float64
	SharpeRatio   float64
	Beta21d       float64
}
