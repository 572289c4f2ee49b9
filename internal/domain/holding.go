// Package domain defines the core data structures of the portfolio report.
package domain

import "github.com/shopspring/decimal"

// Known exchange venues for equity holdings.
const (
	ExchangeNSE = "NSE"
	ExchangeBSE = "BSE"
)

// Holding is a long-term equity holding as delivered by the broker.
// DayChange is the total rupee movement of the holding today (per-share
// change times quantity); it is carried verbatim because the previous
// close it is based on cannot be rebuilt from AvgPrice and LastPrice.
type Holding struct {
	Symbol       string
	Exchange     string
	Quantity     decimal.Decimal
	AvgPrice     decimal.Decimal
	LastPrice    decimal.Decimal
	DayChange    decimal.Decimal
	DayChangePct decimal.Decimal
}
