package domain

import "github.com/shopspring/decimal"

// Position is an intraday or net derivative/equity exposure. M2M is the
// broker's running mark-to-market for the position, supplied directly by
// the provider rather than derived from average-price arithmetic.
type Position struct {
	Product   string
	Symbol    string
	Exchange  string
	Quantity  decimal.Decimal
	AvgPrice  decimal.Decimal
	LastPrice decimal.Decimal
	M2M       decimal.Decimal
}

// Funds is a flat snapshot of the equity segment margins.
type Funds struct {
	AvailableCash decimal.Decimal
	Utilised      decimal.Decimal
}
