package domain

import "github.com/pkg/errors"

// SortKey selects the holdings column used for table ordering.
type SortKey string

const (
	SortBySymbol    SortKey = "symbol"
	SortByQuantity  SortKey = "quantity"
	SortByLTP       SortKey = "ltp"
	SortByInvested  SortKey = "invested"
	SortByValue     SortKey = "value"
	SortByPnL       SortKey = "pnl"
	SortByPnLPct    SortKey = "pnl_pct"
	SortByDayChange SortKey = "day_change"
)

// SortOrder is the direction of a holdings sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortKey validates a user-supplied sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortBySymbol, SortByQuantity, SortByLTP, SortByInvested,
		SortByValue, SortByPnL, SortByPnLPct, SortByDayChange:
		return k, nil
	}
	return "", errors.Errorf("unknown sort key %q", s)
}

// ParseSortOrder validates a user-supplied sort direction.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case OrderAsc, OrderDesc:
		return o, nil
	}
	return "", errors.Errorf("unknown sort order %q (want asc or desc)", s)
}
