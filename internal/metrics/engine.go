// Package metrics derives per-holding and portfolio-level figures from a
// captured snapshot: invested amounts, unrealized P&L, day movement,
// gainer/loser ranking and sorted table views. All derivation is pure;
// the snapshot itself is never touched.
package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"kitefolio/internal/domain"
)

// MoversLimit caps the gainer and loser lists.
const MoversLimit = 3

var hundred = decimal.NewFromInt(100)

// HoldingView is one holding together with its derived figures.
type HoldingView struct {
	domain.Holding

	Invested decimal.Decimal
	Value    decimal.Decimal
	PnL      decimal.Decimal
	PnLPct   decimal.Decimal
}

// Aggregates are the portfolio-level totals over one snapshot.
type Aggregates struct {
	TotalInvested        decimal.Decimal
	TotalValue           decimal.Decimal
	HoldingsPnL          decimal.Decimal
	HoldingsPnLPct       decimal.Decimal
	HoldingsDayChange    decimal.Decimal
	HoldingsDayChangePct decimal.Decimal
	DayPositionsPnL      decimal.Decimal
	NetPositionsPnL      decimal.Decimal
	TotalPnL             decimal.Decimal
	TotalPnLPct          decimal.Decimal
}

// Report is the fully derived view of a snapshot, holdings in fetch order.
type Report struct {
	Holdings   []HoldingView
	Aggregates Aggregates
}

// Derive computes the figures for a single holding. A zero invested
// amount yields a zero P&L percent rather than a division fault; this is
// deliberate, zero-quantity holdings show up after corporate actions.
func Derive(h domain.Holding) HoldingView {
	invested := h.Quantity.Mul(h.AvgPrice)
	value := h.Quantity.Mul(h.LastPrice)
	pnl := value.Sub(invested)

	return HoldingView{
		Holding:  h,
		Invested: invested,
		Value:    value,
		PnL:      pnl,
		PnLPct:   pct(pnl, invested),
	}
}

// Summarize derives every holding and folds the portfolio totals. An
// empty snapshot produces zero aggregates and no rows.
func Summarize(snap *domain.Snapshot) Report {
	views := make([]HoldingView, 0, len(snap.Holdings))

	var agg Aggregates
	for _, h := range snap.Holdings {
		v := Derive(h)
		views = append(views, v)

		agg.TotalInvested = agg.TotalInvested.Add(v.Invested)
		agg.TotalValue = agg.TotalValue.Add(v.Value)
		agg.HoldingsDayChange = agg.HoldingsDayChange.Add(v.DayChange)
	}

	for _, p := range snap.DayPositions {
		agg.DayPositionsPnL = agg.DayPositionsPnL.Add(p.M2M)
	}
	for _, p := range snap.NetPositions {
		agg.NetPositionsPnL = agg.NetPositionsPnL.Add(p.M2M)
	}

	agg.HoldingsPnL = agg.TotalValue.Sub(agg.TotalInvested)
	agg.HoldingsPnLPct = pct(agg.HoldingsPnL, agg.TotalInvested)
	agg.HoldingsDayChangePct = pct(agg.HoldingsDayChange, agg.TotalInvested)
	agg.TotalPnL = agg.HoldingsPnL.Add(agg.NetPositionsPnL)
	agg.TotalPnLPct = pct(agg.TotalPnL, agg.TotalInvested)

	return Report{Holdings: views, Aggregates: agg}
}

// TopMovers ranks holdings by day change: gainers are those moving up
// today (largest move first), losers those moving down (worst first).
// Holdings flat on the day belong to neither list. Ties keep fetch
// order. The ranking always uses day change, independent of whatever
// sort key the table view is using.
func TopMovers(views []HoldingView) (gainers, losers []HoldingView) {
	for _, v := range views {
		switch {
		case v.DayChange.IsPositive():
			gainers = append(gainers, v)
		case v.DayChange.IsNegative():
			losers = append(losers, v)
		}
	}

	sort.SliceStable(gainers, func(i, j int) bool {
		return gainers[i].DayChange.GreaterThan(gainers[j].DayChange)
	})
	sort.SliceStable(losers, func(i, j int) bool {
		return losers[i].DayChange.LessThan(losers[j].DayChange)
	})

	if len(gainers) > MoversLimit {
		gainers = gainers[:MoversLimit]
	}
	if len(losers) > MoversLimit {
		losers = losers[:MoversLimit]
	}
	return gainers, losers
}

// Sort returns a new slice ordered by the given key and direction. The
// sort is stable: equal keys keep their relative fetch order. The input
// slice is left as-is.
func Sort(views []HoldingView, key domain.SortKey, order domain.SortOrder) []HoldingView {
	sorted := make([]HoldingView, len(views))
	copy(sorted, views)

	less := lessFunc(sorted, key)
	if order == domain.OrderDesc {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(sorted, less)

	return sorted
}

func lessFunc(views []HoldingView, key domain.SortKey) func(i, j int) bool {
	if key == domain.SortBySymbol {
		return func(i, j int) bool { return views[i].Symbol < views[j].Symbol }
	}

	field := func(v HoldingView) decimal.Decimal {
		switch key {
		case domain.SortByQuantity:
			return v.Quantity
		case domain.SortByLTP:
			return v.LastPrice
		case domain.SortByInvested:
			return v.Invested
		case domain.SortByValue:
			return v.Value
		case domain.SortByPnL:
			return v.PnL
		case domain.SortByPnLPct:
			return v.PnLPct
		default:
			return v.DayChange
		}
	}
	return func(i, j int) bool { return field(views[i]).LessThan(field(views[j])) }
}

// pct returns n/dnm as a percentage, zero when the denominator is zero.
func pct(n, dnm decimal.Decimal) decimal.Decimal {
	if dnm.IsZero() {
		return decimal.Zero
	}
	return n.Div(dnm).Mul(hundred)
}
