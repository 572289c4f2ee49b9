package render

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"kitefolio/internal/domain"
	"kitefolio/internal/metrics"
)

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Holdings: []domain.Holding{
			{
				Symbol:    "RELIANCE",
				Exchange:  domain.ExchangeNSE,
				Quantity:  decimal.NewFromInt(10),
				AvgPrice:  decimal.NewFromInt(2450),
				LastPrice: decimal.NewFromInt(2500),
				DayChange: decimal.NewFromInt(250),
			},
			{
				Symbol:    "TCS",
				Exchange:  domain.ExchangeNSE,
				Quantity:  decimal.NewFromInt(5),
				AvgPrice:  decimal.NewFromInt(3000),
				LastPrice: decimal.NewFromInt(2900),
				DayChange: decimal.NewFromInt(-100),
			},
		},
		DayPositions: []domain.Position{
			{
				Product:  "MIS",
				Symbol:   "NIFTY24SEPFUT",
				Exchange: "NFO",
				Quantity: decimal.NewFromInt(50),
				M2M:      decimal.NewFromInt(1500),
			},
		},
		Funds: domain.Funds{
			AvailableCash: decimal.NewFromFloat(12345.67),
			Utilised:      decimal.NewFromInt(890),
		},
		CapturedAt: time.Date(2026, 8, 29, 10, 30, 0, 0, domain.IST),
	}
}

func renderToString(mode domain.Mode, sortBy domain.SortKey, order domain.SortOrder, debug bool) string {
	snap := testSnapshot()
	rep := metrics.Summarize(snap)
	var sb strings.Builder
	New(&sb, sortBy, order, debug).Render(mode, snap, rep)
	return sb.String()
}

func TestRender_Simple(t *testing.T) {
	out := renderToString(domain.ModeSimple, domain.SortByDayChange, domain.OrderDesc, false)

	assert.Contains(t, out, "Kite Portfolio Status @ 2026-08-29_10-30-00 IST")
	assert.Contains(t, out, "TODAY'S PERFORMANCE")
	assert.Contains(t, out, "Portfolio Value: ₹39,500.00")
	assert.Contains(t, out, "Total Invested:  ₹39,500.00")
	assert.Contains(t, out, "TOP MOVERS")
	assert.Contains(t, out, "RELIANCE: ₹250.00 (↑")
	assert.Contains(t, out, "TCS: -₹100.00 (↓")
	assert.Contains(t, out, "Available Cash: ₹12,345.67")
}

func TestRender_HoldingsHeaderShowsSort(t *testing.T) {
	out := renderToString(domain.ModeHoldings, domain.SortByValue, domain.OrderAsc, false)

	assert.Contains(t, out, "Holdings (sorted by value, asc):")
	assert.Contains(t, out, "RELIANCE")
	assert.Contains(t, out, "TCS")
	assert.Contains(t, out, "Unrealized PnL:")
	assert.NotContains(t, out, "Positions (Day)")
}

func TestRender_PositionsOnly(t *testing.T) {
	out := renderToString(domain.ModePositions, domain.SortByDayChange, domain.OrderDesc, false)

	assert.Contains(t, out, "Positions (Day):")
	assert.Contains(t, out, "NIFTY24SEPFUT")
	assert.Contains(t, out, "Positions (Net):")
	assert.Contains(t, out, "(none)")
	assert.NotContains(t, out, "Holdings (sorted")
}

func TestRender_DebugEchoesRawPayloads(t *testing.T) {
	snap := testSnapshot()
	snap.Raw.Holdings = []byte(`[{"tradingsymbol":"RELIANCE"}]`)
	rep := metrics.Summarize(snap)

	var sb strings.Builder
	New(&sb, domain.SortByDayChange, domain.OrderDesc, true).Render(domain.ModeSimple, snap, rep)

	assert.Contains(t, sb.String(), "DEBUG: RAW HOLDINGS API RESPONSE")
	assert.Contains(t, sb.String(), `"tradingsymbol": "RELIANCE"`)
}

func TestRender_DebugEchoFallsBackOnBadJSON(t *testing.T) {
	snap := testSnapshot()
	snap.Raw.Margins = []byte(`{"truncated":`)
	rep := metrics.Summarize(snap)

	var sb strings.Builder
	New(&sb, domain.SortByDayChange, domain.OrderDesc, true).Render(domain.ModeSimple, snap, rep)

	// unindentable payloads are echoed verbatim
	assert.Contains(t, sb.String(), "DEBUG: RAW MARGINS API RESPONSE")
	assert.Contains(t, sb.String(), `{"truncated":`)
}

func TestTrend(t *testing.T) {
	assert.Equal(t, "↑", trend(decimal.NewFromInt(5)))
	assert.Equal(t, "↑", trend(decimal.Zero), "zero counts as non-negative")
	assert.Equal(t, "↓", trend(decimal.NewFromInt(-1)))
}

func TestRupee(t *testing.T) {
	assert.Equal(t, "₹1,234.56", rupee(decimal.NewFromFloat(1234.555)))
	assert.Equal(t, "-₹100.00", rupee(decimal.NewFromInt(-100)))
	assert.Equal(t, "₹0.00", rupee(decimal.Zero))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "2.04%", percent(decimal.NewFromFloat(2.0408).Round(2)))
	assert.Equal(t, "0.00%", percent(decimal.Zero))
}
