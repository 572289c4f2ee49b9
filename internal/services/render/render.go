// Package render turns a computed portfolio report into terminal text.
// It is a pure formatting sink: nothing here fetches or computes.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"kitefolio/internal/domain"
	"kitefolio/internal/metrics"
)

const ruleWidth = 100

var (
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Renderer prints one snapshot in a chosen mode.
type Renderer struct {
	out    io.Writer
	sortBy domain.SortKey
	order  domain.SortOrder
	debug  bool
}

// New builds a Renderer writing to out. sortBy/order shape the holdings
// table in detailed and holdings modes.
func New(out io.Writer, sortBy domain.SortKey, order domain.SortOrder, debug bool) *Renderer {
	return &Renderer{out: out, sortBy: sortBy, order: order, debug: debug}
}

// Render prints the report for the given mode. The snapshot supplies
// positions, funds and the capture stamp; rep supplies everything derived.
func (r *Renderer) Render(mode domain.Mode, snap *domain.Snapshot, rep metrics.Report) {
	if r.debug {
		r.echoRaw(snap.Raw)
	}

	r.rule("=")
	fmt.Fprintf(r.out, "Kite Portfolio Status @ %s IST\n", snap.Stamp())
	r.rule("=")

	if mode == domain.ModeSimple {
		r.simpleSummary(snap, rep)
		return
	}

	if mode == domain.ModeDetailed || mode == domain.ModeFunds {
		r.funds(snap.Funds)
	}
	if mode == domain.ModeDetailed || mode == domain.ModeHoldings {
		r.holdings(rep)
	}
	if mode == domain.ModeDetailed || mode == domain.ModePositions {
		r.positions("Positions (Day)", snap.DayPositions, rep.Aggregates.DayPositionsPnL)
		r.positions("Positions (Net)", snap.NetPositions, rep.Aggregates.NetPositionsPnL)
	}
}

func (r *Renderer) simpleSummary(snap *domain.Snapshot, rep metrics.Report) {
	agg := rep.Aggregates

	fmt.Fprintln(r.out, headerStyle.Render("TODAY'S PERFORMANCE"))
	fmt.Fprintf(r.out, "Portfolio Value: %s\n", rupee(agg.TotalValue))
	fmt.Fprintf(r.out, "Total Invested:  %s\n", rupee(agg.TotalInvested))
	fmt.Fprintf(r.out, "Holdings P&L:    %s (%s %s)\n",
		rupee(agg.HoldingsPnL), trend(agg.HoldingsPnL), percent(agg.HoldingsPnLPct))
	fmt.Fprintln(r.out)

	fmt.Fprintln(r.out, headerStyle.Render("TRADING PERFORMANCE"))
	fmt.Fprintf(r.out, "Holdings Day Change: %s (%s %s)\n",
		rupee(agg.HoldingsDayChange), trend(agg.HoldingsDayChange), percent(agg.HoldingsDayChangePct))
	if !agg.DayPositionsPnL.IsZero() {
		fmt.Fprintf(r.out, "Positions Day Trading: %s (%s)\n",
			rupee(agg.DayPositionsPnL), trend(agg.DayPositionsPnL))
	}
	if !agg.NetPositionsPnL.IsZero() {
		fmt.Fprintf(r.out, "Net Positions P&L: %s (%s)\n",
			rupee(agg.NetPositionsPnL), trend(agg.NetPositionsPnL))
	}
	fmt.Fprintf(r.out, "Total P&L: %s (%s %s)\n",
		rupee(agg.TotalPnL), trend(agg.TotalPnL), percent(agg.TotalPnLPct))
	fmt.Fprintln(r.out)

	gainers, losers := metrics.TopMovers(rep.Holdings)
	if len(gainers) > 0 || len(losers) > 0 {
		fmt.Fprintln(r.out, headerStyle.Render("TOP MOVERS"))
		if len(gainers) > 0 {
			fmt.Fprintln(r.out, "Top Gainers:")
			for _, v := range gainers {
				fmt.Fprintf(r.out, "  %s: %s (%s %s)\n",
					v.Symbol, rupee(v.DayChange), trend(v.DayChange), percent(v.DayChangePct))
			}
		}
		if len(losers) > 0 {
			fmt.Fprintln(r.out, "Top Losers:")
			for _, v := range losers {
				fmt.Fprintf(r.out, "  %s: %s (%s %s)\n",
					v.Symbol, rupee(v.DayChange), trend(v.DayChange), percent(v.DayChangePct))
			}
		}
		fmt.Fprintln(r.out)
	}

	r.funds(snap.Funds)
	r.rule("=")
}

func (r *Renderer) holdings(rep metrics.Report) {
	sorted := metrics.Sort(rep.Holdings, r.sortBy, r.order)

	fmt.Fprintf(r.out, "Holdings (sorted by %s, %s):\n", r.sortBy, r.order)
	if len(sorted) == 0 {
		fmt.Fprintln(r.out, "(none)")
	} else {
		t := newTable("Symbol", "Exch", "Qty", "Avg", "LTP", "Invested", "Value", "PnL", "PnL %", "Day Change")
		for _, v := range sorted {
			t.Row(v.Symbol, v.Exchange, v.Quantity.String(),
				v.AvgPrice.StringFixed(2), v.LastPrice.StringFixed(2),
				v.Invested.StringFixed(2), v.Value.StringFixed(2),
				v.PnL.StringFixed(2), v.PnLPct.StringFixed(2),
				v.DayChange.StringFixed(2))
		}
		fmt.Fprintln(r.out, t.Render())
	}

	agg := rep.Aggregates
	fmt.Fprintf(r.out, "Total Invested: %s\n", rupee(agg.TotalInvested))
	fmt.Fprintf(r.out, "Current Value:  %s\n", rupee(agg.TotalValue))
	fmt.Fprintf(r.out, "Unrealized PnL: %s (%s %s)\n",
		rupee(agg.HoldingsPnL), trend(agg.HoldingsPnL), percent(agg.HoldingsPnLPct))
	fmt.Fprintf(r.out, "Day's Change:   %s (%s %s)\n",
		rupee(agg.HoldingsDayChange), trend(agg.HoldingsDayChange), percent(agg.HoldingsDayChangePct))
	r.rule("-")
}

func (r *Renderer) positions(title string, positions []domain.Position, total decimal.Decimal) {
	fmt.Fprintf(r.out, "%s:\n", title)
	if len(positions) == 0 {
		fmt.Fprintln(r.out, "(none)")
	} else {
		t := newTable("Prod", "Symbol", "Exch", "Qty", "Avg", "LTP", "M2M")
		for _, p := range positions {
			t.Row(p.Product, p.Symbol, p.Exchange, p.Quantity.String(),
				p.AvgPrice.StringFixed(2), p.LastPrice.StringFixed(2),
				p.M2M.StringFixed(2))
		}
		fmt.Fprintln(r.out, t.Render())
	}
	fmt.Fprintf(r.out, "Total M2M: %s (%s)\n", rupee(total), trend(total))
	r.rule("-")
}

func (r *Renderer) funds(f domain.Funds) {
	fmt.Fprintln(r.out, headerStyle.Render("FUNDS"))
	fmt.Fprintf(r.out, "Available Cash: %s\n", rupee(f.AvailableCash))
	fmt.Fprintf(r.out, "Utilised:       %s\n", rupee(f.Utilised))
	r.rule("-")
}

func (r *Renderer) echoRaw(raw domain.RawPayloads) {
	r.echoPayload("HOLDINGS", raw.Holdings)
	r.echoPayload("DAY POSITIONS", raw.DayPositions)
	r.echoPayload("NET POSITIONS", raw.NetPositions)
	r.echoPayload("MARGINS", raw.Margins)
}

func (r *Renderer) echoPayload(name string, payload json.RawMessage) {
	if len(payload) == 0 {
		return
	}
	r.rule("=")
	fmt.Fprintf(r.out, "DEBUG: RAW %s API RESPONSE\n", name)
	r.rule("=")

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		fmt.Fprintln(r.out, string(payload))
		return
	}
	fmt.Fprintln(r.out, pretty.String())
}

func (r *Renderer) rule(char string) {
	fmt.Fprintln(r.out, ruleStyle.Render(strings.Repeat(char, ruleWidth)))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

// rupee formats a money amount with the ₹ sign and thousands grouping,
// two decimal places.
func rupee(d decimal.Decimal) string {
	return money.New(d.Round(2).Shift(2).IntPart(), money.INR).Display()
}

// percent renders a ratio with two decimals and a % suffix.
func percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// trend picks the direction glyph; exactly zero counts as up.
func trend(d decimal.Decimal) string {
	if d.IsNegative() {
		return "↓"
	}
	return "↑"
}
