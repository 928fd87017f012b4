package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/synthbt/strategies"
)

// Summary is a lightweight projection of a trade list.
type Summary struct {
	Trades int `json:"trades"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Open   int `json:"open"`

	// WinRate is wins / trades * 100, and 0 when there are no trades.
	WinRate float64 `json:"win_rate"`

	// NetPoints sums the price distance captured by closed trades.
	NetPoints float64 `json:"net_points"`
	// AvgR is the mean R multiple of closed trades.
	AvgR float64 `json:"avg_r"`
}

// Summarize counts outcomes in trades.
func Summarize(trades []strategies.Trade) Summary {
	var s Summary
	var sumR float64

	s.Trades = len(trades)
	for _, t := range trades {
		switch t.Result {
		case strategies.Win:
			s.Wins++
		case strategies.Loss:
			s.Losses++
		case strategies.Open:
			s.Open++
			continue
		}
		s.NetPoints += t.Points()
		sumR += t.RMultiple()
	}

	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	}
	if closed := s.Wins + s.Losses; closed > 0 {
		s.AvgR = sumR / float64(closed)
	}
	return s
}

// MarkerKind tells entries from exits.
type MarkerKind string

const (
	EntryMarker MarkerKind = "entry"
	ExitMarker  MarkerKind = "exit"
)

// Marker is one plottable point on the candle index axis.
type Marker struct {
	Index  int               `json:"index"`
	Price  float64           `json:"price"`
	Kind   MarkerKind        `json:"kind"`
	Side   strategies.Side   `json:"side"`
	Result strategies.Result `json:"result"`
}

// Markers returns an entry marker for every trade and an exit marker for
// every closed one, in trade order.
func Markers(trades []strategies.Trade) []Marker {
	out := make([]Marker, 0, 2*len(trades))
	for _, t := range trades {
		out = append(out, Marker{
			Index:  t.EntryIndex,
			Price:  t.EntryPrice,
			Kind:   EntryMarker,
			Side:   t.Side,
			Result: t.Result,
		})
		if t.Closed() {
			out = append(out, Marker{
				Index:  *t.ExitIndex,
				Price:  t.ExitPrice,
				Kind:   ExitMarker,
				Side:   t.Side,
				Result: t.Result,
			})
		}
	}
	return out
}

// PrintResult writes a plain-text report of r.
func PrintResult(w io.Writer, r Result) {
	m := r.Config.Market
	p := r.Config.Params
	s := r.Summary

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Created:       %s\n", r.Created.Format(time.RFC3339))
	fmt.Fprintf(w, "Strategy:      %s\n", r.Config.Strategy)

	if m.Mode != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Market")
		fmt.Fprintln(w, "--------------------------------------------------")
		fmt.Fprintf(w, "Mode:          %s\n", m.Mode)
		fmt.Fprintf(w, "Band:          %.2f - %.2f\n", m.PriceMin, m.PriceMax)
		fmt.Fprintf(w, "Volatility:    %.2f\n", m.Volatility)
		fmt.Fprintf(w, "Seed:          %d\n", r.Config.Seed)
	}
	fmt.Fprintf(w, "Candles:       %d\n", len(r.Candles))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Strategy Configuration")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Lookback:      %d\n", p.Lookback)
	fmt.Fprintf(w, "Risk/Reward:   %.2f\n", p.RiskReward)
	fmt.Fprintf(w, "Stop Buffer:   %.2f\n", p.StopBuffer)
	if p.RetestWindow > 0 {
		fmt.Fprintf(w, "Retest Window: %d\n", p.RetestWindow)
	} else {
		fmt.Fprintln(w, "Retest Window: unbounded")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", s.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.Losses)
	fmt.Fprintf(w, "Open:          %d\n", s.Open)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate)
	fmt.Fprintf(w, "Net Points:    %.2f\n", s.NetPoints)
	fmt.Fprintf(w, "Avg R:         %.2f\n", s.AvgR)
	fmt.Fprintln(w)
}
