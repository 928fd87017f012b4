package strategies

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side: +1 long, -1 short
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "none"
	}
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "long":
		*s = Long
	case "short":
		*s = Short
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

// Result is the outcome of a trade.
type Result string

const (
	Win  Result = "win"
	Loss Result = "loss"
	// Open marks a position still running when the series ended.
	Open Result = "open"
)

// Trade is one simulated position. ExitIndex is nil while Result is Open.
type Trade struct {
	Side       Side    `json:"side"`
	EntryIndex int     `json:"entry_index"`
	EntryPrice float64 `json:"entry_price"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	ExitIndex  *int    `json:"exit_index"`
	ExitPrice  float64 `json:"exit_price,omitempty"`
	Result     Result  `json:"result"`
}

// Closed reports whether the trade reached its stop or target.
func (t Trade) Closed() bool {
	return t.Result != Open && t.ExitIndex != nil
}

// Risk is the distance between entry and stop.
func (t Trade) Risk() float64 {
	return dec(t.EntryPrice).Sub(dec(t.StopLoss)).Abs().InexactFloat64()
}

// Points is the signed price distance captured by a closed trade.
func (t Trade) Points() float64 {
	if !t.Closed() {
		return 0
	}
	d := dec(t.ExitPrice).Sub(dec(t.EntryPrice))
	return d.Mul(decimal.NewFromInt(int64(t.Side))).InexactFloat64()
}

// RMultiple is Points expressed in units of Risk.
func (t Trade) RMultiple() float64 {
	risk := t.Risk()
	if risk == 0 {
		return 0
	}
	return t.Points() / risk
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
