// Package journal records backtest runs and their trades.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/synthbt/backtest"
	"github.com/rustyeddy/synthbt/strategies"
	"github.com/rustyeddy/synthbt/synth"
)

// ErrNotFound is returned when a run id is not in the journal.
var ErrNotFound = errors.New("not found")

// RunRecord is the flattened form of a backtest.Result.
type RunRecord struct {
	RunID    string    `json:"run_id"`
	Created  time.Time `json:"created"`
	Strategy string    `json:"strategy"`

	// Market
	Mode       string  `json:"mode"`
	PriceMin   float64 `json:"price_min"`
	PriceMax   float64 `json:"price_max"`
	Volatility float64 `json:"volatility"`
	NumCandles int     `json:"num_candles"`
	Seed       int64   `json:"seed"`

	// Strategy parameters
	Lookback     int     `json:"lookback"`
	RiskReward   float64 `json:"risk_reward"`
	StopBuffer   float64 `json:"stop_buffer"`
	RetestWindow int     `json:"retest_window"`

	// Results
	Trades    int     `json:"trades"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Open      int     `json:"open"`
	WinRate   float64 `json:"win_rate"`
	NetPoints float64 `json:"net_points"`
	AvgR      float64 `json:"avg_r"`
}

// TradeRecord is one trade of a run. Seq is its position in the run.
type TradeRecord struct {
	RunID      string  `json:"run_id"`
	Seq        int     `json:"seq"`
	Side       string  `json:"side"`
	EntryIndex int     `json:"entry_index"`
	EntryPrice float64 `json:"entry_price"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	ExitIndex  *int    `json:"exit_index"`
	ExitPrice  float64 `json:"exit_price"`
	Result     string  `json:"result"`
}

// Journal stores runs.
type Journal interface {
	RecordRun(ctx context.Context, run RunRecord, trades []TradeRecord) error
	Close() error
}

// NewRunRecord flattens r for storage.
func NewRunRecord(r backtest.Result) (RunRecord, []TradeRecord) {
	m := r.Config.Market
	p := r.Config.Params
	s := r.Summary

	run := RunRecord{
		RunID:        r.RunID,
		Created:      r.Created.UTC(),
		Strategy:     r.Config.Strategy,
		Mode:         string(m.Mode),
		PriceMin:     m.PriceMin,
		PriceMax:     m.PriceMax,
		Volatility:   m.Volatility,
		NumCandles:   m.NumCandles,
		Seed:         r.Config.Seed,
		Lookback:     p.Lookback,
		RiskReward:   p.RiskReward,
		StopBuffer:   p.StopBuffer,
		RetestWindow: p.RetestWindow,
		Trades:       s.Trades,
		Wins:         s.Wins,
		Losses:       s.Losses,
		Open:         s.Open,
		WinRate:      s.WinRate,
		NetPoints:    s.NetPoints,
		AvgR:         s.AvgR,
	}

	trades := make([]TradeRecord, 0, len(r.Trades))
	for i, t := range r.Trades {
		trades = append(trades, TradeRecord{
			RunID:      r.RunID,
			Seq:        i,
			Side:       t.Side.String(),
			EntryIndex: t.EntryIndex,
			EntryPrice: t.EntryPrice,
			StopLoss:   t.StopLoss,
			TakeProfit: t.TakeProfit,
			ExitIndex:  t.ExitIndex,
			ExitPrice:  t.ExitPrice,
			Result:     string(t.Result),
		})
	}
	return run, trades
}

// Config rebuilds the configuration that produced run. Replaying it
// regenerates the same candles.
func (run RunRecord) Config() backtest.Config {
	return backtest.Config{
		Market: synth.Config{
			PriceMin:   run.PriceMin,
			PriceMax:   run.PriceMax,
			Volatility: run.Volatility,
			NumCandles: run.NumCandles,
			Mode:       synth.Mode(run.Mode),
		},
		Strategy: run.Strategy,
		Params: strategies.Params{
			Lookback:     run.Lookback,
			RiskReward:   run.RiskReward,
			StopBuffer:   run.StopBuffer,
			RetestWindow: run.RetestWindow,
		},
		Seed: run.Seed,
	}
}

// Synthetic reports whether run was generated from a seed rather than
// evaluated over imported candles.
func (run RunRecord) Synthetic() bool {
	return run.Mode != ""
}

// Trade converts rec back into a strategies.Trade.
func (rec TradeRecord) Trade() (strategies.Trade, error) {
	var side strategies.Side
	if err := side.UnmarshalText([]byte(rec.Side)); err != nil {
		return strategies.Trade{}, err
	}
	return strategies.Trade{
		Side:       side,
		EntryIndex: rec.EntryIndex,
		EntryPrice: rec.EntryPrice,
		StopLoss:   rec.StopLoss,
		TakeProfit: rec.TakeProfit,
		ExitIndex:  rec.ExitIndex,
		ExitPrice:  rec.ExitPrice,
		Result:     strategies.Result(rec.Result),
	}, nil
}

// Store is a Journal that can be queried back.
type Store interface {
	Journal
	GetRun(ctx context.Context, runID string) (RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	ListTradesByRunID(ctx context.Context, runID string) ([]TradeRecord, error)
}

// Record flattens r and stores it in j.
func Record(ctx context.Context, j Journal, r backtest.Result) error {
	run, trades := NewRunRecord(r)
	return j.RecordRun(ctx, run, trades)
}
