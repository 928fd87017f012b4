package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rustyeddy/synthbt/market"
	"github.com/rustyeddy/synthbt/pkg/id"
	"github.com/rustyeddy/synthbt/strategies"
	"github.com/rustyeddy/synthbt/synth"
)

// ErrInvalidConfiguration is returned before any work is done on a bad Config.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// DefaultStrategy is used when Config.Strategy is empty.
const DefaultStrategy = "breakout-retest"

// Config fully describes one run. Two runs with equal configs produce
// identical candles and trades.
type Config struct {
	Market   synth.Config      `json:"market" yaml:"market"`
	Strategy string            `json:"strategy" yaml:"strategy"`
	Params   strategies.Params `json:"params" yaml:"params"`
	Seed     int64             `json:"seed" yaml:"seed"`
}

// Validate checks the whole run, including how the strategy window relates
// to the series length.
func (c Config) Validate() error {
	m := c.Market
	if m.PriceMin >= m.PriceMax {
		return fmt.Errorf("%w: price_min must be below price_max", ErrInvalidConfiguration)
	}
	if m.NumCandles < 0 {
		return fmt.Errorf("%w: num_candles must not be negative", ErrInvalidConfiguration)
	}
	if c.Params.Lookback >= m.NumCandles {
		return fmt.Errorf("%w: lookback %d must be below num_candles %d", ErrInvalidConfiguration, c.Params.Lookback, m.NumCandles)
	}
	if c.Params.RiskReward <= 0 {
		return fmt.Errorf("%w: risk_reward must be positive", ErrInvalidConfiguration)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}

func (c Config) strategyName() string {
	if c.Strategy == "" {
		return DefaultStrategy
	}
	return c.Strategy
}

// Result is everything one run produced.
type Result struct {
	RunID   string             `json:"run_id"`
	Created time.Time          `json:"created"`
	Config  Config             `json:"config"`
	Candles []market.Candle    `json:"candles,omitempty"`
	Trades  []strategies.Trade `json:"trades"`
	Summary Summary            `json:"summary"`
	Markers []Marker           `json:"markers"`
}

// Runner generates a series and feeds it to a strategy.
type Runner struct {
	// NewID names runs. Defaults to id.New.
	NewID func() string
	// Now stamps runs. Defaults to time.Now.
	Now func() time.Time
	// Log receives run diagnostics. Defaults to the standard logrus logger.
	Log *log.Entry
}

// Run executes cfg with the default Runner.
func Run(ctx context.Context, cfg Config) (Result, error) {
	var r Runner
	return r.Run(ctx, cfg)
}

// Run validates cfg, synthesizes the candles from cfg.Seed and evaluates them.
func (r *Runner) Run(ctx context.Context, cfg Config) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	eval, err := strategies.Get(cfg.strategyName())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	candles, err := synth.Generate(cfg.Market, synth.NewRand(cfg.Seed))
	if err != nil {
		return Result{}, fmt.Errorf("generate: %w", err)
	}
	return r.evaluate(cfg, eval, candles)
}

// RunCandles evaluates externally supplied candles. Only the strategy part
// of cfg is used; cfg.Market is ignored.
func (r *Runner) RunCandles(ctx context.Context, cfg Config, candles []market.Candle) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := cfg.Params.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	eval, err := strategies.Get(cfg.strategyName())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	cfg.Market = synth.Config{NumCandles: len(candles)}
	return r.evaluate(cfg, eval, candles)
}

func (r *Runner) evaluate(cfg Config, eval strategies.Evaluator, candles []market.Candle) (Result, error) {
	started := r.now()
	trades, err := eval.Evaluate(candles, cfg.Params)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate %s: %w", eval.Name(), err)
	}

	cfg.Strategy = eval.Name()
	res := Result{
		RunID:   r.newID(),
		Created: started,
		Config:  cfg,
		Candles: candles,
		Trades:  trades,
		Summary: Summarize(trades),
		Markers: Markers(trades),
	}

	r.log().WithFields(log.Fields{
		"run_id":   res.RunID,
		"strategy": cfg.Strategy,
		"seed":     cfg.Seed,
		"mode":     cfg.Market.Mode,
		"candles":  len(candles),
		"trades":   res.Summary.Trades,
		"elapsed":  r.now().Sub(started),
	}).Debug("backtest run complete")

	return res, nil
}

func (r *Runner) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return id.New()
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) log() *log.Entry {
	if r.Log != nil {
		return r.Log
	}
	return log.NewEntry(log.StandardLogger())
}
