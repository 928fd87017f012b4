package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/synthbt/config"
	"github.com/rustyeddy/synthbt/synth"
)

// runFlags override the loaded configuration for a single invocation.
// Only flags set on the command line are applied.
type runFlags struct {
	mode       string
	priceMin   float64
	priceMax   float64
	volatility float64
	candles    int
	seed       int64

	strategy string
	lookback int
	rr       float64
	buffer   float64
	window   int
}

func (f *runFlags) addMarket(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.mode, "mode", "m", "", "market mode: trending, ranging or wild")
	fl.Float64Var(&f.priceMin, "min", 0, "lower price bound")
	fl.Float64Var(&f.priceMax, "max", 0, "upper price bound")
	fl.Float64VarP(&f.volatility, "volatility", "v", 0, "volatility level (0, 50]")
	fl.IntVarP(&f.candles, "candles", "n", 0, "number of candles")
	fl.Int64VarP(&f.seed, "seed", "s", 0, "random seed")
}

func (f *runFlags) addStrategy(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.strategy, "strategy", "", "strategy name")
	fl.IntVarP(&f.lookback, "lookback", "l", 0, "breakout lookback window")
	fl.Float64Var(&f.rr, "rr", 0, "take profit as a multiple of risk")
	fl.Float64Var(&f.buffer, "stop-buffer", 0, "stop distance beyond the broken level")
	fl.IntVar(&f.window, "retest-window", 0, "candles to wait for a retest (0 = unbounded)")
}

func (f *runFlags) apply(cmd *cobra.Command, c *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("mode") {
		m, err := synth.ParseMode(f.mode)
		if err != nil {
			return err
		}
		c.Market.Mode = m
	}
	if changed("min") {
		c.Market.PriceMin = f.priceMin
	}
	if changed("max") {
		c.Market.PriceMax = f.priceMax
	}
	if changed("volatility") {
		c.Market.Volatility = f.volatility
	}
	if changed("candles") {
		c.Market.NumCandles = f.candles
	}
	if changed("seed") {
		c.Seed = f.seed
	}

	if changed("strategy") {
		c.Strategy = f.strategy
	}
	if changed("lookback") {
		c.Params.Lookback = f.lookback
	}
	if changed("rr") {
		c.Params.RiskReward = f.rr
	}
	if changed("stop-buffer") {
		c.Params.StopBuffer = f.buffer
	}
	if changed("retest-window") {
		c.Params.RetestWindow = f.window
	}
	return nil
}
