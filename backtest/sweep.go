package backtest

import (
	"context"
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SeedSummary is the outcome of one sweep member.
type SeedSummary struct {
	RunID   string  `json:"run_id"`
	Seed    int64   `json:"seed"`
	Summary Summary `json:"summary"`
}

// Aggregate pools the summaries of a sweep.
type Aggregate struct {
	Runs   int `json:"runs"`
	Trades int `json:"trades"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Open   int `json:"open"`

	// WinRate is pooled: total wins over total trades.
	WinRate float64 `json:"win_rate"`
	// MeanWinRate averages the per-run win rates.
	MeanWinRate   float64 `json:"mean_win_rate"`
	MeanNetPoints float64 `json:"mean_net_points"`
	// Profitable counts runs with positive net points.
	Profitable int `json:"profitable"`
}

// SweepResult holds per-seed summaries in seed order.
type SweepResult struct {
	Config    Config        `json:"config"`
	Runs      []SeedSummary `json:"runs"`
	Aggregate Aggregate     `json:"aggregate"`
}

// Sweep runs cfg for seeds cfg.Seed .. cfg.Seed+runs-1 on up to workers
// goroutines. Every run owns its random source, so the result does not
// depend on scheduling. workers <= 0 uses GOMAXPROCS.
func (r *Runner) Sweep(ctx context.Context, cfg Config, runs, workers int) (SweepResult, error) {
	if runs < 1 {
		return SweepResult{}, fmt.Errorf("%w: runs must be at least 1", ErrInvalidConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return SweepResult{}, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]SeedSummary, runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < runs; i++ {
		g.Go(func() error {
			c := cfg
			c.Seed = cfg.Seed + int64(i)
			res, err := r.Run(gctx, c)
			if err != nil {
				return fmt.Errorf("seed %d: %w", c.Seed, err)
			}
			out[i] = SeedSummary{RunID: res.RunID, Seed: c.Seed, Summary: res.Summary}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SweepResult{}, err
	}

	res := SweepResult{Config: cfg, Runs: out, Aggregate: aggregate(out)}
	r.log().WithFields(log.Fields{
		"runs":     runs,
		"workers":  workers,
		"trades":   res.Aggregate.Trades,
		"win_rate": res.Aggregate.WinRate,
	}).Info("sweep complete")
	return res, nil
}

func aggregate(runs []SeedSummary) Aggregate {
	var a Aggregate
	var sumRate, sumPoints float64

	a.Runs = len(runs)
	for _, r := range runs {
		s := r.Summary
		a.Trades += s.Trades
		a.Wins += s.Wins
		a.Losses += s.Losses
		a.Open += s.Open
		sumRate += s.WinRate
		sumPoints += s.NetPoints
		if s.NetPoints > 0 {
			a.Profitable++
		}
	}
	if a.Trades > 0 {
		a.WinRate = float64(a.Wins) / float64(a.Trades) * 100
	}
	if a.Runs > 0 {
		a.MeanWinRate = sumRate / float64(a.Runs)
		a.MeanNetPoints = sumPoints / float64(a.Runs)
	}
	return a
}
