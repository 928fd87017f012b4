package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/synthbt/backtest"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a Monte-Carlo sweep over consecutive seeds",
	Long: `Sweep runs the configured backtest for seeds seed, seed+1, ... and
reports every run plus pooled statistics. Runs execute concurrently.

Example:
  synthbt sweep --mode ranging --runs 500 --workers 8`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

var (
	sweepFlags   runFlags
	sweepRuns    int
	sweepWorkers int
	sweepJSON    bool
	sweepQuiet   bool
)

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepFlags.addMarket(sweepCmd)
	sweepFlags.addStrategy(sweepCmd)

	fl := sweepCmd.Flags()
	fl.IntVarP(&sweepRuns, "runs", "r", 0, "number of seeds (overrides sweep.runs)")
	fl.IntVarP(&sweepWorkers, "workers", "w", 0, "concurrent runs (overrides sweep.workers)")
	fl.BoolVar(&sweepJSON, "json", false, "print the result as JSON")
	fl.BoolVarP(&sweepQuiet, "quiet", "q", false, "print only the aggregate")
}

func runSweep(cmd *cobra.Command, args []string) error {
	c := *cfg
	if err := sweepFlags.apply(cmd, &c); err != nil {
		return err
	}
	if cmd.Flags().Changed("runs") {
		c.Sweep.Runs = sweepRuns
	}
	if cmd.Flags().Changed("workers") {
		c.Sweep.Workers = sweepWorkers
	}

	var r backtest.Runner
	res, err := r.Sweep(cmd.Context(), c.RunConfig(), c.Sweep.Runs, c.Sweep.Workers)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if sweepJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if !sweepQuiet {
		fmt.Fprintln(tw, "SEED\tTRADES\tWINS\tLOSSES\tOPEN\tWIN %\tNET\tAVG R")
		for _, run := range res.Runs {
			s := run.Summary
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\n",
				run.Seed, s.Trades, s.Wins, s.Losses, s.Open, s.WinRate, s.NetPoints, s.AvgR)
		}
		fmt.Fprintln(tw)
	}
	a := res.Aggregate
	fmt.Fprintf(tw, "Runs:\t%d\n", a.Runs)
	fmt.Fprintf(tw, "Trades:\t%d (%d wins, %d losses, %d open)\n", a.Trades, a.Wins, a.Losses, a.Open)
	fmt.Fprintf(tw, "Pooled win rate:\t%.2f%%\n", a.WinRate)
	fmt.Fprintf(tw, "Mean win rate:\t%.2f%%\n", a.MeanWinRate)
	fmt.Fprintf(tw, "Mean net points:\t%.2f\n", a.MeanNetPoints)
	fmt.Fprintf(tw, "Profitable runs:\t%d\n", a.Profitable)
	return tw.Flush()
}
