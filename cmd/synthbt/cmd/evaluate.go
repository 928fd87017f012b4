package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/synthbt/backtest"
	"github.com/rustyeddy/synthbt/market"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <candles.csv>",
	Short: "Backtest the strategy over candles from a CSV file",
	Long: `Evaluate reads index,open,high,low,close rows (as written by generate)
and runs the strategy over them. Files ending in .xz are decompressed.

Example:
  synthbt evaluate candles.csv --lookback 15 --trades-out trades.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

var (
	evalFlags  runFlags
	evalReport reportFlags
)

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evalFlags.addStrategy(evaluateCmd)
	evalReport.add(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	c := *cfg
	if err := evalFlags.apply(cmd, &c); err != nil {
		return err
	}

	candles, err := market.LoadCSV(args[0])
	if err != nil {
		return err
	}

	var r backtest.Runner
	res, err := r.RunCandles(cmd.Context(), c.RunConfig(), candles)
	if err != nil {
		return err
	}
	return report(cmd, res, evalReport, c.Journal)
}
