package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/synthbt/backtest"
	"github.com/rustyeddy/synthbt/chart"
	"github.com/rustyeddy/synthbt/config"
	"github.com/rustyeddy/synthbt/journal"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a series and backtest it",
	Long: `Run synthesizes candles from the configured market and seed, evaluates
the strategy over them and records the run in the journal.

Examples:
  synthbt run --mode wild --seed 42
  synthbt run -c synthbt.yaml --lookback 20 --rr 3 --chart run.html`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

// reportFlags control what is written after a run.
type reportFlags struct {
	json      bool
	chartPath string
	orgPath   string
	tradesOut string
	noJournal bool
}

func (f *reportFlags) add(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.BoolVar(&f.json, "json", false, "print the result as JSON")
	fl.StringVar(&f.chartPath, "chart", "", "write an HTML candlestick chart with trade markers")
	fl.StringVar(&f.orgPath, "org", "", "write an Org-mode report")
	fl.StringVar(&f.tradesOut, "trades-out", "", "write the trades as CSV")
	fl.BoolVar(&f.noJournal, "no-journal", false, "do not record the run")
}

var (
	runFlagsSet runFlags
	runReport   reportFlags
)

func init() {
	rootCmd.AddCommand(runCmd)
	runFlagsSet.addMarket(runCmd)
	runFlagsSet.addStrategy(runCmd)
	runReport.add(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	c := *cfg
	if err := runFlagsSet.apply(cmd, &c); err != nil {
		return err
	}

	res, err := backtest.Run(cmd.Context(), c.RunConfig())
	if err != nil {
		return err
	}
	return report(cmd, res, runReport, c.Journal)
}

// report prints res, writes the requested artifacts and records the run.
func report(cmd *cobra.Command, res backtest.Result, rf reportFlags, jc config.JournalConfig) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if rf.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		backtest.PrintResult(w, res)
	}

	if rf.chartPath != "" {
		if err := writeFile(rf.chartPath, func(fh *os.File) error {
			title := fmt.Sprintf("%s %s seed %d", res.Config.Strategy, res.Config.Market.Mode, res.Config.Seed)
			return chart.RenderHTML(fh, title, res.Candles, res.Markers, chart.WithChannel(res.Config.Params.Lookback))
		}); err != nil {
			return fmt.Errorf("chart: %w", err)
		}
	}
	if rf.tradesOut != "" {
		if err := writeFile(rf.tradesOut, func(fh *os.File) error {
			return journal.WriteTradesCSV(fh, res.Trades)
		}); err != nil {
			return fmt.Errorf("trades: %w", err)
		}
	}

	run, trades := journal.NewRunRecord(res)
	if rf.orgPath != "" {
		org, err := journal.FormatRunOrg(run, trades)
		if err != nil {
			return fmt.Errorf("org: %w", err)
		}
		if err := os.WriteFile(rf.orgPath, []byte(org), 0o644); err != nil {
			return fmt.Errorf("org: %w", err)
		}
	}

	if rf.noJournal {
		return nil
	}
	j, err := openJournal(jc)
	if err != nil {
		return err
	}
	if j == nil {
		return nil
	}
	defer j.Close()

	if err := j.RecordRun(ctx, run, trades); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	log.WithFields(log.Fields{"run_id": res.RunID, "journal": jc.Type}).Info("run recorded")
	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
