package journal

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/synthbt/strategies"
)

var runHeader = []string{
	"run_id", "created", "strategy", "mode", "price_min", "price_max", "volatility",
	"num_candles", "seed", "lookback", "risk_reward", "stop_buffer", "retest_window",
	"trades", "wins", "losses", "open", "win_rate", "net_points", "avg_r",
}

var tradeHeader = []string{
	"run_id", "seq", "side", "entry_index", "entry_price", "stop_loss",
	"take_profit", "exit_index", "exit_price", "result",
}

// CSVJournal appends runs and trades to two CSV files.
type CSVJournal struct {
	runs   *csv.Writer
	trades *csv.Writer
	rf, tf *os.File
}

// NewCSV opens runsPath and tradesPath for appending. A header row is
// written to files that are empty.
func NewCSV(runsPath, tradesPath string) (*CSVJournal, error) {
	rf, rw, err := openCSV(runsPath, runHeader)
	if err != nil {
		return nil, err
	}
	tf, tw, err := openCSV(tradesPath, tradeHeader)
	if err != nil {
		rf.Close()
		return nil, err
	}
	return &CSVJournal{runs: rw, trades: tw, rf: rf, tf: tf}, nil
}

func openCSV(path string, header []string) (*os.File, *csv.Writer, error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	st, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(fh)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			fh.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			fh.Close()
			return nil, nil, err
		}
	}
	return fh, w, nil
}

func (j *CSVJournal) RecordRun(_ context.Context, run RunRecord, trades []TradeRecord) error {
	err := j.runs.Write([]string{
		run.RunID,
		run.Created.UTC().Format(time.RFC3339),
		run.Strategy,
		run.Mode,
		f(run.PriceMin),
		f(run.PriceMax),
		f(run.Volatility),
		strconv.Itoa(run.NumCandles),
		strconv.FormatInt(run.Seed, 10),
		strconv.Itoa(run.Lookback),
		f(run.RiskReward),
		f(run.StopBuffer),
		strconv.Itoa(run.RetestWindow),
		strconv.Itoa(run.Trades),
		strconv.Itoa(run.Wins),
		strconv.Itoa(run.Losses),
		strconv.Itoa(run.Open),
		f(run.WinRate),
		f(run.NetPoints),
		f(run.AvgR),
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}

	for _, t := range trades {
		if err := j.trades.Write(tradeRow(run.RunID, t)); err != nil {
			return err
		}
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) Close() error {
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}

	if err := j.rf.Close(); err != nil {
		return err
	}
	return j.tf.Close()
}

func tradeRow(runID string, t TradeRecord) []string {
	exit, exitPrice := "", ""
	if t.ExitIndex != nil {
		exit = strconv.Itoa(*t.ExitIndex)
		exitPrice = f(t.ExitPrice)
	}
	return []string{
		runID,
		strconv.Itoa(t.Seq),
		t.Side,
		strconv.Itoa(t.EntryIndex),
		f(t.EntryPrice),
		f(t.StopLoss),
		f(t.TakeProfit),
		exit,
		exitPrice,
		t.Result,
	}
}

// WriteTradesCSV writes trades with a header row and no run id column.
func WriteTradesCSV(w io.Writer, trades []strategies.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader[1:]); err != nil {
		return err
	}
	for i, t := range trades {
		row := tradeRow("", TradeRecord{
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
		if err := cw.Write(row[1:]); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
