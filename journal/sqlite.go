package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

const runColumns = `run_id, created, strategy, mode, price_min, price_max, volatility,
	num_candles, seed, lookback, risk_reward, stop_buffer, retest_window,
	trades, wins, losses, open_trades, win_rate, net_points, avg_r`

const tradeColumns = `run_id, seq, side, entry_index, entry_price, stop_loss,
	take_profit, exit_index, exit_price, result`

// RecordRun stores run and its trades in a single transaction.
func (j *SQLite) RecordRun(ctx context.Context, run RunRecord, trades []TradeRecord) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Created, run.Strategy, run.Mode,
		run.PriceMin, run.PriceMax, run.Volatility, run.NumCandles, run.Seed,
		run.Lookback, run.RiskReward, run.StopBuffer, run.RetestWindow,
		run.Trades, run.Wins, run.Losses, run.Open,
		run.WinRate, run.NetPoints, run.AvgR,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range trades {
		var exit sql.NullInt64
		if t.ExitIndex != nil {
			exit = sql.NullInt64{Int64: int64(*t.ExitIndex), Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			run.RunID, t.Seq, t.Side, t.EntryIndex, t.EntryPrice,
			t.StopLoss, t.TakeProfit, exit, t.ExitPrice, t.Result,
		)
		if err != nil {
			return fmt.Errorf("insert trade %s/%d: %w", run.RunID, t.Seq, err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var r RunRecord
	err := s.Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Mode,
		&r.PriceMin, &r.PriceMax, &r.Volatility, &r.NumCandles, &r.Seed,
		&r.Lookback, &r.RiskReward, &r.StopBuffer, &r.RetestWindow,
		&r.Trades, &r.Wins, &r.Losses, &r.Open,
		&r.WinRate, &r.NetPoints, &r.AvgR,
	)
	return r, err
}

// GetRun returns a single run by id.
func (j *SQLite) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	if err != nil {
		return RunRecord{}, err
	}
	return r, nil
}

// ListRuns returns runs newest first. limit <= 0 returns all of them.
func (j *SQLite) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RunRecord{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListTradesByRunID returns the trades of a run in emission order.
func (j *SQLite) ListTradesByRunID(ctx context.Context, runID string) ([]TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TradeRecord{}
	for rows.Next() {
		var (
			t    TradeRecord
			exit sql.NullInt64
		)
		err := rows.Scan(
			&t.RunID, &t.Seq, &t.Side, &t.EntryIndex, &t.EntryPrice,
			&t.StopLoss, &t.TakeProfit, &exit, &t.ExitPrice, &t.Result,
		)
		if err != nil {
			return nil, err
		}
		if exit.Valid {
			idx := int(exit.Int64)
			t.ExitIndex = &idx
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

var _ Store = (*SQLite)(nil)
