package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	mode TEXT NOT NULL,
	price_min REAL NOT NULL,
	price_max REAL NOT NULL,
	volatility REAL NOT NULL,
	num_candles INTEGER NOT NULL,
	seed INTEGER NOT NULL,
	lookback INTEGER NOT NULL,
	risk_reward REAL NOT NULL,
	stop_buffer REAL NOT NULL,
	retest_window INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	open_trades INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	net_points REAL NOT NULL,
	avg_r REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	side TEXT NOT NULL,
	entry_index INTEGER NOT NULL,
	entry_price REAL NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit REAL NOT NULL,
	exit_index INTEGER,
	exit_price REAL NOT NULL,
	result TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created);
`
