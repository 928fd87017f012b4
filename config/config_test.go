package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/synthbt/backtest"
	"github.com/rustyeddy/synthbt/synth"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 90.0, cfg.Market.PriceMin)
	assert.Equal(t, 110.0, cfg.Market.PriceMax)
	assert.Equal(t, synth.Trending, cfg.Market.Mode)
	assert.Equal(t, 10, cfg.Params.Lookback)
	assert.Equal(t, 2.0, cfg.Params.RiskReward)
	assert.NoError(t, cfg.Validate())

	rc := cfg.RunConfig()
	assert.Equal(t, cfg.Market, rc.Market)
	assert.Equal(t, cfg.Seed, rc.Seed)
	assert.NoError(t, rc.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mod    func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"flat band", func(c *Config) { c.Market.PriceMax = c.Market.PriceMin }, "price_min must be below price_max"},
		{"lookback too long", func(c *Config) { c.Params.Lookback = 100 }, "lookback 100 must be below num_candles 100"},
		{"unknown strategy", func(c *Config) { c.Strategy = "grid" }, "unknown strategy"},
		{"csv without files", func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }, "runs_file and trades_file required"},
		{"sqlite without path", func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }, "db_path required"},
		{"no journal", func(c *Config) { c.Journal = JournalConfig{Type: "none"} }, ""},
		{"bad journal", func(c *Config) { c.Journal.Type = "postgres" }, "journal.type"},
		{"zero sweep runs", func(c *Config) { c.Sweep.Runs = 0 }, "sweep.runs"},
		{"negative workers", func(c *Config) { c.Sweep.Workers = -1 }, "sweep.workers"},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mod(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateRunErrorsAreTyped(t *testing.T) {
	cfg := Default()
	cfg.Params.RiskReward = 0
	assert.ErrorIs(t, cfg.Validate(), backtest.ErrInvalidConfiguration)
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Market.Mode = synth.Wild
			cfg.Params.RetestWindow = 4
			cfg.Seed = 99
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("market:\n  mode: ranging\n  volatility: 7\nseed: 5\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, synth.Ranging, cfg.Market.Mode)
	assert.Equal(t, 7.0, cfg.Market.Volatility)
	assert.Equal(t, int64(5), cfg.Seed)
	assert.Equal(t, 90.0, cfg.Market.PriceMin)
	assert.Equal(t, Default().Params, cfg.Params)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SYNTHBT_MARKET_NUM_CANDLES", "250")
	t.Setenv("SYNTHBT_PARAMS_LOOKBACK", "20")
	t.Setenv("SYNTHBT_JOURNAL_TYPE", "none")

	cfg, err := LoadFromFile("")
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Market.NumCandles)
	assert.Equal(t, 20, cfg.Params.Lookback)
	assert.Equal(t, "none", cfg.Journal.Type)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("market:\n  volatilty: 7\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("market:\n  price_min: 120\n"), 0o644))
	_, err = LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
