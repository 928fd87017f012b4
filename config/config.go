package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/synthbt/backtest"
	"github.com/rustyeddy/synthbt/internal/logging"
	"github.com/rustyeddy/synthbt/strategies"
	"github.com/rustyeddy/synthbt/synth"
)

// EnvPrefix prefixes environment overrides, e.g. SYNTHBT_MARKET_VOLATILITY.
const EnvPrefix = "SYNTHBT"

// Config represents the complete synthbt configuration
type Config struct {
	Market   synth.Config      `json:"market" yaml:"market" mapstructure:"market"`
	Strategy string            `json:"strategy" yaml:"strategy" mapstructure:"strategy"`
	Params   strategies.Params `json:"params" yaml:"params" mapstructure:"params"`
	Seed     int64             `json:"seed" yaml:"seed" mapstructure:"seed"`

	Journal JournalConfig `json:"journal" yaml:"journal" mapstructure:"journal"`
	Sweep   SweepConfig   `json:"sweep" yaml:"sweep" mapstructure:"sweep"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type" mapstructure:"type"` // "csv", "sqlite" or "none"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty" mapstructure:"db_path"`
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty" mapstructure:"runs_file"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty" mapstructure:"trades_file"`
}

// SweepConfig sizes a Monte-Carlo sweep.
type SweepConfig struct {
	Runs    int `json:"runs" yaml:"runs" mapstructure:"runs"`
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"` // 0 = GOMAXPROCS
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"` // "text", "json" or "plain"
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Market: synth.Config{
			PriceMin:   90,
			PriceMax:   110,
			Volatility: 3,
			NumCandles: 100,
			Mode:       synth.Trending,
		},
		Strategy: backtest.DefaultStrategy,
		Params:   strategies.DefaultParams(),
		Seed:     1,
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./synthbt.db",
		},
		Sweep:  SweepConfig{Runs: 100},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// RunConfig is the part of c that drives a single backtest.
func (c *Config) RunConfig() backtest.Config {
	return backtest.Config{
		Market:   c.Market,
		Strategy: c.Strategy,
		Params:   c.Params,
		Seed:     c.Seed,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.RunConfig().Validate(); err != nil {
		return err
	}
	if c.Strategy != "" {
		if _, err := strategies.Get(c.Strategy); err != nil {
			return err
		}
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.RunsFile == "" || c.Journal.TradesFile == "" {
			return fmt.Errorf("journal runs_file and trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}

	if c.Sweep.Runs < 1 {
		return fmt.Errorf("sweep.runs must be at least 1")
	}
	if c.Sweep.Workers < 0 {
		return fmt.Errorf("sweep.workers must not be negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := logging.Formatter(c.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from path (JSON or YAML based on
// extension) on top of Default. SYNTHBT_* environment variables override
// both. An empty path loads defaults and environment only.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
		dc.ErrorUnused = true
	})
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	defaults := map[string]any{
		"market.price_min":     d.Market.PriceMin,
		"market.price_max":     d.Market.PriceMax,
		"market.volatility":    d.Market.Volatility,
		"market.num_candles":   d.Market.NumCandles,
		"market.mode":          string(d.Market.Mode),
		"strategy":             d.Strategy,
		"params.lookback":      d.Params.Lookback,
		"params.risk_reward":   d.Params.RiskReward,
		"params.stop_buffer":   d.Params.StopBuffer,
		"params.retest_window": d.Params.RetestWindow,
		"seed":                 d.Seed,
		"journal.type":         d.Journal.Type,
		"journal.db_path":      d.Journal.DBPath,
		"journal.runs_file":    d.Journal.RunsFile,
		"journal.trades_file":  d.Journal.TradesFile,
		"sweep.runs":           d.Sweep.Runs,
		"sweep.workers":        d.Sweep.Workers,
		"server.addr":          d.Server.Addr,
		"log.level":            d.Log.Level,
		"log.format":           d.Log.Format,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
