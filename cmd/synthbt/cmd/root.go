package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/synthbt/config"
	"github.com/rustyeddy/synthbt/internal/logging"
	"github.com/rustyeddy/synthbt/journal"
)

var (
	cfgFile   string
	envFile   string
	logLevel  string
	logFormat string

	// cfg is loaded before every command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "synthbt",
	Short: "Synthetic candle generator and breakout-retest backtester",
	Long: `Synthbt generates synthetic OHLC candle series and evaluates a
breakout-retest strategy over them.

It provides tools for:
  - Generating trending, ranging or wild candle series from a seed
  - Backtesting over generated or imported candles
  - Monte-Carlo sweeps over consecutive seeds
  - Journaling runs to SQLite or CSV
  - Serving runs and charts over HTTP

Every setting can come from a config file (--config), from SYNTHBT_*
environment variables or from a .env file.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	pf.StringVar(&envFile, "env", ".env", "dotenv file loaded before the config, if present")
	pf.StringVar(&logLevel, "log-level", "", "log level (overrides log.level)")
	pf.StringVar(&logFormat, "log-format", "", "log format: text, json or plain (overrides log.format)")
}

func setup(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	c, err := config.LoadFromFile(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if err := logging.Setup(c.Log.Level, c.Log.Format, cmd.ErrOrStderr()); err != nil {
		return err
	}

	cfg = c
	log.WithField("config", cfgFile).Debug("configuration loaded")
	return nil
}

// openJournal opens the configured journal. It returns nil when journaling
// is disabled.
func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "sqlite":
		j, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		return j, nil
	case "csv":
		j, err := journal.NewCSV(jc.RunsFile, jc.TradesFile)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		return j, nil
	}
	return nil, nil
}

// openStore opens the configured journal for queries.
func openStore(jc config.JournalConfig) (journal.Store, error) {
	if jc.Type != "sqlite" {
		return nil, errors.New("querying runs needs journal.type sqlite")
	}
	j, err := journal.NewSQLite(jc.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return j, nil
}
