package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/synthbt/backtest"
)

// execute runs the CLI with args. Flag values are reset first since the
// commands keep them in package variables.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var reset func(*cobra.Command)
	reset = func(c *cobra.Command) {
		zero := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(zero)
		c.PersistentFlags().VisitAll(zero)
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)

	var out, errb bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errb)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func useTempJournal(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "runs.db")
	t.Setenv("SYNTHBT_JOURNAL_TYPE", "sqlite")
	t.Setenv("SYNTHBT_JOURNAL_DB_PATH", db)
	return db
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "synthbt version "+version)
	assert.Contains(t, out, "breakout-retest")
}

func TestGenerateStdout(t *testing.T) {
	t.Setenv("SYNTHBT_JOURNAL_TYPE", "none")

	out, err := execute(t, "generate", "--candles", "20", "--seed", "3", "--mode", "wild")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 21)
	assert.Equal(t, "index,open,high,low,close", lines[0])

	again, err := execute(t, "generate", "--candles", "20", "--seed", "3", "--mode", "wild")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	_, err = execute(t, "generate", "--mode", "sideways")
	assert.Error(t, err)
}

func TestRunRecordsAndQueries(t *testing.T) {
	useTempJournal(t)
	dir := t.TempDir()
	chartPath := filepath.Join(dir, "run.html")
	orgPath := filepath.Join(dir, "run.org")

	out, err := execute(t, "run", "--seed", "9", "--candles", "300", "--json", "--chart", chartPath, "--org", orgPath)
	require.NoError(t, err)

	var res backtest.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, int64(9), res.Config.Seed)
	assert.Len(t, res.Candles, 300)

	html, err := os.ReadFile(chartPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<html")
	org, err := os.ReadFile(orgPath)
	require.NoError(t, err)
	assert.Contains(t, string(org), ":RUN_ID:      "+res.RunID)

	out, err = execute(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, res.RunID)

	out, err = execute(t, "runs", "show", res.RunID)
	require.NoError(t, err)
	assert.Contains(t, out, "* BACKTEST: breakout-retest")

	_, err = execute(t, "runs", "show", "missing")
	assert.Error(t, err)
}

func TestRunInvalid(t *testing.T) {
	t.Setenv("SYNTHBT_JOURNAL_TYPE", "none")
	_, err := execute(t, "run", "--min", "120")
	require.Error(t, err)
	assert.ErrorIs(t, err, backtest.ErrInvalidConfiguration)
}

func TestEvaluateGeneratedFile(t *testing.T) {
	t.Setenv("SYNTHBT_JOURNAL_TYPE", "none")
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "candles.csv")
	tradesPath := filepath.Join(dir, "trades.csv")

	_, err := execute(t, "generate", "--candles", "200", "--seed", "5", "-o", csvPath)
	require.NoError(t, err)

	out, err := execute(t, "evaluate", csvPath, "--lookback", "8", "--trades-out", tradesPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Candles:       200")
	assert.Contains(t, out, "Lookback:      8")

	trades, err := os.ReadFile(tradesPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(trades), "seq,side,entry_index"))

	_, err = execute(t, "evaluate", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestSweepQuiet(t *testing.T) {
	t.Setenv("SYNTHBT_JOURNAL_TYPE", "none")
	out, err := execute(t, "sweep", "--runs", "3", "--workers", "2", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Runs:")
	assert.NotContains(t, out, "SEED")
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synthbt.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Journal: sqlite")
}

func TestBadLogLevel(t *testing.T) {
	_, err := execute(t, "version", "--log-level", "loud")
	assert.Error(t, err)
}
