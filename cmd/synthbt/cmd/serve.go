package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/synthbt/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve exposes backtests, sweeps, recorded runs and charts over HTTP.

Endpoints:
  POST /api/runs             run a backtest (JSON config, ?candles=1 to include candles)
  GET  /api/runs             list recorded runs
  GET  /api/runs/:id         one run and its trades
  GET  /api/runs/:id/chart   HTML chart regenerated from the run's seed
  POST /api/sweeps           Monte-Carlo sweep
  GET  /api/strategies       available strategies and modes
  GET  /healthz`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}

	s := server.New(server.Config{
		Addr:     addr,
		Defaults: cfg.RunConfig(),
		Journal:  j,
	})
	return s.Start(cmd.Context())
}
