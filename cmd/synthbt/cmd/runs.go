package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/synthbt/journal"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Query recorded runs",
	Long: `Query runs recorded in the SQLite journal.

Subcommands:
  list  - List the most recent runs
  show  - Print one run as an Org-mode entry

Examples:
  synthbt runs list --limit 20
  synthbt runs show 01HV3K9Q6R4YB2M8ZJ1T0N5XCD`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a recorded run and its trades",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsLimit int

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list (0 = all)")
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cfg.Journal)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tMODE\tSEED\tTRADES\tWIN %\tNET")
	for _, r := range runs {
		mode := r.Mode
		if !r.Synthetic() {
			mode = "imported"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.2f\t%.2f\n",
			r.RunID, r.Created.Local().Format("2006-01-02 15:04"), mode, r.Seed, r.Trades, r.WinRate, r.NetPoints)
	}
	return tw.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(cfg.Journal)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	run, err := store.GetRun(ctx, args[0])
	if err != nil {
		return err
	}
	trades, err := store.ListTradesByRunID(ctx, run.RunID)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	org, err := journal.FormatRunOrg(run, trades)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), org)
	return nil
}
