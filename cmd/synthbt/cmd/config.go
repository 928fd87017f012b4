package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/synthbt/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage synthbt configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  synthbt config init -o synthbt.yaml
  synthbt config validate -f synthbt.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file with default settings.

Example:
  synthbt config init -o synthbt.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check if a configuration file is valid and can be loaded.

Example:
  synthbt config validate -f synthbt.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "synthbt.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.Default().SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(w, "\nEdit the file and run with:")
	fmt.Fprintf(w, "  synthbt run -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	c, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(w, "  Market: %s %.2f-%.2f vol %.2f, %d candles, seed %d\n",
		c.Market.Mode, c.Market.PriceMin, c.Market.PriceMax, c.Market.Volatility, c.Market.NumCandles, c.Seed)
	fmt.Fprintf(w, "  Strategy: %s (lookback %d, R:R %.2f)\n", c.RunConfig().Strategy, c.Params.Lookback, c.Params.RiskReward)
	fmt.Fprintf(w, "  Journal: %s\n", c.Journal.Type)
	return nil
}
