package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-lifeexp-report/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "lifeexp",
		Short:         "Life expectancy and death rate reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newDescribeCmd(),
		newHistoryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment configuration, applies the positional
// data path and the flags the user set explicitly, then validates the result
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.DataPath = args[0]
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
