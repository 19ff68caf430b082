// Package cmd provides the CLI commands for cherub.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kennwilliamson/cherub/internal/config"
)

var cfgFile string
var policyFile string

var rootCmd = &cobra.Command{
	Use:   "cherub",
	Short: "cherub - capability-based runtime for mediating agent tool calls",
	Long: `cherub mediates every tool invocation an agent proposes against a
three-tier capability policy (observe / act / commit), escalating
commit-tier actions to a human approval gate and recording every
decision to an append-only sink.

Quick start:
  1. Write a policy file: cherub.policy.toml
  2. Run: cherub run

Configuration:
  Config is loaded from cherub.yaml in the current directory,
  $HOME/.cherub/, or /etc/cherub/.

  Environment variables can override config values with the CHERUB_ prefix.
  Example: CHERUB_SERVER_HTTP_ADDR=:9090

Commands:
  run         Run the reference agent loop under enforcement
  approve     Interactively resolve pending commit-tier approvals
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./cherub.yaml)")
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "policy file (default: ./cherub.policy.toml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
