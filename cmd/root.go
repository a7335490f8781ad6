// Package cmd provides the CLI commands for the agenthub backend.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agenthub",
	Short: "AgentHub - multi-agent chat backend for ElectroMart",
	Long:  `AgentHub routes customer messages to specialist agents (sales, marketing, support, orders, purchase) with persisted conversation memory.`,
}

func Execute() error {
	return rootCmd.Execute()
}
