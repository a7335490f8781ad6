package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	toolx "github.com/electromart/agenthub/agent/tool"
	configx "github.com/electromart/agenthub/pkg/config"
	_ "github.com/electromart/agenthub/pkg/logger/autoload"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset and seed the demo catalog",
	Long:  `Drops and recreates the domain tables (products, promotions, orders, FAQs) and fills them with the ElectroMart demo data.`,
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	appCfg := configx.MustNew[AppConfig]("APP")

	db, err := openDatabase(appCfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := toolx.SeedDemoData(context.Background(), db); err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Demo data seeded.")
	return nil
}
