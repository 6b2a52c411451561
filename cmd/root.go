package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/munitax/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "munitax",
	Short: "Municipal income reconciliation and apportionment engine",
	Long:  "Computes adjusted municipal taxable income (Schedule X) and multi-state apportionment (Schedule Y) from filing input documents, with sourcing elections and nexus-aware throwback.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
