package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Moirius/La-Station-Prospection/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "prospect",
	Short: "Local-business lead generation pipeline",
	Long:  "Discovers local businesses through maps searches, enriches them with website scraping, social screenshot analysis and AI extraction, and scores the resulting leads.",
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
