package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/cfp-backend/internal/config"
	"github.com/ignatzorin/cfp-backend/internal/logger"
)

var (
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "cfp",
	Short:         "Call for Papers backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		level := logLevel
		if level == "" {
			level = "info"
			if cfg.Env == "development" {
				level = "debug"
			}
		}
		logger.Init(level, cfg.Env)
		return nil
	},
	// без подкоманды запускаем HTTP сервер
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "уровень логирования (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, migrateCmd, sheetSyncCmd)
}

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Log.WithError(err).Error("cfp: команда завершилась с ошибкой")
		stop()
		os.Exit(1)
	}
}
