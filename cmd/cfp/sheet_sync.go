package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/cfp-backend/internal/cache"
	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/service"
)

var syncEventID string

var sheetSyncCmd = &cobra.Command{
	Use:   "sheet-sync",
	Short: "Добавить подтверждённые заявки в Google таблицу",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		conn, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer safeClose(conn)

		c := cache.New(time.Minute)
		defer c.Close()

		sheet, err := openSheet(ctx, cfg, c)
		if err != nil {
			return err
		}

		repos := newRepositories(conn)
		sessions := service.NewAdminSessionService(sheet, repos.viewed, repos.proposals)

		eventID := syncEventID
		if eventID == "" {
			eventID = cfg.DefaultEventID
		}
		n, err := sessions.Sync(ctx, eventID)
		if err != nil {
			return err
		}
		logger.For("sheet_sync").WithFields(logrus.Fields{"event": eventID, "appended": n}).Info("синхронизация завершена")
		return nil
	},
}

func init() {
	sheetSyncCmd.Flags().StringVar(&syncEventID, "event", "", "мероприятие (по умолчанию DEFAULT_EVENT_ID)")
}
