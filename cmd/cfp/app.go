package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cfp-backend/internal/cache"
	"github.com/ignatzorin/cfp-backend/internal/config"
	"github.com/ignatzorin/cfp-backend/internal/db"
	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/mail"
	"github.com/ignatzorin/cfp-backend/internal/repository"
	"github.com/ignatzorin/cfp-backend/internal/service"
	"github.com/ignatzorin/cfp-backend/internal/spreadsheet"
	"github.com/ignatzorin/cfp-backend/migrations"
)

// repositories все репозитории поверх одного подключения.
type repositories struct {
	users     *repository.UserRepository
	events    *repository.EventRepository
	formats   *repository.FormatRepository
	proposals *repository.ProposalRepository
	comments  *repository.CommentRepository
	rates     *repository.RateRepository
	viewed    *repository.ViewedSessionRepository
}

func newRepositories(conn *sqlx.DB) *repositories {
	return &repositories{
		users:     repository.NewUserRepository(conn),
		events:    repository.NewEventRepository(conn),
		formats:   repository.NewFormatRepository(conn),
		proposals: repository.NewProposalRepository(conn),
		comments:  repository.NewCommentRepository(conn),
		rates:     repository.NewRateRepository(conn),
		viewed:    repository.NewViewedSessionRepository(conn),
	}
}

// openDatabase подключается к базе и применяет миграции.
func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	applied, err := db.RunMigrations(ctx, conn, db.MigrationsSource(cfg.MigrationsPath, migrations.FS))
	if err != nil {
		safeClose(conn)
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}
	logger.Log.WithField("applied", applied).Info("миграции применены")
	return conn, nil
}

// openSheet возвращает лист сессий или заглушку, если таблица не настроена.
func openSheet(ctx context.Context, cfg *config.Config, c *cache.Cache) (service.SessionSheet, error) {
	if !cfg.Sheets.Enabled() {
		logger.Log.Warn("Google Spreadsheet не настроен, /api/admin/sessions вернёт 502")
		return spreadsheet.Disabled{}, nil
	}
	client, err := spreadsheet.NewClient(ctx, cfg.Sheets)
	if err != nil {
		return nil, err
	}
	return spreadsheet.NewSessionSheet(client, cfg.Sheets.SessionsSheet, c, cfg.Sheets.CacheTTL), nil
}

// newMailer собирает сервис писем и очередь; очередь нужно запустить и остановить.
func newMailer(cfg *config.Config, admins mail.AdminDirectory) (*mail.EmailingService, *mail.Queue, error) {
	templates, err := mail.LoadTemplates(cfg.DefaultLocale)
	if err != nil {
		return nil, nil, fmt.Errorf("шаблоны писем: %w", err)
	}
	queue := mail.NewQueue(mail.NewSender(cfg.Mail), cfg.Mail.QueueSize, cfg.Mail.RetryCount, cfg.Mail.RetryBackoff, cfg.Mail.RatePerSecond)
	return mail.NewEmailingService(templates, queue, admins, cfg.AppURL, cfg.Mail.Enabled), queue, nil
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.WithError(err).Error("ошибка закрытия базы")
	}
}
