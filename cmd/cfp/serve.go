package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/cfp-backend/internal/cache"
	httpHandlers "github.com/ignatzorin/cfp-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/cfp-backend/internal/http/router"
	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/service"
	"github.com/ignatzorin/cfp-backend/internal/storage"
	"github.com/ignatzorin/cfp-backend/internal/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP сервер",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.For("main")

	dbConn, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer safeClose(dbConn)

	repos := newRepositories(dbConn)

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		return err
	}

	sheetCache := cache.New(time.Minute)
	defer sheetCache.Close()

	sheet, err := openSheet(ctx, cfg, sheetCache)
	if err != nil {
		return err
	}

	mailer, mailQueue, err := newMailer(cfg, repos.users)
	if err != nil {
		return err
	}
	mailQueue.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := mailQueue.Stop(stopCtx); err != nil {
			log.WithError(err).Warn("очередь писем остановлена с потерями")
		}
	}()

	// Вебсокеты.
	hub := ws.NewHub()
	hub.Start(ctx)

	// Сервисы.
	mediaBaseURL := cfg.AppURL + "/media"
	authService := service.NewAuthService(repos.users, tokenManager)
	userService := service.NewUserService(repos.users, photoStorage).WithConnections(hub)
	formatService := service.NewFormatService(repos.formats)
	proposalService := service.NewProposalService(repos.proposals, repos.events, repos.formats, repos.users, mailer, hub)
	commentService := service.NewCommentService(repos.comments, repos.proposals, mailer, hub)
	rateService := service.NewRateService(repos.rates, repos.proposals, hub)
	scheduleService := service.NewScheduleService(repos.proposals, mailer, mediaBaseURL)
	sessionService := service.NewAdminSessionService(sheet, repos.viewed, repos.proposals)

	if n, err := formatService.SeedFromFile(ctx, cfg.DefaultEventID, cfg.FormatsSeedFile); err != nil {
		log.WithError(err).Warn("не удалось загрузить форматы")
	} else if n > 0 {
		log.WithField("count", n).Info("форматы загружены из файла")
	}

	// HTTP хэндлеры.
	health := httpHandlers.NewHealthHandler(dbConn).
		WithGauge("ws_reviewers", hub.Connected).
		WithGauge("mail_queue", mailQueue.Length)
	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Auth:      httpHandlers.NewAuthHandler(authService),
		Users:     httpHandlers.NewUserHandler(userService, mediaBaseURL, photoStorage.MaxUploadBytes()),
		Formats:   httpHandlers.NewFormatHandler(formatService),
		Proposals: httpHandlers.NewProposalHandler(proposalService),
		Comments:  httpHandlers.NewCommentHandler(commentService),
		Rates:     httpHandlers.NewRateHandler(rateService),
		Schedule:  httpHandlers.NewScheduleHandler(scheduleService),
		Sessions:  httpHandlers.NewAdminSessionHandler(sessionService),
		WS:        httpHandlers.NewWSHandler(hub, tokenManager, userService, cfg.AllowedOrigins),
		Health:    health,
	}, tokenManager, userService)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("ошибка остановки http сервера")
		}
	}()

	log.WithField("port", cfg.HTTPPort).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
