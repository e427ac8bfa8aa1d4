package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	_ "teamup/docs"
	"teamup/internal/adapters/auth"
	"teamup/internal/adapters/broker"
	"teamup/internal/adapters/revocation"
	"teamup/internal/adapters/weather"
	httpdelivery "teamup/internal/delivery/http"
	"teamup/internal/delivery/http/controllers"
	"teamup/internal/delivery/http/middleware"
	"teamup/internal/repository/postgres"
	"teamup/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Run the HTTP API. When AUTO_CONCLUDE_AFTER is set, stale events are concluded in the background.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp()
		if err != nil {
			return err
		}
		logger := a.logger

		db, err := a.openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		rdb, err := revocation.NewClient(a.cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		publisher := broker.NewPublisher(a.cfg.AMQPURL, logger)
		defer publisher.Close()

		participantRepo := postgres.NewParticipantRepository(db)
		ledgerRepo := postgres.NewLedgerRepository(db)
		tx := postgres.NewTxManager(db)

		eventService := services.NewEventService(
			postgres.NewEventRepository(db),
			participantRepo,
			tx,
			weather.NewOpenMeteoClient(&http.Client{Timeout: 5 * time.Second}, a.cfg.WeatherAPIURL),
			publisher,
			logger,
			a.cfg.RequestTimeout,
			a.cfg.PublishTimeout,
		)
		reputationService := services.NewReputationService(postgres.NewFeedbackRepository(db), ledgerRepo, tx, a.cfg.RequestTimeout)
		ratingService := services.NewRatingService(postgres.NewRatingRepository(db), participantRepo, ledgerRepo, tx, a.cfg.RequestTimeout)
		gatekeeper := services.NewGatekeeper(auth.NewJWTVerifier(a.cfg.JWTSecret), revocation.NewRedisCache(rdb))

		router := httpdelivery.NewRouter(
			controllers.NewEventController(logger, eventService),
			controllers.NewReputationController(logger, reputationService),
			controllers.NewRatingController(logger, ratingService),
			middleware.RequireAuth(gatekeeper, logger),
		)

		if a.cfg.AutoConcludeAfter > 0 {
			concluder, err := services.NewAutoConcluder(eventService, a.cfg.AutoConcludeAfter, a.cfg.AutoConcludeInterval, logger)
			if err != nil {
				return err
			}
			concluder.Start()
			defer func() {
				if err := concluder.Shutdown(); err != nil {
					logger.Error("auto-conclusion shutdown failed", "err", err)
				}
			}()
			logger.Info("auto-conclusion enabled", "after", a.cfg.AutoConcludeAfter, "interval", a.cfg.AutoConcludeInterval)
		}

		srv := &http.Server{
			Addr:              ":" + a.cfg.Port,
			Handler:           middleware.CORS(a.cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, router)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server starting", "port", a.cfg.Port, "env", a.cfg.Environment)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("http server: %w", err)
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
