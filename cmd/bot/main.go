package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"pepeeats/internal/adapters/holidays"
	"pepeeats/internal/adapters/httpapi"
	"pepeeats/internal/adapters/lunchdrive"
	"pepeeats/internal/adapters/repo"
	"pepeeats/internal/adapters/slackapi"
	"pepeeats/internal/infra/cache"
	"pepeeats/internal/infra/clock"
	"pepeeats/internal/infra/config"
	"pepeeats/internal/infra/db"
	applog "pepeeats/internal/infra/log"
	"pepeeats/internal/infra/metrics"
	menuusecase "pepeeats/internal/usecase/menu"
	orderusecase "pepeeats/internal/usecase/order"
	reminderusecase "pepeeats/internal/usecase/reminder"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vendorClock, err := clock.NewLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("tz", cfg.Timezone).Msg("bot: neznámá časová zóna")
	}

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("bot: nepodařilo se připojit k databázi")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	repoAdapter := repo.NewPostgres(pool, cfg.LunchDrive.TargetPrice)
	menuCache := cache.NewRedisMenuCache(redisClient)
	fetcher := lunchdrive.NewFetcher(lunchdrive.Config{
		URL:          cfg.LunchDrive.URL,
		TargetPrice:  cfg.LunchDrive.TargetPrice,
		FetchTimeout: cfg.LunchDrive.FetchTimeout,
		NameColumn:   cfg.LunchDrive.NameColumn,
		PriceColumn:  cfg.LunchDrive.PriceColumn,
	})
	menuService := menuusecase.NewService(menuCache, fetcher,
		logger.With().Str("component", "menu").Logger())

	slackClient := slackapi.NewClient(cfg.Slack.BotToken, cfg.LunchDrive.TargetPrice,
		logger.With().Str("component", "slack").Logger())
	czechHolidays := holidays.NewCzechCalendar()

	window := reminderusecase.Window{
		StartHour:  cfg.Reminders.WindowStartHour,
		EndHour:    cfg.Reminders.WindowEndHour,
		MiddayHour: cfg.Reminders.MiddayHour,
	}
	reminderService := reminderusecase.NewService(
		repoAdapter, repoAdapter, repoAdapter, menuService, slackClient,
		czechHolidays, vendorClock, window, cfg.LunchDrive.TargetPrice, nil,
		logger.With().Str("component", "reminder").Logger(),
	)
	orderService := orderusecase.NewService(
		repoAdapter, repoAdapter, slackClient, vendorClock, cfg.LunchDrive.TargetPrice,
		logger.With().Str("component", "order").Logger(),
	)

	handler := httpapi.NewHandler(httpapi.Config{
		SigningSecret:  cfg.Slack.SigningSecret,
		ClientID:       cfg.Slack.ClientID,
		ClientSecret:   cfg.Slack.ClientSecret,
		AdminSecretKey: cfg.AdminSecretKey,
		BaseURL:        cfg.BaseURL,
	}, reminderService, orderService, menuService, repoAdapter, repoAdapter, slackClient,
		logger.With().Str("component", "api").Logger())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second,
	}

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("bot: start")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("bot: server se zastavil")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("bot: ukončování")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
