package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/timelessnesses/giveaway-bot/internal/common/cache"
	"github.com/timelessnesses/giveaway-bot/internal/common/config"
	"github.com/timelessnesses/giveaway-bot/internal/common/logger"
	giveawaypg "github.com/timelessnesses/giveaway-bot/internal/features/giveaway/repository/postgres"
	giveawayredis "github.com/timelessnesses/giveaway-bot/internal/features/giveaway/repository/redis"
	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/service"
	apphttp "github.com/timelessnesses/giveaway-bot/internal/http"
	"github.com/timelessnesses/giveaway-bot/internal/platform/db"
	redisplatform "github.com/timelessnesses/giveaway-bot/internal/platform/redis"
	"github.com/timelessnesses/giveaway-bot/internal/platform/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init("giveaway-bot", cfg.Debug)
	log := logger.With("main")

	pg, err := db.Open(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer pg.Close()

	repo := giveawaypg.NewGiveawayRepository(pg)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	rdb, err := redisplatform.Open(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	registry := giveawayredis.NewReactionRegistry(rdb)
	tg := telegram.NewClient(cfg.Telegram.BotToken, registry)
	if err := tg.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}

	svc := service.NewService(repo, tg,
		service.WithCache(cache.New(rdb), cfg.Cache.GiveawayTTL),
	)
	handler := service.NewParticipationHandler(svc, repo)

	scanner := service.NewScanner(svc, repo, cfg.Scanner.Interval, cfg.Scanner.StaleClaim)
	scanner.Start()
	defer scanner.Stop()

	poller := telegram.NewPoller(tg, handler, service.Emoji, cfg.Telegram.PollTimeout)
	go func() {
		if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Update poller exited")
		}
	}()

	server := apphttp.NewServer(cfg, svc)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("API server listening")
		if err := server.Run(); err != nil {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down API server cleanly")
	}
}
