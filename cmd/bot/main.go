// Package main is the entry point for the guild economy bot.
package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"guild-economy-bot/internal/activity"
	"guild-economy-bot/internal/bot"
	"guild-economy-bot/internal/config"
	"guild-economy-bot/internal/economy"
	"guild-economy-bot/internal/market"
	"guild-economy-bot/internal/pkg/db"
	"guild-economy-bot/internal/pkg/lock"
	"guild-economy-bot/internal/repository"
	"guild-economy-bot/internal/service"
	"guild-economy-bot/internal/web"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ledger store
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := repository.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Activity log
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer redisClient.Close()
	activityLog := activity.NewLog(redisClient)

	// Repositories
	accountRepo := repository.NewAccountRepository(dbPool.Pool)
	stockRepo := repository.NewStockRepository(dbPool.Pool)
	txRepo := repository.NewTransactionRepository(dbPool.Pool)

	// Seed the stock table from config on first start
	seed := make(map[string]int64, len(cfg.Market.Stocks))
	for _, s := range cfg.Market.Stocks {
		seed[s.Symbol] = s.Price
	}
	if err := stockRepo.Seed(ctx, seed); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed stock prices")
	}

	// Engine and service
	engine := economy.NewEngine(economy.PolicyFromConfig(&cfg.Economy))
	userLock := lock.NewUserLock()
	economySvc := service.NewEconomy(accountRepo, stockRepo, txRepo, activityLog, engine, userLock)

	// Price walk
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	walker := market.NewWorker(stockRepo, cfg.Market.TickInterval, cfg.Market.MaxStep, rng)
	go walker.Run(ctx)

	// Liveness endpoint
	webSrv := web.New(cfg.Web.Addr, map[string]web.Checkable{
		"postgres": dbPool,
		"redis":    activityLog,
	})
	go webSrv.Start()

	// Discord gateway
	discordBot, err := bot.New(&bot.Dependencies{
		Config:  cfg,
		Economy: economySvc,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	if err := discordBot.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start bot")
	}
	log.Info().Msg("Bot is running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown
	cancel()
	discordBot.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := webSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Bot stopped gracefully")
}
