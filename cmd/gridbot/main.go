package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"gridbot/internal/application/port"
	"gridbot/internal/application/usecase/trader"
	"gridbot/internal/domain/strategy"
	"gridbot/internal/infrastructure/config"
	"gridbot/internal/infrastructure/exchange/ftx"
	"gridbot/internal/infrastructure/logger"
	"gridbot/internal/infrastructure/storage/composite"
	"gridbot/internal/infrastructure/storage/postgres"
	redisaudit "gridbot/internal/infrastructure/storage/redis"
	"gridbot/internal/infrastructure/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger.Setup(*debug)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	if cfg.Exchange.Key == "" || cfg.Exchange.Secret == "" {
		log.Fatal().Msg("FTX_KEY / FTX_SECRET not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// primary store serves as both ledger and audit log
	var (
		ledger port.Ledger
		audit  port.AuditLog
	)
	switch cfg.Storage.Driver {
	case "postgres":
		repo, err := postgres.New(cfg.Storage.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres store failed")
		}
		defer repo.Close()
		ledger, audit = repo, repo
	default:
		repo, err := sqlite.New(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Storage.SQLitePath).Msg("open sqlite store failed")
		}
		defer repo.Close()
		ledger, audit = repo, repo
	}

	if cfg.Storage.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Storage.Redis.Addr})
		audit = composite.NewAudit(audit, redisaudit.NewAudit(rdb, cfg.Storage.Redis.Prefix))
		log.Info().Str("addr", cfg.Storage.Redis.Addr).Msg("redis audit stream enabled")
	}

	rest := ftx.NewRestClient(cfg.Exchange.RestURL, cfg.Exchange.Key, cfg.Exchange.Secret, cfg.Exchange.SubAccount)
	stream := ftx.NewOrderStream(cfg.Exchange.WsURL, cfg.Exchange.Key, cfg.Exchange.Secret, cfg.Exchange.SubAccount)

	svc := trader.NewService(trader.Deps{
		Exchange:  rest,
		Stream:    stream,
		Ledger:    ledger,
		Audit:     audit,
		Market:    cfg.Market.Symbol,
		BaseCoin:  cfg.Market.Base,
		QuoteCoin: cfg.Market.Quote,
		Strategy: strategy.Config{
			StepDistance:            cfg.Strategy.StepDistance,
			UsedEquity:              cfg.Strategy.UsedEquity,
			MinLotSize:              cfg.Strategy.MinLotSize,
			TakeProfit:              cfg.Strategy.TakeProfit,
			BootstrapOnLowInventory: cfg.Strategy.BootstrapPolicy == config.PolicyLowInventory,
		},
		WatchdogInterval: time.Duration(cfg.App.WatchdogIntervalSec) * time.Second,
	})

	log.Info().
		Str("config", *configPath).
		Str("market", cfg.Market.Symbol).
		Str("storage", cfg.Storage.Driver).
		Str("bootstrap_policy", cfg.Strategy.BootstrapPolicy).
		Msg("gridbot started")

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("trader service exited")
	}
}
