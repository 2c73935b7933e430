package commands

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/trogers1052/portfolio-tracker/internal/config"
	"github.com/trogers1052/portfolio-tracker/internal/database"
	"github.com/trogers1052/portfolio-tracker/internal/kafka"
	"github.com/trogers1052/portfolio-tracker/internal/logger"
	"github.com/trogers1052/portfolio-tracker/internal/metadata"
	"github.com/trogers1052/portfolio-tracker/internal/portfolio"
	"github.com/trogers1052/portfolio-tracker/internal/quotes"
)

// app holds the long-lived dependencies shared by the commands
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	db       *database.DB
	rdb      *redis.Client
	producer *kafka.Producer
	svc      *portfolio.Service
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(cfg.Log), nil
}

// newApp connects to Postgres, Redis and Kafka and builds the portfolio
// service. Redis and Kafka are optional.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.db = db
	log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("Connected to database")

	if cfg.Redis.Addr != "" {
		rdb, err := quotes.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// the quote cache is an optimization, run without it
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, quote cache disabled")
		} else {
			a.rdb = rdb
		}
	}

	names, err := metadata.Load(cfg.Metadata.KRStockList, cfg.Metadata.USStockList)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load instrument names: %w", err)
	}
	kr, us := names.Len()
	log.Info().Int("kr", kr).Int("us", us).Msg("Loaded instrument names")

	provider := quotes.NewProvider(
		quotes.NewClient(cfg.Quotes.BaseURL, cfg.Quotes.Timeout, cfg.Quotes.RequestsPerSecond),
		quotes.NewCache(a.rdb, cfg.Redis.Prefix, cfg.Redis.TTL),
		db,
		cfg.Quotes.DefaultFXRate,
		log,
	)

	var publisher portfolio.Publisher
	if cfg.Kafka.Enabled() {
		a.producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		publisher = a.producer
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.EventsTopic).Msg("Publishing portfolio events")
	}

	a.svc = portfolio.NewService(db, provider, names, publisher, log)
	return a, nil
}

// Close releases every connection the app opened
func (a *app) Close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close Kafka producer")
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close database")
		}
	}
}
