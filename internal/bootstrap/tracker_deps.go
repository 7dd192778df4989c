package bootstrap

import (
	"strings"
	"time"

	"tracker_server/adapter/out/persistence"
	"tracker_server/adapter/out/provider/gmail"
	"tracker_server/config"
	"tracker_server/core/port/out"
	"tracker_server/core/service/auth"
	"tracker_server/core/service/classification"
	"tracker_server/core/service/sync"
	"tracker_server/infra/database"
	"tracker_server/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	Config *config.Config
	DB     *pgxpool.Pool
	SQLDB  *sqlx.DB
	Redis  *redis.Client

	// Repositories
	ApplicationRepo out.ApplicationRepository
	AccountRepo     out.AccountRepository
	SyncLock        out.SyncLocker

	// Providers
	MailProvider out.MailProvider

	// Services
	TokenService           *auth.TokenService
	ClassificationPipeline *classification.Pipeline
	SyncService            *sync.Service
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	// Database (pgxpool)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	// Database (sqlx for the persistence adapters)
	sqlxURL := cfg.DatabaseURL
	if strings.Contains(sqlxURL, "?") {
		sqlxURL += "&default_query_exec_mode=simple_protocol"
	} else {
		sqlxURL += "?default_query_exec_mode=simple_protocol"
	}
	sqlDB, err := sqlx.Connect("pgx", sqlxURL)
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	// Redis (optional: sync falls back to an in-process no-op lock)
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn("Redis connection failed, sync lock disabled: %v", err)
		deps.SyncLock = persistence.NoopSyncLock{}
	} else {
		deps.Redis = redisClient
		cleanups = append(cleanups, func() { redisClient.Close() })
		deps.SyncLock = persistence.NewRedisSyncLock(redisClient)
	}

	// Repositories
	deps.ApplicationRepo = persistence.NewApplicationAdapter(sqlDB)
	deps.AccountRepo = persistence.NewAccountAdapter(sqlDB)

	// Mail provider
	deps.MailProvider = gmail.NewProvider(cfg.SyncMaxResults)

	// Token refresh
	deps.TokenService = auth.NewTokenService(cfg.GoogleClientID, cfg.GoogleClientSecret, deps.AccountRepo)

	// Classification pipeline: inference tier first, heuristic fallback last
	deps.ClassificationPipeline = newClassificationPipeline(cfg)

	// Sync orchestrator
	deps.SyncService = sync.NewService(
		deps.AccountRepo,
		deps.ApplicationRepo,
		deps.MailProvider,
		deps.TokenService,
		deps.ClassificationPipeline,
		deps.SyncLock,
		cfg.SyncLockTTL,
	)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	return deps, cleanup, nil
}

func newClassificationPipeline(cfg *config.Config) *classification.Pipeline {
	heuristic := classification.NewHeuristicTier()

	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("LLM_PROVIDER=openai but OPENAI_API_KEY is empty, using heuristic only")
			return classification.NewPipeline(heuristic)
		}
		openAITier := classification.NewOpenAITier(classification.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.LLMTimeout,
		})
		logger.Info("Classification pipeline: openai (%s) -> heuristic", cfg.OpenAIModel)
		return classification.NewPipeline(openAITier, heuristic)

	case "ollama":
		ollamaTier := classification.NewOllamaTier(classification.OllamaConfig{
			BaseURL: cfg.OllamaBaseURL,
			Model:   cfg.OllamaModel,
			Timeout: cfg.LLMTimeout,
		})
		logger.Info("Classification pipeline: ollama (%s) -> heuristic", cfg.OllamaModel)
		return classification.NewPipeline(ollamaTier, heuristic)

	default:
		logger.Info("Classification pipeline: heuristic only")
		return classification.NewPipeline(heuristic)
	}
}
