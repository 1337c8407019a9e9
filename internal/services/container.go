package services

import (
	"context"
	"fmt"

	"github.com/imovelscan/leilao-api/internal/config"
	"github.com/imovelscan/leilao-api/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Container holds all service dependencies
type Container struct {
	config      *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	pgPool      *pgxpool.Pool

	CacheService    CacheServiceInterface
	CallbackStore   CallbackStoreInterface
	AnalysisService AnalysisServiceInterface
	ConsultaRepo    repository.ConsultaRepository
}

// NewContainer creates a new service container
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	container.initRedis()
	container.initPostgres()

	if err := container.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return container, nil
}

// initRedis initializes the Redis client. The service degrades to in-memory
// storage when Redis is unreachable, so a failed connection is not fatal.
func (c *Container) initRedis() {
	c.redisClient = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.config.Redis.Host, c.config.Redis.Port),
		Password:     c.config.Redis.Password,
		DB:           c.config.Redis.DB,
		PoolSize:     c.config.Redis.PoolSize,
		DialTimeout:  c.config.Redis.DialTimeout,
		ReadTimeout:  c.config.Redis.ReadTimeout,
		WriteTimeout: c.config.Redis.WriteTimeout,
	})

	ctx := context.Background()
	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.logger.Warn("Redis connection failed, running with in-memory storage")
		c.redisClient = nil
	} else {
		c.logger.Info("Redis connection established")
	}
}

// initPostgres initializes the consulta repository. Consultas are a
// supporting feature: without a database the API still analyzes listings,
// and the consulta endpoints answer 503.
func (c *Container) initPostgres() {
	db := c.config.Database
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		db.User, db.Password, db.Host, db.Port, db.Name, db.SSLMode, db.MaxConns)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		c.logger.WithError(err).Warn("PostgreSQL unavailable, consulta persistence disabled")
		return
	}

	ctx := context.Background()
	if err := pool.Ping(ctx); err != nil {
		c.logger.WithError(err).Warn("PostgreSQL unavailable, consulta persistence disabled")
		pool.Close()
		return
	}

	repo := repository.NewConsultaRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		c.logger.WithError(err).Warn("Failed to ensure consulta schema, persistence disabled")
		pool.Close()
		return
	}

	c.pgPool = pool
	c.ConsultaRepo = repo
	c.logger.Info("PostgreSQL connection established")
}

// initServices initializes all services
func (c *Container) initServices() error {
	extraction := c.config.Extraction

	c.CacheService = NewCacheService(c.redisClient, extraction.CacheTTL, c.logger)
	c.CacheService.StartCleanupRoutine()

	c.CallbackStore = NewCallbackStoreService(c.redisClient, extraction.CallbackTTL, c.logger)

	client := NewExtractionClient(extraction.WorkflowURL, extraction.CallbackURL, extraction.TriggerTimeout, c.logger)
	normalizer := NewNormalizer(c.logger)

	newPoller := func() PollerInterface {
		return NewPollingCoordinator(extraction.CallbackURL, extraction.PollInterval, extraction.PollMaxAttempts, c.logger)
	}

	var recorder ConsultaRecorder
	if c.ConsultaRepo != nil {
		recorder = c.ConsultaRepo
	}

	c.AnalysisService = NewAnalysisService(extraction, c.CacheService, client, normalizer, newPoller, recorder, c.logger)

	return nil
}

// Close closes all service connections
func (c *Container) Close() error {
	var errs []error

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.pgPool != nil {
		c.pgPool.Close()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}

// Health checks the health of all services
func (c *Container) Health() map[string]interface{} {
	health := make(map[string]interface{})

	if c.redisClient != nil {
		ctx := context.Background()
		if err := c.redisClient.Ping(ctx).Err(); err != nil {
			health["redis"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			health["redis"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		health["redis"] = map[string]interface{}{
			"status": "disabled",
		}
	}

	if c.pgPool != nil {
		ctx := context.Background()
		if err := c.pgPool.Ping(ctx); err != nil {
			health["postgres"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			health["postgres"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		health["postgres"] = map[string]interface{}{
			"status": "disabled",
		}
	}

	if c.AnalysisService != nil {
		health["analysis"] = c.AnalysisService.Health()
	}
	if c.CallbackStore != nil {
		health["callback_store"] = c.CallbackStore.Health()
	}

	return health
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logrus.Logger {
	return c.logger
}
