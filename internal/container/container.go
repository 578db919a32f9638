package container

import (
	"context"

	"portfolio-api/internal/config"
	"portfolio-api/internal/repository"
	"portfolio-api/internal/repository/localstore"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/database"
	"portfolio-api/pkg/localdb"
	"portfolio-api/pkg/logger"
	"portfolio-api/pkg/redis"
)

// Container holds all application dependencies. The remote-or-local
// decision happens exactly once, in New: whatever backend the
// repositories are bound to here is the backend for the process
// lifetime.
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB // nil when the remote store is unavailable
	RedisClient *redis.Client        // nil when Redis is not configured
	LocalStore  *localdb.Store

	VisitorService service.VisitorService
	ContentService *service.ContentService
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	// The local store always opens: the remote probe below may fail,
	// and the fallback backend has to be ready before the repositories
	// bind.
	localStore, err := localdb.Open(cfg.LocalDBPath, log)
	if err != nil {
		return nil, err
	}

	// Probe the remote store once. Failure here is an expected state,
	// not an error: the repositories bind to the local store instead.
	var db *database.PostgresDB
	if cfg.HasRemoteStore() {
		if cfg.DatabaseURL == "" {
			log.Warn("Only a read URL is configured, remote writes will fail")
		}
		db, err = database.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DatabaseReadURL)
		if err != nil {
			log.WithError(err).Warn("Remote store unreachable, falling back to local store")
			db = nil
		}
	} else {
		log.Info("Remote store not configured, using local store")
	}

	// Redis is optional caching, never required.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	var visitorRepo repository.VisitorRepository
	var remoteContent repository.ContentRepository
	if db != nil {
		visitorRepo = repository.NewVisitorRepository(db)
		remoteContent = repository.NewContentRepository(db)
	} else {
		visitorRepo = localstore.NewVisitorStore(localStore)
	}
	localContent := localstore.NewContentStore(localStore)

	if cfg.AdminTokenSecret == "" {
		log.Warn("ADMIN_TOKEN_SECRET not set, admin tokens are checked for expiry only")
	}

	return &Container{
		Config:         cfg,
		Logger:         log,
		DB:             db,
		RedisClient:    redisClient,
		LocalStore:     localStore,
		VisitorService: service.NewVisitorService(visitorRepo, redisClient, log, cfg.OwnerVisitorID),
		ContentService: service.NewContentService(remoteContent, localContent, log),
	}, nil
}

// HasRemoteStore reports whether the container bound to the remote store
func (c *Container) HasRemoteStore() bool {
	return c.DB != nil
}

// Close releases every held resource
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Error("Failed to close Redis connection")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	if c.LocalStore != nil {
		if err := c.LocalStore.Close(); err != nil {
			c.Logger.WithError(err).Error("Failed to close local store")
		}
	}
}
