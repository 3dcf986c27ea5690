package container

import (
	"tasktracker/internal/config"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
	"tasktracker/internal/service/auth"
	"tasktracker/internal/service/token"
	"tasktracker/pkg/database"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	RedisClient  *redis.Client
	Repositories *repository.Repositories
	Services     *service.Services
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *logger.Logger, db *database.PostgresDB) (*Container, error) {
	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without caching")
	}

	// Initialize repositories
	repos := &repository.Repositories{
		User: repository.NewUserRepository(db),
		Task: repository.NewTaskRepository(db),
	}

	// Initialize services
	services := &service.Services{
		Token:  token.NewService(cfg.JWTSecret),
		Auth:   auth.NewService(repos.User, redisClient, logger),
		Google: auth.NewGoogleVerifier(cfg, logger),
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		RedisClient:  redisClient,
		Repositories: repos,
		Services:     services,
	}, nil
}

// GetTokenService returns the token service
func (c *Container) GetTokenService() service.TokenService {
	return c.Services.Token
}

// GetAuthService returns the auth service
func (c *Container) GetAuthService() service.AuthService {
	return c.Services.Auth
}

// GetGoogleService returns the Google OAuth service
func (c *Container) GetGoogleService() service.GoogleService {
	return c.Services.Google
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
