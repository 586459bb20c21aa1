package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/clubhub/internal/app/auth"
	appControllers "github.com/yigit/clubhub/internal/app/controllers"
	appMigrations "github.com/yigit/clubhub/internal/app/migrations"
	appRepos "github.com/yigit/clubhub/internal/app/repositories"
	appRoutes "github.com/yigit/clubhub/internal/app/routes"
	appServices "github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/config"
	"github.com/yigit/clubhub/internal/db"
	appMiddleware "github.com/yigit/clubhub/internal/middleware"
	pkgAuth "github.com/yigit/clubhub/internal/pkg/auth"
	"github.com/yigit/clubhub/internal/pkg/cache"
	"github.com/yigit/clubhub/internal/pkg/filestorage"
	"github.com/yigit/clubhub/internal/pkg/helpers"
	"github.com/yigit/clubhub/internal/pkg/logger"
	"github.com/yigit/clubhub/internal/pkg/notify"
	"github.com/yigit/clubhub/internal/pkg/validation"
	"github.com/yigit/clubhub/internal/pkg/websocket"
	"github.com/yigit/clubhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	FileStorage    *filestorage.LocalStorage
	Cache          cache.Cache
	Publisher      notify.Publisher
	Hub            *websocket.Hub
	LiveHandler    *websocket.Handler
	Logger         zerolog.Logger
}

// Close releases the cache and publisher connections.
func (d *Dependencies) Close() error {
	return errors.Join(d.Cache.Close(), d.Publisher.Close())
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects, applies the embedded migrations and seeds the admin account.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool, lgr).Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	admin := seed.Admin{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		RollNo:   cfg.Admin.RollNo,
		Password: cfg.Admin.Password,
	}
	if err := seed.CreateDefaultData(ctx, appRepos.NewUserRepository(database.Pool), admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes services, controllers and the poll hub on top
// of repos. The hub runs until ctx is cancelled. pinger may be nil.
func BuildDependencies(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, pinger appControllers.Pinger, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Repos: repos, Logger: lgr}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.BaseURL, cfg.MaxUploadBytes())
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Cache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "clubhub")
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to redis")
			return nil, err
		}
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache initialized")
		deps.Cache = redisCache
	}

	deps.Publisher = notify.Nop{}
	if cfg.NATS.URL != "" {
		publisher, err := notify.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to NATS")
			_ = deps.Cache.Close()
			return nil, err
		}
		deps.Publisher = publisher
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Hub = websocket.NewHub(lgr.With().Str("component", "poll-hub").Logger())
	go deps.Hub.Run(ctx)

	deps.Services = appServices.NewServices(appServices.Deps{
		Repos:       repos,
		JWT:         deps.JWTService,
		FileStorage: deps.FileStorage,
		Cache:       deps.Cache,
		CacheTTL:    helpers.ParseDuration(cfg.Redis.CacheTTL, time.Minute),
		Publisher:   deps.Publisher,
		Broadcaster: deps.Hub,
		Logger:      lgr,
	})

	pollService := deps.Services.Poll
	snapshot := func(ctx context.Context, caller appAuth.Caller, pollID int64) (any, error) {
		return pollService.GetPollResults(ctx, caller, pollID)
	}
	deps.LiveHandler = websocket.NewHandler(deps.Hub, snapshot, cfg.Server.CORSOrigins, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.UserRepository, repos.MembershipRepository)

	deps.Controllers = appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.Services.Auth, lgr),
		User:      appControllers.NewUserController(deps.Services.User),
		Club:      appControllers.NewClubController(deps.Services.Club, lgr),
		Request:   appControllers.NewRequestController(deps.Services.Request),
		Event:     appControllers.NewEventController(deps.Services.Event),
		Poll:      appControllers.NewPollController(deps.Services.Poll),
		Feedback:  appControllers.NewFeedbackController(deps.Services.Feedback),
		Analytics: appControllers.NewAnalyticsController(deps.Services.Analytics),
		Health:    appControllers.NewHealthController(pinger, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	validation.Register()

	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes()
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
	)
	router.NoRoute(appMiddleware.NoRoute())

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.LiveHandler.HandleConnection)

	router.Static(filestorage.URLPrefix, deps.FileStorage.BasePath())
	lgr.Info().Str("path", deps.FileStorage.BasePath()).Msg("Static file serving configured for uploads directory")

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
