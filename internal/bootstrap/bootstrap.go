package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/nexasuite/powerup/internal/app/controllers"
	appMigrations "github.com/nexasuite/powerup/internal/app/migrations"
	appRepos "github.com/nexasuite/powerup/internal/app/repositories"
	appRoutes "github.com/nexasuite/powerup/internal/app/routes"
	appServices "github.com/nexasuite/powerup/internal/app/services"
	"github.com/nexasuite/powerup/internal/config"
	"github.com/nexasuite/powerup/internal/db"
	appMiddleware "github.com/nexasuite/powerup/internal/middleware"
	pkgAuth "github.com/nexasuite/powerup/internal/pkg/auth"
	"github.com/nexasuite/powerup/internal/pkg/filestorage"
	"github.com/nexasuite/powerup/internal/pkg/logger"
	"github.com/nexasuite/powerup/internal/pkg/realtime"
	"github.com/nexasuite/powerup/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services            *appServices.Services
	AuthController      *appControllers.AuthController
	CommunityController *appControllers.CommunityController
	ChallengeController *appControllers.ChallengeController
	WorkoutController   *appControllers.WorkoutController
	RealtimeHub         *realtime.Hub
	RealtimeHandler     *realtime.Handler
	AuthMiddleware      *appMiddleware.AuthMiddleware
	Repos               *appRepos.Repositories
	JWTService          *pkgAuth.JWTService
	FileStorage         *filestorage.LocalStorage
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the workout type catalog.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to seed default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes repositories, services, controllers and the
// real-time hub.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	// baseURL must match the static file serving endpoint
	baseURL := "http://localhost:" + cfg.Server.Port
	fileStorage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath, baseURL+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.FileStorage = fileStorage

	accessTokenExp, err := time.ParseDuration(cfg.JWT.AccessTokenExpiration)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration: %w", err)
	}
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: accessTokenExp,
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.RealtimeHub = realtime.NewHub(lgr.With().Str("component", "realtime").Logger())

	deps.Services = appServices.NewServices(
		deps.Repos,
		deps.JWTService,
		deps.FileStorage,
		database,
		deps.RealtimeHub,
		lgr,
	)

	deps.RealtimeHandler = realtime.NewHandler(
		deps.RealtimeHub,
		deps.Services.MembershipService,
		lgr.With().Str("component", "realtime").Logger(),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.Services.AuthService)
	deps.CommunityController = appControllers.NewCommunityController(deps.Services.MembershipService)
	deps.ChallengeController = appControllers.NewChallengeController(deps.Services.ChallengeService)
	deps.WorkoutController = appControllers.NewWorkoutController(deps.Services.WorkoutService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.CommunityController,
		deps.ChallengeController,
		deps.WorkoutController,
		deps.RealtimeHandler,
		deps.AuthMiddleware,
	)

	return router
}
