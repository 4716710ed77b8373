package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/volunteerhub/internal/app/auth"
	appControllers "github.com/yigit/volunteerhub/internal/app/controllers"
	appMigrations "github.com/yigit/volunteerhub/internal/app/migrations"
	appRepos "github.com/yigit/volunteerhub/internal/app/repositories"
	appRoutes "github.com/yigit/volunteerhub/internal/app/routes"
	appServices "github.com/yigit/volunteerhub/internal/app/services"
	"github.com/yigit/volunteerhub/internal/config"
	"github.com/yigit/volunteerhub/internal/db"
	appMiddleware "github.com/yigit/volunteerhub/internal/middleware"
	pkgAuth "github.com/yigit/volunteerhub/internal/pkg/auth"
	"github.com/yigit/volunteerhub/internal/pkg/email"
	"github.com/yigit/volunteerhub/internal/pkg/logger"
	"github.com/yigit/volunteerhub/internal/pkg/websocket"
	"github.com/yigit/volunteerhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos              *appRepos.Repositories
	JWTService         *pkgAuth.JWTService
	AuthzService       *appAuth.AuthorizationService
	Hub                *websocket.Hub
	Notifier           email.Notifier
	AuthService        *appServices.AuthService
	OpportunityService appServices.OpportunityService
	ApplicationService appServices.ApplicationService
	FeedbackService    appServices.FeedbackService
	AuthMiddleware     *appMiddleware.AuthMiddleware
	Controllers        appRoutes.Controllers
	Logger             zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the connection pool
func ConnectDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies every pending migration in dir
func RunMigrations(ctx context.Context, database *db.PostgresDB, dir string, lgr zerolog.Logger) error {
	if dir == "" {
		dir = appMigrations.DefaultDirectory
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		lgr.Error().Str("path", dir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", dir, err)
	}

	lgr.Info().Str("path", dir).Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(database, lgr).MigrateFromDirectory(ctx, dir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", len(applied)).Msg("Database migrations successfully applied.")
	return nil
}

// SetupDatabase connects, migrates and seeds the database.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := ConnectDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := RunMigrations(ctx, database, appMigrations.DefaultDirectory, lgr); err != nil {
		database.Close()
		return nil, err
	}

	// A failed seed is logged but does not stop the server
	if _, err := seed.EnsureAdmin(ctx, appRepos.NewUserRepository(database), cfg.Seed, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// NewNotifier builds the decision email notifier from the SMTP settings
func NewNotifier(cfg *config.Config, lgr zerolog.Logger) email.Notifier {
	notifier := email.NewSMTPNotifier(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, lgr)

	if cfg.SMTP.Host == "" {
		lgr.Warn().Msg("SMTP host not configured, decision emails will only be logged")
	}
	return notifier
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.OrganizationRepository)
	// The hub is started by the server; until then events are queued
	deps.Hub = websocket.NewHub(lgr)
	deps.Notifier = email.MultiNotifier{NewNotifier(cfg, lgr), deps.Hub}

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.OrganizationRepository,
		deps.JWTService,
		lgr.With().Str("service", "auth").Logger(),
	)
	deps.OpportunityService = appServices.NewOpportunityService(
		deps.Repos.OpportunityRepository,
		deps.Repos.ApplicationRepository,
		deps.AuthzService,
		lgr.With().Str("service", "opportunity").Logger(),
	)
	deps.ApplicationService = appServices.NewApplicationService(
		deps.Repos.ApplicationRepository,
		deps.Repos.OpportunityRepository,
		deps.Repos.UserRepository,
		deps.AuthzService,
		deps.Notifier,
		lgr.With().Str("service", "application").Logger(),
	)
	deps.FeedbackService = appServices.NewFeedbackService(
		deps.Repos.FeedbackRepository,
		deps.Repos.ApplicationRepository,
		deps.Repos.OpportunityRepository,
		lgr.With().Str("service", "feedback").Logger(),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Auth:        appControllers.NewAuthController(deps.AuthService, lgr),
		Opportunity: appControllers.NewOpportunityController(deps.OpportunityService),
		Application: appControllers.NewApplicationController(deps.ApplicationService),
		Feedback:    appControllers.NewFeedbackController(deps.FeedbackService),
		Live:        websocket.NewHandler(deps.Hub, cfg.Server.AllowedOrigins, lgr),
	}

	return deps
}

// corsConfig translates the allowed origins setting. "*" allows every origin.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", appMiddleware.RequestIDHeader},
		ExposeHeaders: []string{appMiddleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, database appRoutes.Pinger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		deps.Logger.Info().Msg("Setting Gin mode to release")
	} else if cfg.Server.Mode == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
		deps.Logger.Info().Msg("Setting Gin mode to debug")
	}

	appMiddleware.RegisterValidatorTagNames()

	router := gin.New()
	router.Use(appMiddleware.Recovery(), appMiddleware.RequestLogger(), cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	appRoutes.SetupSwagger(router, "")

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, database)

	return router
}
