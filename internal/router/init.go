package router

import (
	"github.com/wander-api/wander/internal/application"
	"github.com/wander-api/wander/internal/container"
	pginfra "github.com/wander-api/wander/internal/infrastructure/postgres"
	handlers "github.com/wander-api/wander/internal/interface/http"
	"github.com/wander-api/wander/internal/router/modules"
	"github.com/wander-api/wander/pkg/helpers"
)

// InitModules builds every feature module from the container singletons and
// registers it with the registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	tourRepo := pginfra.NewTourRepository(container.GetPGPool())

	authSvc := application.NewAuthService(
		userRepo,
		container.GetJWT(),
		helpers.NewPasswordHasher(cfg.BcryptCost),
		container.GetRabbitPub(),
		logger,
		cfg.ResetTokenTTL,
		cfg.ResetPasswordURL,
	)
	userSvc := application.NewUserService(userRepo, container.GetGCS(), cfg.GCSBucket, logger)
	tourSvc := application.NewTourService(tourRepo, container.GetRedis(), container.GetES(), cfg.ESToursIndex, logger)

	authHandler := handlers.NewAuthHandler(authSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(userSvc, logger)
	tourHandler := handlers.NewTourHandler(tourSvc, logger)

	r.Add(modules.NewUserModule(authHandler, userHandler, userRepo))
	r.Add(modules.NewTourModule(tourHandler, userRepo))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
