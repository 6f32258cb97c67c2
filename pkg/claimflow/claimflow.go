// Package claimflow assembles the warranty claim service from its parts and
// exposes the pieces an embedding application needs.
package claimflow

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	appClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/application/claims"
	appWarranty "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/application/warranty"
	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/config"
	domainClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
	infraClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/claims"
	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/idempotency"
	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/notify"
	infraWarranty "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/warranty"
	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/logging"
	transport "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/transport/http"
)

// App is the assembled warranty claim service.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Claims      *appClaims.ClaimService
	Eligibility *appWarranty.EligibilityService
	Vehicles    infraWarranty.VehicleRepository
	Conditions  infraWarranty.ConditionRepository

	router  *gin.Engine
	closers []io.Closer
}

// NewApp wires the service from configuration.
func NewApp(cfg *config.Config) (*App, error) {
	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, "claimflow")
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	app := &App{Config: cfg, Logger: logger}

	var (
		repo   infraClaims.ClaimRepository
		events infraClaims.EventStore
	)
	switch cfg.Database.Driver {
	case "sqlite":
		store, err := infraClaims.NewSQLiteClaimStore(infraClaims.SQLiteStoreConfig{
			DatabasePath: cfg.Database.SQLitePath,
		})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, store)
		repo, events = store, store
	case "postgres":
		store, err := infraClaims.NewPostgresClaimStore(cfg.Database.PostgresDSN)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, store)
		repo, events = store, store
	default:
		repo = infraClaims.NewInMemoryClaimRepository()
		events = infraClaims.NewInMemoryEventStore()
	}

	vehicles := infraWarranty.NewInMemoryVehicleRepository()
	conditions := infraWarranty.NewInMemoryConditionRepository()
	eligibility := appWarranty.NewEligibilityService(vehicles, conditions, logger)

	machine := domainClaims.NewStateMachine(domainClaims.WithEligibilityChecker(eligibility))
	notifier := notify.NewLogNotifier(logger)
	claims := appClaims.NewClaimService(repo, events, machine, notifier, logger)

	var idemStore idempotency.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		app.closers = append(app.closers, client)
		idemStore = idempotency.NewRedisStore(client, cfg.Idempotency.TTL)
	} else {
		idemStore = idempotency.NewInMemoryStore()
	}

	app.Claims = claims
	app.Eligibility = eligibility
	app.Vehicles = vehicles
	app.Conditions = conditions
	app.router = transport.NewRouter(transport.RouterConfig{
		Claims:      claims,
		Eligibility: eligibility,
		Idempotency: idemStore,
		JWTSecret:   cfg.Auth.JWTSecret,
		Logger:      logger,
	})

	return app, nil
}

// Router returns the HTTP handler.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Run serves HTTP on the configured address until the server stops.
func (a *App) Run() error {
	a.Logger.Info("starting server", zap.String("addr", a.Config.HTTP.Addr))
	return a.router.Run(a.Config.HTTP.Addr)
}

// Close releases held resources.
func (a *App) Close() error {
	var firstErr error
	for _, closer := range a.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.Logger.Sync()
	return firstErr
}
