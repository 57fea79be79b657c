package main

import (
	"context"
	"net/http"
	"os"

	"github.com/fleetdesk/fleetdesk-backend/api/routes"
	"github.com/fleetdesk/fleetdesk-backend/internal/auth"
	"github.com/fleetdesk/fleetdesk-backend/internal/companies"
	"github.com/fleetdesk/fleetdesk-backend/internal/expenses"
	"github.com/fleetdesk/fleetdesk-backend/internal/invites"
	"github.com/fleetdesk/fleetdesk-backend/internal/loads"
	"github.com/fleetdesk/fleetdesk-backend/internal/users"
	"github.com/fleetdesk/fleetdesk-backend/pkg/auth/session"
	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/migrate"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox"
	"github.com/fleetdesk/fleetdesk-backend/pkg/redis"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	companyService, err := companies.NewService(companies.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create company service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gormDB),
		Companies:      companyService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)
	userRepo := users.NewRepository(gormDB)

	inviteCfg := invites.Config{
		CodeLength:         cfg.Invites.CodeLength,
		MaxGenerateRetries: cfg.Invites.MaxGenerateRetries,
		DefaultExpiryDays:  cfg.Invites.DefaultExpiryDays,
	}
	dispatcherRepo := invites.NewRepository[models.DispatcherAssociation, *models.DispatcherAssociation](gormDB)
	driverRepo := invites.NewRepository[models.DriverAssociation, *models.DriverAssociation](gormDB)

	dispatcherService, err := invites.NewDispatcherService(invites.Deps[models.DispatcherAssociation, *models.DispatcherAssociation]{
		Store:     dispatcherRepo,
		PeerCodes: driverRepo,
		Companies: companyService,
		Users:     userRepo,
		Events:    outboxService,
		Tx:        dbClient,
		Logger:    logg,
		Config:    inviteCfg,
	}, invites.NewFeeRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher service", err)
		os.Exit(1)
	}

	driverService, err := invites.NewDriverService(invites.Deps[models.DriverAssociation, *models.DriverAssociation]{
		Store:     driverRepo,
		PeerCodes: dispatcherRepo,
		Companies: companyService,
		Users:     userRepo,
		Events:    outboxService,
		Tx:        dbClient,
		Logger:    logg,
		Config:    inviteCfg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create driver service", err)
		os.Exit(1)
	}

	loadService, err := loads.NewService(loads.ServiceParams{
		Repo:      loads.NewRepository(gormDB),
		Drivers:   driverRepo,
		Companies: companyService,
		Events:    outboxService,
		Tx:        dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create load service", err)
		os.Exit(1)
	}

	expenseService, err := expenses.NewService(expenses.NewRepository(gormDB), companyService)
	if err != nil {
		logg.Error(context.Background(), "failed to create expense service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Auth:        authService,
			Register:    registerService,
			Companies:   companyService,
			Dispatchers: dispatcherService,
			Drivers:     driverService,
			Loads:       loadService,
			Expenses:    expenseService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
