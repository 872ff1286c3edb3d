package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/materialdesk/materialdesk-backend/api/routes"
	"github.com/materialdesk/materialdesk-backend/internal/inventory"
	"github.com/materialdesk/materialdesk-backend/internal/materials"
	"github.com/materialdesk/materialdesk-backend/internal/orders"
	"github.com/materialdesk/materialdesk-backend/internal/projects"
	"github.com/materialdesk/materialdesk-backend/internal/statusflow"
	"github.com/materialdesk/materialdesk-backend/internal/suppliers"
	"github.com/materialdesk/materialdesk-backend/internal/users"
	"github.com/materialdesk/materialdesk-backend/pkg/config"
	"github.com/materialdesk/materialdesk-backend/pkg/db"
	"github.com/materialdesk/materialdesk-backend/pkg/logger"
	"github.com/materialdesk/materialdesk-backend/pkg/metrics"
	"github.com/materialdesk/materialdesk-backend/pkg/migrate"
	"github.com/materialdesk/materialdesk-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svcs, err := buildServices(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	deps := routes.Dependencies{
		DB:          dbClient,
		Redis:       redisClient,
		Idempotency: redisClient,
		HTTPMetrics: metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, svcs, deps),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(dbClient *db.Client) (routes.Services, error) {
	gdb := dbClient.DB()

	materialRepo := inventory.NewRepository(gdb)
	ledger, err := inventory.NewLedger(materialRepo)
	if err != nil {
		return routes.Services{}, err
	}

	materialsSvc, err := materials.NewService(materialRepo, ledger)
	if err != nil {
		return routes.Services{}, err
	}

	projectRepo := projects.NewRepository(gdb)
	projectsSvc, err := projects.NewService(projectRepo)
	if err != nil {
		return routes.Services{}, err
	}

	statusRepo := statusflow.NewRepository(gdb)
	userRepo := users.NewRepository(gdb)
	statusSvc, err := statusflow.NewService(statusRepo, projectRepo, userRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	ordersSvc, err := orders.NewService(
		orders.NewRepository(gdb),
		materialRepo,
		ledger,
		projectRepo,
		projectsSvc,
		statusRepo,
		statusSvc,
		dbClient,
	)
	if err != nil {
		return routes.Services{}, err
	}

	suppliersSvc, err := suppliers.NewService(suppliers.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Materials: materialsSvc,
		Orders:    ordersSvc,
		Projects:  projectsSvc,
		Status:    statusSvc,
		Suppliers: suppliersSvc,
	}, nil
}
