package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/materialdesk/materialdesk-backend/api/controllers"
	"github.com/materialdesk/materialdesk-backend/api/middleware"
	"github.com/materialdesk/materialdesk-backend/internal/materials"
	"github.com/materialdesk/materialdesk-backend/internal/orders"
	"github.com/materialdesk/materialdesk-backend/internal/projects"
	"github.com/materialdesk/materialdesk-backend/internal/statusflow"
	"github.com/materialdesk/materialdesk-backend/internal/suppliers"
	"github.com/materialdesk/materialdesk-backend/pkg/config"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	"github.com/materialdesk/materialdesk-backend/pkg/logger"
	"github.com/materialdesk/materialdesk-backend/pkg/metrics"
	pkgredis "github.com/materialdesk/materialdesk-backend/pkg/redis"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Materials materials.Service
	Orders    orders.Service
	Projects  projects.Service
	Status    statusflow.Service
	Suppliers suppliers.Service
}

// Dependencies carries the infrastructure the router needs beyond services.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svcs Services, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.Idempotency(deps.Idempotency, logg),
		)

		r.Route("/materials", func(r chi.Router) {
			r.Get("/", controllers.ListMaterials(svcs.Materials, logg))
			r.Get("/{id}", controllers.GetMaterial(svcs.Materials, logg))
			r.With(middleware.RequireRole(logg, enums.RoleAdmin)).
				Post("/", controllers.CreateMaterial(svcs.Materials, logg))
			r.With(middleware.RequireRole(logg, enums.RoleWarehouse, enums.RoleAdmin)).
				Put("/{id}/quantity", controllers.SetMaterialQuantity(svcs.Materials, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/{id}", controllers.GetOrder(svcs.Orders, logg))
			r.Get("/{id}/project", controllers.GetOrderProject(svcs.Projects, logg))
			r.With(middleware.RequireRole(logg, enums.RoleProjectManager, enums.RoleAdmin)).
				Post("/", controllers.CreateOrder(svcs.Orders, logg))
			r.Post("/{id}/confirm", controllers.ConfirmOrder(svcs.Orders, logg))
			r.Post("/{id}/cancel", controllers.CancelOrder(svcs.Orders, logg))
			r.Patch("/{id}/name", controllers.RenameOrder(svcs.Orders, logg))
			r.With(middleware.RequireRole(logg, enums.RoleWarehouse, enums.RoleAdmin)).
				Put("/{id}/status", controllers.UpdateOrderStatus(svcs.Orders, logg))
			r.With(middleware.RequireRole(logg, enums.RoleAdmin)).
				Delete("/{id}", controllers.DeleteOrder(svcs.Orders, logg))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/{id}", controllers.GetProject(svcs.Projects, logg))
			r.Get("/{id}/status", controllers.ProjectStatusLatest(svcs.Status, logg))
			r.Get("/{id}/status/history", controllers.ProjectStatusHistory(svcs.Status, logg))
			r.With(middleware.RequireRole(logg, enums.RoleWarehouse, enums.RoleAdmin)).
				Post("/{id}/status", controllers.AppendProjectStatus(svcs.Status, logg))
		})

		r.Get("/suppliers/summary", controllers.SupplierSummary(svcs.Suppliers, logg))
	})

	return r
}
