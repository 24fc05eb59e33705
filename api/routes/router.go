package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satriaputra/tokopos-backend/api/controllers"
	webhookcontrollers "github.com/satriaputra/tokopos-backend/api/controllers/webhooks"
	"github.com/satriaputra/tokopos-backend/api/middleware"
	"github.com/satriaputra/tokopos-backend/internal/reconcile"
	"github.com/satriaputra/tokopos-backend/internal/reports"
	"github.com/satriaputra/tokopos-backend/internal/settings"
	"github.com/satriaputra/tokopos-backend/internal/transactions"
	"github.com/satriaputra/tokopos-backend/pkg/config"
	"github.com/satriaputra/tokopos-backend/pkg/db"
	"github.com/satriaputra/tokopos-backend/pkg/enums"
	"github.com/satriaputra/tokopos-backend/pkg/gateway"
	"github.com/satriaputra/tokopos-backend/pkg/logger"
	"github.com/satriaputra/tokopos-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatewayClient *gateway.Client,
	transactionService transactions.Service,
	reconcileService reconcile.Service,
	reportsService reports.Service,
	settingsService settings.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	// Gateway callbacks authenticate by signature, not bearer token.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/gateway", webhookcontrollers.GatewayWebhook(reconcileService, gatewayClient, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Use(middleware.StoreContext(logg))

		r.Route("/v1/transactions", func(r chi.Router) {
			r.Post("/", controllers.TransactionCheckout(transactionService, logg))
			r.Get("/", controllers.TransactionList(transactionService, logg))
			r.Route("/{transactionId}", func(r chi.Router) {
				r.Get("/", controllers.TransactionGet(transactionService, logg))
				r.Get("/status", controllers.TransactionGetStatus(reconcileService, logg))
				r.Post("/sync", controllers.TransactionSync(reconcileService, logg))
				r.Put("/status", controllers.TransactionUpdateStatus(reconcileService, logg))
			})
		})

		r.Route("/v1/reports", func(r chi.Router) {
			r.Get("/summary", controllers.ReportSummary(reportsService, logg))
			r.Get("/dashboard", controllers.ReportDashboard(reportsService, logg))
		})

		r.Route("/v1/settings", func(r chi.Router) {
			r.Get("/", controllers.SettingsGet(settingsService, logg))
			r.With(middleware.RequireRoles(logg, enums.MemberRoleOwner, enums.MemberRoleAdmin)).
				Put("/", controllers.SettingsUpdate(settingsService, logg))
		})
	})

	return r
}
