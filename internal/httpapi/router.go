package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"workorderpro/internal/api"
	"workorderpro/internal/audit"
	"workorderpro/internal/auth"
	"workorderpro/internal/invoice"
	"workorderpro/internal/organization"
	"workorderpro/internal/report"
	"workorderpro/internal/workorder"
	"workorderpro/pkg/config"
)

type Dependencies struct {
	Cfg config.Config
	DB  *pgxpool.Pool
	Log *logrus.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	verifier := newVerifier(deps.Cfg)

	orgRepo := organization.NewRepository(deps.DB)
	orgHandlers := organization.Handlers{Repo: orgRepo, Log: deps.Log}

	auditRepo := audit.NewRepository(deps.DB)
	woRepo := workorder.NewRepository(deps.DB)
	engine := &workorder.Engine{
		DB:    deps.DB,
		Procs: workorder.SQLProcedures{DB: deps.DB},
	}
	woHandlers := workorder.Handlers{
		DB:     deps.DB,
		Repo:   woRepo,
		Engine: engine,
		Audits: auditRepo,
		Log:    deps.Log,
	}

	reportRepo := report.NewRepository(deps.DB)
	reportHandlers := report.Handlers{DB: deps.DB, Repo: reportRepo, Log: deps.Log}

	invoiceRepo := invoice.NewRepository(deps.DB)
	invoiceHandlers := invoice.Handlers{DB: deps.DB, Repo: invoiceRepo, Log: deps.Log}

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(api.SessionAuth(verifier))

			r.Get("/organizations", orgHandlers.List)
			r.Get("/organizations/{id}", orgHandlers.Get)

			r.Get("/work-orders", woHandlers.List)
			r.Post("/work-orders", woHandlers.Create)
			r.Get("/work-orders/{id}", woHandlers.Get)
			r.Post("/work-orders/{id}/transition", woHandlers.Transition)
			r.Get("/work-orders/{id}/audit", woHandlers.AuditTrail)
			r.Get("/work-orders/{id}/reports", reportHandlers.ListByWorkOrder)
			r.Post("/work-orders/{id}/reports", reportHandlers.Submit)
			r.Put("/work-orders/{id}/estimate/approval", woHandlers.ApproveEstimate)

			r.Get("/invoices", invoiceHandlers.List)
			r.Get("/invoices/{id}", invoiceHandlers.Get)

			// Internal-only surface: creation, assignment, review, invoicing,
			// and numbering repair.
			r.Group(func(r chi.Router) {
				r.Use(api.RequireInternal)

				r.Post("/auth/tokens", mintTokenHandler(deps.Cfg))
				r.Post("/organizations", orgHandlers.Create)
				r.Post("/work-orders/{id}/assign", woHandlers.Assign)
				r.Put("/work-orders/{id}/estimate", woHandlers.SetEstimate)
				r.Post("/reports/{id}/review", reportHandlers.Review)
				r.Post("/invoices", invoiceHandlers.Create)
				r.Post("/invoices/{id}/status", invoiceHandlers.ChangeStatus)
				r.Post("/admin/numbering/fix-existing", woHandlers.FixExistingNumbers)
				r.Post("/admin/numbering/fix-sequences", woHandlers.FixSequenceNumbers)
			})
		})

		// Portal: called from a separate frontend domain, so CORS is scoped
		// to the configured origins.
		r.Route("/portal", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   deps.Cfg.PortalAllowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           600,
			}))
			r.Use(api.SessionAuth(verifier))

			r.Get("/work-orders", woHandlers.List)
			r.Post("/work-orders", woHandlers.Create)
		})
	})

	return r
}

// newVerifier picks the session strategy once at startup. Header auth is a
// dev convenience and never allowed in prod.
func newVerifier(cfg config.Config) auth.Verifier {
	if cfg.Auth.Mode == "header" && cfg.AppEnv != "prod" {
		return auth.HeaderVerifier{}
	}
	return auth.TokenVerifier{Secret: cfg.Auth.JWTSecret}
}
