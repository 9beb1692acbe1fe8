package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfware/stockwise"
	"github.com/shelfware/stockwise/infrastructure/api/middleware"
)

// DashboardRouter handles the dashboard aggregate endpoints.
type DashboardRouter struct {
	client *stockwise.Client
	logger *slog.Logger
}

// NewDashboardRouter creates a new DashboardRouter.
func NewDashboardRouter(client *stockwise.Client) *DashboardRouter {
	return &DashboardRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for dashboard endpoints.
func (r *DashboardRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/summary", r.Summary)

	return router
}

// Summary handles GET /api/v1/dashboard/summary.
func (r *DashboardRouter) Summary(w http.ResponseWriter, req *http.Request) {
	summary, err := r.client.Dashboard.Summary(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, summary)
}
