package reportshttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

const rateLimit = 10
const rateWindow = time.Minute

// MountRoutes registers the report endpoints. The dashboard and text report
// recompute every section, so they sit behind a per-IP limiter.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(rateLimit, rateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Route("/reports", func(gr chi.Router) {
		gr.Get("/sales", h.handleSales)
		gr.Get("/low-stock", h.handleLowStock)
		gr.Get("/regions", h.handleRegions)
		gr.Get("/products", h.handleProducts)
		gr.Get("/customer-types", h.handleCustomerTypes)
		gr.Get("/activity", h.handleActivity)
		gr.Get("/cross-sell", h.handleCrossSell)
		gr.Get("/summary", h.handleSummary)
		gr.Group(func(hr chi.Router) {
			hr.Use(limiter)
			hr.Get("/dashboard", h.handleDashboard)
			hr.Get("/text", h.handleReportText)
		})
	})
}
