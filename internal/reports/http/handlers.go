// Package reportshttp exposes the report sections as a read-only JSON API.
package reportshttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pharmalytics/pharmalytics/internal/platform/httpx"
	"github.com/pharmalytics/pharmalytics/internal/reports"
)

const requestTimeout = 5 * time.Second

// Service exposes the report computations required by the handler.
type Service interface {
	SalesPerformance(ctx context.Context) ([]reports.SalesPerformanceRow, error)
	LowStockAlert(ctx context.Context) ([]reports.LowStockRow, error)
	RegionalPerformance(ctx context.Context) ([]reports.RegionalPerformanceRow, error)
	ProductPerformance(ctx context.Context) ([]reports.ProductPerformanceRow, error)
	CustomerSegments(ctx context.Context) ([]reports.CustomerTypeRow, error)
	CustomerActivity(ctx context.Context) ([]reports.CustomerActivityRow, error)
	CrossSell(ctx context.Context) ([]reports.CrossSellRow, error)
	Summary(ctx context.Context) (reports.ExecutiveSummary, error)
	BuildDashboard(ctx context.Context) (reports.Dashboard, error)
}

// Handler serves the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
	now     func() time.Time
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:  logger,
		service: service,
		now:     time.Now,
	}
}

func (h *Handler) handleSales(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "sales performance", func(ctx context.Context) (any, error) {
		return h.service.SalesPerformance(ctx)
	})
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "low stock", func(ctx context.Context) (any, error) {
		return h.service.LowStockAlert(ctx)
	})
}

func (h *Handler) handleRegions(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "regional performance", func(ctx context.Context) (any, error) {
		return h.service.RegionalPerformance(ctx)
	})
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "product performance", func(ctx context.Context) (any, error) {
		return h.service.ProductPerformance(ctx)
	})
}

func (h *Handler) handleCustomerTypes(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "customer segments", func(ctx context.Context) (any, error) {
		return h.service.CustomerSegments(ctx)
	})
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "customer activity", func(ctx context.Context) (any, error) {
		return h.service.CustomerActivity(ctx)
	})
}

func (h *Handler) handleCrossSell(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "cross sell", func(ctx context.Context) (any, error) {
		return h.service.CrossSell(ctx)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "executive summary", func(ctx context.Context) (any, error) {
		return h.service.Summary(ctx)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "dashboard", func(ctx context.Context) (any, error) {
		return h.service.BuildDashboard(ctx)
	})
}

func (h *Handler) handleReportText(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboard, err := h.service.BuildDashboard(ctx)
	if err != nil {
		h.logger.Error("render report", slog.String("err", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(reports.Render(dashboard, h.now())))
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, name string, load func(context.Context) (any, error)) {
	if h.service == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := load(ctx)
	if err != nil {
		h.logger.Error("compute report", slog.String("report", name), slog.String("err", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}
