package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pharmalytics/pharmalytics/internal/app"
	"github.com/pharmalytics/pharmalytics/internal/platform/cache"
	"github.com/pharmalytics/pharmalytics/internal/platform/db"
	"github.com/pharmalytics/pharmalytics/internal/reports"
	reportshttp "github.com/pharmalytics/pharmalytics/internal/reports/http"
	"github.com/pharmalytics/pharmalytics/internal/store"
	"github.com/pharmalytics/pharmalytics/internal/store/pg"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	var runErr error
	switch command {
	case "serve":
		runErr = runServe(ctx, cfg, logger, args)
	case "report":
		runErr = runReport(ctx, cfg, logger, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want serve or report)\n", command)
		os.Exit(2)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("run "+command, slog.Any("error", runErr))
		os.Exit(1)
	}
}

func runServe(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.AppAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := loadStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	reportCache := newReportCache(ctx, cfg, logger)
	service := reports.NewService(st, reportCache)
	handler := reportshttp.NewHandler(logger, service)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		ReportsHandler: handler,
	})

	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", *addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func runReport(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := loadStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// One-shot run: skip the cache and compute directly.
	service := reports.NewService(st, nil)
	dashboard, err := service.BuildDashboard(ctx)
	if err != nil {
		return err
	}
	fmt.Print(reports.Render(dashboard, time.Now()))
	return nil
}

func loadStore(ctx context.Context, cfg *app.Config, logger *slog.Logger) (*store.Store, error) {
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Warn("postgres unavailable, starting with empty store", slog.Any("error", err))
		return store.New(), nil
	}
	repo := pg.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	st, err := store.Restore(snap)
	if err != nil {
		return nil, err
	}
	logger.Info("store loaded",
		slog.Int("customers", len(snap.Customers)),
		slog.Int("products", len(snap.Products)),
		slog.Int("orders", len(snap.Orders)))
	return st, nil
}

func newReportCache(ctx context.Context, cfg *app.Config, logger *slog.Logger) *reports.Cache {
	client, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, reports served uncached", slog.Any("error", err))
		return nil
	}
	return reports.NewCache(client, cfg.ReportCacheTTL)
}
