package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"cbpdash/internal/config"
	"cbpdash/internal/dataprocessing"
	apierrors "cbpdash/internal/errors"
	"cbpdash/internal/infrastructure"
	customMiddleware "cbpdash/internal/middleware"
	"cbpdash/internal/services"
	handlers "cbpdash/internal/transport/http"
	"cbpdash/pkg/contracts"
)

// AppName is logged at startup
const AppName = "County Business Patterns Dashboard"

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.BusinessMetrics
	Source           dataprocessing.Source
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	ErrorHandler     *apierrors.ErrorHandler
}

// NewApplication loads the configuration, initializes the global logger and
// wires the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err)
	}

	paths, err := config.GetPaths()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to get paths", err)
	}
	cfg.ResolvePaths(paths)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))
	cfg.LogPathResolution(logger, paths)

	return New(cfg, logger)
}

// New wires an application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	otelProviders, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: contracts.Version,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		EnableMetrics:  cfg.Telemetry.MetricsEnabled,
		SampleRatio:    1.0,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	if err := infrastructure.RegisterSystemMetrics(otelProviders.Meter, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to register system metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes the data source and the services on top of it
func (a *Application) initializeServices() {
	a.Source = a.newSource()

	a.DashboardService = services.NewDashboardService(a.Source, services.DashboardConfig{
		Year:          a.Config.Data.Year,
		DefaultSector: a.Config.Data.DefaultSector,
	}, a.Metrics, a.Logger)

	a.HealthService = services.NewHealthService(contracts.Version, a.Config.Data.SourcePath, a.Logger)
}

// newSource re-reads the source per request unless the cache is enabled.
func (a *Application) newSource() dataprocessing.Source {
	loader := dataprocessing.NewLoader(a.Logger)
	if !a.Config.Data.CacheEnabled {
		return dataprocessing.FileSource{Path: a.Config.Data.SourcePath, Loader: loader}
	}

	cache := dataprocessing.NewCache(a.Config.Data.SourcePath, loader, a.Logger)
	m := a.Metrics
	cache.OnHit = func(ctx context.Context) { m.DatasetCacheHits.Add(ctx, 1) }
	cache.OnMiss = func(ctx context.Context) { m.DatasetCacheMisses.Add(ctx, 1) }
	return cache
}

// setupRouter configures the HTTP router with all routes.
// Ordering: RequestID → RealIP → OTel → Logger → Recoverer → Security → CORS → RateLimit
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.Use(customMiddleware.Compress(5))

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Handle("/metrics", handlers.MetricsHandler(a.OTelProviders.PrometheusHTTP))

	validator := customMiddleware.NewQueryValidator(a.Logger, a.ErrorHandler)
	pageHandler := handlers.NewPageHandler(a.DashboardService, validator, a.ErrorHandler, a.Logger)
	dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, validator, a.ErrorHandler, a.Logger)
	exportHandler := handlers.NewExportHandler(a.DashboardService, validator, a.ErrorHandler, a.Metrics, a.Logger)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		r.Get("/", pageHandler.ServeDashboard)

		r.Route("/api", func(r chi.Router) {
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/version", healthHandler.Version)

			r.Mount("/export", exportHandler.Routes())
			r.Mount("/", dashboardHandler.Routes())
		})
	})

	a.Router = r
}

// getCORSConfig builds the CORS policy from the security settings
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server in the background. A listen failure cancels ctx.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("source", a.Config.Data.SourcePath),
		slog.Bool("cache_enabled", a.Config.Data.CacheEnabled))

	a.performStartupHealthCheck(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	return a.Stop(context.Background())
}

// performStartupHealthCheck warns when the data source is not readable.
// The server still starts; requests answer 503 until the file appears.
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	status := a.HealthService.ReadinessCheck(ctx)
	if status.Status == services.StatusReady {
		a.Logger.InfoContext(ctx, "Startup health check passed")
	}
}
