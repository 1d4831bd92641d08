package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"consolidator/internal/config"
	apperrors "consolidator/internal/errors"
	"consolidator/internal/infrastructure"
	customMiddleware "consolidator/internal/middleware"
	"consolidator/internal/services"
	handlers "consolidator/internal/transport/http"
	"consolidator/pkg/contracts"
)

// AppName is logged at startup
const AppName = "Stock Price Consolidator"

// Application represents the main application container
type Application struct {
	Config               *config.Config
	Router               *chi.Mux
	Server               *http.Server
	Logger               *slog.Logger
	Telemetry            *infrastructure.Telemetry
	ErrorHandler         *apperrors.ErrorHandler
	ConsolidationService *services.ConsolidationService
	HealthService        *services.HealthService
	// ownsLogger is set when the logger was initialized from configuration
	// and its file must be closed on Stop
	ownsLogger bool
}

// NewApplication loads configuration and initializes the global logger
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app, err := NewApplicationWithConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.ownsLogger = true
	return app, nil
}

// NewApplicationWithConfig wires the application from an explicit
// configuration and logger.
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.GetVersionString()))

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, contracts.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	if _, err := infrastructure.RegisterRuntimeMetrics(telemetry.Meter, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() error {
	a.ErrorHandler = apperrors.NewErrorHandler(a.Logger, false)

	consolidation, err := services.NewConsolidationService(a.Config, a.Telemetry, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create consolidation service: %w", err)
	}
	a.ConsolidationService = consolidation

	a.HealthService = services.NewHealthService(contracts.Version, func() bool {
		return a.ConsolidationService != nil
	}, a.Logger)

	a.Logger.Info("Services initialized",
		slog.Int("parse_workers", a.Config.Consolidation.ParseWorkers),
		slog.Bool("skip_invalid_files", a.Config.Consolidation.SkipInvalidFiles),
		slog.Int64("max_upload_bytes", a.Config.Limits.MaxUploadBytes))
	return nil
}

// setupRouter builds the middleware chain and routes.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS →
// rate limit → timeout → body cap.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Prometheus scrapes bypass the request middleware
	if a.Telemetry.PrometheusHTTP != nil {
		r.Handle("/metrics", a.Telemetry.PrometheusHTTP)
	}

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.Telemetry, a.Logger)
	if err != nil {
		return err
	}

	htmlHandler, err := handlers.NewHTMLHandler(a.ConsolidationService, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to parse page template: %w", err)
	}

	r.Group(func(r chi.Router) {
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
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

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.MaxBodySize(a.Config.Limits.MaxUploadBytes))

		a.setupAPIRoutes(r)

		r.Get("/", htmlHandler.Index)
		r.Post("/", htmlHandler.Submit)
	})

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	consolidationHandler := handlers.NewConsolidationHandler(a.ConsolidationService, a.Logger, a.ErrorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Mount("/consolidate", consolidationHandler.Routes())
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			customMiddleware.RequestIDHeader,
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			customMiddleware.RequestIDHeader,
			"Content-Disposition",
			"X-Consolidation-Rows",
			"X-Consolidation-Stocks",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Address(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start binds the listener and serves in the background. A serve failure
// calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	listener, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, cancel, listener)
}

// Serve serves on an existing listener in the background
func (a *Application) Serve(ctx context.Context, cancel context.CancelFunc, listener net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", listener.Addr().String()),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("url", fmt.Sprintf("http://%s", listener.Addr().String())))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")

	if a.ownsLogger {
		if err := infrastructure.CloseLogFile(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
	}
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
