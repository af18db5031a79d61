package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/stwalsh4118/valuator/api/internal/config"
	"github.com/stwalsh4118/valuator/api/internal/database"
	"github.com/stwalsh4118/valuator/api/internal/enrichment"
	"github.com/stwalsh4118/valuator/api/internal/handlers"
	"github.com/stwalsh4118/valuator/api/internal/logger"
	"github.com/stwalsh4118/valuator/api/internal/middleware"
	"github.com/stwalsh4118/valuator/api/internal/repository"
	"github.com/stwalsh4118/valuator/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

// app holds the wired services the router needs.
type app struct {
	intake   services.IntakeService
	auth     services.AuthService
	sessions *services.TokenIssuer
	checks   map[string]handlers.Check
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.Server.Env, logger.WithLevel(cfg.Server.LogLevel), logger.WithService("valuator"))
	log.Info("Starting Valuator API", logger.Fields{
		"version":     version,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, users, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()
	defer users.Close()

	a, err := wire(cfg, log, db, users)
	if err != nil {
		return err
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           newRouter(cfg, log, a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", logger.Fields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, logger.Fields{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
	return nil
}

// openStores connects to PostgreSQL and the SQLite credential file and makes
// sure both schemas exist.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.Database, *sql.DB, error) {
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database %s:%s/%s: %w",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, err)
	}
	log.Info("Database connection established", logger.Fields{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
		"sslmode":  cfg.Database.SSLMode,
	})

	users, err := database.OpenSQLite(ctx, cfg.Credentials.Path)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info("Credential store opened", logger.Fields{"path": cfg.Credentials.Path})

	if err := database.EnsurePropertySchema(ctx, db.Pool); err != nil {
		db.Close()
		users.Close()
		return nil, nil, err
	}
	if err := database.EnsureCredentialSchema(ctx, users); err != nil {
		db.Close()
		users.Close()
		return nil, nil, err
	}
	return db, users, nil
}

// wire builds repositories, enrichment clients and services.
func wire(cfg *config.Config, log *logger.Logger, db *database.Database, users *sql.DB) (*app, error) {
	sessions, err := services.NewTokenIssuer(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	if err != nil {
		return nil, err
	}

	geocoder, lookup := newEnrichmentClients(cfg.Enrichment, &http.Client{Timeout: cfg.Enrichment.HTTPTimeout})
	if !cfg.Enrichment.GeocodingEnabled() || !cfg.Enrichment.LookupEnabled() {
		log.Warn("Enrichment partially disabled", logger.Fields{
			"geocoding":     cfg.Enrichment.GeocodingEnabled(),
			"property_data": cfg.Enrichment.LookupEnabled(),
		})
	}

	propertyRepo := repository.NewPropertyRepository(db.Pool)
	userRepo := repository.NewUserRepository(users)

	return &app{
		intake:   services.NewIntakeService(propertyRepo, geocoder, lookup, log),
		auth:     services.NewAuthService(userRepo, log),
		sessions: sessions,
		checks: map[string]handlers.Check{
			"database":    db.Ping,
			"credentials": users.PingContext,
		},
	}, nil
}

// newEnrichmentClients builds the geocoder and property lookup against the
// configured endpoints, sharing one HTTP client.
func newEnrichmentClients(cfg config.EnrichmentConfig, httpClient *http.Client) (enrichment.Geocoder, enrichment.PropertyLookup) {
	geocoder := enrichment.NewGoogleGeocoder(cfg.GoogleAPIKey,
		enrichment.WithHTTPClient(httpClient),
		enrichment.WithBaseURL(cfg.GoogleGeocodeURL),
		enrichment.WithRateLimit(cfg.RatePerSecond),
	)
	lookup := enrichment.NewAttomClient(cfg.AttomAPIKey,
		enrichment.WithHTTPClient(httpClient),
		enrichment.WithBaseURL(cfg.AttomDetailURL),
		enrichment.WithRateLimit(cfg.RatePerSecond),
	)
	return geocoder, lookup
}

// newRouter registers middleware and every route.
func newRouter(cfg *config.Config, log *logger.Logger, a *app) *gin.Engine {
	router := gin.New()

	// RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	healthHandler := handlers.NewHealthHandler(a.checks, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	authHandler := handlers.NewAuthHandler(a.auth, a.sessions, cfg.Auth.CookieSecure)
	router.POST("/", authHandler.Login)
	router.POST("/login", authHandler.Login)
	router.POST("/register", authHandler.Register)
	router.GET("/logout", authHandler.Logout)

	intakeHandler := handlers.NewIntakeHandler(a.intake)
	propertyHandler := handlers.NewPropertyHandler(a.intake)

	authed := router.Group("/", middleware.RequireSession(a.sessions, log))
	{
		authed.GET("/dashboard", intakeHandler.Dashboard)
		authed.POST("/check_file_number", intakeHandler.CheckFileNumber)
		authed.POST("/get-lat-lng", intakeHandler.GetLatLng)
		authed.POST("/form-step1", intakeHandler.StepOne)
		authed.GET("/form-step2/:file_number", intakeHandler.StepTwo)
		authed.POST("/form-step2/:file_number", intakeHandler.SubmitStepTwo)
		authed.POST("/form-step2/:file_number/comps/:comp/lookup", intakeHandler.LookupComparable)

		api := authed.Group("/api")
		{
			api.GET("/subject-data", propertyHandler.SubjectData)
			api.GET("/comp-data", propertyHandler.CompData)
		}
	}

	return router
}
