package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cover-dedup/internal/database"
	"cover-dedup/internal/handlers"
	"cover-dedup/internal/indexer"
	"cover-dedup/internal/lanraragi"
	"cover-dedup/internal/logging"
	"cover-dedup/internal/memory"
	"cover-dedup/internal/metrics"
	"cover-dedup/internal/middleware"
	"cover-dedup/internal/phash"
	"cover-dedup/internal/startup"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// Honor container memory limits before the first large allocation
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Initialize metrics
	var collector *metrics.Collector
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		collector = metrics.NewCollector(db, config.StatsInterval)
		collector.Start()
	}

	// Remote library client and the crawl profile it serves
	client := lanraragi.New(config.BaseURL, config.APIKey, config.HTTPTimeout)
	profile := &database.Profile{
		ID:      database.NewProfileID(config.BaseURL),
		BaseURL: config.BaseURL,
		Lang:    config.ProfileLang,
	}

	// Initialize crawler
	startup.LogCrawlerInit(config.BaseURL, config.CrawlConcurrency)
	crawler := indexer.NewManager(db, client, phash.Hasher{}, indexer.Config{
		Concurrency:         config.CrawlConcurrency,
		Resume:              config.CrawlResume,
		SkipIndexed:         config.CrawlSkipIndexed,
		NoThumbnailFallback: config.ThumbnailNoFallback,
	}, profile)

	// Crawls started over HTTP inherit this context, so they outlive
	// the request that started them but stop on shutdown.
	appCtx, appCancel := context.WithCancel(context.Background())

	// Initialize handlers
	h := handlers.New(appCtx, db, crawler, config)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply metrics middleware
	meteredHandler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	// Apply compression middleware
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(meteredHandler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics server on its own port, outside the middleware chain
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsMux.HandleFunc("/health", h.HealthCheck)
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, collector, appCancel)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/crawl", h.StartCrawl).Methods("POST")
	api.HandleFunc("/crawl/status", h.CrawlStatus).Methods("GET")
	api.HandleFunc("/crawl/cancel", h.CancelCrawl).Methods("POST")
	api.HandleFunc("/duplicates", h.GetDuplicates).Methods("GET")
	api.HandleFunc("/not-duplicate", h.AddNotDuplicate).Methods("POST")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, stopCrawls context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping crawls")
	stopCrawls()
	startup.LogShutdownStepComplete("Crawl context cancelled")

	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
