package startup

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"cover-dedup/internal/filesystem"
	"cover-dedup/internal/logging"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	BaseURL     string
	APIKey      string
	ProfileLang string
	DatabaseDir string
	Port        string
	MetricsPort string

	CrawlConcurrency    int
	CrawlResume         bool
	CrawlSkipIndexed    bool
	ThumbnailNoFallback bool

	DHashThreshold int
	AHashThreshold int
	MaxBucketSize  int

	HTTPTimeout   time.Duration
	StatsInterval time.Duration

	LogHealthChecks bool
	MetricsEnabled  bool

	// Derived paths
	DatabasePath string
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	baseURL := getEnv("LRR_BASE_URL", "")
	apiKey := getEnv("LRR_API_KEY", "")
	profileLang := getEnv("PROFILE_LANG", "en")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	crawlConcurrency := getEnvInt("CRAWL_CONCURRENCY", 6)
	crawlResume := getEnvBool("CRAWL_RESUME", false)
	crawlSkipIndexed := getEnvBool("CRAWL_SKIP_INDEXED", true)
	thumbnailNoFallback := getEnvBool("THUMBNAIL_NO_FALLBACK", true)
	dhashThreshold := getEnvInt("DHASH_THRESHOLD", 8)
	ahashThreshold := getEnvInt("AHASH_THRESHOLD", 8)
	maxBucketSize := getEnvInt("MAX_BUCKET_SIZE", 256)
	httpTimeoutStr := getEnv("HTTP_TIMEOUT", "30s")
	statsIntervalStr := getEnv("STATS_INTERVAL", "30s")
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	logging.Info("  LRR_BASE_URL:          %s", baseURL)
	logging.Info("  LRR_API_KEY:           %s", maskSecret(apiKey))
	logging.Info("  PROFILE_LANG:          %s", profileLang)
	logging.Info("  DATABASE_DIR:          %s", databaseDir)
	logging.Info("  PORT:                  %s", port)
	logging.Info("  METRICS_PORT:          %s", metricsPort)
	logging.Info("  METRICS_ENABLED:       %v", metricsEnabled)
	logging.Info("  CRAWL_CONCURRENCY:     %d", crawlConcurrency)
	logging.Info("  CRAWL_RESUME:          %v", crawlResume)
	logging.Info("  CRAWL_SKIP_INDEXED:    %v", crawlSkipIndexed)
	logging.Info("  THUMBNAIL_NO_FALLBACK: %v", thumbnailNoFallback)
	logging.Info("  DHASH_THRESHOLD:       %d", dhashThreshold)
	logging.Info("  AHASH_THRESHOLD:       %d", ahashThreshold)
	logging.Info("  MAX_BUCKET_SIZE:       %d", maxBucketSize)
	logging.Info("  HTTP_TIMEOUT:          %s", httpTimeoutStr)
	logging.Info("  STATS_INTERVAL:        %s", statsIntervalStr)
	logging.Info("  LOG_HEALTH_CHECKS:     %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())

	if baseURL == "" {
		return nil, fmt.Errorf("LRR_BASE_URL is required")
	}
	if err := ValidateBaseURL(baseURL); err != nil {
		return nil, fmt.Errorf("invalid LRR_BASE_URL: %w", err)
	}

	httpTimeout, err := time.ParseDuration(httpTimeoutStr)
	if err != nil {
		logging.Warn("  Invalid HTTP_TIMEOUT, using default: 30s")
		httpTimeout = 30 * time.Second
	}

	statsInterval, err := time.ParseDuration(statsIntervalStr)
	if err != nil {
		logging.Warn("  Invalid STATS_INTERVAL, using default: 30s")
		statsInterval = 30 * time.Second
	}

	if crawlConcurrency < 0 {
		logging.Warn("  Invalid CRAWL_CONCURRENCY, using default: 6")
		crawlConcurrency = 6
	}

	// Resolve paths
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	config := &Config{
		BaseURL:             strings.TrimRight(baseURL, "/"),
		APIKey:              apiKey,
		ProfileLang:         profileLang,
		DatabaseDir:         databaseDir,
		Port:                port,
		MetricsPort:         metricsPort,
		CrawlConcurrency:    crawlConcurrency,
		CrawlResume:         crawlResume,
		CrawlSkipIndexed:    crawlSkipIndexed,
		ThumbnailNoFallback: thumbnailNoFallback,
		DHashThreshold:      dhashThreshold,
		AHashThreshold:      ahashThreshold,
		MaxBucketSize:       maxBucketSize,
		HTTPTimeout:         httpTimeout,
		StatsInterval:       statsInterval,
		LogHealthChecks:     logHealthChecks,
		MetricsEnabled:      metricsEnabled,
		DatabasePath:        filepath.Join(databaseDir, "coverdup.db"),
	}

	// Ensure base database directory exists (required for the store)
	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	// Test write access for database (required)
	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for the store): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	// Summary
	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:  ENABLED (required)")
	logging.Info("    Metrics:   %s", enabledString(config.MetricsEnabled))

	return config, nil
}

// ValidateBaseURL checks that a remote server address is an absolute
// http or https URL.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// maskSecret hides all but the last four characters of a credential in logs.
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogCrawlerInit logs crawler configuration at startup
func LogCrawlerInit(baseURL string, concurrency int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CRAWLER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Remote server: %s", baseURL)
	if concurrency > 0 {
		logging.Info("  Concurrency:   %d", concurrency)
	} else {
		logging.Info("  Concurrency:   auto")
	}
	logging.Info("  Crawls start on demand via POST /api/crawl")
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., the metrics handler)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		// Group routes by prefix for cleaner output
		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		// Sort group keys
		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		// Print routes by group
		for _, group := range groupKeys {
			groupRoutes := groups[group]
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groupRoutes {
				methodPadded := fmt.Sprintf("%-6s", route.Method)
				logging.Debug("    %s %s", methodPadded, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Get first segment
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return ""
	}

	first := parts[0]

	// Special handling for API routes
	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
   ______                         ____           __
  / ____/___ _   _____  _____    / __ \___  ____/ /_  ______
 / /   / __ \ | / / _ \/ ___/   / / / / _ \/ __  / / / / __ \
/ /___/ /_/ / |/ /  __/ /      / /_/ /  __/ /_/ / /_/ / /_/ /
\____/\____/|___/\___/_/      /_____/\___/\__,_/\__,_/ .___/
                                                    /_/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
