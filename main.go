package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/etsyexporter/src/config"
	"github.com/username/etsyexporter/src/database"
	"github.com/username/etsyexporter/src/exporters"
	"github.com/username/etsyexporter/src/handlers"
	"github.com/username/etsyexporter/src/logger"
	"github.com/username/etsyexporter/src/parsers"
	"github.com/username/etsyexporter/src/processors"
	"github.com/username/etsyexporter/src/security"
	"github.com/username/etsyexporter/src/services"
	"github.com/username/etsyexporter/src/utils"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag, Content-Disposition")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Etsy exporter backend server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)

	logger.L.Info("Initializing result cache...")
	resultCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.AccessTokenExpiry)
	passwordHash, err := authService.HashPassword(config.Cfg.APIPassword)
	if err != nil {
		logger.L.Error("Failed to hash operator password", "error", err)
		os.Exit(1)
	}
	authHandler := handlers.NewAuthHandler(authService, config.Cfg.APIUsername, passwordHash)

	locator, err := parsers.GetLocator("etsy")
	if err != nil {
		logger.L.Error("Failed to construct context locator", "error", err)
		os.Exit(1)
	}
	normalizer := processors.NewOrderNormalizer(utils.ResolveLocation(config.Cfg.ExportTimezone))
	enricher := processors.NewDOMEnricher()
	csvExporter := exporters.NewCSVExporter()

	exportService := services.NewExportService(locator, normalizer, enricher, csvExporter, resultCache)

	extractHandler := handlers.NewExtractHandler(exportService)
	exportHandler := handlers.NewExportHandler(exportService)
	templateHandler := handlers.NewTemplateHandler(exportService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/auth/login", authHandler.LoginHandler)

	apiRouter.HandleFunc("GET /api/fields", authHandler.AuthMiddleware(exportHandler.HandleGetFields))
	apiRouter.HandleFunc("POST /api/extract", authHandler.AuthMiddleware(extractHandler.HandleExtract))
	apiRouter.HandleFunc("GET /api/runs", authHandler.AuthMiddleware(extractHandler.HandleListRuns))
	apiRouter.HandleFunc("GET /api/runs/{id}/records", authHandler.AuthMiddleware(extractHandler.HandleGetRunRecords))
	apiRouter.HandleFunc("GET /api/templates/{name}", authHandler.AuthMiddleware(templateHandler.HandleGetTemplate))
	apiRouter.HandleFunc("PUT /api/templates/{name}", authHandler.AuthMiddleware(templateHandler.HandleSaveTemplate))
	apiRouter.HandleFunc("POST /api/export", authHandler.AuthMiddleware(exportHandler.HandleExportCSV))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Etsy exporter backend is running"})
		} else if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
