package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/username/tradefolio/backend/src/config"
	"github.com/username/tradefolio/backend/src/handlers"
	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/services"
	"github.com/username/tradefolio/backend/src/storage"
	"golang.org/x/time/rate"
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
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Requested-With")
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
	logger.L.Info("Tradefolio backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	store, err := storage.NewSQLiteStore(config.Cfg.DatabasePath)
	if err != nil {
		logger.L.Error("Failed to initialize database", "error", err)
		stdlog.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing services and handlers...")
	analyticsService := services.NewAnalyticsService(store)
	importService := services.NewImportService(store, analyticsService)

	uploadHandler := handlers.NewUploadHandler(importService)
	tradeHandler := handlers.NewTradeHandler(store, analyticsService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("GET /api/health", handlers.HandleHealth)

	apiRouter.HandleFunc("POST /api/import", uploadHandler.HandleImport)

	apiRouter.HandleFunc("GET /api/trades", tradeHandler.HandleListTrades)
	apiRouter.HandleFunc("POST /api/trades", tradeHandler.HandleCreateTrade)
	apiRouter.HandleFunc("GET /api/trades/{id}", tradeHandler.HandleGetTrade)
	apiRouter.HandleFunc("PUT /api/trades/{id}", tradeHandler.HandleUpdateTrade)
	apiRouter.HandleFunc("DELETE /api/trades/{id}", tradeHandler.HandleDeleteTrade)

	apiRouter.HandleFunc("GET /api/analytics/statistics", analyticsHandler.HandleStatistics)
	apiRouter.HandleFunc("GET /api/analytics/monthly", analyticsHandler.HandleMonthlyRollup)
	apiRouter.HandleFunc("GET /api/analytics/symbols", analyticsHandler.HandleSymbolRollup)
	apiRouter.HandleFunc("GET /api/analytics/sources", analyticsHandler.HandleSourceRollup)
	apiRouter.HandleFunc("GET /api/analytics/ratings", analyticsHandler.HandleRatingDistribution)
	apiRouter.HandleFunc("GET /api/analytics/positions", analyticsHandler.HandlePositions)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "TRADEFOLIO Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
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
