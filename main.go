package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/username/fursio/src/config"
	"github.com/username/fursio/src/database"
	"github.com/username/fursio/src/handlers"
	"github.com/username/fursio/src/logger"
	"github.com/username/fursio/src/parsers/revolut"
	"github.com/username/fursio/src/processors"
	"github.com/username/fursio/src/services"
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
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Fursio backend server starting...")

	if err := revolut.InitSectionConfig(config.Cfg.SectionAliasesPath); err != nil {
		logger.L.Error("Failed to load section alias config, using embedded defaults", "error", err)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing services and handlers...")
	rateService := services.NewFrankfurterService(config.Cfg.RateAPIBaseURL, "USD", config.Cfg.RateFetchTimeout)
	rateCacheStore := database.NewSQLRateCacheStore(database.DB)
	rateResolver := processors.NewRateResolver(rateService, rateCacheStore, config.Cfg.RateCacheTTL)
	currencyProcessor := processors.NewCurrencyProcessor(rateResolver)

	statementHandler := handlers.NewStatementHandler(currencyProcessor)
	reportHandler := handlers.NewReportHandler()

	logger.L.Info("Configuring routes...")
	router := chi.NewRouter()
	router.Use(enableCORS, rateLimitMiddleware)

	router.Post("/api/statement/parse", statementHandler.HandleParse)
	router.Post("/api/reports/capital-gains", reportHandler.HandleCapitalGains)
	router.Post("/api/reports/dividends", reportHandler.HandleDividends)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Fursio backend is running"})
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}
	logger.L.Info("Server stopped gracefully.")
}
