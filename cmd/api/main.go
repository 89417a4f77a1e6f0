package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kaivancodes/TrustportMobileWallet/internal/directory"
	"github.com/kaivancodes/TrustportMobileWallet/internal/handler"
	"github.com/kaivancodes/TrustportMobileWallet/internal/history"
	"github.com/kaivancodes/TrustportMobileWallet/internal/ledger"
	"github.com/kaivancodes/TrustportMobileWallet/internal/middleware"
	"github.com/kaivancodes/TrustportMobileWallet/internal/notification"
	"github.com/kaivancodes/TrustportMobileWallet/internal/repository/postgres"
	redisrepo "github.com/kaivancodes/TrustportMobileWallet/internal/repository/redis"
	"github.com/kaivancodes/TrustportMobileWallet/internal/settlement"
	"github.com/kaivancodes/TrustportMobileWallet/internal/transfer"
	"github.com/kaivancodes/TrustportMobileWallet/internal/verification"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/config"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/logger"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("transfer-api")

	log.Info("Starting Transfer API", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	// Database connection
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Info("Database connected", nil)

	// Redis connection
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Redis connected", nil)

	// Repositories
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	challengeStore := redisrepo.NewChallengeStore(redisClient)

	// Services
	directoryService := directory.NewService(accountRepo, log)
	verificationService := verification.NewService(challengeStore, cfg.Verification, log)
	notificationService := notification.NewService(notification.NewSMSGateway(cfg.SMS), log)
	ledgerService := ledger.NewService(db)
	settlementService := settlement.NewService(ledgerService, transactionRepo, log)
	transferService := transfer.NewService(
		directoryService, accountRepo, verificationService,
		notificationService, settlementService, log,
	)
	historyService := history.NewService(transactionRepo, accountRepo, log)

	// Handlers
	val := validator.New()
	transferHandler := handler.NewTransferHandler(transferService, val, log)
	directoryHandler := handler.NewDirectoryHandler(directoryService, val, log)
	historyHandler := handler.NewHistoryHandler(historyService, log)

	// Router
	r := mux.NewRouter()

	r.Use(middleware.CORS)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.NewRateLimiter(redisClient, 120, time.Minute).Limit)

	authMW := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ready", readyCheck(db)).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW.Authenticate)
	api.Use(middleware.NewRateLimiter(redisClient, 80, time.Minute).Limit)

	api.HandleFunc("/transfers", transferHandler.Send).Methods("POST")
	api.HandleFunc("/transfers/{id}/pin", transferHandler.ConfirmPIN).Methods("POST")
	api.HandleFunc("/transfers/{id}/otp", transferHandler.ConfirmOTP).Methods("POST")
	api.HandleFunc("/transfers/{id}/resend", transferHandler.ResendOTP).Methods("POST")
	api.HandleFunc("/transfers/{id}", transferHandler.Cancel).Methods("DELETE")

	api.HandleFunc("/recipients/resolve", directoryHandler.Resolve).Methods("POST")
	api.HandleFunc("/recipients/search", directoryHandler.Search).Methods("GET")

	api.HandleFunc("/transactions", historyHandler.List).Methods("GET")

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Info("Transfer API started", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down transfer API...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Transfer API forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Transfer API stopped gracefully", nil)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	_ = r
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"transfer-api"}`))
}

func readyCheck(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready","reason":"database unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready","service":"transfer-api"}`))
	}
}
