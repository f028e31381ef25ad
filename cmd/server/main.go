package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/bankcore/loan-engine/internal/config"
	"github.com/bankcore/loan-engine/internal/handler"
	"github.com/bankcore/loan-engine/internal/repository"
	"github.com/bankcore/loan-engine/internal/service"
	"github.com/bankcore/loan-engine/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize store and service
	store := repository.New(db)
	loanService := service.NewLoanService(store, redisClient, cfg)

	// The singleton ledger row must exist before any fund operation
	if err := loanService.EnsureLedger(context.Background()); err != nil {
		log.Fatalf("Failed to ensure bank ledger row: %v", err)
	}

	loanHandler := handler.NewLoanHandler(loanService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(loanHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(loanHandler *handler.LoanHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Ledger and provider funds
	api.HandleFunc("/ledger/funds", loanHandler.GetAvailableFunds).Methods("GET")
	api.HandleFunc("/funds", loanHandler.ListFunds).Methods("GET")
	api.HandleFunc("/funds", loanHandler.AddFund).Methods("POST")

	// Loan request negotiation
	api.HandleFunc("/requests", loanHandler.ListRequests).Methods("GET")
	api.HandleFunc("/requests", loanHandler.SubmitRequest).Methods("POST")
	api.HandleFunc("/requests/{id}", loanHandler.GetRequest).Methods("GET")
	api.HandleFunc("/requests/{id}/constraints", loanHandler.SetConstraints).Methods("POST")
	api.HandleFunc("/requests/{id}/terms", loanHandler.SelectTerms).Methods("POST")
	api.HandleFunc("/requests/{id}/approve", loanHandler.Approve).Methods("POST")
	api.HandleFunc("/requests/{id}/reject", loanHandler.Reject).Methods("POST")

	// Loans and payments
	api.HandleFunc("/loans", loanHandler.ListLoans).Methods("GET")
	api.HandleFunc("/loans/{id}", loanHandler.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{id}/payments", loanHandler.ListPayments).Methods("GET")
	api.HandleFunc("/loans/{id}/payments", loanHandler.RecordPayment).Methods("POST")

	return router
}
