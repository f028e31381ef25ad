package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/bankcore/loan-engine/internal/config"
	"github.com/bankcore/loan-engine/internal/repository"
	"github.com/bankcore/loan-engine/internal/service"
)

func main() {
	log.Println("Starting loan scheduler...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// The sweep only reads and rewrites loan rows; no redis needed here
	loanService := service.NewLoanService(repository.New(db), nil, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone: %v", err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Daily job to mark loans overdue once their repayment deadline passes.
	// The same recomputation also happens lazily on every loan read.
	_, err = c.AddFunc(cfg.Scheduler.OverdueSweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		marked, err := loanService.SweepOverdueLoans(ctx)
		if err != nil {
			log.Printf("Overdue sweep failed: %v", err)
			return
		}
		log.Printf("Overdue sweep finished, %d loan(s) marked overdue", marked)
	})
	if err != nil {
		log.Fatalf("Error scheduling overdue sweep job: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}
