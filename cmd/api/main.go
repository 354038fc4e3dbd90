package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall/internal/config"
	"rollcall/internal/httpapi"
	"rollcall/internal/identity"
	"rollcall/internal/ledger"
	"rollcall/internal/ledger/lock"
	"rollcall/internal/queue"
	"rollcall/internal/report"
	"rollcall/internal/school"
	"rollcall/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rollcall:scans")
	}

	var locker lock.Locker
	if cfg.LockBackend == "redis" {
		locker = lock.NewRedis(redisClient.Client, 10*time.Second)
	} else {
		locker = lock.NewMemory()
	}

	schools := school.NewService(school.NewPostgresStore(db.Client))
	registry := identity.NewService(identity.NewPostgresStore(db.Client))
	scans := ledger.NewService(registry, ledger.NewPostgresStore(db.Client), locker)
	reports := report.NewService(report.NewPostgresStore(db.Client), redisClient.Client, cfg.DashboardCacheTTL)

	handlers := httpapi.New(cfg, schools, registry, scans, reports, q, redisClient, db)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handlers.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
