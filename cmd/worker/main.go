package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rollcall/internal/config"
	"rollcall/internal/queue"
	"rollcall/internal/report"
	"rollcall/internal/store"
)

// Worker consumes scan events and keeps the per-school present-today
// counters in Redis warm for the dashboard.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rollcall:scans")
	}

	reports := report.NewService(report.NewPostgresStore(db.Client), redisClient.Client, cfg.DashboardCacheTTL)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for scan events...")
	for msg := range messages {
		if msg.Type != "scan" {
			continue
		}

		var evt report.ScanEvent
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			log.Printf("skipping undecodable scan event: %v", err)
			continue
		}

		if err := reports.ApplyScan(ctx, evt); err != nil {
			log.Printf("apply scan event for school %s failed: %v", evt.SchoolID, err)
			continue
		}
	}

	log.Println("worker stopped")
}
