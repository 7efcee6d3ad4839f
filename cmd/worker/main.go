package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance/internal/config"
	"attendance/internal/metrics"
	"attendance/internal/queue"
	"attendance/internal/session"
	"attendance/internal/store"
)

const sweepInterval = 30 * time.Second

// Worker consumes domain events for the audit log and sweeps overdue active
// sessions to expired. The sweep backs up the API's in-process timers, which
// do not survive restarts; the lazy check on reads remains the source of
// truth either way.
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

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		redisClient := store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		q = queue.NewRedisQueue(redisClient.Client, redisClient.EventsKey)
	}

	repo := session.NewRepository(db.Client)
	go runExpirySweep(ctx, repo, q, cfg.SessionWindow)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for events...")
	for msg := range messages {
		var evt queue.Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			log.Printf("malformed %s event dropped: %v", msg.Type, err)
			continue
		}

		switch msg.Type {
		case queue.EventSessionIssued:
			log.Printf("session %s issued for %s/%s/%s subject %s",
				evt.Token, evt.Department, evt.Semester, evt.Section, evt.Subject)
		case queue.EventAttendanceMarked:
			log.Printf("attendance marked: roll %s session %s subject %s",
				evt.RollNumber, evt.Token, evt.Subject)
		case queue.EventSessionDeleted:
			log.Printf("session %s deleted", evt.Token)
		case queue.EventSessionExpired:
			log.Printf("session %s expired", evt.Token)
		default:
			// Unknown event types are a no-op so the set can grow.
		}
	}

	log.Println("worker stopped")
}

// runExpirySweep periodically transitions active sessions whose window has
// elapsed, publishing an event per transition.
func runExpirySweep(ctx context.Context, repo *session.Repository, q queue.Queue, window time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-window)
			tokens, err := repo.ExpireOverdue(ctx, cutoff)
			if err != nil {
				log.Printf("expiry sweep failed: %v", err)
				continue
			}
			for _, token := range tokens {
				metrics.SessionsExpired.Inc()
				log.Printf("session %s expired by sweep", token)
				if err := queue.PublishEvent(ctx, q, queue.EventSessionExpired, queue.Event{Token: token}); err != nil {
					log.Printf("event publish failed: %v", err)
				}
			}
		}
	}
}
