package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"housing/internal/config"
	"housing/internal/queue"
	"housing/internal/store"
)

// Worker consumes domain events and maintains per-type notification counters
// for the supervisor dashboard. Event handling is best-effort; a failed
// counter update is logged and the message is not requeued.
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

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "housing:events")
	}

	msgs, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume failed: %v", err)
	}

	log.Println("notification worker started")
	for msg := range msgs {
		if msg.Type == "" {
			continue
		}
		if err := redisClient.Client.HIncrBy(ctx, "housing:notifications", msg.Type, 1).Err(); err != nil {
			log.Printf("counter update failed for %s: %v", msg.Type, err)
			continue
		}
		log.Printf("event %s (%s)", msg.Type, string(msg.Body))
	}
	log.Println("worker exited")
}
