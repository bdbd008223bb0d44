package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/eyss21/projekt/internal/config"
	"github.com/eyss21/projekt/internal/kafka"
	"github.com/eyss21/projekt/internal/orders"
	"github.com/eyss21/projekt/internal/rabbitmq"
)

const (
	consumerGroup = "notifier"
	emailQueue    = "notifications.email"
	smsQueue      = "notifications.sms"
)

// notification is the job enqueued for the email/SMS senders.
type notification struct {
	OrderCode string `json:"order_code"`
	UserID    int    `json:"user_id"`
	Message   string `json:"message"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	cfg := config.Load()

	rabbit, err := rabbitmq.NewClient(cfg.GetRabbitMQURL())
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer rabbit.Close()

	for _, queue := range []string{emailQueue, smsQueue} {
		if err := rabbit.CreateQueue(queue); err != nil {
			log.Fatalf("failed to declare queue %s: %v", queue, err)
		}
	}

	consumer := kafka.NewConsumer([]string{cfg.KAFKA_BROKER}, cfg.KAFKA_TOPIC, consumerGroup)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A failed enqueue leaves the Kafka offset uncommitted, so the event is
	// retried instead of dropped.
	consumer.Start(ctx, func(ctx context.Context, key, value []byte) error {
		var event orders.Event
		if err := json.Unmarshal(value, &event); err != nil {
			// Malformed events would retry forever; log and commit.
			log.Printf("dropping malformed event %s: %v", key, err)
			return nil
		}

		job, err := json.Marshal(notification{
			OrderCode: event.OrderCode,
			UserID:    event.UserID,
			Message:   messageFor(event),
		})
		if err != nil {
			return err
		}

		if err := rabbit.Publish(ctx, emailQueue, job); err != nil {
			return fmt.Errorf("failed to enqueue email job: %w", err)
		}
		if err := rabbit.Publish(ctx, smsQueue, job); err != nil {
			return fmt.Errorf("failed to enqueue sms job: %w", err)
		}
		return nil
	})
}

func messageFor(event orders.Event) string {
	switch event.Type {
	case orders.EventOrderCreated:
		return fmt.Sprintf("Your shipment %s has been posted.", event.OrderCode)
	case orders.EventOrderStatusChanged:
		return fmt.Sprintf("Shipment %s is now: %s.", event.OrderCode, event.Status)
	default:
		return fmt.Sprintf("Update for shipment %s.", event.OrderCode)
	}
}
