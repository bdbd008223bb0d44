package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/eyss21/projekt/internal/config"
	"github.com/eyss21/projekt/internal/kafka"
	"github.com/eyss21/projekt/internal/orders"
	"github.com/eyss21/projekt/internal/store/postgres"
	"github.com/eyss21/projekt/internal/workflow"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	cfg := config.Load()

	db, err := postgres.NewStore(cfg.GetDBURL())
	if err != nil {
		log.Fatalf("worker failed to connect to postgres: %v", err)
	}
	defer db.Close()

	var producer kafka.Publisher
	if cfg.KAFKA_BROKER != "" && cfg.KAFKA_TOPIC != "" {
		producer = kafka.NewProducer(cfg.KAFKA_BROKER, cfg.KAFKA_TOPIC)
		defer producer.Close()
		log.Println("worker connected to kafka")
	} else {
		log.Println("kafka config missing, worker will not publish events")
	}

	temporalHost := cfg.TEMPORAL_HOST_PORT
	if temporalHost == "" {
		temporalHost = "temporal:7233"
	}
	c, err := client.Dial(client.Options{HostPort: temporalHost})
	if err != nil {
		log.Fatalf("unable to create temporal client: %v", err)
	}
	defer c.Close()
	log.Println("worker connected to temporal at", temporalHost)

	// The activity host creates orders without a publisher; the workflow
	// publishes the event as its own retried step.
	activities := &workflow.BookingActivities{
		Creator: orders.NewService(db, db, nil),
		Events:  producer,
	}

	w := worker.New(c, workflow.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflow.BookOrderWorkflow)
	w.RegisterActivity(activities.ValidateBooking)
	w.RegisterActivity(activities.PersistPaidOrder)
	w.RegisterActivity(activities.PublishBookedEvent)

	log.Println("booking worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("unable to start worker: %v", err)
	}
}
