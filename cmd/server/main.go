package main

import (
	"context"
	"log"
	"net/http"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	"github.com/eyss21/projekt/graph"
	"github.com/eyss21/projekt/graph/generated"
	"github.com/eyss21/projekt/internal/catalog"
	"github.com/eyss21/projekt/internal/config"
	"github.com/eyss21/projekt/internal/courses"
	"github.com/eyss21/projekt/internal/crypto"
	"github.com/eyss21/projekt/internal/fleet"
	"github.com/eyss21/projekt/internal/kafka"
	"github.com/eyss21/projekt/internal/orders"
	"github.com/eyss21/projekt/internal/quote"
	"github.com/eyss21/projekt/internal/store/postgres"
	"github.com/eyss21/projekt/internal/users"
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
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	redisAddr := cfg.REDIS_ADDR
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	ctx := context.Background()
	cache, err := catalog.NewRedisCache(ctx, redisAddr)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer cache.Close()

	var producer kafka.Publisher
	if cfg.KAFKA_BROKER != "" && cfg.KAFKA_TOPIC != "" {
		producer = kafka.NewProducer(cfg.KAFKA_BROKER, cfg.KAFKA_TOPIC)
		defer producer.Close()
		log.Println("connected to kafka at", cfg.KAFKA_BROKER)
	} else {
		log.Println("kafka config missing, order events disabled")
	}

	catalogSvc := catalog.NewService(db, cache)
	coursesSvc := courses.NewService(db, db, db)
	ordersSvc := orders.NewService(db, db, producer)
	usersSvc := users.NewService(db, db, crypto.NewArgon2Hasher(nil))
	fleetSvc := fleet.NewService(db, catalogSvc)

	// Bookings go through Temporal when a host is configured, otherwise the
	// orders service handles them in-process.
	var booker quote.OrderCreator = ordersSvc
	if cfg.TEMPORAL_HOST_PORT != "" {
		tc, err := client.Dial(client.Options{HostPort: cfg.TEMPORAL_HOST_PORT})
		if err != nil {
			log.Fatalf("failed to connect to temporal: %v", err)
		}
		defer tc.Close()
		booker = workflow.NewSubmitter(tc)
		log.Println("bookings routed through temporal at", cfg.TEMPORAL_HOST_PORT)
	}

	resolver := graph.NewResolver(usersSvc, fleetSvc, catalogSvc, coursesSvc, ordersSvc, booker)
	srv := handler.NewDefaultServer(generated.NewExecutableSchema(generated.Config{Resolvers: resolver}))

	http.Handle("/query", srv)
	http.Handle("/", playground.Handler("GraphQL Playground", "/query"))

	log.Println("graphql server running on", cfg.Addr())
	log.Fatal(http.ListenAndServe(cfg.Addr(), nil))
}
