package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/frmai/coin-ledger/pkg/handlers"
	dydbstore "github.com/frmai/coin-ledger/pkg/storage/dynamodb"
	"github.com/frmai/coin-ledger/pkg/websockets"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// AWS Session
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	walletsTable := os.Getenv("DYNAMODB_WALLETS_TABLE_NAME")
	transactionsTable := os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME")
	auditTable := os.Getenv("DYNAMODB_AUDIT_TABLE_NAME")
	packagesTable := os.Getenv("DYNAMODB_PACKAGES_TABLE_NAME")
	connectionsTable := os.Getenv("DYNAMODB_CONNECTIONS_TABLE_NAME")

	if walletsTable == "" || transactionsTable == "" || auditTable == "" || packagesTable == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}

	// Create our storage implementation
	store := dydbstore.New(dbClient, walletsTable, transactionsTable, auditTable, packagesTable, connectionsTable)

	// Live wallet updates are optional; without a connections table the
	// service runs without the websocket endpoint, and without an API
	// Gateway endpoint it runs without push notifications.
	var publisher websockets.Publisher
	if endpoint := os.Getenv("WEBSOCKET_API_ENDPOINT"); endpoint != "" {
		if connectionsTable == "" {
			log.Fatal("WEBSOCKET_API_ENDPOINT is set but DYNAMODB_CONNECTIONS_TABLE_NAME is not")
		}
		publisher, err = websockets.NewPublisher(store, store, endpoint)
		if err != nil {
			log.Fatalf("failed to create websocket publisher: %v", err)
		}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	router := handlers.NewRouter(handlers.Config{
		Store:            store,
		Catalog:          store,
		Publisher:        publisher,
		AdminKey:         os.Getenv("ADMIN_API_KEY"),
		Logger:           logger,
		EnableWebsockets: connectionsTable != "",
	})

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080" // Default port if not specified
	}

	log.Printf("Starting server on port %s", port)

	// Start the server
	err = http.ListenAndServe(":"+port, router)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
