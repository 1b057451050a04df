package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/frmai/coin-ledger/pkg/payments"
	dydbstore "github.com/frmai/coin-ledger/pkg/storage/dynamodb"
	"github.com/joho/godotenv"
)

var ingestor *payments.Ingestor

func init() {
	// Load environment variables from .env file (useful for local testing).
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize dependencies once.
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

	if walletsTable == "" || transactionsTable == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}

	store := dydbstore.New(dbClient, walletsTable, transactionsTable, auditTable, packagesTable, connectionsTable)
	ingestor = payments.NewIngestor(store)
}

// HandleRequest processes queued gateway confirmations and credits wallets.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		var confirmation payments.Confirmation
		if err := json.Unmarshal([]byte(message.Body), &confirmation); err != nil {
			log.Printf("ERROR: failed to unmarshal confirmation from SQS message %s: %v", message.MessageId, err)
			// Returning an error will cause SQS to retry the message, which is appropriate here.
			return err
		}

		tx, replayed, err := ingestor.Ingest(ctx, confirmation)
		if err != nil {
			log.Printf("ERROR: failed to ingest confirmation %s: %v", confirmation.ExternalTxnId, err)
			// In a production system, persistent failures would be sent to a DLQ.
			return err
		}

		if replayed {
			log.Printf("Confirmation %s already credited as transaction %s", confirmation.ExternalTxnId, tx.Id)
			continue
		}
		log.Printf("Credited confirmation %s as transaction %s", confirmation.ExternalTxnId, tx.Id)
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
