package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/frmai/coin-ledger/pkg/alerts"
	"github.com/frmai/coin-ledger/pkg/reconciliation"
	dydbstore "github.com/frmai/coin-ledger/pkg/storage/dynamodb"
	"github.com/joho/godotenv"
)

var auditor *reconciliation.Auditor

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

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
	store := dydbstore.New(dbClient, walletsTable, transactionsTable, auditTable, packagesTable, connectionsTable)

	// Drift findings go to the integrity queue for operator review.
	var alerter alerts.Alerter = alerts.NoOpAlerter{}
	if queueURL := os.Getenv("INTEGRITY_ALERTS_QUEUE_URL"); queueURL != "" {
		alerter = alerts.NewSQSAlerter(sqs.NewFromConfig(cfg), queueURL)
	}

	auditor = reconciliation.NewAuditor(store, alerter)
}

// HandleRequest is triggered by an EventBridge Schedule.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting wallet reconciliation...")

	report, err := auditor.Run(ctx)
	if err != nil {
		log.Printf("ERROR: reconciliation run failed: %v", err)
		return err
	}

	log.Printf("Reconciliation finished: %d wallets checked, %d drifts, %d stale pending swept",
		report.WalletsChecked, len(report.Drifts), report.SweptPending)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
