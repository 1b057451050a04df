package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSAlerter implements the Alerter interface using AWS SQS.
type SQSAlerter struct {
	Client   *sqs.Client
	QueueURL string
}

// NewSQSAlerter creates a new SQSAlerter.
func NewSQSAlerter(client *sqs.Client, queueURL string) *SQSAlerter {
	return &SQSAlerter{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Alerter = (*SQSAlerter)(nil)

// Publish sends the alert to the integrity queue.
func (a *SQSAlerter) Publish(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert for SQS: %w", err)
	}

	_, err = a.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(a.QueueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send alert to SQS: %w", err)
	}

	return nil
}
