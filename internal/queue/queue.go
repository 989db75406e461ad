// Package queue consumes work-unit messages from the SQS queue subscribed
// to the fan-out topic. Delivery is at-least-once; messages are deleted
// only after the handler succeeds, so a failed or abandoned unit is
// redelivered by the queue's own retry policy.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/yairfalse/caravel/telemetry"
	"github.com/yairfalse/caravel/types"
)

// SQSAPI is the slice of the SQS client the consumer uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Handler processes one work unit. messageID is the queue's id for the
// delivery, used as the request id on failure events.
type Handler func(ctx context.Context, unit types.WorkUnit, messageID string) error

// Consumer long-polls the work queue.
type Consumer struct {
	client   SQSAPI
	queueURL string
	logger   *telemetry.Logger
}

// NewConsumer creates a Consumer.
func NewConsumer(client SQSAPI, queueURL string, logger *telemetry.Logger) *Consumer {
	if logger == nil {
		logger = telemetry.NewLogger("queue")
	}
	return &Consumer{client: client, queueURL: queueURL, logger: logger}
}

// snsEnvelope is the wrapper SNS places around messages delivered through
// a queue subscription.
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// DecodeWorkUnit decodes a work-unit message body, unwrapping an SNS
// notification envelope when present.
func DecodeWorkUnit(body []byte) (types.WorkUnit, error) {
	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Type == "Notification" {
		body = []byte(env.Message)
	}

	var unit types.WorkUnit
	if err := json.Unmarshal(body, &unit); err != nil {
		return types.WorkUnit{}, fmt.Errorf("failed to decode work unit: %w", err)
	}
	if len(unit.SubscriptionIDs) == 0 {
		return types.WorkUnit{}, fmt.Errorf("work unit carries no subscription ids")
	}
	return unit, nil
}

// Poll receives and handles work units until the context is canceled.
// Handler errors leave the message in flight for redelivery; decode
// failures delete the message, since a malformed unit can never succeed.
func (c *Consumer) Poll(ctx context.Context, handle Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		resp, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.WithContext(ctx).Error().Err(err).Msg("work queue receive failed")
			continue
		}

		for _, msg := range resp.Messages {
			unit, err := DecodeWorkUnit([]byte(aws.ToString(msg.Body)))
			if err != nil {
				c.logger.WithContext(ctx).Error().Err(err).Msg("dropping malformed work unit")
				c.delete(ctx, msg.ReceiptHandle)
				continue
			}

			if err := handle(ctx, unit, aws.ToString(msg.MessageId)); err != nil {
				c.logger.WithContext(ctx).Error().Err(err).Msg("work unit failed, leaving for redelivery")
				continue
			}
			c.delete(ctx, msg.ReceiptHandle)
		}
	}
}

func (c *Consumer) delete(ctx context.Context, receipt *string) {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receipt,
	})
	if err != nil {
		c.logger.WithContext(ctx).Error().Err(err).Msg("failed to delete work queue message")
	}
}
