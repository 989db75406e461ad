// Package report emits one structured failure event per incident to the
// error queue for later triage. Reporting is best-effort observability:
// its own failures are logged, never propagated.
package report

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/yairfalse/caravel/telemetry"
	"github.com/yairfalse/caravel/types"
)

// SQSAPI is the slice of the SQS client the reporter uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Identity names the emitting process in failure events.
type Identity struct {
	FunctionName string
	LogGroup     string
	LogStream    string
}

// Reporter publishes failure events to the error queue.
type Reporter struct {
	client   SQSAPI
	queueURL string
	identity Identity
	logger   *telemetry.Logger
	metrics  *telemetry.Metrics
}

// New creates a Reporter.
func New(client SQSAPI, queueURL string, identity Identity, logger *telemetry.Logger, metrics *telemetry.Metrics) *Reporter {
	if logger == nil {
		logger = telemetry.NewLogger("report")
	}
	return &Reporter{client: client, queueURL: queueURL, identity: identity, logger: logger, metrics: metrics}
}

// Report constructs and emits one failure event. The returned event is
// what was (or would have been) published.
func (r *Reporter) Report(ctx context.Context, event, requestID string, cause error, message string) types.FailureEvent {
	errText := ""
	if cause != nil {
		errText = cause.Error()
	}

	fe := types.FailureEvent{
		Event:        event,
		FunctionName: r.identity.FunctionName,
		RequestID:    requestID,
		LogGroup:     r.identity.LogGroup,
		LogStream:    r.identity.LogStream,
		Error:        errText,
		Message:      message,
	}

	r.logger.WithContext(ctx).Error().
		Err(cause).
		Str("event", event).
		Str("request_id", requestID).
		Msg(message)
	r.metrics.RecordFailureEvent(ctx, event)

	body, err := json.Marshal(fe)
	if err != nil {
		r.logger.WithContext(ctx).Error().Err(err).Msg("failed to encode failure event")
		return fe
	}

	_, err = r.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(r.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		r.logger.WithContext(ctx).Error().Err(err).Msg("failed to publish failure event")
	}
	return fe
}
