// Package dispatch partitions the active subscription set into bounded
// groups and publishes each group as one work unit, throttling between
// publishes to stay under API rate limits downstream.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/yairfalse/caravel/telemetry"
	"github.com/yairfalse/caravel/types"
)

// SNSAPI is the slice of the SNS client the dispatcher uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Dispatcher fans subscription ids out onto the work-unit topic.
type Dispatcher struct {
	client   SNSAPI
	topicARN string
	logger   *telemetry.Logger
	sleep    func(time.Duration)
}

// New creates a Dispatcher. sleep is injectable for tests; nil uses
// time.Sleep.
func New(client SNSAPI, topicARN string, logger *telemetry.Logger, sleep func(time.Duration)) *Dispatcher {
	if logger == nil {
		logger = telemetry.NewLogger("dispatch")
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Dispatcher{client: client, topicARN: topicARN, logger: logger, sleep: sleep}
}

// Chunk splits ids into consecutive groups of at most size, preserving
// order. The last group may be smaller. Concatenating the groups yields
// the input: no drops, no duplicates.
func Chunk(ids []string, size int) [][]string {
	if size < 1 || len(ids) == 0 {
		return nil
	}
	groups := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		groups = append(groups, ids[start:end])
	}
	return groups
}

// Dispatch publishes one work-unit message per group, sleeping delay
// between publishes. A publish failure is fatal and surfaced: work units
// are idempotent, so a re-run that re-dispatches already-sent groups costs
// duplicate work, not correctness.
func (d *Dispatcher) Dispatch(ctx context.Context, ids []string, groupSize int, delay time.Duration) error {
	groups := Chunk(ids, groupSize)

	for i, group := range groups {
		unit := types.WorkUnit{SubscriptionIDs: group}
		body, err := json.Marshal(unit)
		if err != nil {
			return fmt.Errorf("failed to encode work unit: %w", err)
		}

		d.logger.WithContext(ctx).Info().
			Int("group", i+1).
			Int("groups", len(groups)).
			Int("subscriptions", len(group)).
			Msg("publishing work unit")

		_, err = d.client.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(d.topicARN),
			Message:  aws.String(string(body)),
		})
		if err != nil {
			return fmt.Errorf("failed to publish work unit %d of %d: %w", i+1, len(groups), err)
		}

		if delay > 0 && i < len(groups)-1 {
			d.sleep(delay)
		}
	}

	return nil
}
