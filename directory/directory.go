// Package directory is the authoritative record of known subscriptions,
// refreshed from the provider's account API and persisted to a DynamoDB
// table. Subscriptions absent from a later refresh go stale in place; the
// pipeline never deletes rows.
package directory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/yairfalse/caravel/telemetry"
	"github.com/yairfalse/caravel/types"
)

// directoryOnlyMarker flags subscriptions that exist purely for directory
// access and cannot be queried for resources.
const directoryOnlyMarker = "Access to Azure Active Directory"

// DynamoAPI is the slice of the DynamoDB client the table uses.
type DynamoAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// AccountLister is the account API collaborator: it lists the
// subscriptions visible to one tenant's credential. Implementations fill
// ID, DisplayName and State; the directory derives the rest.
type AccountLister interface {
	ListSubscriptions(ctx context.Context, tenant types.Tenant) ([]types.Subscription, error)
}

// Table is the durable subscription table.
type Table struct {
	client DynamoAPI
	name   string
	logger *telemetry.Logger
}

// NewTable creates a Table.
func NewTable(client DynamoAPI, name string, logger *telemetry.Logger) *Table {
	if logger == nil {
		logger = telemetry.NewLogger("directory")
	}
	return &Table{client: client, name: name, logger: logger}
}

// Upsert writes one subscription row, replacing every mutable field. The
// subscription id is the immutable key.
func (t *Table) Upsert(ctx context.Context, sub types.Subscription) error {
	_, err := t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(t.name),
		Key: map[string]ddbtypes.AttributeValue{
			"subscription_id": &ddbtypes.AttributeValueMemberS{Value: sub.ID},
		},
		UpdateExpression: aws.String(
			"set display_name=:name, subscription_state=:state, tenant_id=:tenant_id, tenant_name=:tenant_name, queryable=:queryable",
		),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":name":        &ddbtypes.AttributeValueMemberS{Value: sub.DisplayName},
			":state":       &ddbtypes.AttributeValueMemberS{Value: sub.State},
			":tenant_id":   &ddbtypes.AttributeValueMemberS{Value: sub.TenantID},
			":tenant_name": &ddbtypes.AttributeValueMemberS{Value: sub.TenantName},
			":queryable":   &ddbtypes.AttributeValueMemberBOOL{Value: sub.Queryable},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert subscription %s: %w", sub.ID, err)
	}
	return nil
}

// All scans the full table into a map keyed by subscription id, following
// every pagination continuation.
func (t *Table) All(ctx context.Context) (map[string]types.Subscription, error) {
	out := make(map[string]types.Subscription)

	var startKey map[string]ddbtypes.AttributeValue
	for {
		resp, err := t.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(t.name),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription table %s: %w", t.name, err)
		}

		for _, item := range resp.Items {
			var sub types.Subscription
			if err := attributevalue.UnmarshalMap(item, &sub); err != nil {
				return nil, fmt.Errorf("failed to decode subscription row: %w", err)
			}
			out[sub.ID] = sub
		}

		if resp.LastEvaluatedKey == nil {
			break
		}
		startKey = resp.LastEvaluatedKey
	}

	return out, nil
}

// Active returns subscriptions in the requested state, ordered by id. An
// empty status returns everything.
func (t *Table) Active(ctx context.Context, status string) ([]types.Subscription, error) {
	all, err := t.All(ctx)
	if err != nil {
		return nil, err
	}

	subs := make([]types.Subscription, 0, len(all))
	for _, sub := range all {
		if status == "" || sub.State == status {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

// Queryable derives whether a subscription can be queried for resources:
// directory-only subscriptions are marked by their display name.
func Queryable(displayName string) bool {
	return !strings.Contains(displayName, directoryOnlyMarker)
}

// Refresh lists subscriptions for every tenant and upserts each row.
// Refresh is fail-forward, not fail-atomic: a failure on one tenant or one
// row leaves previously written rows intact and moves on. Returns every
// subscription successfully upserted.
func (t *Table) Refresh(ctx context.Context, lister AccountLister, tenants map[string]types.Tenant) ([]types.Subscription, error) {
	var written []types.Subscription
	var firstErr error

	names := make([]string, 0, len(tenants))
	for name := range tenants {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tenant := tenants[name]
		subs, err := lister.ListSubscriptions(ctx, tenant)
		if err != nil {
			t.logger.WithContext(ctx).Error().Err(err).Str("tenant", name).Msg("subscription listing failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("tenant %s: %w", name, err)
			}
			continue
		}

		for _, sub := range subs {
			sub.TenantID = tenant.TenantID
			sub.TenantName = tenant.Name
			sub.Queryable = Queryable(sub.DisplayName)

			if err := t.Upsert(ctx, sub); err != nil {
				t.logger.WithContext(ctx).Error().Err(err).Str("subscription_id", sub.ID).Msg("subscription upsert failed")
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			written = append(written, sub)
		}
	}

	return written, firstErr
}
