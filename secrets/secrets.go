// Package secrets reads collaborator credentials from Secrets Manager.
// The pipeline is read-only here: it never writes or rotates secrets.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/yairfalse/caravel/types"
)

// SecretsAPI is the slice of the Secrets Manager client the store uses.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Store fetches secret values by identifier.
type Store struct {
	client SecretsAPI
}

// New creates a Store.
func New(client SecretsAPI) *Store {
	return &Store{client: client}
}

// Secret returns the raw secret value, preferring the string form.
func (s *Store) Secret(ctx context.Context, id string) ([]byte, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", id, err)
	}
	if out.SecretString != nil {
		return []byte(*out.SecretString), nil
	}
	return out.SecretBinary, nil
}

// TenantCredentials decodes the tenant credential secret: a JSON object
// keyed by tenant name, each value holding the tenant id, application id,
// and client secret.
func (s *Store) TenantCredentials(ctx context.Context, id string) (map[string]types.Tenant, error) {
	raw, err := s.Secret(ctx, id)
	if err != nil {
		return nil, err
	}

	var decoded map[string]types.Tenant
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode tenant credentials %s: %w", id, err)
	}

	tenants := make(map[string]types.Tenant, len(decoded))
	for name, tenant := range decoded {
		tenant.Name = name
		tenants[name] = tenant
	}
	return tenants, nil
}
