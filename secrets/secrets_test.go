package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	values map[string]*secretsmanager.GetSecretValueOutput
	err    error
}

func (f *fakeSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out, ok := f.values[aws.ToString(params.SecretId)]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return out, nil
}

func TestSecretPrefersString(t *testing.T) {
	store := New(&fakeSecrets{values: map[string]*secretsmanager.GetSecretValueOutput{
		"caravel/tenants": {
			SecretString: aws.String(`{"a":1}`),
			SecretBinary: []byte("ignored"),
		},
	}})

	raw, err := store.Secret(context.Background(), "caravel/tenants")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), raw)
}

func TestSecretBinaryFallback(t *testing.T) {
	store := New(&fakeSecrets{values: map[string]*secretsmanager.GetSecretValueOutput{
		"caravel/posture": {SecretBinary: []byte(`{"key":"k"}`)},
	}})

	raw, err := store.Secret(context.Background(), "caravel/posture")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"key":"k"}`), raw)
}

func TestSecretNotFound(t *testing.T) {
	store := New(&fakeSecrets{values: map[string]*secretsmanager.GetSecretValueOutput{}})

	_, err := store.Secret(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get secret missing")
}

func TestTenantCredentials(t *testing.T) {
	store := New(&fakeSecrets{values: map[string]*secretsmanager.GetSecretValueOutput{
		"caravel/tenants": {SecretString: aws.String(`{
			"contoso":  {"tenant_id": "tenant-1", "application_id": "app-1", "key": "k1"},
			"fabrikam": {"tenant_id": "tenant-2", "application_id": "app-2", "key": "k2"}
		}`)},
	}})

	tenants, err := store.TenantCredentials(context.Background(), "caravel/tenants")
	require.NoError(t, err)
	require.Len(t, tenants, 2)

	contoso := tenants["contoso"]
	assert.Equal(t, "contoso", contoso.Name)
	assert.Equal(t, "tenant-1", contoso.TenantID)
	assert.Equal(t, "app-1", contoso.ApplicationID)
	assert.Equal(t, "k1", contoso.Key)
	assert.Equal(t, "fabrikam", tenants["fabrikam"].Name)
}

func TestTenantCredentialsMalformed(t *testing.T) {
	store := New(&fakeSecrets{values: map[string]*secretsmanager.GetSecretValueOutput{
		"caravel/tenants": {SecretString: aws.String(`not json`)},
	}})

	_, err := store.TenantCredentials(context.Background(), "caravel/tenants")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode tenant credentials")
}
