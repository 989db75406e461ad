package types

// Subscription states as reported by the account API.
const (
	StateEnabled  = "Enabled"
	StateDisabled = "Disabled"
)

// Subscription is one row of the durable subscription table. The
// subscription id is the immutable key; every other field is replaced in
// full on each directory refresh.
type Subscription struct {
	ID          string `json:"subscription_id" dynamodbav:"subscription_id"`
	DisplayName string `json:"display_name" dynamodbav:"display_name"`
	State       string `json:"subscription_state" dynamodbav:"subscription_state"`
	TenantID    string `json:"tenant_id" dynamodbav:"tenant_id"`
	TenantName  string `json:"tenant_name" dynamodbav:"tenant_name"`
	Queryable   bool   `json:"queryable" dynamodbav:"queryable"`
}

// Active reports whether the subscription should enter a discovery run.
func (s Subscription) Active() bool {
	return s.State == StateEnabled && s.Queryable
}

// Tenant holds one service-principal credential. The map key of the
// credential secret is the tenant name; Name is filled in after decoding.
type Tenant struct {
	Name          string `json:"-"`
	TenantID      string `json:"tenant_id"`
	ApplicationID string `json:"application_id"`
	Key           string `json:"key"`
}

// WorkUnit is one fan-out message: a bounded batch of subscription ids.
// Delivery is at-least-once, so processing a unit must be repeat-safe.
type WorkUnit struct {
	SubscriptionIDs []string `json:"subscription_id"`
}
