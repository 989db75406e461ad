// Package onboard scopes discovery to subscriptions onboarded to the
// security-posture service. The posture API itself is an external
// collaborator; the pipeline only consumes this filter contract.
package onboard

// Filter decides whether a subscription is in scope for discovery.
type Filter interface {
	Allowed(subscriptionID string) bool
}

// AllowAll admits every subscription. Used when no posture filter is
// configured.
type AllowAll struct{}

// Allowed always reports true.
func (AllowAll) Allowed(string) bool { return true }

// SetFilter admits exactly the subscriptions in a fixed set, typically the
// posture service's onboarded accounts fetched once per run.
type SetFilter map[string]struct{}

// NewSetFilter builds a SetFilter from subscription ids.
func NewSetFilter(ids []string) SetFilter {
	f := make(SetFilter, len(ids))
	for _, id := range ids {
		f[id] = struct{}{}
	}
	return f
}

// Allowed reports whether the subscription is in the set.
func (f SetFilter) Allowed(subscriptionID string) bool {
	_, ok := f[subscriptionID]
	return ok
}
