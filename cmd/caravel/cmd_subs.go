package main

import (
	"github.com/spf13/cobra"

	"github.com/yairfalse/caravel/authn"
	"github.com/yairfalse/caravel/directory"
	"github.com/yairfalse/caravel/fetch"
	"github.com/yairfalse/caravel/internal/armaccount"
	"github.com/yairfalse/caravel/secrets"
	"github.com/yairfalse/caravel/telemetry"
)

var subsCmd = &cobra.Command{
	Use:   "subs",
	Short: "Refresh the subscription directory from the account API",
	RunE:  runSubs,
}

func init() {
	rootCmd.AddCommand(subsCmd)
}

func runSubs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := telemetry.NewLogger("caravel-subs")

	clients, err := newAWSClients(ctx, cfg)
	if err != nil {
		return err
	}

	store := secrets.New(clients.secrets)
	tenants, err := store.TenantCredentials(ctx, cfg.TenantSecretID)
	if err != nil {
		return err
	}

	fetcher := fetch.New(nil, fetch.DefaultRetryPolicy(), logger, nil)
	lister := armaccount.New(authn.New(nil), fetcher, cfg.ManagementRoot)
	table := directory.NewTable(clients.dynamo, cfg.SubscriptionTable, logger)

	written, err := table.Refresh(ctx, lister, tenants)
	logger.WithContext(ctx).Info().
		Int("subscriptions", len(written)).
		Msg("subscription directory refreshed")
	// Refresh is fail-forward: partial progress is already persisted, the
	// first error still surfaces for the scheduler to alarm on.
	return err
}
