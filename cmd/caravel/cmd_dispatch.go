package main

import (
	"github.com/spf13/cobra"

	"github.com/yairfalse/caravel/directory"
	"github.com/yairfalse/caravel/dispatch"
	"github.com/yairfalse/caravel/telemetry"
	"github.com/yairfalse/caravel/types"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Fan the active subscriptions out onto the work-unit topic",
	RunE:  runDispatch,
}

func init() {
	rootCmd.AddCommand(dispatchCmd)
}

func runDispatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := telemetry.NewLogger("caravel-dispatch")

	clients, err := newAWSClients(ctx, cfg)
	if err != nil {
		return err
	}

	table := directory.NewTable(clients.dynamo, cfg.SubscriptionTable, logger)
	subs, err := table.Active(ctx, types.StateEnabled)
	if err != nil {
		return err
	}

	var ids []string
	for _, sub := range subs {
		if sub.Queryable {
			ids = append(ids, sub.ID)
		}
	}

	logger.WithContext(ctx).Info().
		Int("subscriptions", len(ids)).
		Int("group_size", cfg.GroupSize).
		Msg("dispatching work units")

	d := dispatch.New(clients.sns, cfg.FanOutTopicARN, logger, nil)
	return d.Dispatch(ctx, ids, cfg.GroupSize, cfg.PublishDelay())
}
