package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/yairfalse/caravel/authn"
	"github.com/yairfalse/caravel/catalog"
	"github.com/yairfalse/caravel/config"
	"github.com/yairfalse/caravel/fetch"
	"github.com/yairfalse/caravel/internal/cloudguard"
	"github.com/yairfalse/caravel/internal/queue"
	"github.com/yairfalse/caravel/inventory"
	"github.com/yairfalse/caravel/onboard"
	"github.com/yairfalse/caravel/report"
	"github.com/yairfalse/caravel/secrets"
	"github.com/yairfalse/caravel/sink"
	"github.com/yairfalse/caravel/telemetry"
	"github.com/yairfalse/caravel/types"

	"github.com/yairfalse/caravel/directory"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume work units from the queue and capture inventory",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := telemetry.NewLogger("caravel-worker")

	promExporter, err := otelprom.New()
	if err != nil {
		return err
	}
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(promExporter)))

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return err
	}

	clients, err := newAWSClients(ctx, cfg)
	if err != nil {
		return err
	}

	identity := report.Identity{
		FunctionName: "caravel-worker",
		LogGroup:     os.Getenv("CARAVEL_LOG_GROUP"),
		LogStream:    os.Getenv("CARAVEL_LOG_STREAM"),
	}

	processor := &inventory.Processor{
		Catalog: catalog.New(cfg.ManagementRoot),
		TokenFactory: func() inventory.TokenSource {
			return authn.New(nil)
		},
		Fetcher:      fetch.New(nil, fetch.DefaultRetryPolicy(), logger, metrics),
		Sink:         sink.New(clients.s3, cfg.InventoryBucket, cfg.InventoryPrefix),
		Reporter:     report.New(clients.sqs, cfg.ErrorQueueURL, identity, logger, metrics),
		Logger:       logger,
		Metrics:      metrics,
		ExtraExclude: cfg.ExcludeKinds,
	}

	table := directory.NewTable(clients.dynamo, cfg.SubscriptionTable, logger)
	store := secrets.New(clients.secrets)
	filters := postureFilters(cfg, store)

	handle := func(ctx context.Context, unit types.WorkUnit, messageID string) error {
		rc, err := inventory.NewRunContext(ctx, table, store, cfg.TenantSecretID, filters, messageID)
		if err != nil {
			return err
		}
		return processor.ProcessUnit(ctx, rc, unit)
	}

	consumer := queue.NewConsumer(clients.sqs, cfg.WorkQueueURL, logger)

	var group run.Group
	group.Add(run.SignalHandler(ctx, os.Interrupt))

	pollCtx, cancelPoll := context.WithCancel(ctx)
	group.Add(
		func() error { return consumer.Poll(pollCtx, handle) },
		func(error) { cancelPoll() },
	)

	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	group.Add(
		func() error { return metricsSrv.ListenAndServe() },
		func(error) { _ = metricsSrv.Close() },
	)

	logger.WithContext(ctx).Info().
		Str("queue", cfg.WorkQueueURL).
		Str("metrics", cfg.MetricsAddr).
		Msg("worker started")

	err = group.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// postureFilters builds the per-run posture filter source. Without a
// configured posture secret every queryable subscription is in scope.
func postureFilters(cfg *config.Config, store *secrets.Store) inventory.FilterSource {
	if cfg.PostureSecretID == "" {
		return nil
	}
	return func(ctx context.Context) (onboard.Filter, error) {
		raw, err := store.Secret(ctx, cfg.PostureSecretID)
		if err != nil {
			return nil, err
		}
		var creds cloudguard.Credentials
		if err := json.Unmarshal(raw, &creds); err != nil {
			return nil, err
		}
		return cloudguard.New(nil, "", creds).OnboardedFilter(ctx)
	}
}
