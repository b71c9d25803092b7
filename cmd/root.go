package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/config"
)

var (
	cfg     *config.Config
	metrics *sdkmetric.ManualReader
)

var rootCmd = &cobra.Command{
	Use:   "oasara",
	Short: "Medical tourism facility enrichment pipeline",
	Long:  "Seeds accredited facilities, resolves contact details from place lookups, scrapes doctors, prices and testimonials from facility sites, and reports directory coverage.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		metrics = sdkmetric.NewManualReader()
		otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(metrics)))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logMetrics(cmd.Context())
		_ = zap.L().Sync()
	},
}

// logMetrics writes the counters collected during the run at debug level.
func logMetrics(ctx context.Context) {
	if metrics == nil {
		return
	}
	var rm metricdata.ResourceMetrics
	if err := metrics.Collect(ctx, &rm); err != nil {
		zap.L().Debug("collect metrics", zap.Error(err))
		return
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				fields := []zap.Field{zap.String("metric", m.Name), zap.Int64("value", dp.Value)}
				for _, kv := range dp.Attributes.ToSlice() {
					fields = append(fields, zap.String(string(kv.Key), kv.Value.Emit()))
				}
				zap.L().Debug("metric", fields...)
			}
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
