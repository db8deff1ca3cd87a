package cmd

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpadapter "ionos-finops/adapters/http"
	"ionos-finops/core/pricing/scheduler"
	"ionos-finops/internal/config"
	"ionos-finops/internal/errors"
	"ionos-finops/internal/logging"
)

var pricingDaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Refresh every region catalog periodically",
	Long: `Run the pricing scheduler in the foreground.

Each cycle fetches every configured region and rewrites its cache file.
A status server exposes /healthz, /status and /metrics. SIGINT or
SIGTERM stops both gracefully.

Examples:
  ionos-finops pricing daemon
  ionos-finops pricing daemon --interval 6h --metrics-addr :9464`,
	RunE: runPricingDaemon,
}

var (
	daemonInterval    time.Duration
	daemonMetricsAddr string
)

func init() {
	pricingCmd.AddCommand(pricingDaemonCmd)

	pricingDaemonCmd.Flags().DurationVar(&daemonInterval, "interval", 0, "time between refresh cycles (0 uses config)")
	pricingDaemonCmd.Flags().StringVar(&daemonMetricsAddr, "metrics-addr", "", "status server listen address (empty uses config)")
}

func runPricingDaemon(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := logging.Named("daemon")

	interval := cfg.Scheduler.Interval
	if daemonInterval > 0 {
		interval = daemonInterval
	}
	addr := cfg.Scheduler.MetricsAddr
	if daemonMetricsAddr != "" {
		addr = daemonMetricsAddr
	}

	creds, err := loadCredentials()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	fetcher, err := newFetcher(cfg, reg)
	if err != nil {
		return err
	}
	sched, err := scheduler.New(scheduler.Options{
		Fetcher:       fetcher,
		Cache:         newCache(cfg),
		Regions:       cfg.Scheduler.Regions,
		Interval:      interval,
		RetryInterval: cfg.Scheduler.RetryInterval,
		Credentials:   creds,
		Registerer:    reg,
	})
	if err != nil {
		return err
	}

	srv := httpadapter.New(sched, reg, httpadapter.Config{
		Address: addr,
		MaxAge:  cfg.Pricing.CacheTTL(),
	})

	parent := cmd.Context()
	var g run.Group
	{
		ctx, cancel := context.WithCancel(parent)
		g.Add(func() error {
			h, err := sched.Start(ctx)
			if err != nil {
				return err
			}
			<-ctx.Done()
			return h.Stop(cfg.Scheduler.StopTimeout)
		}, func(error) {
			cancel()
		})
	}
	{
		ctx, cancel := context.WithCancel(parent)
		g.Add(func() error {
			return srv.Run(ctx)
		}, func(error) {
			cancel()
		})
	}
	g.Add(run.SignalHandler(parent, os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var sig run.SignalError
	if errors.As(err, &sig) {
		logger.Info("shutting down", zap.Stringer("signal", sig.Signal))
		return nil
	}
	return err
}
