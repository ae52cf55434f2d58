package reconciler

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

var (
	sweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_expiry_sweeps_total",
		Help: "Total number of expiry sweeps run",
	})
	expiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_expired_total",
		Help: "Checkouts transitioned to EXPIRED by the reconciler",
	})
	releaseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_release_failures_total",
		Help: "Per-checkout stock release failures, retried on later sweeps",
	})
)

// Reconciler periodically sweeps overdue checkouts, expiring them and
// returning their stock. The sweep interval is a runtime parameter, re-read
// every tick so operators can slow it down without a restart.
type Reconciler struct {
	checkouts *usecase.CheckoutService
	params    usecase.SystemParams
	defaults  usecase.ParamDefaults
}

func New(checkouts *usecase.CheckoutService, params usecase.SystemParams, defaults usecase.ParamDefaults) *Reconciler {
	return &Reconciler{checkouts: checkouts, params: params, defaults: defaults}
}

// Run blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	log := logging.New("reconciler")
	ctx = logging.WithCtx(ctx, log)

	log.Info("reconciler started", "interval", r.interval(ctx))
	for {
		select {
		case <-ctx.Done():
			log.Info("reconciler stopped")
			return ctx.Err()
		case <-time.After(r.interval(ctx)):
		}

		sweepsTotal.Inc()
		stats, err := r.checkouts.ExpireDueCheckouts(ctx)
		if err != nil {
			log.Error("expiry sweep failed", "error", err)
			continue
		}
		expiredTotal.Add(float64(stats.Expired))
		releaseFailures.Add(float64(stats.ReleaseFailures))
	}
}

func (r *Reconciler) interval(ctx context.Context) time.Duration {
	secs := r.params.GetInt(ctx, usecase.ParamExpiryCheckInterval, r.defaults.ExpiryCheckSeconds)
	if secs < 1 {
		secs = r.defaults.ExpiryCheckSeconds
	}
	return time.Duration(secs) * time.Second
}
