// Package pipeline runs the enrichment stages over stored facilities, one
// facility at a time with a fixed delay between them.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/monitoring"
)

// Stage names used in logs, metrics and notifications.
const (
	StageResolve     = "resolve"
	StageExtract     = "extract"
	StageEmails      = "emails"
	StageSpecialties = "specialties"
)

// newLimiter admits one facility per delay. The first facility is not delayed.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// eachFacility calls fn for every facility, pacing calls with limiter. A
// cancelled context stops the loop between facilities and is returned.
func eachFacility(ctx context.Context, stage string, limiter *rate.Limiter, facilities []model.Facility, fn func(context.Context, int, model.Facility) error) error {
	for i, f := range facilities {
		if err := ctx.Err(); err != nil {
			return eris.Wrapf(err, "pipeline: %s stopped after %d of %d", stage, i, len(facilities))
		}
		if err := limiter.Wait(ctx); err != nil {
			return eris.Wrapf(err, "pipeline: %s stopped after %d of %d", stage, i, len(facilities))
		}
		if err := fn(ctx, i, f); err != nil {
			return err
		}
	}
	return nil
}

// facilityLog scopes the global logger to one facility.
func facilityLog(stage string, f model.Facility) *zap.Logger {
	return zap.L().With(
		zap.String("stage", stage),
		zap.String("facility_id", f.ID),
		zap.String("facility", f.Label()),
	)
}

// report hands the final snapshot to the alerter, if any.
func report(ctx context.Context, a *monitoring.Alerter, c *monitoring.Collector) {
	if a == nil {
		return
	}
	a.Report(ctx, c.Snapshot())
}
