package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/monitoring"
	"github.com/galtpos/oasara-sub004/internal/store"
)

// PlaceResolver matches one facility to a mapping-service place.
type PlaceResolver interface {
	Resolve(ctx context.Context, f model.Facility) (model.PlaceResolution, error)
}

// ResolveSummary counts a place resolution run.
type ResolveSummary struct {
	Processed     int `json:"processed"`
	Updated       int `json:"updated"`
	Skipped       int `json:"skipped"`
	NotFound      int `json:"not_found"`
	LowConfidence int `json:"low_confidence"`
	Failed        int `json:"failed"`
	WithWebsite   int `json:"with_website"`
	WithPhone     int `json:"with_phone"`
	WithBoth      int `json:"with_both"`
	NoInfo        int `json:"no_info"`
}

// ResolveStage backfills contact and geo fields from place lookups.
type ResolveStage struct {
	store    store.Store
	resolver PlaceResolver
	delay    time.Duration
	alerter  *monitoring.Alerter
}

// NewResolveStage creates the stage. delay is the pause between facilities.
func NewResolveStage(st store.Store, r PlaceResolver, delay time.Duration, a *monitoring.Alerter) *ResolveStage {
	return &ResolveStage{store: st, resolver: r, delay: delay, alerter: a}
}

// Run resolves every facility missing a website or phone whose name
// contains nameFilter. The summary is valid even when an error is returned.
func (s *ResolveStage) Run(ctx context.Context, nameFilter string) (ResolveSummary, error) {
	var sum ResolveSummary
	facilities, err := s.store.ListFacilities(ctx, store.FacilityFilter{
		NameContains:   nameFilter,
		MissingContact: true,
	})
	if err != nil {
		return sum, eris.Wrap(err, "pipeline: list resolve candidates")
	}
	zap.L().Info("pipeline: resolve starting", zap.Int("facilities", len(facilities)))

	collector := monitoring.NewCollector(StageResolve)
	defer report(ctx, s.alerter, collector)

	err = eachFacility(ctx, StageResolve, newLimiter(s.delay), facilities, func(ctx context.Context, _ int, f model.Facility) error {
		outcome, err := s.resolveOne(ctx, f, &sum)
		if err != nil {
			return err
		}
		sum.Processed++
		collector.Record(ctx, outcome)
		return nil
	})
	return sum, err
}

func (s *ResolveStage) resolveOne(ctx context.Context, f model.Facility, sum *ResolveSummary) (string, error) {
	log := facilityLog(StageResolve, f)

	if f.HasWebsite() && f.HasPhone() {
		sum.Skipped++
		log.Debug("pipeline: already has website and phone")
		return monitoring.OutcomeSkipped, nil
	}

	res, err := s.resolver.Resolve(ctx, f)
	if err != nil {
		return "", eris.Wrapf(err, "pipeline: resolve %s", f.ID)
	}

	switch res.Outcome {
	case model.OutcomeNotFound:
		sum.NotFound++
		sum.NoInfo++
		log.Info("pipeline: no place found", zap.Int("candidates", res.Candidates))
		return string(model.OutcomeNotFound), nil
	case model.OutcomeNoConfidentMatch:
		sum.LowConfidence++
		sum.NoInfo++
		log.Info("pipeline: no confident match",
			zap.String("best", res.Name),
			zap.Float64("confidence", res.Confidence),
			zap.Int("candidates", res.Candidates),
		)
		return string(model.OutcomeNoConfidentMatch), nil
	}

	if err := s.store.ApplyContactUpdate(ctx, f.ID, res.Update()); err != nil {
		sum.Failed++
		log.Error("pipeline: apply contact update failed", zap.Error(err))
		return monitoring.OutcomeFailed, nil
	}
	sum.Updated++

	hasWebsite, hasPhone := res.Website != "", res.Phone != ""
	if hasWebsite {
		sum.WithWebsite++
	}
	if hasPhone {
		sum.WithPhone++
	}
	if hasWebsite && hasPhone {
		sum.WithBoth++
	}
	if !hasWebsite && !hasPhone {
		sum.NoInfo++
	}
	log.Info("pipeline: facility resolved",
		zap.String("place_id", res.PlaceID),
		zap.Float64("confidence", res.Confidence),
		zap.Bool("website", hasWebsite),
		zap.Bool("phone", hasPhone),
	)
	return monitoring.OutcomeUpdated, nil
}
