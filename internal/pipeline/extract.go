package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/extract"
	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/monitoring"
	"github.com/galtpos/oasara-sub004/internal/scrape"
	"github.com/galtpos/oasara-sub004/internal/store"
)

// ExtractFunc pulls content for one facility website.
type ExtractFunc func(ctx context.Context, f scrape.Fetcher, website string) model.ExtractionResult

// ExtractSummary counts a content extraction run.
type ExtractSummary struct {
	Processed    int `json:"processed"`
	Success      int `json:"success"`
	Partial      int `json:"partial"`
	Failed       int `json:"failed"`
	SaveFailed   int `json:"save_failed"`
	Doctors      int `json:"doctors"`
	Prices       int `json:"prices"`
	Testimonials int `json:"testimonials"`
}

// ExtractStage scrapes doctors, prices and testimonials from facility sites.
type ExtractStage struct {
	store   store.Store
	fetcher scrape.Fetcher
	extract ExtractFunc
	delay   time.Duration
	alerter *monitoring.Alerter
}

// NewExtractStage creates the stage. delay is the pause between facilities.
func NewExtractStage(st store.Store, f scrape.Fetcher, delay time.Duration, a *monitoring.Alerter) *ExtractStage {
	return &ExtractStage{store: st, fetcher: f, extract: extract.Facility, delay: delay, alerter: a}
}

// Run extracts content for up to limit facilities with a website whose name
// contains nameFilter. A limit of zero means all.
func (s *ExtractStage) Run(ctx context.Context, nameFilter string, limit int) (ExtractSummary, error) {
	var sum ExtractSummary
	facilities, err := s.store.ListFacilities(ctx, store.FacilityFilter{
		NameContains: nameFilter,
		HasWebsite:   true,
		Limit:        limit,
	})
	if err != nil {
		return sum, eris.Wrap(err, "pipeline: list extract candidates")
	}
	zap.L().Info("pipeline: extract starting", zap.Int("facilities", len(facilities)))

	collector := monitoring.NewCollector(StageExtract)
	defer report(ctx, s.alerter, collector)

	err = eachFacility(ctx, StageExtract, newLimiter(s.delay), facilities, func(ctx context.Context, _ int, f model.Facility) error {
		log := facilityLog(StageExtract, f)
		result := s.extract(ctx, s.fetcher, model.Str(f.Website))
		if err := ctx.Err(); err != nil {
			return eris.Wrapf(err, "pipeline: extract %s", f.ID)
		}

		status := result.Status()
		sum.Processed++
		if result.Total() > 0 {
			if err := s.store.SaveExtraction(ctx, f.ID, result); err != nil {
				sum.SaveFailed++
				sum.Failed++
				log.Error("pipeline: save extraction failed", zap.Error(err))
				collector.Record(ctx, monitoring.OutcomeFailed)
				return nil
			}
		}

		switch status {
		case model.ExtractionSuccess:
			sum.Success++
		case model.ExtractionPartial:
			sum.Partial++
		default:
			sum.Failed++
		}
		sum.Doctors += len(result.Doctors)
		sum.Prices += len(result.Pricing)
		sum.Testimonials += len(result.Testimonials)

		log.Info("pipeline: facility extracted",
			zap.String("status", string(status)),
			zap.Int("doctors", len(result.Doctors)),
			zap.Int("prices", len(result.Pricing)),
			zap.Int("testimonials", len(result.Testimonials)),
		)
		collector.Record(ctx, string(status))
		return nil
	})
	return sum, err
}
