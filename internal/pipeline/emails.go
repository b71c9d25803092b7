package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/extract"
	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/monitoring"
	"github.com/galtpos/oasara-sub004/internal/store"
)

// EmailFinder discovers contact emails on a facility website.
type EmailFinder interface {
	Find(ctx context.Context, website string) extract.EmailResult
}

// EmailSummary counts an email discovery run.
type EmailSummary struct {
	Processed int `json:"processed"`
	Found     int `json:"found"`
	NotFound  int `json:"not_found"`
	Failed    int `json:"failed"`
}

// EmailStage writes the best discovered email to facilities without one.
type EmailStage struct {
	store   store.Store
	finder  EmailFinder
	delay   time.Duration
	alerter *monitoring.Alerter
}

// NewEmailStage creates the stage. delay is the pause between facilities.
func NewEmailStage(st store.Store, finder EmailFinder, delay time.Duration, a *monitoring.Alerter) *EmailStage {
	return &EmailStage{store: st, finder: finder, delay: delay, alerter: a}
}

// Run searches every facility with a website and no contact email whose
// name contains nameFilter.
func (s *EmailStage) Run(ctx context.Context, nameFilter string) (EmailSummary, error) {
	var sum EmailSummary
	facilities, err := s.store.ListFacilities(ctx, store.FacilityFilter{
		NameContains: nameFilter,
		HasWebsite:   true,
		MissingEmail: true,
	})
	if err != nil {
		return sum, eris.Wrap(err, "pipeline: list email candidates")
	}
	zap.L().Info("pipeline: email discovery starting", zap.Int("facilities", len(facilities)))

	collector := monitoring.NewCollector(StageEmails)
	defer report(ctx, s.alerter, collector)

	err = eachFacility(ctx, StageEmails, newLimiter(s.delay), facilities, func(ctx context.Context, _ int, f model.Facility) error {
		log := facilityLog(StageEmails, f)
		found := s.finder.Find(ctx, model.Str(f.Website))
		if err := ctx.Err(); err != nil {
			return eris.Wrapf(err, "pipeline: find emails %s", f.ID)
		}
		sum.Processed++

		best := found.Best()
		if best == "" {
			sum.NotFound++
			log.Info("pipeline: no email found", zap.Int("contact_pages", len(found.ContactPages)))
			collector.Record(ctx, "not_found")
			return nil
		}
		if err := s.store.SetContactEmail(ctx, f.ID, best); err != nil {
			sum.Failed++
			log.Error("pipeline: set contact email failed", zap.Error(err))
			collector.Record(ctx, monitoring.OutcomeFailed)
			return nil
		}
		sum.Found++
		log.Info("pipeline: email found",
			zap.String("email", best),
			zap.Int("candidates", len(found.Emails)),
		)
		collector.Record(ctx, monitoring.OutcomeUpdated)
		return nil
	})
	return sum, err
}
