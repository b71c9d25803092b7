package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/internal/monitoring"
	"github.com/galtpos/oasara-sub004/internal/specialty"
	"github.com/galtpos/oasara-sub004/internal/store"
)

// SpecialtySummary counts a specialty inference run.
type SpecialtySummary struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// SpecialtyStage assigns inferred specialties and popular procedures.
type SpecialtyStage struct {
	store   store.Store
	alerter *monitoring.Alerter
}

// NewSpecialtyStage creates the stage.
func NewSpecialtyStage(st store.Store, a *monitoring.Alerter) *SpecialtyStage {
	return &SpecialtyStage{store: st, alerter: a}
}

// Run classifies every facility whose name contains nameFilter. Facilities
// whose classification would not change are not written.
func (s *SpecialtyStage) Run(ctx context.Context, nameFilter string) (SpecialtySummary, error) {
	var sum SpecialtySummary
	facilities, err := s.store.ListFacilities(ctx, store.FacilityFilter{NameContains: nameFilter})
	if err != nil {
		return sum, eris.Wrap(err, "pipeline: list facilities")
	}

	collector := monitoring.NewCollector(StageSpecialties)
	defer report(ctx, s.alerter, collector)

	err = eachFacility(ctx, StageSpecialties, newLimiter(0), facilities, func(ctx context.Context, _ int, f model.Facility) error {
		sum.Processed++
		res := specialty.Infer(f)
		if !res.Changed(f) {
			sum.Unchanged++
			collector.Record(ctx, monitoring.OutcomeSkipped)
			return nil
		}
		if err := s.store.UpdateClassification(ctx, f.ID, res.Specialties, res.Procedures); err != nil {
			sum.Failed++
			facilityLog(StageSpecialties, f).Error("pipeline: update classification failed", zap.Error(err))
			collector.Record(ctx, monitoring.OutcomeFailed)
			return nil
		}
		sum.Updated++
		facilityLog(StageSpecialties, f).Debug("pipeline: classified",
			zap.Int("specialties", len(res.Specialties)),
			zap.Int("procedures", len(res.Procedures)),
		)
		collector.Record(ctx, monitoring.OutcomeUpdated)
		return nil
	})
	return sum, err
}
