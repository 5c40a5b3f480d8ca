package followup

import (
	"context"
	"time"

	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

// ComplianceService answers "what does this patient have to do".
type ComplianceService interface {
	// List returns the ordered compliance list of the patient's current plan.
	List(ctx context.Context, patientID string) ([]domainFollowup.ScheduleItem, error)
}

type complianceServiceImpl struct {
	base
}

func NewComplianceService(deps Dependencies) ComplianceService {
	return &complianceServiceImpl{base: newBase(deps)}
}

func (s *complianceServiceImpl) List(ctx context.Context, patientID string) ([]domainFollowup.ScheduleItem, error) {
	if patientID == "" {
		return nil, errors.Unauthorized("patient identity is required")
	}
	now := s.now()

	if s.deps.Cache == nil {
		return s.build(ctx, patientID, now)
	}

	var items []domainFollowup.ScheduleItem
	hit, err := s.deps.Cache.GetOrSet(ctx, complianceKey(patientID, now), &items, s.deps.CacheTTL,
		func(ctx context.Context) (interface{}, error) {
			return s.build(ctx, patientID, now)
		})
	if err != nil {
		return nil, err
	}
	s.deps.Metrics.RecordCacheAccess(complianceCacheName, hit)
	if items == nil {
		items = []domainFollowup.ScheduleItem{}
	}
	return items, nil
}

func (s *complianceServiceImpl) build(ctx context.Context, patientID string, now time.Time) ([]domainFollowup.ScheduleItem, error) {
	bindings, err := s.deps.Bindings.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var planIDs []string
	for _, b := range bindings {
		if b.IsCurrent {
			planIDs = append(planIDs, b.PlanID)
		}
	}
	if len(planIDs) == 0 {
		return []domainFollowup.ScheduleItem{}, nil
	}

	plans, err := s.deps.Plans.ListByIDs(ctx, planIDs)
	if err != nil {
		return nil, err
	}
	submissions, err := s.deps.Submissions.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(s.deps.Metrics.ScheduleBuildDuration.WithLabelValues())
	classified := domainFollowup.ClassifyBindings(domainFollowup.ScheduleInput{
		Bindings:    bindings,
		Plans:       plans,
		Submissions: submissions,
		Now:         now,
		GraceDays:   s.deps.GraceDays,
	})
	items := domainFollowup.Reduce(classified)
	elapsed := timer.ObserveDuration()

	states := make([]string, len(classified))
	for i, it := range classified {
		states[i] = string(it.State)
	}
	s.deps.Metrics.RecordClassifications(states)
	s.deps.Metrics.ScheduleItems.WithLabelValues().Observe(float64(len(items)))

	s.deps.Logger.WithContext(ctx).Debug("compliance list built",
		logging.String("patient_id", patientID),
		logging.Int("classified", len(classified)),
		logging.Int("items", len(items)),
		logging.Duration("elapsed", elapsed))
	return items, nil
}
