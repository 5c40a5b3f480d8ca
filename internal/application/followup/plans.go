package followup

import (
	"context"

	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

// PlanService covers plan authoring by doctors.
type PlanService interface {
	Create(ctx context.Context, input *CreatePlanInput) (*domainFollowup.Plan, error)
	// List returns the plans the doctor authored, newest first.
	List(ctx context.Context, doctorID string) ([]*domainFollowup.Plan, error)
	Get(ctx context.Context, planID string) (*domainFollowup.Plan, error)
	// Discard invalidates a plan. Only its creator may do so.
	Discard(ctx context.Context, doctorID, planID string) (*domainFollowup.Plan, error)
	// Records lists every submission made against the plan, newest first.
	Records(ctx context.Context, planID string) ([]*domainFollowup.Submission, error)
	// PatientRecords lists one patient's submissions against the plan, newest first.
	PatientRecords(ctx context.Context, planID, patientID string) ([]*domainFollowup.Submission, error)
}

// CreatePlanInput is a doctor's plan authoring request.
type CreatePlanInput struct {
	DoctorID    string                    `json:"-"`
	Title       string                    `json:"title"`
	Description string                    `json:"description,omitempty"`
	TimeTypes   []string                  `json:"timeTypes"`
	Questions   []domainFollowup.Question `json:"questions,omitempty"`
	CreatorName string                    `json:"creatorName,omitempty"`
	TeamName    string                    `json:"teamName,omitempty"`
}

type planServiceImpl struct {
	base
}

func NewPlanService(deps Dependencies) PlanService {
	return &planServiceImpl{base: newBase(deps)}
}

func (s *planServiceImpl) Create(ctx context.Context, input *CreatePlanInput) (*domainFollowup.Plan, error) {
	if input == nil {
		return nil, errors.InvalidParam("request body is required")
	}
	if input.DoctorID == "" {
		return nil, errors.Unauthorized("doctor identity is required")
	}

	plan, err := domainFollowup.NewPlan(domainFollowup.NewPlanParams{
		ID:          s.deps.NewID(),
		Title:       input.Title,
		Description: input.Description,
		TimeTypes:   input.TimeTypes,
		Questions:   input.Questions,
		CreatorID:   input.DoctorID,
		CreatorName: input.CreatorName,
		TeamName:    input.TeamName,
		Now:         s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.deps.Plans.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.deps.Logger.WithContext(ctx).Info("plan created",
		logging.String("plan_id", plan.ID),
		logging.String("creator_id", plan.CreatorID),
		logging.Int("checkpoints", len(plan.TimeTypes)))
	return plan, nil
}

func (s *planServiceImpl) List(ctx context.Context, doctorID string) ([]*domainFollowup.Plan, error) {
	if doctorID == "" {
		return nil, errors.Unauthorized("doctor identity is required")
	}
	plans, err := s.deps.Plans.ListByCreator(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []*domainFollowup.Plan{}
	}
	return plans, nil
}

func (s *planServiceImpl) Get(ctx context.Context, planID string) (*domainFollowup.Plan, error) {
	if planID == "" {
		return nil, errors.InvalidParam("plan id is required")
	}
	return s.deps.Plans.GetByID(ctx, planID)
}

func (s *planServiceImpl) Discard(ctx context.Context, doctorID, planID string) (*domainFollowup.Plan, error) {
	if doctorID == "" {
		return nil, errors.Unauthorized("doctor identity is required")
	}
	plan, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.Discarded {
		return plan, nil
	}
	if err := plan.Discard(doctorID, s.now()); err != nil {
		return nil, err
	}
	if err := s.deps.Plans.Update(ctx, plan); err != nil {
		return nil, err
	}

	s.invalidateAll(ctx)
	s.publish(ctx, kafka.TopicPlanDiscarded, plan.ID, kafka.PlanDiscardedPayload{
		PlanID:      plan.ID,
		CreatorID:   plan.CreatorID,
		DiscardedAt: plan.UpdatedAt,
	})
	s.deps.Logger.WithContext(ctx).Info("plan discarded", logging.String("plan_id", plan.ID))
	return plan, nil
}

func (s *planServiceImpl) Records(ctx context.Context, planID string) ([]*domainFollowup.Submission, error) {
	if _, err := s.Get(ctx, planID); err != nil {
		return nil, err
	}
	subs, err := s.deps.Submissions.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*domainFollowup.Submission{}
	}
	return subs, nil
}

func (s *planServiceImpl) PatientRecords(ctx context.Context, planID, patientID string) ([]*domainFollowup.Submission, error) {
	if patientID == "" {
		return nil, errors.InvalidParam("patient id is required")
	}
	all, err := s.Records(ctx, planID)
	if err != nil {
		return nil, err
	}
	out := make([]*domainFollowup.Submission, 0, len(all))
	for _, sub := range all {
		if sub.PatientID == patientID {
			out = append(out, sub)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeSubmissionNotFound, "no records for this patient").WithDetail(patientID)
	}
	return out, nil
}
