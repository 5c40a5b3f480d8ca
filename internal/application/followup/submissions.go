package followup

import (
	"context"
	"time"

	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

// SubmissionService records questionnaire fills.
type SubmissionService interface {
	Submit(ctx context.Context, input *SubmitInput) (*domainFollowup.Submission, error)
	// History lists the patient's submissions across plans, newest first.
	History(ctx context.Context, patientID string) ([]RecordSummary, error)
}

// SubmitInput is a patient's questionnaire submission. TimeType may be empty.
type SubmitInput struct {
	PatientID string                 `json:"-"`
	PlanID    string                 `json:"planId"`
	TimeType  string                 `json:"timeType,omitempty"`
	Answers   map[string]interface{} `json:"answers"`
}

// RecordSummary is one row of a patient's fill history.
type RecordSummary struct {
	ID         string                      `json:"id"`
	PlanID     string                      `json:"planId"`
	PlanTitle  string                      `json:"planTitle"`
	DoctorName string                      `json:"doctorName"`
	TimeType   domainFollowup.CheckpointID `json:"timeType"`
	FillTime   time.Time                   `json:"fillTime"`
	State      domainFollowup.State        `json:"status"`
}

type submissionServiceImpl struct {
	base
}

func NewSubmissionService(deps Dependencies) SubmissionService {
	return &submissionServiceImpl{base: newBase(deps)}
}

func (s *submissionServiceImpl) Submit(ctx context.Context, input *SubmitInput) (*domainFollowup.Submission, error) {
	if input == nil {
		return nil, errors.InvalidParam("request body is required")
	}
	if input.PatientID == "" {
		return nil, errors.Unauthorized("patient identity is required")
	}
	if input.PlanID == "" {
		return nil, errors.InvalidParam("planId is required")
	}

	plan, err := s.deps.Plans.GetByID(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}
	sub, err := domainFollowup.NewSubmission(domainFollowup.NewSubmissionParams{
		ID:           s.deps.NewID(),
		PatientID:    input.PatientID,
		Plan:         plan,
		CheckpointID: input.TimeType,
		Answers:      input.Answers,
		Now:          s.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.deps.Submissions.Create(ctx, sub); err != nil {
		if errors.IsCode(err, errors.ErrCodeSubmissionDuplicate) {
			s.deps.Metrics.ConflictsTotal.WithLabelValues("submit").Inc()
		}
		return nil, err
	}

	if err := s.deps.Plans.IncrementParticipants(ctx, plan.ID, 1); err != nil {
		s.deps.Logger.WithContext(ctx).Warn("participant count not incremented",
			logging.String("plan_id", plan.ID), logging.Err(err))
	}
	s.deps.Metrics.SubmissionsTotal.WithLabelValues(string(sub.CheckpointID)).Inc()
	s.invalidatePatient(ctx, sub.PatientID)
	s.publish(ctx, kafka.TopicSubmissionCreated, sub.PatientID, kafka.SubmissionCreatedPayload{
		SubmissionID: sub.ID,
		PatientID:    sub.PatientID,
		PlanID:       sub.PlanID,
		CheckpointID: string(sub.CheckpointID),
		Occurrence:   sub.Occurrence,
		CreatedAt:    sub.CreatedAt,
	})
	s.deps.Logger.WithContext(ctx).Info("submission recorded",
		logging.String("submission_id", sub.ID),
		logging.String("plan_id", sub.PlanID),
		logging.String("checkpoint", string(sub.CheckpointID)))
	return sub, nil
}

func (s *submissionServiceImpl) History(ctx context.Context, patientID string) ([]RecordSummary, error) {
	if patientID == "" {
		return nil, errors.Unauthorized("patient identity is required")
	}
	subs, err := s.deps.Submissions.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return []RecordSummary{}, nil
	}

	seen := map[string]bool{}
	var ids []string
	for _, sub := range subs {
		if !seen[sub.PlanID] {
			seen[sub.PlanID] = true
			ids = append(ids, sub.PlanID)
		}
	}
	plans, err := s.deps.Plans.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]RecordSummary, 0, len(subs))
	for i := len(subs) - 1; i >= 0; i-- {
		sub := subs[i]
		row := RecordSummary{
			ID:       sub.ID,
			PlanID:   sub.PlanID,
			TimeType: sub.CheckpointID,
			FillTime: sub.CreatedAt,
			State:    domainFollowup.StateCompleted,
		}
		if plan, ok := plans[sub.PlanID]; ok {
			row.PlanTitle = plan.Title
			row.DoctorName = plan.DoctorName()
		}
		out = append(out, row)
	}
	return out, nil
}
