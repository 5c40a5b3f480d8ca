package followup

import (
	"context"
	"strings"

	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/redis"
	"github.com/turtacn/followup-compliance/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

// BindingService manages a patient's plan bindings and the current plan.
type BindingService interface {
	// Bind commits the patient to a plan. Binding an already bound plan is
	// idempotent: the supplied non-blank fields are merged and Created is false.
	Bind(ctx context.Context, input *BindInput) (*BindResult, error)
	Update(ctx context.Context, patientID, bindingID string, sup domainFollowup.Supplement) (*domainFollowup.Binding, error)
	// ListAll returns every binding of the patient whose plan is still valid.
	ListAll(ctx context.Context, patientID string) ([]BindingSummary, error)
	// Info resolves id as a binding id first, then as a plan id. It returns
	// nil without error when the plan exists but the patient never bound it.
	Info(ctx context.Context, patientID, id string) (*domainFollowup.Binding, error)
	SetCurrent(ctx context.Context, patientID, bindingID string) (*domainFollowup.Binding, error)
	UnsetCurrent(ctx context.Context, patientID, bindingID string) (*domainFollowup.Binding, error)
}

// BindInput is a patient's bind request.
type BindInput struct {
	PatientID       string `json:"-"`
	PlanID          string `json:"planId"`
	AdmissionNumber string `json:"admissionNumber,omitempty"`
	TeamName        string `json:"teamName,omitempty"`
	DoctorID        string `json:"doctorId,omitempty"`
	SurgeryDate     string `json:"surgeryDate,omitempty"`
	AdmissionDate   string `json:"admissionDate,omitempty"`
	DischargeDate   string `json:"dischargeDate,omitempty"`
}

// supplement keeps only the non-blank fields, so a re-bind never clears data.
func (in *BindInput) supplement() domainFollowup.Supplement {
	pick := func(v string) *string {
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return &v
	}
	return domainFollowup.Supplement{
		AdmissionNumber: pick(in.AdmissionNumber),
		TeamName:        pick(in.TeamName),
		DoctorID:        pick(in.DoctorID),
		SurgeryDate:     pick(in.SurgeryDate),
		AdmissionDate:   pick(in.AdmissionDate),
		DischargeDate:   pick(in.DischargeDate),
	}
}

type BindResult struct {
	Binding         *domainFollowup.Binding `json:"binding"`
	PlanTitle       string                  `json:"planTitle"`
	Created         bool                    `json:"created"`
	NeedsSupplement bool                    `json:"needsSupplement"`
}

type BindingSummary struct {
	BindingID  string `json:"commitmentId"`
	PlanID     string `json:"planId"`
	PlanTitle  string `json:"planTitle"`
	DoctorName string `json:"doctorName"`
	IsCurrent  bool   `json:"isCurrent"`
}

type bindingServiceImpl struct {
	base
}

func NewBindingService(deps Dependencies) BindingService {
	return &bindingServiceImpl{base: newBase(deps)}
}

func (s *bindingServiceImpl) Bind(ctx context.Context, input *BindInput) (*BindResult, error) {
	if input == nil {
		return nil, errors.InvalidParam("request body is required")
	}
	if input.PatientID == "" {
		return nil, errors.Unauthorized("patient identity is required")
	}
	if strings.TrimSpace(input.PlanID) == "" {
		return nil, errors.InvalidParam("planId is required")
	}
	sup := input.supplement()
	if err := sup.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.deps.Plans.GetByID(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.Discarded {
		return nil, errors.New(errors.ErrCodePlanDiscarded, "plan has been discarded and cannot be bound").WithDetail(plan.ID)
	}

	existing, err := s.deps.Bindings.GetByPatientAndPlan(ctx, input.PatientID, plan.ID)
	switch {
	case err == nil:
		return s.rebind(ctx, plan, existing, sup)
	case !errors.IsCode(err, errors.ErrCodeBindingNotFound):
		return nil, err
	}

	now := s.now()
	b := &domainFollowup.Binding{
		ID:        s.deps.NewID(),
		PatientID: input.PatientID,
		PlanID:    plan.ID,
		CreatedAt: now.UTC(),
	}
	b.Apply(sup, now)

	if err := s.deps.Bindings.Create(ctx, b, true); err != nil {
		if !errors.IsCode(err, errors.ErrCodeBindingExists) {
			return nil, err
		}
		// A concurrent request bound the same plan first.
		existing, getErr := s.deps.Bindings.GetByPatientAndPlan(ctx, input.PatientID, plan.ID)
		if getErr != nil {
			return nil, getErr
		}
		return s.rebind(ctx, plan, existing, sup)
	}

	if err := s.deps.Plans.IncrementParticipants(ctx, plan.ID, 1); err != nil {
		s.deps.Logger.WithContext(ctx).Warn("participant count not incremented",
			logging.String("plan_id", plan.ID), logging.Err(err))
	}
	if b.IsCurrent {
		s.deps.Metrics.CurrentSwitchesTotal.WithLabelValues("auto").Inc()
	}
	s.invalidatePatient(ctx, b.PatientID)
	s.publish(ctx, kafka.TopicBindingCreated, b.PatientID, kafka.BindingCreatedPayload{
		BindingID: b.ID,
		PatientID: b.PatientID,
		PlanID:    b.PlanID,
		IsCurrent: b.IsCurrent,
		CreatedAt: b.CreatedAt,
	})
	s.deps.Logger.WithContext(ctx).Info("plan bound",
		logging.String("binding_id", b.ID),
		logging.String("plan_id", b.PlanID),
		logging.Bool("is_current", b.IsCurrent))

	return &BindResult{
		Binding:         b,
		PlanTitle:       plan.Title,
		Created:         true,
		NeedsSupplement: b.NeedsSupplement(),
	}, nil
}

func (s *bindingServiceImpl) rebind(ctx context.Context, plan *domainFollowup.Plan, b *domainFollowup.Binding, sup domainFollowup.Supplement) (*BindResult, error) {
	if !sup.IsEmpty() {
		b.Apply(sup, s.now())
		if err := s.deps.Bindings.Update(ctx, b); err != nil {
			return nil, err
		}
		s.invalidatePatient(ctx, b.PatientID)
	}
	return &BindResult{
		Binding:         b,
		PlanTitle:       plan.Title,
		NeedsSupplement: b.NeedsSupplement(),
	}, nil
}

func (s *bindingServiceImpl) Update(ctx context.Context, patientID, bindingID string, sup domainFollowup.Supplement) (*domainFollowup.Binding, error) {
	if err := sup.Validate(); err != nil {
		return nil, err
	}
	b, err := s.owned(ctx, patientID, bindingID)
	if err != nil {
		return nil, err
	}
	if sup.IsEmpty() {
		return b, nil
	}
	b.Apply(sup, s.now())
	if err := s.deps.Bindings.Update(ctx, b); err != nil {
		return nil, err
	}
	s.invalidatePatient(ctx, patientID)
	return b, nil
}

func (s *bindingServiceImpl) ListAll(ctx context.Context, patientID string) ([]BindingSummary, error) {
	if patientID == "" {
		return nil, errors.Unauthorized("patient identity is required")
	}
	bindings, err := s.deps.Bindings.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(bindings))
	for i, b := range bindings {
		ids[i] = b.PlanID
	}
	plans := map[string]*domainFollowup.Plan{}
	if len(ids) > 0 {
		if plans, err = s.deps.Plans.ListByIDs(ctx, ids); err != nil {
			return nil, err
		}
	}

	out := make([]BindingSummary, 0, len(bindings))
	for _, b := range bindings {
		plan, ok := plans[b.PlanID]
		if !ok || plan.Discarded {
			continue
		}
		out = append(out, BindingSummary{
			BindingID:  b.ID,
			PlanID:     plan.ID,
			PlanTitle:  plan.Title,
			DoctorName: plan.DoctorName(),
			IsCurrent:  b.IsCurrent,
		})
	}
	return out, nil
}

func (s *bindingServiceImpl) Info(ctx context.Context, patientID, id string) (*domainFollowup.Binding, error) {
	b, err := s.owned(ctx, patientID, id)
	if err == nil {
		return b, nil
	}
	if !errors.IsCode(err, errors.ErrCodeBindingNotFound) {
		return nil, err
	}

	plan, err := s.deps.Plans.GetByID(ctx, id)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodePlanNotFound) {
			return nil, errors.NotFound("plan or binding not found").WithDetail(id)
		}
		return nil, err
	}
	b, err = s.deps.Bindings.GetByPatientAndPlan(ctx, patientID, plan.ID)
	if errors.IsCode(err, errors.ErrCodeBindingNotFound) {
		return nil, nil
	}
	return b, err
}

func (s *bindingServiceImpl) SetCurrent(ctx context.Context, patientID, bindingID string) (*domainFollowup.Binding, error) {
	return s.switchCurrent(ctx, patientID, bindingID, true)
}

func (s *bindingServiceImpl) UnsetCurrent(ctx context.Context, patientID, bindingID string) (*domainFollowup.Binding, error) {
	return s.switchCurrent(ctx, patientID, bindingID, false)
}

func (s *bindingServiceImpl) switchCurrent(ctx context.Context, patientID, bindingID string, current bool) (*domainFollowup.Binding, error) {
	if _, err := s.owned(ctx, patientID, bindingID); err != nil {
		return nil, err
	}

	unlock, err := s.lockPatient(ctx, patientID)
	if err != nil {
		s.deps.Metrics.ConflictsTotal.WithLabelValues("current").Inc()
		return nil, err
	}
	defer unlock()

	action := "unset"
	if current {
		action = "set"
		err = s.deps.Bindings.SetCurrent(ctx, patientID, bindingID)
	} else {
		err = s.deps.Bindings.UnsetCurrent(ctx, patientID, bindingID)
	}
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeCurrentConflict) {
			s.deps.Metrics.ConflictsTotal.WithLabelValues("current").Inc()
		}
		return nil, err
	}

	b, err := s.deps.Bindings.GetByID(ctx, bindingID)
	if err != nil {
		return nil, err
	}
	s.deps.Metrics.CurrentSwitchesTotal.WithLabelValues(action).Inc()
	s.invalidatePatient(ctx, patientID)
	s.publish(ctx, kafka.TopicCurrentChanged, patientID, kafka.CurrentChangedPayload{
		BindingID: b.ID,
		PatientID: patientID,
		PlanID:    b.PlanID,
		IsCurrent: b.IsCurrent,
		ChangedAt: b.UpdatedAt,
	})
	s.deps.Logger.WithContext(ctx).Info("current plan changed",
		logging.String("binding_id", b.ID),
		logging.String("action", action))
	return b, nil
}

// lockPatient serializes current-plan changes of one patient across
// instances. Without a lock factory it is a no-op.
func (s *bindingServiceImpl) lockPatient(ctx context.Context, patientID string) (func(), error) {
	if s.deps.Locks == nil {
		return func() {}, nil
	}
	mu := s.deps.Locks.NewMutex("current:"+patientID, redis.WithLockTTL(s.deps.LockTTL))
	if err := mu.Lock(ctx); err != nil {
		return nil, err
	}
	return func() {
		// release with a fresh context so a cancelled request still unlocks
		if err := mu.Unlock(context.WithoutCancel(ctx)); err != nil {
			s.deps.Logger.WithContext(ctx).Warn("current lock release failed",
				logging.String("patient_id", patientID), logging.Err(err))
		}
	}, nil
}

// owned loads a binding and hides bindings of other patients behind a
// not-found error.
func (s *bindingServiceImpl) owned(ctx context.Context, patientID, bindingID string) (*domainFollowup.Binding, error) {
	if patientID == "" {
		return nil, errors.Unauthorized("patient identity is required")
	}
	if bindingID == "" {
		return nil, errors.InvalidParam("binding id is required")
	}
	b, err := s.deps.Bindings.GetByID(ctx, bindingID)
	if err != nil {
		return nil, err
	}
	if !b.OwnedBy(patientID) {
		return nil, errors.New(errors.ErrCodeBindingNotFound, "binding not found").WithDetail(bindingID)
	}
	return b, nil
}
