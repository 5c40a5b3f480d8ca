package followup

import "context"

// PlanRepository persists plans. Lookups of a missing plan return an
// ErrCodePlanNotFound error.
type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id string) (*Plan, error)
	// ListByIDs returns the plans found; missing ids are simply absent.
	ListByIDs(ctx context.Context, ids []string) (map[string]*Plan, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*Plan, error)
	// Update persists Discarded and UpdatedAt.
	Update(ctx context.Context, plan *Plan) error
	IncrementParticipants(ctx context.Context, id string, delta int) error
}

// BindingRepository persists patient-plan bindings.
//
// Implementations guarantee at most one binding per (patient, plan) and at
// most one current binding per patient; SetCurrent and UnsetCurrent are atomic.
type BindingRepository interface {
	// Create inserts b. When autoCurrent is set, b becomes current if and only
	// if the patient has no current binding, and b.IsCurrent reports the
	// outcome. A second binding of the same plan returns ErrCodeBindingExists.
	Create(ctx context.Context, b *Binding, autoCurrent bool) error
	GetByID(ctx context.Context, id string) (*Binding, error)
	GetByPatientAndPlan(ctx context.Context, patientID, planID string) (*Binding, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Binding, error)
	// Update persists the supplemental fields and UpdatedAt.
	Update(ctx context.Context, b *Binding) error
	// SetCurrent clears every current flag of the patient and sets it on
	// bindingID, in one transaction. A binding of another patient is reported
	// as not found.
	SetCurrent(ctx context.Context, patientID, bindingID string) error
	UnsetCurrent(ctx context.Context, patientID, bindingID string) error
}

// SubmissionRepository persists submissions. Create returns
// ErrCodeSubmissionDuplicate when (patient, plan, checkpoint, occurrence)
// already exists.
type SubmissionRepository interface {
	Create(ctx context.Context, s *Submission) error
	GetByID(ctx context.Context, id string) (*Submission, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Submission, error)
	ListByPlan(ctx context.Context, planID string) ([]*Submission, error)
}
