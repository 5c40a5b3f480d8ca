// Package memory holds in-process implementations of the follow-up
// repositories. They back the mock-data mode and service tests and enforce the
// same uniqueness rules as the PostgreSQL schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

// Store is a mutex-guarded set of tables shared by the three repositories.
type Store struct {
	mu          sync.RWMutex
	plans       map[string]*followup.Plan
	bindings    map[string]*followup.Binding
	submissions map[string]*followup.Submission
	now         func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		plans:       make(map[string]*followup.Plan),
		bindings:    make(map[string]*followup.Binding),
		submissions: make(map[string]*followup.Submission),
		now:         time.Now,
	}
}

func (s *Store) Plans() followup.PlanRepository             { return planRepo{s} }
func (s *Store) Bindings() followup.BindingRepository       { return bindingRepo{s} }
func (s *Store) Submissions() followup.SubmissionRepository { return submissionRepo{s} }

// --- plans ---

type planRepo struct{ s *Store }

func (r planRepo) Create(_ context.Context, p *followup.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[p.ID]; ok {
		return errors.Conflict("plan already exists").WithDetail(p.ID)
	}
	r.s.plans[p.ID] = copyPlan(p)
	return nil
}

func (r planRepo) GetByID(_ context.Context, id string) (*followup.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, errors.New(errors.ErrCodePlanNotFound, "plan not found").WithDetail(id)
	}
	return copyPlan(p), nil
}

func (r planRepo) ListByIDs(_ context.Context, ids []string) (map[string]*followup.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*followup.Plan, len(ids))
	for _, id := range ids {
		if p, ok := r.s.plans[id]; ok {
			out[id] = copyPlan(p)
		}
	}
	return out, nil
}

func (r planRepo) ListByCreator(_ context.Context, creatorID string) ([]*followup.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*followup.Plan
	for _, p := range r.s.plans {
		if p.CreatorID == creatorID {
			out = append(out, copyPlan(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r planRepo) Update(_ context.Context, p *followup.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.plans[p.ID]
	if !ok {
		return errors.New(errors.ErrCodePlanNotFound, "plan not found").WithDetail(p.ID)
	}
	stored.Discarded = p.Discarded
	stored.UpdatedAt = p.UpdatedAt
	return nil
}

func (r planRepo) IncrementParticipants(_ context.Context, id string, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.plans[id]
	if !ok {
		return errors.New(errors.ErrCodePlanNotFound, "plan not found").WithDetail(id)
	}
	stored.ParticipantCount += delta
	return nil
}

// --- bindings ---

type bindingRepo struct{ s *Store }

func (r bindingRepo) Create(_ context.Context, b *followup.Binding, autoCurrent bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	hasCurrent := false
	for _, existing := range r.s.bindings {
		if existing.PatientID != b.PatientID {
			continue
		}
		if existing.PlanID == b.PlanID {
			return errors.New(errors.ErrCodeBindingExists, "plan already bound").WithDetail(b.PlanID)
		}
		hasCurrent = hasCurrent || existing.IsCurrent
	}
	if _, ok := r.s.bindings[b.ID]; ok {
		return errors.Conflict("binding already exists").WithDetail(b.ID)
	}

	b.IsCurrent = autoCurrent && !hasCurrent
	r.s.bindings[b.ID] = copyBinding(b)
	return nil
}

func (r bindingRepo) GetByID(_ context.Context, id string) (*followup.Binding, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bindings[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeBindingNotFound, "binding not found").WithDetail(id)
	}
	return copyBinding(b), nil
}

func (r bindingRepo) GetByPatientAndPlan(_ context.Context, patientID, planID string) (*followup.Binding, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.bindings {
		if b.PatientID == patientID && b.PlanID == planID {
			return copyBinding(b), nil
		}
	}
	return nil, errors.New(errors.ErrCodeBindingNotFound, "binding not found").WithDetail(planID)
}

func (r bindingRepo) ListByPatient(_ context.Context, patientID string) ([]*followup.Binding, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.patientBindings(patientID, true), nil
}

func (r bindingRepo) Update(_ context.Context, b *followup.Binding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.bindings[b.ID]
	if !ok {
		return errors.New(errors.ErrCodeBindingNotFound, "binding not found").WithDetail(b.ID)
	}
	stored.AdmissionNumber = b.AdmissionNumber
	stored.TeamName = b.TeamName
	stored.DoctorID = b.DoctorID
	stored.SurgeryDate = b.SurgeryDate
	stored.AdmissionDate = b.AdmissionDate
	stored.DischargeDate = b.DischargeDate
	stored.UpdatedAt = b.UpdatedAt
	return nil
}

func (r bindingRepo) SetCurrent(_ context.Context, patientID, bindingID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return followup.SelectCurrent(r.s.patientBindings(patientID, false), bindingID, r.s.now())
}

func (r bindingRepo) UnsetCurrent(_ context.Context, patientID, bindingID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return followup.ClearCurrent(r.s.patientBindings(patientID, false), bindingID, r.s.now())
}

// patientBindings returns the patient's bindings in creation order. Callers
// must hold the lock; clone=false hands out the stored pointers.
func (s *Store) patientBindings(patientID string, clone bool) []*followup.Binding {
	var out []*followup.Binding
	for _, b := range s.bindings {
		if b.PatientID != patientID {
			continue
		}
		if clone {
			b = copyBinding(b)
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// --- submissions ---

type submissionRepo struct{ s *Store }

func (r submissionRepo) Create(_ context.Context, sub *followup.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.submissions {
		if existing.PatientID == sub.PatientID && existing.PlanID == sub.PlanID &&
			existing.CheckpointID == sub.CheckpointID && existing.Occurrence == sub.Occurrence {
			return errors.New(errors.ErrCodeSubmissionDuplicate, "this checkpoint has already been filled")
		}
	}
	if _, ok := r.s.submissions[sub.ID]; ok {
		return errors.Conflict("submission already exists").WithDetail(sub.ID)
	}
	r.s.submissions[sub.ID] = copySubmission(sub)
	return nil
}

func (r submissionRepo) GetByID(_ context.Context, id string) (*followup.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeSubmissionNotFound, "submission not found").WithDetail(id)
	}
	return copySubmission(sub), nil
}

func (r submissionRepo) ListByPatient(_ context.Context, patientID string) ([]*followup.Submission, error) {
	out := r.filter(func(s *followup.Submission) bool { return s.PatientID == patientID })
	sort.Slice(out, func(i, j int) bool { return earlier(out[i], out[j]) })
	return out, nil
}

func (r submissionRepo) ListByPlan(_ context.Context, planID string) ([]*followup.Submission, error) {
	out := r.filter(func(s *followup.Submission) bool { return s.PlanID == planID })
	sort.Slice(out, func(i, j int) bool { return earlier(out[j], out[i]) })
	return out, nil
}

func (r submissionRepo) filter(keep func(*followup.Submission) bool) []*followup.Submission {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*followup.Submission
	for _, sub := range r.s.submissions {
		if keep(sub) {
			out = append(out, copySubmission(sub))
		}
	}
	return out
}

func earlier(a, b *followup.Submission) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func copyPlan(p *followup.Plan) *followup.Plan {
	c := *p
	c.TimeTypes = append([]followup.CheckpointID(nil), p.TimeTypes...)
	c.Questions = append([]followup.Question(nil), p.Questions...)
	return &c
}

func copyBinding(b *followup.Binding) *followup.Binding {
	c := *b
	return &c
}

func copySubmission(s *followup.Submission) *followup.Submission {
	c := *s
	c.Answers = make(map[string]interface{}, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	return &c
}
