package followup

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/turtacn/followup-compliance/pkg/errors"
)

// AnswerSurgeryDate is the questionnaire key holding the patient's surgery date.
const AnswerSurgeryDate = "basic_surgery_date"

// maxMissingListed caps how many missing question titles an error names.
const maxMissingListed = 3

// Submission is a patient's filled questionnaire for one checkpoint. It is
// immutable once stored.
//
// Occurrence is empty for scheduled checkpoints, so (patient, plan, checkpoint)
// is unique for them. For the recurring checkpoint it is the local day of the
// fill, which keeps the checkpoint open while still rejecting a second fill on
// the same day.
type Submission struct {
	ID           string                 `json:"id"`
	PatientID    string                 `json:"patientId"`
	PlanID       string                 `json:"planId"`
	CheckpointID CheckpointID           `json:"timeType"`
	Occurrence   string                 `json:"occurrence,omitempty"`
	Answers      map[string]interface{} `json:"answers"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// SurgeryDateAnswer returns the raw basic_surgery_date answer, if any.
func (s *Submission) SurgeryDateAnswer() string {
	if s == nil || s.Answers == nil {
		return ""
	}
	v, ok := s.Answers[AnswerSurgeryDate].(string)
	if !ok {
		return ""
	}
	return v
}

// NewSubmissionParams carries a submission request after identity resolution.
type NewSubmissionParams struct {
	ID        string
	PatientID string
	Plan      *Plan
	// CheckpointID may be empty; the plan's first checkpoint is used then.
	CheckpointID string
	Answers      map[string]interface{}
	// Now is the submission instant in the scheduler's time zone.
	Now time.Time
}

// NewSubmission validates a submission against its plan and builds it. It does
// not check for duplicates; storage enforces that.
func NewSubmission(p NewSubmissionParams) (*Submission, error) {
	if p.Plan == nil {
		return nil, errors.New(errors.ErrCodePlanNotFound, "plan not found")
	}
	if p.Plan.Discarded {
		return nil, errors.New(errors.ErrCodePlanDiscarded, "plan has been discarded and no longer accepts records")
	}
	if p.PatientID == "" {
		return nil, errors.Unauthorized("patient identity is required")
	}

	checkpoint := CheckpointID(strings.TrimSpace(p.CheckpointID))
	if checkpoint == "" {
		def, ok := p.Plan.DefaultCheckpoint()
		if !ok {
			return nil, errors.New(errors.ErrCodeCheckpointUnknown, "plan has no checkpoints")
		}
		checkpoint = def
	}
	if !p.Plan.HasCheckpoint(checkpoint) {
		return nil, errors.New(errors.ErrCodeCheckpointUnknown, "checkpoint is not part of the plan").
			WithDetail(string(checkpoint))
	}

	answers := p.Answers
	if answers == nil {
		answers = map[string]interface{}{}
	}
	if err := ValidateAnswers(p.Plan, checkpoint, answers); err != nil {
		return nil, err
	}

	var occurrence string
	if checkpoint.IsRecurring() {
		occurrence = DateOf(p.Now).String()
	}

	return &Submission{
		ID:           p.ID,
		PatientID:    p.PatientID,
		PlanID:       p.Plan.ID,
		CheckpointID: checkpoint,
		Occurrence:   occurrence,
		Answers:      answers,
		CreatedAt:    p.Now.UTC(),
	}, nil
}

// ValidateAnswers checks that every required question has a non-blank answer.
// The surgery date is not required on the pre-operative checkpoint, since
// surgery has not happened yet.
func ValidateAnswers(plan *Plan, checkpoint CheckpointID, answers map[string]interface{}) error {
	var missing []string
	for _, q := range plan.Questions {
		if !q.Required {
			continue
		}
		if checkpoint == CheckpointPreoperative && q.ID == AnswerSurgeryDate {
			continue
		}
		if isBlankAnswer(answers[q.ID]) {
			name := q.Title
			if name == "" {
				name = q.ID
			}
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	msg := "please answer: " + strings.Join(firstN(missing, maxMissingListed), ", ")
	if len(missing) > maxMissingListed {
		msg += fmt.Sprintf(" and %d more", len(missing)-maxMissingListed)
	}
	return errors.New(errors.ErrCodeSubmissionMissingAnswers, msg)
}

func isBlankAnswer(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
