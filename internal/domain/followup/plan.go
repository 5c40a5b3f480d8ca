package followup

import (
	"strings"
	"time"

	"github.com/turtacn/followup-compliance/pkg/errors"
)

// Question is one item of a plan's questionnaire.
type Question struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Required bool   `json:"required"`
}

// Plan is a doctor-authored set of follow-up checkpoints. Its checkpoint set
// does not change after creation; the only mutation is Discard.
type Plan struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	TimeTypes        []CheckpointID `json:"timeTypes"`
	Questions        []Question     `json:"questions,omitempty"`
	Discarded        bool           `json:"discarded"`
	CreatorID        string         `json:"creatorId"`
	CreatorName      string         `json:"creatorName,omitempty"`
	TeamName         string         `json:"teamName,omitempty"`
	ParticipantCount int            `json:"participantCount"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// NewPlanParams carries the fields a doctor supplies when authoring a plan.
type NewPlanParams struct {
	ID          string
	Title       string
	Description string
	TimeTypes   []string
	Questions   []Question
	CreatorID   string
	CreatorName string
	TeamName    string
	Now         time.Time
}

// NewPlan validates params and builds a Plan. TimeTypes must be non-empty and
// known; duplicates are dropped keeping first-seen order.
func NewPlan(p NewPlanParams) (*Plan, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, errors.New(errors.ErrCodePlanInvalid, "plan title is required")
	}
	if p.CreatorID == "" {
		return nil, errors.New(errors.ErrCodePlanInvalid, "plan creator is required")
	}
	if len(p.TimeTypes) == 0 {
		return nil, errors.New(errors.ErrCodePlanInvalid, "at least one checkpoint is required")
	}

	seen := make(map[CheckpointID]bool, len(p.TimeTypes))
	timeTypes := make([]CheckpointID, 0, len(p.TimeTypes))
	for _, raw := range p.TimeTypes {
		id := CheckpointID(strings.TrimSpace(raw))
		if !id.IsKnown() {
			return nil, errors.New(errors.ErrCodeCheckpointUnknown, "unknown checkpoint").WithDetail(raw)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		timeTypes = append(timeTypes, id)
	}

	qseen := make(map[string]bool, len(p.Questions))
	for _, q := range p.Questions {
		if q.ID == "" {
			return nil, errors.New(errors.ErrCodePlanInvalid, "question id is required")
		}
		if qseen[q.ID] {
			return nil, errors.New(errors.ErrCodePlanInvalid, "duplicate question id").WithDetail(q.ID)
		}
		qseen[q.ID] = true
	}

	now := p.Now.UTC()
	return &Plan{
		ID:          p.ID,
		Title:       title,
		Description: p.Description,
		TimeTypes:   timeTypes,
		Questions:   p.Questions,
		CreatorID:   p.CreatorID,
		CreatorName: p.CreatorName,
		TeamName:    p.TeamName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// HasCheckpoint reports whether c belongs to the plan.
func (p *Plan) HasCheckpoint(c CheckpointID) bool {
	for _, t := range p.TimeTypes {
		if t == c {
			return true
		}
	}
	return false
}

// DefaultCheckpoint is the checkpoint a submission targets when none is given.
func (p *Plan) DefaultCheckpoint() (CheckpointID, bool) {
	if len(p.TimeTypes) == 0 {
		return "", false
	}
	return p.TimeTypes[0], true
}

// Discard marks the plan invalid. Only the creator may discard it.
func (p *Plan) Discard(by string, now time.Time) error {
	if by != p.CreatorID {
		return errors.Forbidden("only the plan creator can discard it")
	}
	p.Discarded = true
	p.UpdatedAt = now.UTC()
	return nil
}

// DoctorName is the name shown next to the plan's checkpoints.
func (p *Plan) DoctorName() string {
	return p.CreatorName
}
