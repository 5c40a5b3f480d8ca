package client

import "time"

// Checkpoint states reported by the compliance list.
const (
	StateCompleted = "completed"
	StatePending   = "pending"
	StateExpired   = "expired"
)

type Question struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Required bool   `json:"required"`
}

type Plan struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	TimeTypes        []string   `json:"timeTypes"`
	Questions        []Question `json:"questions,omitempty"`
	Discarded        bool       `json:"discarded"`
	CreatorID        string     `json:"creatorId"`
	CreatorName      string     `json:"creatorName,omitempty"`
	TeamName         string     `json:"teamName,omitempty"`
	ParticipantCount int        `json:"participantCount"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type CreatePlanRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TimeTypes   []string   `json:"timeTypes"`
	Questions   []Question `json:"questions,omitempty"`
	CreatorName string     `json:"creatorName,omitempty"`
	TeamName    string     `json:"teamName,omitempty"`
}

// Binding is a patient's commitment to a plan. Dates are YYYY-MM-DD.
type Binding struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patientId"`
	PlanID          string    `json:"planId"`
	AdmissionNumber string    `json:"admissionNumber,omitempty"`
	TeamName        string    `json:"teamName,omitempty"`
	DoctorID        string    `json:"doctorId,omitempty"`
	SurgeryDate     string    `json:"surgeryDate,omitempty"`
	AdmissionDate   string    `json:"admissionDate,omitempty"`
	DischargeDate   string    `json:"dischargeDate,omitempty"`
	IsCurrent       bool      `json:"isCurrent"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type BindRequest struct {
	PlanID          string `json:"planId"`
	AdmissionNumber string `json:"admissionNumber,omitempty"`
	TeamName        string `json:"teamName,omitempty"`
	DoctorID        string `json:"doctorId,omitempty"`
	SurgeryDate     string `json:"surgeryDate,omitempty"`
	AdmissionDate   string `json:"admissionDate,omitempty"`
	DischargeDate   string `json:"dischargeDate,omitempty"`
}

type BindResult struct {
	Binding         *Binding `json:"binding"`
	PlanTitle       string   `json:"planTitle"`
	Created         bool     `json:"created"`
	NeedsSupplement bool     `json:"needsSupplement"`
}

// Supplement updates only the non-nil fields of a binding.
type Supplement struct {
	AdmissionNumber *string `json:"admissionNumber,omitempty"`
	TeamName        *string `json:"teamName,omitempty"`
	DoctorID        *string `json:"doctorId,omitempty"`
	SurgeryDate     *string `json:"surgeryDate,omitempty"`
	AdmissionDate   *string `json:"admissionDate,omitempty"`
	DischargeDate   *string `json:"dischargeDate,omitempty"`
}

type BindingSummary struct {
	BindingID  string `json:"commitmentId"`
	PlanID     string `json:"planId"`
	PlanTitle  string `json:"planTitle"`
	DoctorName string `json:"doctorName"`
	IsCurrent  bool   `json:"isCurrent"`
}

// ScheduleItem is one row of the compliance list.
type ScheduleItem struct {
	PlanID       string     `json:"planId"`
	PlanTitle    string     `json:"planTitle"`
	CheckpointID string     `json:"checkpointId"`
	Title        string     `json:"title"`
	DueDate      *string    `json:"dueDate"`
	State        string     `json:"state"`
	SubmissionID *string    `json:"submissionId"`
	FillTime     *time.Time `json:"fillTime"`
	IsCurrent    bool       `json:"isCurrent"`
	DoctorName   string     `json:"doctorName,omitempty"`
	TeamName     string     `json:"teamName,omitempty"`
}

type SubmitRequest struct {
	PlanID string `json:"planId"`
	// TimeType defaults to the recurring daily checkpoint when empty.
	TimeType string                 `json:"timeType,omitempty"`
	Answers  map[string]interface{} `json:"answers"`
}

type Submission struct {
	ID         string                 `json:"id"`
	PatientID  string                 `json:"patientId"`
	PlanID     string                 `json:"planId"`
	TimeType   string                 `json:"timeType"`
	Occurrence string                 `json:"occurrence,omitempty"`
	Answers    map[string]interface{} `json:"answers"`
	CreatedAt  time.Time              `json:"createdAt"`
}

type RecordSummary struct {
	ID         string    `json:"id"`
	PlanID     string    `json:"planId"`
	PlanTitle  string    `json:"planTitle"`
	DoctorName string    `json:"doctorName"`
	TimeType   string    `json:"timeType"`
	FillTime   time.Time `json:"fillTime"`
	Status     string    `json:"status"`
}

// PlanView is a plan with the caller's binding, nil when never bound.
type PlanView struct {
	Plan    *Plan    `json:"plan"`
	Binding *Binding `json:"binding"`
}
