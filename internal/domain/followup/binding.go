package followup

import (
	"strings"
	"time"

	"github.com/turtacn/followup-compliance/pkg/errors"
)

// Binding is a patient's commitment to a plan. At most one binding exists per
// (patient, plan) and at most one binding per patient is current.
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

// Supplement holds the optional binding fields a patient may fill in later.
// Nil pointers leave the stored value untouched.
type Supplement struct {
	AdmissionNumber *string `json:"admissionNumber,omitempty"`
	TeamName        *string `json:"teamName,omitempty"`
	DoctorID        *string `json:"doctorId,omitempty"`
	SurgeryDate     *string `json:"surgeryDate,omitempty"`
	AdmissionDate   *string `json:"admissionDate,omitempty"`
	DischargeDate   *string `json:"dischargeDate,omitempty"`
}

// IsEmpty reports whether no field is set.
func (s Supplement) IsEmpty() bool {
	return s.AdmissionNumber == nil && s.TeamName == nil && s.DoctorID == nil &&
		s.SurgeryDate == nil && s.AdmissionDate == nil && s.DischargeDate == nil
}

// Validate rejects date fields that are neither empty nor a calendar date.
func (s Supplement) Validate() error {
	dates := []struct {
		name  string
		value *string
	}{
		{"surgeryDate", s.SurgeryDate},
		{"admissionDate", s.AdmissionDate},
		{"dischargeDate", s.DischargeDate},
	}
	for _, d := range dates {
		if d.value == nil || strings.TrimSpace(*d.value) == "" {
			continue
		}
		if _, ok := ParseCalendarDate(*d.value); !ok {
			return errors.New(errors.ErrCodeDateInvalid, d.name+" must be YYYY-MM-DD").WithDetail(*d.value)
		}
	}
	return nil
}

// Apply copies the set fields into b. Dates are stored in canonical form.
func (b *Binding) Apply(s Supplement, now time.Time) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	setDate := func(dst *string, v *string) {
		if v == nil {
			return
		}
		if d, ok := ParseCalendarDate(*v); ok {
			*dst = d.String()
			return
		}
		*dst = strings.TrimSpace(*v)
	}

	set(&b.AdmissionNumber, s.AdmissionNumber)
	set(&b.TeamName, s.TeamName)
	set(&b.DoctorID, s.DoctorID)
	setDate(&b.SurgeryDate, s.SurgeryDate)
	setDate(&b.AdmissionDate, s.AdmissionDate)
	setDate(&b.DischargeDate, s.DischargeDate)
	b.UpdatedAt = now.UTC()
}

// NeedsSupplement reports whether the care-team fields are still incomplete.
func (b *Binding) NeedsSupplement() bool {
	return b.AdmissionNumber == "" || b.TeamName == "" || b.DoctorID == ""
}

// OwnedBy reports whether the binding belongs to patientID.
func (b *Binding) OwnedBy(patientID string) bool {
	return b.PatientID == patientID
}
