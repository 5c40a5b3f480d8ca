package memory

import (
	"context"
	"time"

	"github.com/turtacn/followup-compliance/internal/domain/followup"
)

// Demo identities used by the mock-data mode.
const (
	DemoPatientID = "demo-patient"
	DemoDoctorID  = "demo-doctor"
)

// Seed fills the store with a demo doctor, two plans and a patient bound to
// both. Dates are relative to now so the demo schedule always has a mix of
// completed, surfaced and expired checkpoints.
func Seed(ctx context.Context, s *Store, now time.Time) error {
	now = now.UTC()
	surgery := followup.DateOf(now).AddDays(-40)
	questions := []followup.Question{
		{ID: followup.AnswerSurgeryDate, Title: "Surgery date", Required: true},
		{ID: "pain_score", Title: "Pain score (0-10)", Required: true},
		{ID: "notes", Title: "Anything else to tell your doctor"},
	}

	plans := []*followup.Plan{
		{
			ID:    "mock001",
			Title: "Knee replacement follow-up",
			TimeTypes: []followup.CheckpointID{
				followup.CheckpointDailySelfAssessment, followup.CheckpointPreoperative,
				followup.CheckpointOneMonth, followup.CheckpointThreeMonths, followup.CheckpointSixMonths,
			},
			Questions:   questions,
			CreatorID:   DemoDoctorID,
			CreatorName: "Dr. Zhang",
			TeamName:    "Orthopedics A",
			CreatedAt:   now.AddDate(0, -3, 0),
			UpdatedAt:   now.AddDate(0, -3, 0),
		},
		{
			ID:          "mock002",
			Title:       "Hip arthroscopy follow-up",
			TimeTypes:   []followup.CheckpointID{followup.CheckpointPreDischarge, followup.CheckpointOneMonth},
			Questions:   questions,
			CreatorID:   DemoDoctorID,
			CreatorName: "Dr. Zhang",
			TeamName:    "Orthopedics A",
			CreatedAt:   now.AddDate(0, -2, 0),
			UpdatedAt:   now.AddDate(0, -2, 0),
		},
	}
	for _, p := range plans {
		if err := s.Plans().Create(ctx, p); err != nil {
			return err
		}
	}

	bindings := []*followup.Binding{
		{
			ID: "mock-binding-1", PatientID: DemoPatientID, PlanID: "mock001",
			AdmissionNumber: "A20240001", TeamName: "Orthopedics A", DoctorID: DemoDoctorID,
			SurgeryDate: surgery.String(),
			CreatedAt:   now.AddDate(0, -2, 0), UpdatedAt: now.AddDate(0, -2, 0),
		},
		{
			ID: "mock-binding-2", PatientID: DemoPatientID, PlanID: "mock002",
			CreatedAt: now.AddDate(0, -1, 0), UpdatedAt: now.AddDate(0, -1, 0),
		},
	}
	for i, b := range bindings {
		if err := s.Bindings().Create(ctx, b, i == 0); err != nil {
			return err
		}
		if err := s.Plans().IncrementParticipants(ctx, b.PlanID, 1); err != nil {
			return err
		}
	}

	submissions := []*followup.Submission{
		{
			ID: "mock-submission-1", PatientID: DemoPatientID, PlanID: "mock001",
			CheckpointID: followup.CheckpointPreoperative,
			Answers:      map[string]interface{}{"pain_score": 4},
			CreatedAt:    surgery.AddDays(-2).In(time.UTC).Add(10 * time.Hour),
		},
		{
			ID: "mock-submission-2", PatientID: DemoPatientID, PlanID: "mock001",
			CheckpointID: followup.CheckpointDailySelfAssessment,
			Occurrence:   followup.DateOf(now).AddDays(-1).String(),
			Answers: map[string]interface{}{
				followup.AnswerSurgeryDate: surgery.String(), "pain_score": 2,
			},
			CreatedAt: now.Add(-24 * time.Hour),
		},
	}
	for _, sub := range submissions {
		if err := s.Submissions().Create(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}
