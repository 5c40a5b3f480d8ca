package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/followup-compliance/internal/application/followup"
	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockComplianceService struct{ mock.Mock }

func (m *mockComplianceService) List(ctx context.Context, patientID string) ([]domainFollowup.ScheduleItem, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainFollowup.ScheduleItem), args.Error(1)
}

type mockBindingService struct{ mock.Mock }

func (m *mockBindingService) Bind(ctx context.Context, input *followup.BindInput) (*followup.BindResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*followup.BindResult), args.Error(1)
}

func (m *mockBindingService) Update(ctx context.Context, patientID, bindingID string, sup domainFollowup.Supplement) (*domainFollowup.Binding, error) {
	args := m.Called(ctx, patientID, bindingID, sup)
	return bindingOrNil(args.Get(0)), args.Error(1)
}

func (m *mockBindingService) ListAll(ctx context.Context, patientID string) ([]followup.BindingSummary, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]followup.BindingSummary), args.Error(1)
}

func (m *mockBindingService) Info(ctx context.Context, patientID, id string) (*domainFollowup.Binding, error) {
	args := m.Called(ctx, patientID, id)
	return bindingOrNil(args.Get(0)), args.Error(1)
}

func (m *mockBindingService) SetCurrent(ctx context.Context, patientID, bindingID string) (*domainFollowup.Binding, error) {
	args := m.Called(ctx, patientID, bindingID)
	return bindingOrNil(args.Get(0)), args.Error(1)
}

func (m *mockBindingService) UnsetCurrent(ctx context.Context, patientID, bindingID string) (*domainFollowup.Binding, error) {
	args := m.Called(ctx, patientID, bindingID)
	return bindingOrNil(args.Get(0)), args.Error(1)
}

func bindingOrNil(v interface{}) *domainFollowup.Binding {
	if v == nil {
		return nil
	}
	return v.(*domainFollowup.Binding)
}

type mockSubmissionService struct{ mock.Mock }

func (m *mockSubmissionService) Submit(ctx context.Context, input *followup.SubmitInput) (*domainFollowup.Submission, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainFollowup.Submission), args.Error(1)
}

func (m *mockSubmissionService) History(ctx context.Context, patientID string) ([]followup.RecordSummary, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]followup.RecordSummary), args.Error(1)
}

type mockPlanService struct{ mock.Mock }

func (m *mockPlanService) Create(ctx context.Context, input *followup.CreatePlanInput) (*domainFollowup.Plan, error) {
	args := m.Called(ctx, input)
	return planOrNil(args.Get(0)), args.Error(1)
}

func (m *mockPlanService) List(ctx context.Context, doctorID string) ([]*domainFollowup.Plan, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainFollowup.Plan), args.Error(1)
}

func (m *mockPlanService) Get(ctx context.Context, planID string) (*domainFollowup.Plan, error) {
	args := m.Called(ctx, planID)
	return planOrNil(args.Get(0)), args.Error(1)
}

func (m *mockPlanService) Discard(ctx context.Context, doctorID, planID string) (*domainFollowup.Plan, error) {
	args := m.Called(ctx, doctorID, planID)
	return planOrNil(args.Get(0)), args.Error(1)
}

func (m *mockPlanService) Records(ctx context.Context, planID string) ([]*domainFollowup.Submission, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainFollowup.Submission), args.Error(1)
}

func (m *mockPlanService) PatientRecords(ctx context.Context, planID, patientID string) ([]*domainFollowup.Submission, error) {
	args := m.Called(ctx, planID, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainFollowup.Submission), args.Error(1)
}

func planOrNil(v interface{}) *domainFollowup.Plan {
	if v == nil {
		return nil
	}
	return v.(*domainFollowup.Plan)
}
