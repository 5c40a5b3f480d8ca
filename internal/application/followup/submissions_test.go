package followup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/followup-compliance/internal/testutil"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

func TestSubmissionService_SubmitDefaultCheckpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plan := env.createKneePlan(t)

	sub, err := env.submissions.Submit(ctx, &SubmitInput{PatientID: "pat-1", PlanID: plan.ID})
	require.NoError(t, err)
	assert.Equal(t, domainFollowup.CheckpointDailySelfAssessment, sub.CheckpointID)
	assert.Equal(t, "2024-12-10", sub.Occurrence)
	assert.NotNil(t, sub.Answers)

	stored, err := env.plans.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ParticipantCount)

	env.publisher.AssertCalled(t, "Publish", mock.Anything, kafka.TopicSubmissionCreated, "pat-1", mock.MatchedBy(func(p kafka.SubmissionCreatedPayload) bool {
		return p.SubmissionID == sub.ID && p.CheckpointID == "dailySelfAssessment"
	}))
}

func TestSubmissionService_SubmitDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plan := env.createKneePlan(t)

	_, err := env.submissions.Submit(ctx, &SubmitInput{PatientID: "pat-1", PlanID: plan.ID, TimeType: "oneMonth"})
	require.NoError(t, err)
	_, err = env.submissions.Submit(ctx, &SubmitInput{PatientID: "pat-1", PlanID: plan.ID, TimeType: "oneMonth"})
	requireCode(t, err, errors.ErrCodeSubmissionDuplicate)

	// the daily checkpoint accepts one fill per day
	_, err = env.submissions.Submit(ctx, &SubmitInput{PatientID: "pat-1", PlanID: plan.ID, TimeType: "dailySelfAssessment"})
	require.NoError(t, err)
	_, err = env.submissions.Submit(ctx, &SubmitInput{PatientID: "pat-1", PlanID: plan.ID, TimeType: "dailySelfAssessment"})
	requireCode(t, err, errors.ErrCodeSubmissionDuplicate)

	stored, err := env.plans.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ParticipantCount)
}

func TestSubmissionService_SubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plan := env.createKneePlan(t,
		domainFollowup.Question{ID: domainFollowup.AnswerSurgeryDate, Title: "Surgery date", Required: true},
		domainFollowup.Question{ID: "pain_score", Title: "Pain score", Required: true},
	)

	_, err := env.submissions.Submit(ctx, &SubmitInput{PatientID: "pat-1", PlanID: plan.ID, TimeType: "oneMonth"})
	requireCode(t, err, errors.ErrCodeSubmissionMissingAnswers)
	assert.Contains(t, err.Error(), "Surgery date")

	// surgery date is not asked before surgery
	_, err = env.submissions.Submit(ctx, &SubmitInput{
		PatientID: "pat-1",
		PlanID:    plan.ID,
		TimeType:  "preoperative",
		Answers:   map[string]interface{}{"pain_score": 3},
	})
	require.NoError(t, err)

	_, err = env.submissions.Submit(ctx, &SubmitInput{PatientID: "pat-1", PlanID: plan.ID, TimeType: "sixMonths"})
	requireCode(t, err, errors.ErrCodeCheckpointUnknown)

	_, err = env.submissions.Submit(ctx, &SubmitInput{PatientID: "pat-1", PlanID: "missing"})
	requireCode(t, err, errors.ErrCodePlanNotFound)

	_, err = env.submissions.Submit(ctx, &SubmitInput{PlanID: plan.ID})
	requireCode(t, err, errors.ErrCodeUnauthorized)

	_, err = env.plans.Discard(ctx, "doc-1", plan.ID)
	require.NoError(t, err)
	_, err = env.submissions.Submit(ctx, &SubmitInput{PatientID: "pat-1", PlanID: plan.ID, TimeType: "threeMonths"})
	requireCode(t, err, errors.ErrCodePlanDiscarded)
}

func TestSubmissionService_PublishFailureDoesNotFail(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New(errors.ErrCodeExternalService, "broker down"))
	logger := testutil.NewRecordingLogger()
	env := newTestEnv(t, func(d *Dependencies) {
		d.Events = pub
		d.Logger = logger
	})
	plan := env.createKneePlan(t)

	sub, err := env.submissions.Submit(context.Background(), &SubmitInput{PatientID: "pat-1", PlanID: plan.ID, TimeType: "oneMonth"})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	pub.AssertNumberOfCalls(t, "Publish", 1)

	entry, ok := logger.Find("warn", "event publish failed")
	require.True(t, ok)
	topic, _ := entry.Field("topic")
	assert.Equal(t, kafka.TopicSubmissionCreated, topic)
}

func TestSubmissionService_History(t *testing.T) {
	var now time.Time
	clock := &stepClock{t: testNow}
	env := newTestEnv(t, func(d *Dependencies) { d.Clock = clock })
	ctx := context.Background()
	plan := env.createKneePlan(t)

	for _, tt := range []string{"preoperative", "oneMonth"} {
		_, err := env.submissions.Submit(ctx, &SubmitInput{PatientID: "pat-1", PlanID: plan.ID, TimeType: tt})
		require.NoError(t, err)
		now = clock.advance(time.Hour)
	}
	_, err := env.submissions.Submit(ctx, &SubmitInput{PatientID: "pat-2", PlanID: plan.ID, TimeType: "oneMonth"})
	require.NoError(t, err)

	rows, err := env.submissions.History(ctx, "pat-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domainFollowup.CheckpointOneMonth, rows[0].TimeType)
	assert.Equal(t, domainFollowup.CheckpointPreoperative, rows[1].TimeType)
	assert.True(t, rows[0].FillTime.After(rows[1].FillTime))
	assert.True(t, now.After(rows[0].FillTime))
	for _, r := range rows {
		assert.Equal(t, domainFollowup.StateCompleted, r.State)
		assert.Equal(t, "Knee replacement", r.PlanTitle)
		assert.Equal(t, "Dr. Lin", r.DoctorName)
	}

	none, err := env.submissions.History(ctx, "pat-9")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = env.submissions.History(ctx, "")
	requireCode(t, err, errors.ErrCodeUnauthorized)
}

// stepClock is a manually advanced clock.
type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func (c *stepClock) advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}
