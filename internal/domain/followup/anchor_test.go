package followup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answered(planID, surgery string, at time.Time) *Submission {
	return &Submission{
		ID:           "s-" + surgery,
		PatientID:    "pat-1",
		PlanID:       planID,
		CheckpointID: CheckpointPreoperative,
		Answers:      map[string]interface{}{AnswerSurgeryDate: surgery},
		CreatedAt:    at,
	}
}

func TestResolveAnchor_SurgeryDateWins(t *testing.T) {
	b := &Binding{PatientID: "pat-1", PlanID: "plan-1", SurgeryDate: "2024-11-05", DischargeDate: "2024-11-12"}
	subs := []*Submission{answered("plan-1", "2024-10-01", time.Now())}

	got := ResolveAnchor(b, subs)
	require.NotNil(t, got)
	assert.Equal(t, "2024-11-05", got.String())
}

func TestResolveAnchor_DischargeFallback(t *testing.T) {
	b := &Binding{PatientID: "pat-1", PlanID: "plan-1", DischargeDate: "2024/11/12"}
	got := ResolveAnchor(b, nil)
	require.NotNil(t, got)
	assert.Equal(t, "2024-11-12", got.String())
}

func TestResolveAnchor_UnparseableFallsThrough(t *testing.T) {
	b := &Binding{PatientID: "pat-1", PlanID: "plan-1", SurgeryDate: "last tuesday", DischargeDate: "2024.11.12"}
	got := ResolveAnchor(b, nil)
	require.NotNil(t, got)
	assert.Equal(t, "2024-11-12", got.String())

	b.DischargeDate = "2024-02-31"
	subs := []*Submission{answered("plan-1", "2024-11-03", time.Now())}
	got = ResolveAnchor(b, subs)
	require.NotNil(t, got)
	assert.Equal(t, "2024-11-03", got.String())
}

func TestResolveAnchor_EarliestAnswerAcrossRepeatFills(t *testing.T) {
	b := &Binding{PatientID: "pat-1", PlanID: "plan-1"}
	base := time.Date(2024, time.December, 1, 8, 0, 0, 0, time.UTC)
	subs := []*Submission{
		answered("plan-1", "2024-11-07", base),
		answered("plan-1", "2024.11.05", base.Add(time.Hour)),
		answered("plan-1", "", base.Add(2*time.Hour)),
		answered("plan-1", "garbage", base.Add(3*time.Hour)),
		answered("plan-2", "2024-01-01", base),
	}

	got := ResolveAnchor(b, subs)
	require.NotNil(t, got)
	assert.Equal(t, "2024-11-05", got.String())
}

func TestResolveAnchor_IgnoresOtherPatients(t *testing.T) {
	b := &Binding{PatientID: "pat-1", PlanID: "plan-1"}
	other := answered("plan-1", "2024-11-05", time.Now())
	other.PatientID = "pat-2"
	assert.Nil(t, ResolveAnchor(b, []*Submission{other}))
}

func TestResolveAnchor_NothingResolvable(t *testing.T) {
	assert.Nil(t, ResolveAnchor(&Binding{PatientID: "pat-1", PlanID: "plan-1"}, nil))
	assert.Nil(t, ResolveAnchor(nil, nil))
}

func TestResolveAnchor_NonStringAnswerIgnored(t *testing.T) {
	b := &Binding{PatientID: "pat-1", PlanID: "plan-1"}
	s := answered("plan-1", "", time.Now())
	s.Answers[AnswerSurgeryDate] = 20241105
	assert.Nil(t, ResolveAnchor(b, []*Submission{s}))
}
