package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/database/memory"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

func useMockData(t *testing.T) {
	t.Setenv("FOLLOWUP_APP_USE_MOCK_DATA", "true")
	t.Setenv("FOLLOWUP_SCHEDULER_TIMEZONE", "UTC")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "followupctl", cmd.Use)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"migrate", "compliance", "plan", "binding", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	for _, flag := range []string{"config", "log-level", "output", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %q", flag)
	}
	assert.Equal(t, "table", cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "followupctl "+Version)
	assert.Contains(t, out, "commit: "+GitCommit)
}

func TestComplianceList_JSON(t *testing.T) {
	useMockData(t)

	out, err := run(t, "compliance", "list", "--patient", memory.DemoPatientID, "--at", "2024/12/10", "-o", "json")
	require.NoError(t, err)

	var items []domainFollowup.ScheduleItem
	require.NoError(t, json.Unmarshal([]byte(out), &items), out)
	require.NotEmpty(t, items)
	assert.Equal(t, domainFollowup.CheckpointDailySelfAssessment, items[0].CheckpointID)
	for _, it := range items {
		assert.NotEqual(t, domainFollowup.StateHidden, it.State)
	}
}

func TestComplianceList_Table(t *testing.T) {
	useMockData(t)

	out, err := run(t, "compliance", "list", "--patient", memory.DemoPatientID)
	require.NoError(t, err)
	assert.Contains(t, out, "CHECKPOINT")
	assert.Contains(t, out, string(domainFollowup.CheckpointDailySelfAssessment))
}

func TestComplianceList_Errors(t *testing.T) {
	useMockData(t)

	_, err := run(t, "compliance", "list")
	assert.Error(t, err, "--patient is required")

	_, err = run(t, "compliance", "list", "--patient", "p", "--at", "tomorrow")
	assert.True(t, errors.IsCode(err, errors.ErrCodeDateInvalid))

	_, err = run(t, "compliance", "list", "--patient", "p", "-o", "yaml")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestPlanCommands(t *testing.T) {
	useMockData(t)

	out, err := run(t, "plan", "list", "--doctor", memory.DemoDoctorID)
	require.NoError(t, err)
	assert.Contains(t, out, "mock001")
	assert.Contains(t, out, "mock002")

	out, err = run(t, "plan", "show", "mock002", "-o", "json")
	require.NoError(t, err)
	var plans []domainFollowup.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &plans))
	require.Len(t, plans, 1)
	assert.Equal(t, "mock002", plans[0].ID)

	_, err = run(t, "plan", "show", "missing")
	assert.True(t, errors.IsCode(err, errors.ErrCodePlanNotFound))
}

func TestBindingCurrent(t *testing.T) {
	useMockData(t)

	out, err := run(t, "binding", "current", "set", "mock-binding-2", "--patient", memory.DemoPatientID, "-o", "json")
	require.NoError(t, err)
	var bindings []domainFollowup.Binding
	require.NoError(t, json.Unmarshal([]byte(out), &bindings))
	require.Len(t, bindings, 1)
	assert.True(t, bindings[0].IsCurrent)

	_, err = run(t, "binding", "current", "unset", "mock-binding-1", "--patient", "someone-else")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBindingNotFound))
}

func TestMigrate_RequiresDatabase(t *testing.T) {
	useMockData(t)

	_, err := run(t, "migrate", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use_mock_data")
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"ID", "NAME"}, [][]string{{"1", "alpha"}, {"22"}})
	assert.Equal(t, "ID  NAME \n--  -----\n1   alpha\n22       \n", out)
	assert.Empty(t, FormatTable(nil, nil))
}
