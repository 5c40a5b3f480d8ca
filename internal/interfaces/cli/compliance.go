package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/turtacn/followup-compliance/internal/bootstrap"
	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

func newComplianceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compliance",
		Short: "Inspect patient compliance schedules",
	}

	var patientID, at string
	list := &cobra.Command{
		Use:   "list",
		Short: "Print a patient's checkpoint schedule",
		Long:  "Print the reduced checkpoint schedule of the patient's current plan. --at evaluates it as of\nmidnight of the given day in the scheduler timezone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			var opts []bootstrap.Option
			if at != "" {
				day, ok := domainFollowup.ParseCalendarDate(at)
				if !ok {
					return errors.New(errors.ErrCodeDateInvalid, "invalid --at date").WithDetail(at)
				}
				opts = append(opts, bootstrap.WithClock(domainFollowup.FixedClock{T: day.In(cc.Config.Location())}))
			}
			return withContainer(cmd, func(ctx context.Context, _ *CLIContext, c *bootstrap.Container) error {
				items, err := c.Services.Compliance.List(ctx, patientID)
				if err != nil {
					return err
				}
				return PrintResult(cmd, scheduleTable(items))
			}, opts...)
		},
	}
	list.Flags().StringVar(&patientID, "patient", "", "patient id (required)")
	list.Flags().StringVar(&at, "at", "", "evaluate on this day (YYYY-MM-DD)")
	_ = list.MarkFlagRequired("patient")

	cmd.AddCommand(list)
	return cmd
}

type scheduleTable []domainFollowup.ScheduleItem

func (s scheduleTable) TableHeaders() []string {
	return []string{"CHECKPOINT", "TITLE", "DUE", "STATE", "SUBMISSION"}
}

func (s scheduleTable) TableRows() [][]string {
	rows := make([][]string, 0, len(s))
	for _, it := range s {
		due, sub := "-", "-"
		if it.DueDate != nil {
			due = it.DueDate.String()
		}
		if it.SubmissionID != nil {
			sub = *it.SubmissionID
		}
		rows = append(rows, []string{string(it.CheckpointID), it.Title, due, string(it.State), sub})
	}
	return rows
}
