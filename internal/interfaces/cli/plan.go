package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/followup-compliance/internal/bootstrap"
	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect follow-up plans",
	}

	var doctorID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the plans a doctor authored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, _ *CLIContext, c *bootstrap.Container) error {
				plans, err := c.Services.Plans.List(ctx, doctorID)
				if err != nil {
					return err
				}
				return PrintResult(cmd, planTable(plans))
			})
		},
	}
	list.Flags().StringVar(&doctorID, "doctor", "", "doctor id (required)")
	_ = list.MarkFlagRequired("doctor")

	show := &cobra.Command{
		Use:   "show PLAN_ID",
		Short: "Show one plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, _ *CLIContext, c *bootstrap.Container) error {
				plan, err := c.Services.Plans.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return PrintResult(cmd, planTable{plan})
			})
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

type planTable []*domainFollowup.Plan

func (p planTable) TableHeaders() []string {
	return []string{"ID", "TITLE", "CHECKPOINTS", "PARTICIPANTS", "DISCARDED"}
}

func (p planTable) TableRows() [][]string {
	rows := make([][]string, 0, len(p))
	for _, plan := range p {
		ids := make([]string, len(plan.TimeTypes))
		for i, tt := range plan.TimeTypes {
			ids[i] = string(tt)
		}
		rows = append(rows, []string{
			plan.ID, plan.Title, strings.Join(ids, ","),
			fmt.Sprint(plan.ParticipantCount), fmt.Sprint(plan.Discarded),
		})
	}
	return rows
}
