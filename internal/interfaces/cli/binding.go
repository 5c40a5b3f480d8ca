package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/followup-compliance/internal/bootstrap"
	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
)

func newBindingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "binding",
		Short: "Manage patient plan bindings",
	}

	current := &cobra.Command{
		Use:   "current",
		Short: "Switch a patient's current plan",
	}
	current.AddCommand(
		newCurrentSwitchCmd("set", "Make the binding the patient's current plan", true),
		newCurrentSwitchCmd("unset", "Clear the binding's current flag", false),
	)

	cmd.AddCommand(current)
	return cmd
}

func newCurrentSwitchCmd(use, short string, set bool) *cobra.Command {
	var patientID string
	cmd := &cobra.Command{
		Use:   use + " BINDING_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, _ *CLIContext, c *bootstrap.Container) error {
				var (
					b   *domainFollowup.Binding
					err error
				)
				if set {
					b, err = c.Services.Bindings.SetCurrent(ctx, patientID, args[0])
				} else {
					b, err = c.Services.Bindings.UnsetCurrent(ctx, patientID, args[0])
				}
				if err != nil {
					return err
				}
				return PrintResult(cmd, bindingTable{b})
			})
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "", "patient id (required)")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

type bindingTable []*domainFollowup.Binding

func (b bindingTable) TableHeaders() []string {
	return []string{"ID", "PLAN", "SURGERY", "CURRENT"}
}

func (b bindingTable) TableRows() [][]string {
	rows := make([][]string, 0, len(b))
	for _, x := range b {
		surgery := x.SurgeryDate
		if surgery == "" {
			surgery = "-"
		}
		rows = append(rows, []string{x.ID, x.PlanID, surgery, fmt.Sprint(x.IsCurrent)})
	}
	return rows
}
