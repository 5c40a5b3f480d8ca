// Package followup models follow-up plans, patient bindings and submissions,
// and derives each checkpoint's compliance state from them.
//
// The schedule pipeline is pure: ResolveAnchor, DueDate, Classifier and Reduce
// take values and return values, and BuildSchedule composes them for one
// patient. Persistence is expressed by the repository interfaces in
// repository.go.
package followup

import (
	"fmt"
	"strings"
)

// CheckpointID names an abstract time point within a plan ("timeType").
type CheckpointID string

const (
	// CheckpointDailySelfAssessment is always open and never expires.
	CheckpointDailySelfAssessment CheckpointID = "dailySelfAssessment"

	CheckpointPreoperative CheckpointID = "preoperative"
	CheckpointPreDischarge CheckpointID = "preDischarge"

	CheckpointOneMonth          CheckpointID = "oneMonth"
	CheckpointTwoMonths         CheckpointID = "twoMonths"
	CheckpointThreeMonths       CheckpointID = "threeMonths"
	CheckpointFourMonths        CheckpointID = "fourMonths"
	CheckpointFiveMonths        CheckpointID = "fiveMonths"
	CheckpointSixMonths         CheckpointID = "sixMonths"
	CheckpointSevenMonths       CheckpointID = "sevenMonths"
	CheckpointEightMonths       CheckpointID = "eightMonths"
	CheckpointNineMonths        CheckpointID = "nineMonths"
	CheckpointTenMonths         CheckpointID = "tenMonths"
	CheckpointElevenMonths      CheckpointID = "elevenMonths"
	CheckpointTwelveMonths      CheckpointID = "twelveMonths"
	CheckpointThirteenMonths    CheckpointID = "thirteenMonths"
	CheckpointFourteenMonths    CheckpointID = "fourteenMonths"
	CheckpointFifteenMonths     CheckpointID = "fifteenMonths"
	CheckpointSixteenMonths     CheckpointID = "sixteenMonths"
	CheckpointSeventeenMonths   CheckpointID = "seventeenMonths"
	CheckpointEighteenMonths    CheckpointID = "eighteenMonths"
	CheckpointNineteenMonths    CheckpointID = "nineteenMonths"
	CheckpointTwentyMonths      CheckpointID = "twentyMonths"
	CheckpointTwentyOneMonths   CheckpointID = "twentyOneMonths"
	CheckpointTwentyTwoMonths   CheckpointID = "twentyTwoMonths"
	CheckpointTwentyThreeMonths CheckpointID = "twentyThreeMonths"
	CheckpointTwentyFourMonths  CheckpointID = "twentyFourMonths"
)

// CheckpointKind groups checkpoints by how their state is derived.
type CheckpointKind int

const (
	KindUnknown CheckpointKind = iota
	// KindRecurring has no due date and stays open.
	KindRecurring
	// KindPreSurgical is judged on submission presence only.
	KindPreSurgical
	// KindPostOperative is due a fixed number of months after the anchor.
	KindPostOperative
)

// monthOffsets maps post-operative checkpoints to their offset from the anchor.
var monthOffsets = map[CheckpointID]int{
	CheckpointOneMonth:          1,
	CheckpointTwoMonths:         2,
	CheckpointThreeMonths:       3,
	CheckpointFourMonths:        4,
	CheckpointFiveMonths:        5,
	CheckpointSixMonths:         6,
	CheckpointSevenMonths:       7,
	CheckpointEightMonths:       8,
	CheckpointNineMonths:        9,
	CheckpointTenMonths:         10,
	CheckpointElevenMonths:      11,
	CheckpointTwelveMonths:      12,
	CheckpointThirteenMonths:    13,
	CheckpointFourteenMonths:    14,
	CheckpointFifteenMonths:     15,
	CheckpointSixteenMonths:     16,
	CheckpointSeventeenMonths:   17,
	CheckpointEighteenMonths:    18,
	CheckpointNineteenMonths:    19,
	CheckpointTwentyMonths:      20,
	CheckpointTwentyOneMonths:   21,
	CheckpointTwentyTwoMonths:   22,
	CheckpointTwentyThreeMonths: 23,
	CheckpointTwentyFourMonths:  24,
}

// Kind classifies the checkpoint. Unrecognised ids are KindUnknown.
func (c CheckpointID) Kind() CheckpointKind {
	switch c {
	case CheckpointDailySelfAssessment:
		return KindRecurring
	case CheckpointPreoperative, CheckpointPreDischarge:
		return KindPreSurgical
	}
	if _, ok := monthOffsets[c]; ok {
		return KindPostOperative
	}
	return KindUnknown
}

func (c CheckpointID) IsRecurring() bool   { return c.Kind() == KindRecurring }
func (c CheckpointID) IsPreSurgical() bool { return c.Kind() == KindPreSurgical }
func (c CheckpointID) IsKnown() bool       { return c.Kind() != KindUnknown }

// MonthOffset returns the offset of a post-operative checkpoint.
func (c CheckpointID) MonthOffset() (int, bool) {
	n, ok := monthOffsets[c]
	return n, ok
}

// Label is the human-readable name of the checkpoint.
func (c CheckpointID) Label() string {
	switch c.Kind() {
	case KindRecurring:
		return "Daily self-assessment"
	case KindPreSurgical:
		if c == CheckpointPreoperative {
			return "Pre-operative"
		}
		return "Pre-discharge"
	case KindPostOperative:
		n := monthOffsets[c]
		if n == 1 {
			return "1 month post-op"
		}
		return fmt.Sprintf("%d months post-op", n)
	default:
		return string(c)
	}
}

// CheckpointTitle is the display title of a checkpoint inside a plan. The
// recurring checkpoint is shown by its label alone.
func CheckpointTitle(planTitle string, c CheckpointID) string {
	if c.IsRecurring() || strings.TrimSpace(planTitle) == "" {
		return c.Label()
	}
	return planTitle + " - " + c.Label()
}

// AllCheckpoints lists every known checkpoint in schedule order.
func AllCheckpoints() []CheckpointID {
	out := []CheckpointID{CheckpointDailySelfAssessment, CheckpointPreoperative, CheckpointPreDischarge}
	for n := 1; n <= 24; n++ {
		for id, off := range monthOffsets {
			if off == n {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// DueDate returns the calendar day a checkpoint falls due. Recurring and
// pre-surgical checkpoints, unknown ids and a nil anchor have no due date.
func DueDate(c CheckpointID, anchor *Date) *Date {
	if anchor == nil {
		return nil
	}
	n, ok := monthOffsets[c]
	if !ok {
		return nil
	}
	due := anchor.AddMonths(n)
	return &due
}
