package followup

import (
	"sort"
	"time"
)

// ScheduleItem is one checkpoint as the patient sees it.
type ScheduleItem struct {
	PlanID       string       `json:"planId"`
	PlanTitle    string       `json:"planTitle"`
	CheckpointID CheckpointID `json:"checkpointId"`
	Title        string       `json:"title"`
	DueDate      *Date        `json:"dueDate"`
	State        State        `json:"state"`
	SubmissionID *string      `json:"submissionId"`
	// FillTime is the submission time when one exists, else midnight of the
	// due date.
	FillTime   *time.Time `json:"fillTime"`
	IsCurrent  bool       `json:"isCurrent"`
	DoctorName string     `json:"doctorName,omitempty"`
	TeamName   string     `json:"teamName,omitempty"`
}

// actionable reports whether the item competes for the single surfaced slot.
func (it ScheduleItem) actionable() bool {
	return !it.CheckpointID.IsRecurring() && (it.State == StatePending || it.State == StateExpired)
}

// Reduce turns classified items into the list a client renders:
//
//   - items of non-current bindings and hidden items are dropped;
//   - recurring items come first, all of them;
//   - of the unsubmitted scheduled items (pending or expired), only the one
//     with the earliest due date is surfaced next; undated items sort last and
//     ties keep input order;
//   - the other pending items are suppressed, the other expired ones join the
//     resolved section;
//   - resolved items follow, completed before expired, each most recent first.
func Reduce(items []ScheduleItem) []ScheduleItem {
	var recurring, candidates, resolved []ScheduleItem
	for _, it := range items {
		if !it.IsCurrent || !it.State.Visible() {
			continue
		}
		switch {
		case it.CheckpointID.IsRecurring():
			recurring = append(recurring, it)
		case it.actionable():
			candidates = append(candidates, it)
		default:
			resolved = append(resolved, it)
		}
	}

	out := make([]ScheduleItem, 0, len(recurring)+len(candidates)+len(resolved))
	out = append(out, recurring...)

	if len(candidates) > 0 {
		sort.SliceStable(candidates, func(i, j int) bool {
			return dueBefore(candidates[i].DueDate, candidates[j].DueDate)
		})
		out = append(out, candidates[0])
		for _, it := range candidates[1:] {
			if it.State == StateExpired {
				resolved = append(resolved, it)
			}
		}
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		ri, rj := resolvedRank(resolved[i].State), resolvedRank(resolved[j].State)
		if ri != rj {
			return ri < rj
		}
		ti, tj := resolved[i].sortTime(), resolved[j].sortTime()
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	return append(out, resolved...)
}

func resolvedRank(s State) int {
	if s == StateCompleted {
		return 0
	}
	return 1
}

// sortTime is the submission time of completed items and the due date of the rest.
func (it ScheduleItem) sortTime() *time.Time {
	if it.State == StateCompleted && it.FillTime != nil {
		return it.FillTime
	}
	if it.DueDate == nil {
		return nil
	}
	t := it.DueDate.In(time.UTC)
	return &t
}

func dueBefore(a, b *Date) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}
