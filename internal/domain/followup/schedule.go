package followup

import "time"

// ScheduleInput is everything BuildSchedule needs for one patient.
type ScheduleInput struct {
	// Bindings of the patient. Non-current bindings are ignored.
	Bindings []*Binding
	// Plans by id. Missing or discarded plans are left out of the schedule.
	Plans map[string]*Plan
	// Submissions of the patient, any plan.
	Submissions []*Submission
	// Now in the scheduler's time zone.
	Now       time.Time
	GraceDays int
}

// ClassifyBindings resolves and classifies every checkpoint of the current,
// valid plans, hidden items included. Unknown checkpoint ids are skipped.
func ClassifyBindings(in ScheduleInput) []ScheduleItem {
	classifier := Classifier{GraceDays: in.GraceDays}
	var items []ScheduleItem

	for _, b := range in.Bindings {
		if b == nil || !b.IsCurrent {
			continue
		}
		plan, ok := in.Plans[b.PlanID]
		if !ok || plan == nil || plan.Discarded {
			continue
		}

		anchor := ResolveAnchor(b, in.Submissions)
		byCheckpoint := indexSubmissions(in.Submissions, b.PatientID, plan.ID)

		for _, cp := range plan.TimeTypes {
			if !cp.IsKnown() {
				continue
			}
			due := DueDate(cp, anchor)
			sub := byCheckpoint[cp]
			item := ScheduleItem{
				PlanID:       plan.ID,
				PlanTitle:    plan.Title,
				CheckpointID: cp,
				Title:        CheckpointTitle(plan.Title, cp),
				DueDate:      due,
				State:        classifier.Classify(cp, due, sub, in.Now),
				IsCurrent:    b.IsCurrent,
				DoctorName:   plan.DoctorName(),
				TeamName:     firstNonEmpty(b.TeamName, plan.TeamName),
			}
			switch {
			case sub != nil:
				id := sub.ID
				created := sub.CreatedAt
				item.SubmissionID = &id
				item.FillTime = &created
			case due != nil:
				t := due.In(in.Now.Location())
				item.FillTime = &t
			}
			items = append(items, item)
		}
	}
	return items
}

// BuildSchedule is the compliance list of one patient: ClassifyBindings
// followed by Reduce.
func BuildSchedule(in ScheduleInput) []ScheduleItem {
	return Reduce(ClassifyBindings(in))
}

// indexSubmissions maps each checkpoint of a plan to its authoritative
// submission. For scheduled checkpoints that is the earliest one, so a
// duplicate left over from older data never changes the outcome. For the
// recurring checkpoint it is the latest fill.
func indexSubmissions(subs []*Submission, patientID, planID string) map[CheckpointID]*Submission {
	out := make(map[CheckpointID]*Submission)
	for _, s := range subs {
		if s == nil || s.PlanID != planID || s.PatientID != patientID {
			continue
		}
		cur, ok := out[s.CheckpointID]
		switch {
		case !ok:
			out[s.CheckpointID] = s
		case s.CheckpointID.IsRecurring():
			if s.CreatedAt.After(cur.CreatedAt) {
				out[s.CheckpointID] = s
			}
		default:
			if s.CreatedAt.Before(cur.CreatedAt) {
				out[s.CheckpointID] = s
			}
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
