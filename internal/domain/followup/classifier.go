package followup

import "time"

// State is the compliance state of a checkpoint at a given moment.
type State string

const (
	// StateCompleted: a submission exists.
	StateCompleted State = "completed"
	// StatePending: the patient owes a fill now.
	StatePending State = "pending"
	// StateExpired: the due date passed without a submission.
	StateExpired State = "expired"
	// StateHidden: not actionable yet, or a pre-surgical checkpoint never filled.
	StateHidden State = "hidden"
)

// Visible reports whether the state is ever shown to the patient.
func (s State) Visible() bool {
	return s != StateHidden
}

// Classifier derives a checkpoint's state. It holds no mutable state, so equal
// inputs always give equal outputs.
type Classifier struct {
	// GraceDays keeps an overdue checkpoint pending for this many days after
	// its due date. Zero expires it on the due date.
	GraceDays int
}

// Classify applies, in order:
//
//  1. recurring checkpoint: pending, whatever was submitted before;
//  2. submission exists: completed;
//  3. pre-surgical without submission: hidden;
//  4. unknown due date: pending;
//  5. today before the due date: hidden;
//  6. within the grace window: pending, otherwise expired.
//
// Dates compare on the calendar day of now in now's location.
func (c Classifier) Classify(id CheckpointID, due *Date, submission *Submission, now time.Time) State {
	if id.IsRecurring() {
		return StatePending
	}
	if submission != nil {
		return StateCompleted
	}
	if id.IsPreSurgical() {
		return StateHidden
	}
	if due == nil {
		return StatePending
	}

	today := DateOf(now)
	if today.Before(*due) {
		return StateHidden
	}
	grace := c.GraceDays
	if grace < 0 {
		grace = 0
	}
	if today.Before(due.AddDays(grace)) {
		return StatePending
	}
	return StateExpired
}
