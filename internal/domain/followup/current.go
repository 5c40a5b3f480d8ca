package followup

import (
	"time"

	"github.com/turtacn/followup-compliance/pkg/errors"
)

// SelectCurrent makes the binding targetID the only current one among a
// patient's bindings. The slice is mutated in place; nothing changes when the
// target is absent.
func SelectCurrent(bindings []*Binding, targetID string, now time.Time) error {
	target := findBinding(bindings, targetID)
	if target == nil {
		return errors.New(errors.ErrCodeBindingNotFound, "binding not found").WithDetail(targetID)
	}
	for _, b := range bindings {
		if b.IsCurrent && b != target {
			b.IsCurrent = false
			b.UpdatedAt = now.UTC()
		}
	}
	if !target.IsCurrent {
		target.IsCurrent = true
		target.UpdatedAt = now.UTC()
	}
	return nil
}

// ClearCurrent removes the current flag from targetID.
func ClearCurrent(bindings []*Binding, targetID string, now time.Time) error {
	target := findBinding(bindings, targetID)
	if target == nil {
		return errors.New(errors.ErrCodeBindingNotFound, "binding not found").WithDetail(targetID)
	}
	if target.IsCurrent {
		target.IsCurrent = false
		target.UpdatedAt = now.UTC()
	}
	return nil
}

// CurrentBinding returns the current binding, or nil.
func CurrentBinding(bindings []*Binding) *Binding {
	for _, b := range bindings {
		if b.IsCurrent {
			return b
		}
	}
	return nil
}

func findBinding(bindings []*Binding, id string) *Binding {
	for _, b := range bindings {
		if b.ID == id {
			return b
		}
	}
	return nil
}
