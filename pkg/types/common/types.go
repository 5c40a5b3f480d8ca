// Package common holds small helpers shared by every layer.
package common

import "github.com/google/uuid"

// NewID returns a random UUID string used for plans, bindings and
// submissions.
func NewID() string {
	return uuid.New().String()
}
