package store

import (
	"errors"
	"time"

	"maintenance-records-backend/internal/model"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional write matched no row because the guarded state changed.
	ErrConflict = errors.New("conditional update matched no rows")
)

// RecordChanges is a shallow patch for a pending record. Nil fields are left untouched.
type RecordChanges struct {
	ProblemDescription *string
	Priority           *model.Priority
	Category           *model.Category
	Shift              *model.Shift
	ResponsibleID      *int64
	StartedAt          *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (c RecordChanges) IsEmpty() bool {
	return c.ProblemDescription == nil &&
		c.Priority == nil &&
		c.Category == nil &&
		c.Shift == nil &&
		c.ResponsibleID == nil &&
		c.StartedAt == nil
}

func (c RecordChanges) values() map[string]any {
	values := make(map[string]any)
	if c.ProblemDescription != nil {
		values["problem_description"] = *c.ProblemDescription
	}
	if c.Priority != nil {
		values["priority"] = *c.Priority
	}
	if c.Category != nil {
		values["category"] = *c.Category
	}
	if c.Shift != nil {
		values["shift"] = *c.Shift
	}
	if c.ResponsibleID != nil {
		values["responsible_id"] = *c.ResponsibleID
	}
	if c.StartedAt != nil {
		values["started_at"] = *c.StartedAt
	}
	return values
}

// Completion carries the fields written by the PENDING to DONE transition.
type Completion struct {
	SolutionDescription string
	FinishedBy          int64
	FinishedAt          time.Time
}

// Assignment is a record joined with everything needed to notify its responsible.
type Assignment struct {
	Record      model.MaintenanceRecord
	MachineName string
	Responsible *model.User
}
