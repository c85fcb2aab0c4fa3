package store

import (
	"strings"

	"gorm.io/gorm"

	"maintenance-records-backend/internal/model"
)

// RecordFilter is a conjunction of optional predicates over maintenance records.
// Nil fields and a blank Query impose no constraint.
type RecordFilter struct {
	MachineID     *int64
	Status        *model.RecordStatus
	Priority      *model.Priority
	Category      *model.Category
	Shift         *model.Shift
	ResponsibleID *int64
	// Query is a substring matched against the problem description.
	Query string
	// WithMachine projects the owning machine's id and name onto each record.
	WithMachine bool
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Apply adds the filter's predicates and the listing order to q.
func (f RecordFilter) Apply(q *gorm.DB) *gorm.DB {
	if f.MachineID != nil {
		q = q.Where("machine_id = ?", *f.MachineID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", *f.Priority)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.Shift != nil {
		q = q.Where("shift = ?", *f.Shift)
	}
	if f.ResponsibleID != nil {
		q = q.Where("responsible_id = ?", *f.ResponsibleID)
	}
	if text := strings.TrimSpace(f.Query); text != "" {
		q = q.Where(`problem_description LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(text)+"%")
	}
	if f.WithMachine {
		q = q.Preload("Machine", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		})
	}
	return q.Order("created_at DESC").Order("id DESC")
}
