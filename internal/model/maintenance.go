package model

import "time"

// MaintenanceRecord is a work order raised against a machine.
type MaintenanceRecord struct {
	ID                  int64        `gorm:"primaryKey" json:"id"`
	MachineID           int64        `gorm:"index;not null" json:"machine_id"`
	CreatedBy           int64        `gorm:"not null" json:"created_by"`
	ResponsibleID       *int64       `gorm:"index" json:"responsible_id"`
	FinishedBy          *int64       `json:"finished_by"`
	Status              RecordStatus `gorm:"size:16;index;not null" json:"status"`
	Priority            Priority     `gorm:"size:16;not null" json:"priority"`
	Category            *Category    `gorm:"size:32" json:"category"`
	Shift               *Shift       `gorm:"size:16" json:"shift"`
	ProblemDescription  string       `gorm:"type:text;not null" json:"problem_description"`
	SolutionDescription *string      `gorm:"type:text" json:"solution_description"`
	StartedAt           *time.Time   `json:"started_at"`
	FinishedAt          *time.Time   `json:"finished_at"`
	CreatedAt           time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`

	// Associations
	Machine     *Machine `gorm:"constraint:OnDelete:CASCADE" json:"machine,omitempty"`
	Responsible *User    `gorm:"foreignKey:ResponsibleID" json:"-"`
}

// IsDone reports whether the record reached its terminal state.
func (r *MaintenanceRecord) IsDone() bool {
	return r.Status == RecordStatusDone
}

// MaintenanceEvent is an append-only entry describing a discrete action taken on a record.
type MaintenanceEvent struct {
	ID                  int64             `gorm:"primaryKey" json:"id"`
	MaintenanceRecordID int64             `gorm:"index;not null" json:"maintenance_record_id"`
	MachineID           int64             `gorm:"index;not null" json:"machine_id"`
	ComponentName       string            `gorm:"size:256;not null" json:"component_name"`
	EventType           EventType         `gorm:"size:16;not null" json:"event_type"`
	EventDate           time.Time         `gorm:"not null" json:"event_date"`
	UsedPartDescription *string           `gorm:"type:text" json:"used_part_description"`
	Quantity            *float64          `json:"quantity"`
	RemovedCondition    *string           `gorm:"type:text" json:"removed_condition"`
	Destination         *EventDestination `gorm:"size:16" json:"destination"`
	Observation         *string           `gorm:"type:text" json:"observation"`
	PhotoURL            *string           `gorm:"size:1024" json:"photo_url"`
	CreatedBy           int64             `gorm:"not null" json:"created_by"`
	CreatedAt           time.Time         `json:"created_at"`

	// Associations
	MaintenanceRecord *MaintenanceRecord `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// MaintenancePhoto is a before/after picture attached to a record. FileURL points into the attachment store.
type MaintenancePhoto struct {
	ID                  int64     `gorm:"primaryKey" json:"id"`
	MaintenanceRecordID int64     `gorm:"index;not null" json:"maintenance_record_id"`
	Type                PhotoType `gorm:"size:8;not null" json:"type"`
	FileURL             string    `gorm:"size:1024;not null" json:"file_url"`
	CreatedBy           int64     `gorm:"not null" json:"created_by"`
	CreatedAt           time.Time `gorm:"index" json:"created_at"`

	// Associations
	MaintenanceRecord *MaintenanceRecord `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
