package model

import "time"

// Machine represents a piece of plant equipment that maintenance records are raised against.
// Machines are owned by the machine management service; this backend only reads them.
type Machine struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:256;not null" json:"name"`
	Line         string    `gorm:"size:128" json:"line,omitempty"`
	Location     string    `gorm:"size:128" json:"location,omitempty"`
	Model        string    `gorm:"size:128" json:"model,omitempty"`
	SerialNumber string    `gorm:"size:128" json:"serial_number,omitempty"`
	PhotoURL     string    `gorm:"size:1024" json:"photo_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
