package model

import "time"

// Machine states. State and Earnings are the only fields mutated after the
// initial configuration write.
const (
	MachineStateRunning = "Running"
	MachineStateStopped = "Stopped"
)

// Machine represents a single physical appliance inside a laundry.
type Machine struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	LaundryID    int64     `gorm:"index;not null" json:"laundryId"`
	SerialNumber string    `gorm:"size:64" json:"serialNumber"`
	Type         string    `gorm:"size:64" json:"type"`
	State        string    `gorm:"size:32;not null" json:"state"`
	Earnings     float64   `gorm:"not null;default:0" json:"earnings"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`

	// Associations
	Cycles []Cycle `gorm:"foreignKey:MachineID" json:"cycles"`
}
