package model

// Cycle is a billable program offered by a machine. Duration is in seconds.
type Cycle struct {
	ID        int64   `gorm:"primaryKey" json:"id"`
	MachineID int64   `gorm:"index;not null" json:"machineId"`
	Name      string  `gorm:"size:128;not null" json:"name"`
	Price     float64 `gorm:"not null" json:"price"`
	Duration  int     `gorm:"not null" json:"duration"`
}
