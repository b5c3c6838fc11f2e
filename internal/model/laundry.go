package model

import "time"

// Laundry represents one managed site belonging to a proprietor.
type Laundry struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	ProprietorID int64     `gorm:"index;not null" json:"proprietorId"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Address      string    `gorm:"size:256" json:"address"`
	Earnings     float64   `gorm:"not null;default:0" json:"earnings"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`

	// Associations
	Machines []Machine `gorm:"foreignKey:LaundryID" json:"machines"`
}
