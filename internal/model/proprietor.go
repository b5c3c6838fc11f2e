package model

import "time"

// Proprietor is the root of a configuration graph. It owns every laundry
// declared in the same upload.
type Proprietor struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:128;not null" json:"name"`
	Email         string    `gorm:"size:256;not null" json:"email"`
	TotalEarnings float64   `gorm:"not null;default:0" json:"totalEarnings"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`

	// Associations
	Laundries []Laundry `gorm:"foreignKey:ProprietorID" json:"laundries"`
}
