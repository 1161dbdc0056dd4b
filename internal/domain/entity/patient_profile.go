package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatientProfile represents a master patient record
type PatientProfile struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(80);not null" json:"name"`
	Phone     string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"phone"`
	Age       int       `gorm:"not null" json:"age"`
	BloodType BloodType `gorm:"type:varchar(8);not null" json:"blood_type"`
	XrayImage *string   `gorm:"type:text" json:"xray_image,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Reservations []Reservation `gorm:"foreignKey:PatientID" json:"reservations,omitempty"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

// BeforeCreate assigns an id when the caller did not supply one
func (p *PatientProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
