package repository

import (
	"clinic-desk/internal/domain/entity"

	"gorm.io/gorm"
)

type PatientProfileRepository interface {
	Create(db *gorm.DB, profile *entity.PatientProfile) error
	FindByID(db *gorm.DB, id string) (*entity.PatientProfile, error)
	FindByIDWithReservations(db *gorm.DB, id string) (*entity.PatientProfile, error)
	// FindByPhone looks up a profile holding the phone number, optionally
	// excluding one id (for uniqueness checks during update).
	FindByPhone(db *gorm.DB, phone string, excludeID string) (*entity.PatientProfile, error)
	// Search returns all profiles ordered by name, optionally filtered by a
	// case-insensitive substring match on name or phone, with linked
	// reservations preloaded newest-created-first.
	Search(db *gorm.DB, term string) ([]entity.PatientProfile, error)
	Update(db *gorm.DB, profile *entity.PatientProfile) error
	Delete(db *gorm.DB, id string) error
}
