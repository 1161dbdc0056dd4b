package repository

import (
	"errors"
	"strings"

	"clinic-desk/internal/domain/entity"
	domainRepo "clinic-desk/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type patientProfileRepository struct{}

func NewPatientProfileRepository() domainRepo.PatientProfileRepository {
	return &patientProfileRepository{}
}

func (r *patientProfileRepository) Create(db *gorm.DB, profile *entity.PatientProfile) error {
	return db.Create(profile).Error
}

func (r *patientProfileRepository) FindByID(db *gorm.DB, id string) (*entity.PatientProfile, error) {
	var profile entity.PatientProfile
	err := db.Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *patientProfileRepository) FindByIDWithReservations(db *gorm.DB, id string) (*entity.PatientProfile, error) {
	var profile entity.PatientProfile
	err := db.Preload("Reservations", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *patientProfileRepository) FindByPhone(db *gorm.DB, phone string, excludeID string) (*entity.PatientProfile, error) {
	var profile entity.PatientProfile
	query := db.Where("phone = ?", phone)
	if excludeID != "" {
		query = query.Where("id != ?", excludeID)
	}
	err := query.First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *patientProfileRepository) Search(db *gorm.DB, term string) ([]entity.PatientProfile, error) {
	var profiles []entity.PatientProfile
	query := db.Preload("Reservations", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	})

	if trimmed := strings.TrimSpace(term); trimmed != "" {
		pattern := "%" + strings.ToLower(trimmed) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ?", pattern, pattern)
	}

	err := query.Order("name ASC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *patientProfileRepository) Update(db *gorm.DB, profile *entity.PatientProfile) error {
	// Save writes every field, so a cleared x-ray image becomes NULL.
	// Preloaded reservations must not ride along as association writes.
	return db.Omit(clause.Associations).Save(profile).Error
}

func (r *patientProfileRepository) Delete(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&entity.PatientProfile{}).Error
}
