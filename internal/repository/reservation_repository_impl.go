package repository

import (
	"errors"
	"time"

	"clinic-desk/internal/domain/entity"
	domainRepo "clinic-desk/internal/domain/repository"

	"gorm.io/gorm"
)

type reservationRepository struct{}

func NewReservationRepository() domainRepo.ReservationRepository {
	return &reservationRepository{}
}

func (r *reservationRepository) Create(db *gorm.DB, reservation *entity.Reservation) error {
	return db.Create(reservation).Error
}

func (r *reservationRepository) FindByID(db *gorm.DB, id string) (*entity.Reservation, error) {
	var reservation entity.Reservation
	err := db.Preload("Patient").Where("id = ?", id).First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindCurrent(db *gorm.DB) (*entity.Reservation, error) {
	var reservation entity.Reservation
	err := db.Preload("Patient").
		Where("status = ?", entity.ReservationStatusCurrent).
		Order("created_at DESC").
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

// FindWaiting orders by booking type code descending so walk-in and emergency
// arrivals queue ahead of demoted advance bookings, first come first served
// within a tier.
func (r *reservationRepository) FindWaiting(db *gorm.DB) ([]entity.Reservation, error) {
	var reservations []entity.Reservation
	err := db.Preload("Patient").
		Where("status = ?", entity.ReservationStatusWaiting).
		Order("booking_type DESC").
		Order("created_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) FindUpcoming(db *gorm.DB) ([]entity.Reservation, error) {
	var reservations []entity.Reservation
	err := db.Preload("Patient").
		Where("status = ?", entity.ReservationStatusUpcoming).
		Order("appointment_date ASC").
		Order("created_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) FindHistory(db *gorm.DB) ([]entity.Reservation, error) {
	var reservations []entity.Reservation
	err := db.Preload("Patient").
		Where("status = ?", entity.ReservationStatusCompleted).
		Order("completed_at DESC").
		Order("created_at DESC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) CountByPatientID(db *gorm.DB, patientID string) (int64, error) {
	var count int64
	err := db.Model(&entity.Reservation{}).Where("patient_id = ?", patientID).Count(&count).Error
	return count, err
}

// MarkArrived atomically moves an upcoming reservation into the waiting queue.
// Returns affected rows: 0 means the reservation was absent or not upcoming,
// which also makes a double submission a no-op.
func (r *reservationRepository) MarkArrived(db *gorm.DB, id string) (int64, error) {
	result := db.Model(&entity.Reservation{}).
		Where("id = ? AND status = ?", id, entity.ReservationStatusUpcoming).
		Updates(map[string]interface{}{
			"status":      entity.ReservationStatusWaiting,
			"has_arrived": true,
		})
	return result.RowsAffected, result.Error
}

// Promote moves a waiting reservation into the chair.
func (r *reservationRepository) Promote(db *gorm.DB, id string) (int64, error) {
	result := db.Model(&entity.Reservation{}).
		Where("id = ? AND status = ?", id, entity.ReservationStatusWaiting).
		Updates(map[string]interface{}{
			"status":      entity.ReservationStatusCurrent,
			"has_arrived": true,
		})
	return result.RowsAffected, result.Error
}

// Demote sends the in-treatment reservation back to the waiting queue. The
// arrival flag stays true; the original created_at keeps its FIFO position.
func (r *reservationRepository) Demote(db *gorm.DB, id string) (int64, error) {
	result := db.Model(&entity.Reservation{}).
		Where("id = ? AND status = ?", id, entity.ReservationStatusCurrent).
		Updates(map[string]interface{}{
			"status":      entity.ReservationStatusWaiting,
			"has_arrived": true,
		})
	return result.RowsAffected, result.Error
}

// Complete finishes the in-treatment reservation with its treatment metadata.
func (r *reservationRepository) Complete(db *gorm.DB, id string, note string, xrayImage *string, completedAt time.Time) (int64, error) {
	result := db.Model(&entity.Reservation{}).
		Where("id = ? AND status = ?", id, entity.ReservationStatusCurrent).
		Updates(map[string]interface{}{
			"status":         entity.ReservationStatusCompleted,
			"completed_at":   completedAt,
			"treatment_note": note,
			"xray_image":     xrayImage,
		})
	return result.RowsAffected, result.Error
}

func (r *reservationRepository) Delete(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&entity.Reservation{}).Error
}
