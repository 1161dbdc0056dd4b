package repository

import (
	"time"

	"clinic-desk/internal/domain/entity"

	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(db *gorm.DB, reservation *entity.Reservation) error
	FindByID(db *gorm.DB, id string) (*entity.Reservation, error)
	// FindCurrent returns the single in-treatment reservation, newest created
	// first as a defensive ordering, or nil when the chair is empty.
	FindCurrent(db *gorm.DB) (*entity.Reservation, error)
	FindWaiting(db *gorm.DB) ([]entity.Reservation, error)
	FindUpcoming(db *gorm.DB) ([]entity.Reservation, error)
	FindHistory(db *gorm.DB) ([]entity.Reservation, error)
	CountByPatientID(db *gorm.DB, patientID string) (int64, error)

	// Guarded transitions. Each is a single status-conditioned UPDATE;
	// RowsAffected 0 means the reservation was not in the required state.
	MarkArrived(db *gorm.DB, id string) (int64, error)
	Promote(db *gorm.DB, id string) (int64, error)
	Demote(db *gorm.DB, id string) (int64, error)
	Complete(db *gorm.DB, id string, note string, xrayImage *string, completedAt time.Time) (int64, error)

	Delete(db *gorm.DB, id string) error
}
