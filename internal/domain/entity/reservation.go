package entity

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationStatus represents where a reservation sits in the treatment queue
type ReservationStatus string

const (
	ReservationStatusUpcoming  ReservationStatus = "upcoming"
	ReservationStatusWaiting   ReservationStatus = "waiting"
	ReservationStatusCurrent   ReservationStatus = "current"
	ReservationStatusCompleted ReservationStatus = "completed"
)

var reservationStatusCodes = map[ReservationStatus]string{
	ReservationStatusUpcoming:  "UPCOMING",
	ReservationStatusWaiting:   "WAITING",
	ReservationStatusCurrent:   "CURRENT",
	ReservationStatusCompleted: "COMPLETED",
}

var reservationStatusFromCode map[string]ReservationStatus

func init() {
	reservationStatusFromCode = make(map[string]ReservationStatus, len(reservationStatusCodes))
	for value, code := range reservationStatusCodes {
		reservationStatusFromCode[code] = value
	}
	if len(reservationStatusFromCode) != len(reservationStatusCodes) {
		panic("entity: reservation status code mapping is not bijective")
	}
}

// Value implements driver.Valuer, storing the enum code.
func (s ReservationStatus) Value() (driver.Value, error) {
	code, ok := reservationStatusCodes[s]
	if !ok {
		return nil, fmt.Errorf("invalid reservation status %q", string(s))
	}
	return code, nil
}

// Scan implements sql.Scanner.
func (s *ReservationStatus) Scan(value interface{}) error {
	var code string
	switch v := value.(type) {
	case []byte:
		code = string(v)
	case string:
		code = v
	default:
		return fmt.Errorf("failed to scan reservation status value: %v", value)
	}

	mapped, ok := reservationStatusFromCode[code]
	if !ok {
		return fmt.Errorf("unknown reservation status code %q", code)
	}
	*s = mapped
	return nil
}

// Reservation represents one booking moving through the front-desk queues
type Reservation struct {
	ID              string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	PatientID       string            `gorm:"type:varchar(36);not null;index" json:"patient_id"`
	BookingType     BookingType       `gorm:"type:varchar(16);not null;index" json:"booking_type"`
	AppointmentDate time.Time         `gorm:"type:date;not null" json:"appointment_date"`
	HasArrived      bool              `gorm:"not null" json:"has_arrived"`
	Status          ReservationStatus `gorm:"type:varchar(16);not null;index;uniqueIndex:uidx_reservations_single_current,where:status = 'CURRENT'" json:"status"`
	TreatmentNote   *string           `gorm:"type:text" json:"treatment_note,omitempty"`
	XrayImage       *string           `gorm:"type:text" json:"xray_image,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`

	// Relationships
	Patient PatientProfile `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// BeforeCreate assigns an id when the caller did not supply one
func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsUpcoming checks if the reservation is scheduled but not yet arrived
func (r *Reservation) IsUpcoming() bool {
	return r.Status == ReservationStatusUpcoming
}

// IsWaiting checks if the patient has arrived and is queued for treatment
func (r *Reservation) IsWaiting() bool {
	return r.Status == ReservationStatusWaiting
}

// IsCurrent checks if the reservation is presently being treated
func (r *Reservation) IsCurrent() bool {
	return r.Status == ReservationStatusCurrent
}

// IsCompleted checks if the reservation is retained in treatment history
func (r *Reservation) IsCompleted() bool {
	return r.Status == ReservationStatusCompleted
}
