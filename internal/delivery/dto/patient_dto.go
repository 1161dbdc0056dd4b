package dto

import "time"

// PatientPayload carries the editable patient profile fields for create,
// update and inline new-patient booking requests.
type PatientPayload struct {
	Name      string `json:"name" validate:"required,min=3,max=80"`
	Phone     string `json:"phone" validate:"required,phone10"`
	Age       int    `json:"age" validate:"required,gt=0"`
	BloodType string `json:"blood_type" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	XrayImage string `json:"xray_image,omitempty" validate:"omitempty,b64image"`
}

// LinkedReservationResponse annotates a reservation inside a patient listing
type LinkedReservationResponse struct {
	ID              string     `json:"id"`
	BookingType     string     `json:"booking_type"`
	Status          string     `json:"status"`
	AppointmentDate string     `json:"appointment_date"`
	HasArrived      bool       `json:"has_arrived"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	TreatmentNote   *string    `json:"treatment_note,omitempty"`
	XrayImage       *string    `json:"xray_image,omitempty"`
}

// PatientProfileResponse represents a master patient record with its history
type PatientProfileResponse struct {
	ID                 string                      `json:"id"`
	Name               string                      `json:"name"`
	Phone              string                      `json:"phone"`
	Age                int                         `json:"age"`
	BloodType          string                      `json:"blood_type"`
	XrayImage          *string                     `json:"xray_image,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	LinkedReservations []LinkedReservationResponse `json:"linked_reservations"`
}

// PatientListResponse wraps a patient listing
type PatientListResponse struct {
	Patients []PatientProfileResponse `json:"patients"`
	Total    int                      `json:"total"`
}
