package dto

import "time"

// CreateReservationRequest books a reservation for an existing patient
// (patient_id) or an inline new patient, never neither.
type CreateReservationRequest struct {
	PatientID       string          `json:"patient_id,omitempty"`
	Patient         *PatientPayload `json:"patient,omitempty" validate:"omitempty"`
	BookingType     string          `json:"booking_type" validate:"required,oneof=advance walk-in emergency"`
	AppointmentDate string          `json:"appointment_date" validate:"required"`
}

// StartTreatmentRequest controls whether an occupied chair may be replaced
type StartTreatmentRequest struct {
	ReplaceCurrent bool `json:"replace_current"`
}

// FinishTreatmentRequest completes the in-treatment reservation
type FinishTreatmentRequest struct {
	TreatmentNote string `json:"treatment_note" validate:"required"`
	XrayImage     string `json:"xray_image,omitempty"`
}

// ReservationResponse is a reservation denormalized with the owning patient's
// display fields, ready for the dashboard.
type ReservationResponse struct {
	ID              string     `json:"id"`
	PatientID       string     `json:"patient_id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Age             int        `json:"age"`
	BloodType       string     `json:"blood_type"`
	BookingType     string     `json:"booking_type"`
	AppointmentDate string     `json:"appointment_date"`
	HasArrived      bool       `json:"has_arrived"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	TreatmentNote   *string    `json:"treatment_note,omitempty"`
	XrayImage       *string    `json:"xray_image,omitempty"`
}

// ReservationQueuesResponse carries all four dashboard queues in one shot
type ReservationQueuesResponse struct {
	CurrentPatient   *ReservationResponse  `json:"current_patient"`
	WaitingPatients  []ReservationResponse `json:"waiting_patients"`
	UpcomingPatients []ReservationResponse `json:"upcoming_patients"`
	TreatmentHistory []ReservationResponse `json:"treatment_history"`
}
