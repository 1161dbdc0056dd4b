package converter

import (
	"clinic-desk/internal/delivery/dto"
	"clinic-desk/internal/domain/entity"
)

const appointmentDateLayout = "2006-01-02"

// ReservationToResponse flattens a reservation and its preloaded patient into
// the dashboard shape.
func ReservationToResponse(reservation *entity.Reservation) *dto.ReservationResponse {
	if reservation == nil {
		return nil
	}

	return &dto.ReservationResponse{
		ID:              reservation.ID,
		PatientID:       reservation.PatientID,
		Name:            reservation.Patient.Name,
		Phone:           reservation.Patient.Phone,
		Age:             reservation.Patient.Age,
		BloodType:       string(reservation.Patient.BloodType),
		BookingType:     string(reservation.BookingType),
		AppointmentDate: reservation.AppointmentDate.Format(appointmentDateLayout),
		HasArrived:      reservation.HasArrived,
		CreatedAt:       reservation.CreatedAt,
		CompletedAt:     reservation.CompletedAt,
		TreatmentNote:   reservation.TreatmentNote,
		XrayImage:       reservation.XrayImage,
	}
}

// ReservationsToResponses converts a reservation slice, preserving order
func ReservationsToResponses(reservations []entity.Reservation) []dto.ReservationResponse {
	responses := make([]dto.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, *ReservationToResponse(&reservations[i]))
	}
	return responses
}
