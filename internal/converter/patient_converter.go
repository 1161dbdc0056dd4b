package converter

import (
	"clinic-desk/internal/delivery/dto"
	"clinic-desk/internal/domain/entity"
)

// PatientProfileToResponse converts a PatientProfile entity and its preloaded
// reservations to a PatientProfileResponse DTO
func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientProfileResponse {
	if profile == nil {
		return nil
	}

	linked := make([]dto.LinkedReservationResponse, 0, len(profile.Reservations))
	for i := range profile.Reservations {
		reservation := &profile.Reservations[i]
		linked = append(linked, dto.LinkedReservationResponse{
			ID:              reservation.ID,
			BookingType:     string(reservation.BookingType),
			Status:          string(reservation.Status),
			AppointmentDate: reservation.AppointmentDate.Format(appointmentDateLayout),
			HasArrived:      reservation.HasArrived,
			CreatedAt:       reservation.CreatedAt,
			CompletedAt:     reservation.CompletedAt,
			TreatmentNote:   reservation.TreatmentNote,
			XrayImage:       reservation.XrayImage,
		})
	}

	return &dto.PatientProfileResponse{
		ID:                 profile.ID,
		Name:               profile.Name,
		Phone:              profile.Phone,
		Age:                profile.Age,
		BloodType:          string(profile.BloodType),
		XrayImage:          profile.XrayImage,
		CreatedAt:          profile.CreatedAt,
		LinkedReservations: linked,
	}
}

// PatientProfilesToResponses converts a profile slice, preserving order
func PatientProfilesToResponses(profiles []entity.PatientProfile) []dto.PatientProfileResponse {
	responses := make([]dto.PatientProfileResponse, 0, len(profiles))
	for i := range profiles {
		responses = append(responses, *PatientProfileToResponse(&profiles[i]))
	}
	return responses
}
