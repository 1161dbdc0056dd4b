package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinic-desk/internal/delivery/dto"
	"clinic-desk/internal/usecase"
	"clinic-desk/pkg/response"
	"clinic-desk/pkg/validator"

	"github.com/gorilla/mux"
)

type ReservationHandler struct {
	reservationUsecase usecase.ReservationUsecase
	validator          *validator.CustomValidator
}

func NewReservationHandler(reservationUsecase usecase.ReservationUsecase, validator *validator.CustomValidator) *ReservationHandler {
	return &ReservationHandler{
		reservationUsecase: reservationUsecase,
		validator:          validator,
	}
}

func (h *ReservationHandler) GetQueues(w http.ResponseWriter, r *http.Request) {
	queues, err := h.reservationUsecase.GetQueues(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to load reservations")
		return
	}

	response.Success(w, http.StatusOK, "Reservations retrieved successfully", queues)
}

func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	queues, err := h.reservationUsecase.Book(r.Context(), &req)
	if err != nil {
		h.writeReservationError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Reservation created successfully", queues)
}

func (h *ReservationHandler) MarkArrived(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	queues, err := h.reservationUsecase.MarkArrived(r.Context(), id)
	if err != nil {
		h.writeReservationError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Patient marked as arrived", queues)
}

func (h *ReservationHandler) StartTreatment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req dto.StartTreatmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	queues, err := h.reservationUsecase.StartTreatment(r.Context(), id, req.ReplaceCurrent)
	if err != nil {
		h.writeReservationError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Treatment started", queues)
}

func (h *ReservationHandler) FinishTreatment(w http.ResponseWriter, r *http.Request) {
	var req dto.FinishTreatmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	queues, err := h.reservationUsecase.FinishTreatment(r.Context(), &req)
	if err != nil {
		h.writeReservationError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Treatment finished", queues)
}

// DeleteReservation cancels an active reservation, or removes any
// non-current record when fromHistory=true is passed.
func (h *ReservationHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	fromHistory := r.URL.Query().Get("fromHistory") == "true"

	var queues *dto.ReservationQueuesResponse
	var err error
	if fromHistory {
		queues, err = h.reservationUsecase.DeleteFromHistory(r.Context(), id)
	} else {
		queues, err = h.reservationUsecase.Cancel(r.Context(), id)
	}
	if err != nil {
		h.writeReservationError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Reservation deleted successfully", queues)
}

func (h *ReservationHandler) writeReservationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrReservationNotFound),
		errors.Is(err, usecase.ErrUpcomingNotFound),
		errors.Is(err, usecase.ErrWaitingNotFound),
		errors.Is(err, usecase.ErrPatientNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrCurrentExists),
		errors.Is(err, usecase.ErrNoCurrentTreatment),
		errors.Is(err, usecase.ErrReservationNotCancelable),
		errors.Is(err, usecase.ErrCurrentNotDeletable),
		errors.Is(err, usecase.ErrPhoneAlreadyExists):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrPatientSelectionRequired),
		errors.Is(err, usecase.ErrInvalidBookingType),
		errors.Is(err, usecase.ErrInvalidAppointmentDate),
		errors.Is(err, usecase.ErrTreatmentNoteTooShort),
		errors.Is(err, usecase.ErrInvalidPatientName),
		errors.Is(err, usecase.ErrInvalidPatientPhone),
		errors.Is(err, usecase.ErrInvalidPatientAge),
		errors.Is(err, usecase.ErrInvalidBloodType),
		errors.Is(err, usecase.ErrInvalidXrayImage):
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	default:
		response.InternalServerError(w, "Failed to process reservation")
	}
}
