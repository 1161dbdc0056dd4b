package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"clinic-desk/internal/converter"
	"clinic-desk/internal/delivery/dto"
	"clinic-desk/internal/domain/entity"
	"clinic-desk/internal/domain/repository"
	"clinic-desk/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrReservationNotFound      = errors.New("reservation not found")
	ErrUpcomingNotFound         = errors.New("upcoming patient not found")
	ErrWaitingNotFound          = errors.New("waiting patient not found")
	ErrCurrentExists            = errors.New("current patient exists and replacement is not allowed")
	ErrNoCurrentTreatment       = errors.New("no current treatment found")
	ErrTreatmentNoteTooShort    = errors.New("treatment note is required and must be at least 5 characters")
	ErrReservationNotCancelable = errors.New("current or completed treatments cannot be canceled")
	ErrCurrentNotDeletable      = errors.New("cannot delete current treatment, please finish it first")
	ErrPatientSelectionRequired = errors.New("please select an existing patient or create a new one")
	ErrInvalidBookingType       = errors.New("invalid booking type")
	ErrInvalidAppointmentDate   = errors.New("invalid appointment date")
)

const minTreatmentNoteLength = 5

type ReservationUsecase interface {
	GetQueues(ctx context.Context) (*dto.ReservationQueuesResponse, error)
	Book(ctx context.Context, req *dto.CreateReservationRequest) (*dto.ReservationQueuesResponse, error)
	MarkArrived(ctx context.Context, id string) (*dto.ReservationQueuesResponse, error)
	StartTreatment(ctx context.Context, id string, replaceCurrent bool) (*dto.ReservationQueuesResponse, error)
	FinishTreatment(ctx context.Context, req *dto.FinishTreatmentRequest) (*dto.ReservationQueuesResponse, error)
	Cancel(ctx context.Context, id string) (*dto.ReservationQueuesResponse, error)
	DeleteFromHistory(ctx context.Context, id string) (*dto.ReservationQueuesResponse, error)
}

type reservationUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	reservationRepo repository.ReservationRepository
	patientRepo     repository.PatientProfileRepository
	auditService    service.AuditService
	queueCache      *service.QueueCache
}

func NewReservationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	reservationRepo repository.ReservationRepository,
	patientRepo repository.PatientProfileRepository,
	auditService service.AuditService,
	queueCache *service.QueueCache,
) ReservationUsecase {
	return &reservationUsecase{
		db:              db,
		log:             log,
		reservationRepo: reservationRepo,
		patientRepo:     patientRepo,
		auditService:    auditService,
		queueCache:      queueCache,
	}
}

// GetQueues returns the four dashboard queues, read through the Redis cache.
func (u *reservationUsecase) GetQueues(ctx context.Context) (*dto.ReservationQueuesResponse, error) {
	if cached := u.queueCache.Get(ctx); cached != nil {
		return cached, nil
	}
	return u.refreshQueues(ctx)
}

// Book creates a reservation for an existing patient or an inline new one.
// Advance bookings start upcoming; walk-in and emergency bookings start in
// the waiting queue with the patient already arrived.
func (u *reservationUsecase) Book(ctx context.Context, req *dto.CreateReservationRequest) (*dto.ReservationQueuesResponse, error) {
	if req.PatientID == "" && req.Patient == nil {
		return nil, ErrPatientSelectionRequired
	}

	bookingType, err := entity.ParseBookingType(req.BookingType)
	if err != nil {
		return nil, ErrInvalidBookingType
	}

	appointmentDate, err := parseAppointmentDate(req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidAppointmentDate
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patientID := req.PatientID
	if patientID == "" {
		profile, err := u.createInlinePatient(ctx, tx, req.Patient)
		if err != nil {
			return nil, err
		}
		patientID = profile.ID
	} else {
		profile, err := u.patientRepo.FindByID(tx, patientID)
		if err != nil {
			u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
			return nil, err
		}
		if profile == nil {
			return nil, ErrPatientNotFound
		}
	}

	status := entity.ReservationStatusWaiting
	if bookingType == entity.BookingTypeAdvance {
		status = entity.ReservationStatusUpcoming
	}

	reservation := &entity.Reservation{
		PatientID:       patientID,
		BookingType:     bookingType,
		AppointmentDate: appointmentDate,
		HasArrived:      bookingType.RequiresArrival(),
		Status:          status,
	}

	if err := u.reservationRepo.Create(tx, reservation); err != nil {
		u.log.Warnf("Failed to create reservation: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionReservationBook, "reservation", reservation.ID, entity.JSON{
		"patient_id":       patientID,
		"booking_type":     string(bookingType),
		"status":           string(status),
		"appointment_date": appointmentDate.Format("2006-01-02"),
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Reservation booked: id=%s, patient=%s, type=%s, status=%s", reservation.ID, patientID, bookingType, status)
	return u.refreshQueues(ctx)
}

// MarkArrived moves an upcoming reservation into the waiting queue. A second
// call finds the reservation no longer upcoming and fails.
func (u *reservationUsecase) MarkArrived(ctx context.Context, id string) (*dto.ReservationQueuesResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	reservation, err := u.reservationRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find reservation %s: %+v", id, err)
		return nil, err
	}
	if reservation == nil || !reservation.IsUpcoming() {
		return nil, ErrUpcomingNotFound
	}

	rows, err := u.reservationRepo.MarkArrived(tx, id)
	if err != nil {
		u.log.Warnf("Failed to mark reservation %s arrived: %+v", id, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrUpcomingNotFound
	}

	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionReservationArrive, "reservation", id,
		entity.JSON{"status": string(entity.ReservationStatusUpcoming)},
		entity.JSON{"status": string(entity.ReservationStatusWaiting)},
	); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return u.refreshQueues(ctx)
}

// StartTreatment promotes a waiting reservation into the chair. When the
// chair is occupied the caller must ask for replacement; the demotion of the
// sitting patient and the promotion of the new one commit together, so the
// single-current invariant holds even if the operation dies halfway.
func (u *reservationUsecase) StartTreatment(ctx context.Context, id string, replaceCurrent bool) (*dto.ReservationQueuesResponse, error) {
	selected, err := u.reservationRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find reservation %s: %+v", id, err)
		return nil, err
	}
	if selected == nil || !selected.IsWaiting() {
		return nil, ErrWaitingNotFound
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	current, err := u.reservationRepo.FindCurrent(tx)
	if err != nil {
		u.log.Warnf("Failed to find current reservation: %+v", err)
		return nil, err
	}

	if current != nil && !replaceCurrent {
		return nil, ErrCurrentExists
	}

	if current != nil {
		rows, err := u.reservationRepo.Demote(tx, current.ID)
		if err != nil {
			u.log.Warnf("Failed to demote current reservation %s: %+v", current.ID, err)
			return nil, err
		}
		if rows == 0 {
			return nil, fmt.Errorf("reservation %s is no longer current", current.ID)
		}
	}

	rows, err := u.reservationRepo.Promote(tx, id)
	if err != nil {
		// A concurrent promotion slipped past the FindCurrent check; the
		// single-current unique index catches it here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCurrentExists
		}
		u.log.Warnf("Failed to promote reservation %s: %+v", id, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrWaitingNotFound
	}

	metadata := entity.JSON{"reservation_id": id}
	if current != nil {
		metadata["replaced_reservation_id"] = current.ID
	}
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionReservationStart, "reservation", id, nil, metadata); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Treatment started: reservation=%s, replaced=%v", id, current != nil)
	return u.refreshQueues(ctx)
}

// FinishTreatment completes the in-treatment reservation with a note of at
// least five characters and an optional x-ray image.
func (u *reservationUsecase) FinishTreatment(ctx context.Context, req *dto.FinishTreatmentRequest) (*dto.ReservationQueuesResponse, error) {
	note := strings.TrimSpace(req.TreatmentNote)
	if len(note) < minTreatmentNoteLength {
		return nil, ErrTreatmentNoteTooShort
	}

	var xrayImage *string
	if trimmed := strings.TrimSpace(req.XrayImage); trimmed != "" {
		xrayImage = &trimmed
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	current, err := u.reservationRepo.FindCurrent(tx)
	if err != nil {
		u.log.Warnf("Failed to find current reservation: %+v", err)
		return nil, err
	}
	if current == nil {
		return nil, ErrNoCurrentTreatment
	}

	rows, err := u.reservationRepo.Complete(tx, current.ID, note, xrayImage, time.Now().UTC())
	if err != nil {
		u.log.Warnf("Failed to complete reservation %s: %+v", current.ID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNoCurrentTreatment
	}

	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionReservationFinish, "reservation", current.ID,
		entity.JSON{"status": string(entity.ReservationStatusCurrent)},
		entity.JSON{"status": string(entity.ReservationStatusCompleted), "treatment_note": note},
	); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Treatment finished: reservation=%s", current.ID)
	return u.refreshQueues(ctx)
}

// Cancel permanently removes an upcoming or waiting reservation. Current and
// completed reservations cannot leave through this door.
func (u *reservationUsecase) Cancel(ctx context.Context, id string) (*dto.ReservationQueuesResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	reservation, err := u.reservationRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find reservation %s: %+v", id, err)
		return nil, err
	}
	if reservation == nil {
		return nil, ErrReservationNotFound
	}

	if reservation.IsCurrent() || reservation.IsCompleted() {
		return nil, ErrReservationNotCancelable
	}

	if err := u.reservationRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete reservation %s: %+v", id, err)
		return nil, err
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionReservationCancel, "reservation", id, converter.ReservationToResponse(reservation)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return u.refreshQueues(ctx)
}

// DeleteFromHistory removes any reservation except the one in treatment,
// which must be finished first.
func (u *reservationUsecase) DeleteFromHistory(ctx context.Context, id string) (*dto.ReservationQueuesResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	reservation, err := u.reservationRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find reservation %s: %+v", id, err)
		return nil, err
	}
	if reservation == nil {
		return nil, ErrReservationNotFound
	}

	if reservation.IsCurrent() {
		return nil, ErrCurrentNotDeletable
	}

	if err := u.reservationRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete reservation %s: %+v", id, err)
		return nil, err
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionReservationDiscard, "reservation", id, converter.ReservationToResponse(reservation)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return u.refreshQueues(ctx)
}

// createInlinePatient validates and persists the new-patient payload of a
// booking request inside the booking transaction.
func (u *reservationUsecase) createInlinePatient(ctx context.Context, tx *gorm.DB, payload *dto.PatientPayload) (*entity.PatientProfile, error) {
	bloodType, xrayImage, err := validatePatientPayload(payload)
	if err != nil {
		return nil, err
	}

	existing, err := u.patientRepo.FindByPhone(tx, payload.Phone, "")
	if err != nil {
		u.log.Warnf("Failed to check phone uniqueness: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneAlreadyExists
	}

	profile := &entity.PatientProfile{
		Name:      strings.TrimSpace(payload.Name),
		Phone:     payload.Phone,
		Age:       payload.Age,
		BloodType: bloodType,
		XrayImage: xrayImage,
	}

	if err := u.patientRepo.Create(tx, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPhoneAlreadyExists
		}
		u.log.Warnf("Failed to create patient profile: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionPatientCreate, "patient_profile", profile.ID, converter.PatientProfileToResponse(profile)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return profile, nil
}

// refreshQueues rebuilds the projection from the store and rewrites the cache
func (u *reservationUsecase) refreshQueues(ctx context.Context) (*dto.ReservationQueuesResponse, error) {
	queues, err := u.buildQueues(u.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	u.queueCache.Set(ctx, queues)
	return queues, nil
}

func (u *reservationUsecase) buildQueues(db *gorm.DB) (*dto.ReservationQueuesResponse, error) {
	current, err := u.reservationRepo.FindCurrent(db)
	if err != nil {
		u.log.Warnf("Failed to load current reservation: %+v", err)
		return nil, err
	}

	waiting, err := u.reservationRepo.FindWaiting(db)
	if err != nil {
		u.log.Warnf("Failed to load waiting reservations: %+v", err)
		return nil, err
	}

	upcoming, err := u.reservationRepo.FindUpcoming(db)
	if err != nil {
		u.log.Warnf("Failed to load upcoming reservations: %+v", err)
		return nil, err
	}

	history, err := u.reservationRepo.FindHistory(db)
	if err != nil {
		u.log.Warnf("Failed to load treatment history: %+v", err)
		return nil, err
	}

	upcomingResponses := converter.ReservationsToResponses(upcoming)
	// Defensive re-sort: the store already orders by appointment date, and
	// ISO dates compare chronologically as strings.
	sort.SliceStable(upcomingResponses, func(i, j int) bool {
		return upcomingResponses[i].AppointmentDate < upcomingResponses[j].AppointmentDate
	})

	return &dto.ReservationQueuesResponse{
		CurrentPatient:   converter.ReservationToResponse(current),
		WaitingPatients:  converter.ReservationsToResponses(waiting),
		UpcomingPatients: upcomingResponses,
		TreatmentHistory: converter.ReservationsToResponses(history),
	}, nil
}

// parseAppointmentDate accepts the dashboard's date-picker format and RFC3339
// timestamps, normalizing both to a UTC calendar date.
func parseAppointmentDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, ErrInvalidAppointmentDate
	}

	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, trimmed)
		if err != nil {
			return time.Time{}, ErrInvalidAppointmentDate
		}
	}

	year, month, day := parsed.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}
