package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"clinic-desk/internal/converter"
	"clinic-desk/internal/delivery/dto"
	"clinic-desk/internal/domain/entity"
	"clinic-desk/internal/domain/repository"
	"clinic-desk/internal/service"
	"clinic-desk/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound        = errors.New("patient not found")
	ErrPhoneAlreadyExists     = errors.New("phone number already exists")
	ErrPatientHasReservations = errors.New("patient has linked reservations and cannot be deleted")

	ErrInvalidPatientName  = errors.New("name must be between 3 and 80 characters")
	ErrInvalidPatientPhone = errors.New("phone must be exactly 10 digits with a leading zero")
	ErrInvalidPatientAge   = errors.New("age must be greater than 0")
	ErrInvalidBloodType    = errors.New("invalid blood type")
	ErrInvalidXrayImage    = errors.New("x-ray image must be a valid base64 image")
)

type PatientProfileUsecase interface {
	List(ctx context.Context, search string) (*dto.PatientListResponse, error)
	Create(ctx context.Context, req *dto.PatientPayload) (*dto.PatientProfileResponse, error)
	Update(ctx context.Context, id string, req *dto.PatientPayload) (*dto.PatientProfileResponse, error)
	Delete(ctx context.Context, id string) error
}

type patientProfileUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	patientRepo     repository.PatientProfileRepository
	reservationRepo repository.ReservationRepository
	auditService    service.AuditService
}

func NewPatientProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientProfileRepository,
	reservationRepo repository.ReservationRepository,
	auditService service.AuditService,
) PatientProfileUsecase {
	return &patientProfileUsecase{
		db:              db,
		log:             log,
		patientRepo:     patientRepo,
		reservationRepo: reservationRepo,
		auditService:    auditService,
	}
}

// validatePatientPayload applies the profile schema rules and returns the
// parsed blood type and the normalized optional x-ray image.
func validatePatientPayload(req *dto.PatientPayload) (entity.BloodType, *string, error) {
	name := strings.TrimSpace(req.Name)
	// Character count, not bytes: most patient names here are Arabic, where
	// byte length runs double.
	if runes := utf8.RuneCountInString(name); runes < 3 || runes > 80 {
		return "", nil, ErrInvalidPatientName
	}

	if !validator.MatchesPhone(req.Phone) {
		return "", nil, ErrInvalidPatientPhone
	}

	if req.Age <= 0 {
		return "", nil, ErrInvalidPatientAge
	}

	bloodType, err := entity.ParseBloodType(req.BloodType)
	if err != nil {
		return "", nil, ErrInvalidBloodType
	}

	var xrayImage *string
	if trimmed := strings.TrimSpace(req.XrayImage); trimmed != "" {
		if !validator.MatchesB64Image(trimmed) {
			return "", nil, ErrInvalidXrayImage
		}
		xrayImage = &trimmed
	}

	return bloodType, xrayImage, nil
}

// List returns all patient profiles ordered by name, each with its linked
// reservations newest first. The search term matches name or phone.
func (u *patientProfileUsecase) List(ctx context.Context, search string) (*dto.PatientListResponse, error) {
	profiles, err := u.patientRepo.Search(u.db.WithContext(ctx), search)
	if err != nil {
		u.log.Warnf("Failed to list patient profiles: %+v", err)
		return nil, err
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientProfilesToResponses(profiles),
		Total:    len(profiles),
	}, nil
}

func (u *patientProfileUsecase) Create(ctx context.Context, req *dto.PatientPayload) (*dto.PatientProfileResponse, error) {
	bloodType, xrayImage, err := validatePatientPayload(req)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// Check-then-insert inside the transaction; the unique index backstops
	// the race between two simultaneous front-desk tabs.
	existing, err := u.patientRepo.FindByPhone(tx, req.Phone, "")
	if err != nil {
		u.log.Warnf("Failed to check phone uniqueness: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneAlreadyExists
	}

	profile := &entity.PatientProfile{
		Name:      strings.TrimSpace(req.Name),
		Phone:     req.Phone,
		Age:       req.Age,
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

	response := converter.PatientProfileToResponse(profile)
	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionPatientCreate, "patient_profile", profile.ID, response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return response, nil
}

func (u *patientProfileUsecase) Update(ctx context.Context, id string, req *dto.PatientPayload) (*dto.PatientProfileResponse, error) {
	bloodType, xrayImage, err := validatePatientPayload(req)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.patientRepo.FindByIDWithReservations(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find patient profile %s: %+v", id, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	// Uniqueness check excludes the record being updated
	existing, err := u.patientRepo.FindByPhone(tx, req.Phone, id)
	if err != nil {
		u.log.Warnf("Failed to check phone uniqueness: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneAlreadyExists
	}

	oldValue := converter.PatientProfileToResponse(profile)

	profile.Name = strings.TrimSpace(req.Name)
	profile.Phone = req.Phone
	profile.Age = req.Age
	profile.BloodType = bloodType
	profile.XrayImage = xrayImage

	if err := u.patientRepo.Update(tx, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPhoneAlreadyExists
		}
		u.log.Warnf("Failed to update patient profile %s: %+v", id, err)
		return nil, err
	}

	response := converter.PatientProfileToResponse(profile)
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionPatientUpdate, "patient_profile", id, oldValue, response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return response, nil
}

// Delete removes a profile that has no linked reservations. Deletion is hard
// blocked while reservations exist so treatment history is never discarded.
func (u *patientProfileUsecase) Delete(ctx context.Context, id string) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.patientRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find patient profile %s: %+v", id, err)
		return err
	}
	if profile == nil {
		return ErrPatientNotFound
	}

	linked, err := u.reservationRepo.CountByPatientID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to count reservations for patient %s: %+v", id, err)
		return err
	}
	if linked > 0 {
		return ErrPatientHasReservations
	}

	if err := u.patientRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete patient profile %s: %+v", id, err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionPatientDelete, "patient_profile", id, converter.PatientProfileToResponse(profile)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}
