package usecase_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"clinic-desk/internal/delivery/dto"
	"clinic-desk/internal/domain/entity"
	"clinic-desk/internal/repository"
	"clinic-desk/internal/service"
	"clinic-desk/internal/usecase"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the usecases against a throwaway SQLite store. The queue
// cache points at an unreachable Redis so every cache operation exercises the
// failures-are-non-fatal path.
type testEnv struct {
	db           *gorm.DB
	patients     usecase.PatientProfileUsecase
	reservations usecase.ReservationUsecase
	audits       usecase.AuditLogUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "clinic.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := db.AutoMigrate(&entity.PatientProfile{}, &entity.Reservation{}, &entity.AuditLog{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	patientRepo := repository.NewPatientProfileRepository()
	reservationRepo := repository.NewReservationRepository()
	auditRepo := repository.NewAuditLogRepository()

	auditService := service.NewAuditService(db, log, auditRepo)
	queueCache := service.NewQueueCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), log)

	return &testEnv{
		db:           db,
		patients:     usecase.NewPatientProfileUsecase(db, log, patientRepo, reservationRepo, auditService),
		reservations: usecase.NewReservationUsecase(db, log, reservationRepo, patientRepo, auditService, queueCache),
		audits:       usecase.NewAuditLogUsecase(db, log, auditRepo),
	}
}

func patientPayload(name, phone string) *dto.PatientPayload {
	return &dto.PatientPayload{
		Name:      name,
		Phone:     phone,
		Age:       30,
		BloodType: "A+",
	}
}

// createPatient registers a profile through the usecase and returns it
func createPatient(t *testing.T, env *testEnv, name, phone string) *dto.PatientProfileResponse {
	t.Helper()
	patient, err := env.patients.Create(context.Background(), patientPayload(name, phone))
	if err != nil {
		t.Fatalf("create patient %s: %v", name, err)
	}
	return patient
}

// book creates a reservation for an existing patient and returns the queues
func book(t *testing.T, env *testEnv, patientID, bookingType, date string) *dto.ReservationQueuesResponse {
	t.Helper()
	queues, err := env.reservations.Book(context.Background(), &dto.CreateReservationRequest{
		PatientID:       patientID,
		BookingType:     bookingType,
		AppointmentDate: date,
	})
	if err != nil {
		t.Fatalf("book %s reservation for %s: %v", bookingType, patientID, err)
	}
	return queues
}

// startWaiting promotes the given waiting reservation into the chair
func startWaiting(t *testing.T, env *testEnv, reservationID string, replace bool) *dto.ReservationQueuesResponse {
	t.Helper()
	queues, err := env.reservations.StartTreatment(context.Background(), reservationID, replace)
	if err != nil {
		t.Fatalf("start treatment %s: %v", reservationID, err)
	}
	return queues
}

// countByStatus queries the store directly for invariant checks
func countByStatus(t *testing.T, env *testEnv, status entity.ReservationStatus) int64 {
	t.Helper()
	var count int64
	if err := env.db.Model(&entity.Reservation{}).Where("status = ?", status).Count(&count).Error; err != nil {
		t.Fatalf("count reservations by status: %v", err)
	}
	return count
}
