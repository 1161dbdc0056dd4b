package main

import (
	"time"

	"clinic-desk/config"
	"clinic-desk/internal/domain/entity"
	"clinic-desk/internal/infrastructure/database"
	"clinic-desk/internal/repository"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var bloodTypes = []entity.BloodType{
	entity.BloodTypeAPos, entity.BloodTypeANeg,
	entity.BloodTypeBPos, entity.BloodTypeBNeg,
	entity.BloodTypeABPos, entity.BloodTypeABNeg,
	entity.BloodTypeOPos, entity.BloodTypeONeg,
}

func main() {
	logrus.Info("Seed starting")

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seed(db); err != nil {
		logrus.Fatalf("Seed failed: %v", err)
	}

	logrus.Info("Seed complete")
}

// seed fills the store with demo data across all four queue states while
// keeping every invariant: unique phones, at most one current reservation,
// arrival flags consistent with status.
func seed(db *gorm.DB) error {
	patientRepo := repository.NewPatientProfileRepository()
	reservationRepo := repository.NewReservationRepository()

	tx := db.Begin()
	defer tx.Rollback()

	patients := make([]*entity.PatientProfile, 0, 20)
	for i := 0; i < 20; i++ {
		patient := &entity.PatientProfile{
			Name: gofakeit.Name(),
			// Leading zero plus nine random digits; the loop index keeps the
			// batch collision free.
			Phone:     gofakeit.Numerify("0#######") + twoDigits(i),
			Age:       gofakeit.Number(6, 90),
			BloodType: bloodTypes[gofakeit.Number(0, len(bloodTypes)-1)],
		}
		if err := patientRepo.Create(tx, patient); err != nil {
			return err
		}
		patients = append(patients, patient)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	// Upcoming advance bookings over the next two weeks
	for i := 0; i < 6; i++ {
		reservation := &entity.Reservation{
			PatientID:       patients[i].ID,
			BookingType:     entity.BookingTypeAdvance,
			AppointmentDate: today.AddDate(0, 0, gofakeit.Number(1, 14)),
			HasArrived:      false,
			Status:          entity.ReservationStatusUpcoming,
		}
		if err := reservationRepo.Create(tx, reservation); err != nil {
			return err
		}
	}

	// Waiting walk-ins and emergencies, already arrived
	for i := 6; i < 11; i++ {
		bookingType := entity.BookingTypeWalkIn
		if gofakeit.Bool() {
			bookingType = entity.BookingTypeEmergency
		}
		reservation := &entity.Reservation{
			PatientID:       patients[i].ID,
			BookingType:     bookingType,
			AppointmentDate: today,
			HasArrived:      true,
			Status:          entity.ReservationStatusWaiting,
		}
		if err := reservationRepo.Create(tx, reservation); err != nil {
			return err
		}
	}

	// A single patient in the chair
	current := &entity.Reservation{
		PatientID:       patients[11].ID,
		BookingType:     entity.BookingTypeWalkIn,
		AppointmentDate: today,
		HasArrived:      true,
		Status:          entity.ReservationStatusCurrent,
	}
	if err := reservationRepo.Create(tx, current); err != nil {
		return err
	}

	// Treatment history over the past month
	for i := 12; i < 20; i++ {
		note := gofakeit.Sentence(8)
		completedAt := today.AddDate(0, 0, -gofakeit.Number(1, 30))
		reservation := &entity.Reservation{
			PatientID:       patients[i].ID,
			BookingType:     entity.BookingTypeAdvance,
			AppointmentDate: completedAt,
			HasArrived:      true,
			Status:          entity.ReservationStatusCompleted,
			TreatmentNote:   &note,
			CompletedAt:     &completedAt,
		}
		if err := reservationRepo.Create(tx, reservation); err != nil {
			return err
		}
	}

	return tx.Commit().Error
}

func twoDigits(i int) string {
	return string([]byte{'0' + byte(i/10), '0' + byte(i%10)})
}
