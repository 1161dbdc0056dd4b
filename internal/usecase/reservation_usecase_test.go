package usecase_test

import (
	"context"
	"errors"
	"testing"

	"clinic-desk/internal/delivery/dto"
	"clinic-desk/internal/domain/entity"
	"clinic-desk/internal/repository"
	"clinic-desk/internal/usecase"

	"gorm.io/gorm"
)

func TestBookAdvanceForNewPatientStartsUpcoming(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	queues, err := env.reservations.Book(ctx, &dto.CreateReservationRequest{
		Patient: &dto.PatientPayload{
			Name:      "Sami Haddad",
			Phone:     "0993198176",
			Age:       41,
			BloodType: "O-",
		},
		BookingType:     "advance",
		AppointmentDate: "2025-06-01",
	})
	if err != nil {
		t.Fatalf("book advance reservation: %v", err)
	}

	if len(queues.UpcomingPatients) != 1 {
		t.Fatalf("expected 1 upcoming reservation, got %d", len(queues.UpcomingPatients))
	}
	upcoming := queues.UpcomingPatients[0]
	if upcoming.HasArrived {
		t.Error("advance booking must not start arrived")
	}
	if upcoming.AppointmentDate != "2025-06-01" {
		t.Errorf("appointment date = %s, want 2025-06-01", upcoming.AppointmentDate)
	}
	if upcoming.Name != "Sami Haddad" || upcoming.Phone != "0993198176" || upcoming.BloodType != "O-" {
		t.Errorf("denormalized patient fields wrong: %+v", upcoming)
	}

	patients, err := env.patients.List(ctx, "")
	if err != nil {
		t.Fatalf("list patients: %v", err)
	}
	if patients.Total != 1 {
		t.Fatalf("expected inline patient profile to be created, total = %d", patients.Total)
	}
}

func TestBookWalkInStartsWaiting(t *testing.T) {
	env := newTestEnv(t)
	patient := createPatient(t, env, "Lina Aswad", "0911111111")

	queues := book(t, env, patient.ID, "walk-in", "2025-06-01")

	if len(queues.WaitingPatients) != 1 {
		t.Fatalf("expected 1 waiting reservation, got %d", len(queues.WaitingPatients))
	}
	if !queues.WaitingPatients[0].HasArrived {
		t.Error("walk-in booking must start arrived")
	}
	if len(queues.UpcomingPatients) != 0 {
		t.Error("walk-in booking must not enter the upcoming queue")
	}
}

func TestBookValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := createPatient(t, env, "Omar Khalil", "0922222222")

	cases := []struct {
		name    string
		req     *dto.CreateReservationRequest
		wantErr error
	}{
		{
			name:    "no patient selection",
			req:     &dto.CreateReservationRequest{BookingType: "advance", AppointmentDate: "2025-06-01"},
			wantErr: usecase.ErrPatientSelectionRequired,
		},
		{
			name:    "invalid booking type",
			req:     &dto.CreateReservationRequest{PatientID: patient.ID, BookingType: "later", AppointmentDate: "2025-06-01"},
			wantErr: usecase.ErrInvalidBookingType,
		},
		{
			name:    "invalid appointment date",
			req:     &dto.CreateReservationRequest{PatientID: patient.ID, BookingType: "advance", AppointmentDate: "soon"},
			wantErr: usecase.ErrInvalidAppointmentDate,
		},
		{
			name:    "unknown patient",
			req:     &dto.CreateReservationRequest{PatientID: "missing", BookingType: "advance", AppointmentDate: "2025-06-01"},
			wantErr: usecase.ErrPatientNotFound,
		},
		{
			name: "inline patient with bad phone",
			req: &dto.CreateReservationRequest{
				Patient:         &dto.PatientPayload{Name: "Bad Phone", Phone: "12345", Age: 20, BloodType: "A+"},
				BookingType:     "walk-in",
				AppointmentDate: "2025-06-01",
			},
			wantErr: usecase.ErrInvalidPatientPhone,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.reservations.Book(ctx, tc.req); !errors.Is(err, tc.wantErr) {
				t.Errorf("got error %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestStartTreatmentPromotesWaiting(t *testing.T) {
	env := newTestEnv(t)
	patient := createPatient(t, env, "Lina Aswad", "0911111111")
	queues := book(t, env, patient.ID, "walk-in", "2025-06-01")
	reservationID := queues.WaitingPatients[0].ID

	queues = startWaiting(t, env, reservationID, false)

	if queues.CurrentPatient == nil || queues.CurrentPatient.ID != reservationID {
		t.Fatalf("expected reservation %s in the chair, got %+v", reservationID, queues.CurrentPatient)
	}
	if len(queues.WaitingPatients) != 0 {
		t.Errorf("promoted reservation still in waiting queue")
	}
}

func TestStartTreatmentRejectsOccupiedChair(t *testing.T) {
	env := newTestEnv(t)
	p1 := createPatient(t, env, "Lina Aswad", "0911111111")
	p2 := createPatient(t, env, "Omar Khalil", "0922222222")

	queues := book(t, env, p1.ID, "walk-in", "2025-06-01")
	r1 := queues.WaitingPatients[0].ID
	startWaiting(t, env, r1, false)

	queues = book(t, env, p2.ID, "emergency", "2025-06-01")
	r2 := queues.WaitingPatients[0].ID

	_, err := env.reservations.StartTreatment(context.Background(), r2, false)
	if !errors.Is(err, usecase.ErrCurrentExists) {
		t.Fatalf("got error %v, want ErrCurrentExists", err)
	}

	// Nothing moved
	queues, err = env.reservations.GetQueues(context.Background())
	if err != nil {
		t.Fatalf("get queues: %v", err)
	}
	if queues.CurrentPatient == nil || queues.CurrentPatient.ID != r1 {
		t.Errorf("chair occupant changed after rejected replacement")
	}
	if len(queues.WaitingPatients) != 1 || queues.WaitingPatients[0].ID != r2 {
		t.Errorf("waiting queue changed after rejected replacement")
	}
}

func TestStartTreatmentReplacesCurrent(t *testing.T) {
	env := newTestEnv(t)
	p1 := createPatient(t, env, "Lina Aswad", "0911111111")
	p2 := createPatient(t, env, "Omar Khalil", "0922222222")

	queues := book(t, env, p1.ID, "walk-in", "2025-06-01")
	r1 := queues.WaitingPatients[0].ID
	startWaiting(t, env, r1, false)

	queues = book(t, env, p2.ID, "emergency", "2025-06-01")
	r2 := queues.WaitingPatients[0].ID

	queues = startWaiting(t, env, r2, true)

	if queues.CurrentPatient == nil || queues.CurrentPatient.ID != r2 {
		t.Fatalf("expected %s in the chair after replacement", r2)
	}
	if len(queues.WaitingPatients) != 1 || queues.WaitingPatients[0].ID != r1 {
		t.Fatalf("expected displaced reservation %s back in the waiting queue", r1)
	}
	if !queues.WaitingPatients[0].HasArrived {
		t.Error("displaced reservation must keep its arrival flag")
	}
	if got := countByStatus(t, env, entity.ReservationStatusCurrent); got != 1 {
		t.Errorf("current count = %d, want 1", got)
	}
}

func TestStartTreatmentRequiresWaitingTarget(t *testing.T) {
	env := newTestEnv(t)
	patient := createPatient(t, env, "Lina Aswad", "0911111111")
	queues := book(t, env, patient.ID, "advance", "2025-06-01")
	upcomingID := queues.UpcomingPatients[0].ID

	if _, err := env.reservations.StartTreatment(context.Background(), upcomingID, false); !errors.Is(err, usecase.ErrWaitingNotFound) {
		t.Errorf("starting an upcoming reservation: got %v, want ErrWaitingNotFound", err)
	}
	if _, err := env.reservations.StartTreatment(context.Background(), "missing", false); !errors.Is(err, usecase.ErrWaitingNotFound) {
		t.Errorf("starting an unknown reservation: got %v, want ErrWaitingNotFound", err)
	}
}

func TestMarkArrivedMovesUpcomingOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := createPatient(t, env, "Lina Aswad", "0911111111")
	queues := book(t, env, patient.ID, "advance", "2025-06-01")
	reservationID := queues.UpcomingPatients[0].ID

	queues, err := env.reservations.MarkArrived(ctx, reservationID)
	if err != nil {
		t.Fatalf("mark arrived: %v", err)
	}
	if len(queues.WaitingPatients) != 1 || !queues.WaitingPatients[0].HasArrived {
		t.Fatalf("expected reservation waiting and arrived, got %+v", queues.WaitingPatients)
	}

	// Second call must not double-transition
	if _, err := env.reservations.MarkArrived(ctx, reservationID); !errors.Is(err, usecase.ErrUpcomingNotFound) {
		t.Errorf("second mark arrived: got %v, want ErrUpcomingNotFound", err)
	}
}

func TestFinishTreatmentRejectsShortNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := createPatient(t, env, "Lina Aswad", "0911111111")
	queues := book(t, env, patient.ID, "walk-in", "2025-06-01")
	startWaiting(t, env, queues.WaitingPatients[0].ID, false)

	for _, note := range []string{"", "    ", "ok"} {
		if _, err := env.reservations.FinishTreatment(ctx, &dto.FinishTreatmentRequest{TreatmentNote: note}); !errors.Is(err, usecase.ErrTreatmentNoteTooShort) {
			t.Errorf("note %q: got %v, want ErrTreatmentNoteTooShort", note, err)
		}
	}

	// Reservation untouched
	queues, err := env.reservations.GetQueues(ctx)
	if err != nil {
		t.Fatalf("get queues: %v", err)
	}
	if queues.CurrentPatient == nil {
		t.Error("current reservation must survive a rejected finish")
	}
}

func TestFinishTreatmentCompletesCurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := createPatient(t, env, "Lina Aswad", "0911111111")
	queues := book(t, env, patient.ID, "walk-in", "2025-06-01")
	reservationID := queues.WaitingPatients[0].ID
	startWaiting(t, env, reservationID, false)

	queues, err := env.reservations.FinishTreatment(ctx, &dto.FinishTreatmentRequest{
		TreatmentNote: "  Root canal, upper left molar  ",
	})
	if err != nil {
		t.Fatalf("finish treatment: %v", err)
	}

	if queues.CurrentPatient != nil {
		t.Error("chair must be empty after finishing")
	}
	if len(queues.TreatmentHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(queues.TreatmentHistory))
	}
	entry := queues.TreatmentHistory[0]
	if entry.ID != reservationID {
		t.Errorf("history entry id = %s, want %s", entry.ID, reservationID)
	}
	if entry.TreatmentNote == nil || *entry.TreatmentNote != "Root canal, upper left molar" {
		t.Errorf("treatment note not trimmed and stored: %v", entry.TreatmentNote)
	}
	if entry.CompletedAt == nil {
		t.Error("completion timestamp missing")
	}
	if !entry.HasArrived {
		t.Error("completed reservation must keep its arrival flag")
	}

	// No second finish without a current reservation
	if _, err := env.reservations.FinishTreatment(ctx, &dto.FinishTreatmentRequest{TreatmentNote: "another note"}); !errors.Is(err, usecase.ErrNoCurrentTreatment) {
		t.Errorf("second finish: got %v, want ErrNoCurrentTreatment", err)
	}
}

func TestCancelRemovesActiveReservationsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := createPatient(t, env, "Lina Aswad", "0911111111")

	// Cancel a waiting reservation
	queues := book(t, env, patient.ID, "walk-in", "2025-06-01")
	waitingID := queues.WaitingPatients[0].ID
	queues, err := env.reservations.Cancel(ctx, waitingID)
	if err != nil {
		t.Fatalf("cancel waiting reservation: %v", err)
	}
	if len(queues.WaitingPatients) != 0 {
		t.Error("canceled reservation still waiting")
	}

	// A completed reservation cannot be canceled
	queues = book(t, env, patient.ID, "walk-in", "2025-06-01")
	startWaiting(t, env, queues.WaitingPatients[0].ID, false)
	queues, err = env.reservations.FinishTreatment(ctx, &dto.FinishTreatmentRequest{TreatmentNote: "cleaning done"})
	if err != nil {
		t.Fatalf("finish treatment: %v", err)
	}
	completedID := queues.TreatmentHistory[0].ID

	if _, err := env.reservations.Cancel(ctx, completedID); !errors.Is(err, usecase.ErrReservationNotCancelable) {
		t.Fatalf("cancel completed: got %v, want ErrReservationNotCancelable", err)
	}
	queues, err = env.reservations.GetQueues(ctx)
	if err != nil {
		t.Fatalf("get queues: %v", err)
	}
	if len(queues.TreatmentHistory) != 1 {
		t.Error("history entry must persist after rejected cancel")
	}

	if _, err := env.reservations.Cancel(ctx, "missing"); !errors.Is(err, usecase.ErrReservationNotFound) {
		t.Errorf("cancel unknown: got %v, want ErrReservationNotFound", err)
	}
}

func TestDeleteFromHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := createPatient(t, env, "Lina Aswad", "0911111111")

	queues := book(t, env, patient.ID, "walk-in", "2025-06-01")
	reservationID := queues.WaitingPatients[0].ID
	startWaiting(t, env, reservationID, false)

	// The in-treatment reservation must be finished first
	if _, err := env.reservations.DeleteFromHistory(ctx, reservationID); !errors.Is(err, usecase.ErrCurrentNotDeletable) {
		t.Fatalf("delete current: got %v, want ErrCurrentNotDeletable", err)
	}

	if _, err := env.reservations.FinishTreatment(ctx, &dto.FinishTreatmentRequest{TreatmentNote: "extraction done"}); err != nil {
		t.Fatalf("finish treatment: %v", err)
	}

	queues, err := env.reservations.DeleteFromHistory(ctx, reservationID)
	if err != nil {
		t.Fatalf("delete from history: %v", err)
	}
	if len(queues.TreatmentHistory) != 0 {
		t.Error("deleted reservation still in history")
	}
}

func TestWaitingQueueOrdersByPriorityThenArrival(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p1 := createPatient(t, env, "Lina Aswad", "0911111111")
	p2 := createPatient(t, env, "Omar Khalil", "0922222222")
	p3 := createPatient(t, env, "Sami Haddad", "0933333333")

	// An advance booking demoted into the waiting queue by arrival
	queues := book(t, env, p1.ID, "advance", "2025-06-01")
	advanceID := queues.UpcomingPatients[0].ID
	if _, err := env.reservations.MarkArrived(ctx, advanceID); err != nil {
		t.Fatalf("mark arrived: %v", err)
	}

	queues = book(t, env, p2.ID, "emergency", "2025-06-01")
	var emergencyID string
	for _, waiting := range queues.WaitingPatients {
		if waiting.BookingType == "emergency" {
			emergencyID = waiting.ID
		}
	}
	queues = book(t, env, p3.ID, "walk-in", "2025-06-01")

	queues, err := env.reservations.GetQueues(ctx)
	if err != nil {
		t.Fatalf("get queues: %v", err)
	}

	if len(queues.WaitingPatients) != 3 {
		t.Fatalf("expected 3 waiting reservations, got %d", len(queues.WaitingPatients))
	}
	got := []string{
		queues.WaitingPatients[0].BookingType,
		queues.WaitingPatients[1].BookingType,
		queues.WaitingPatients[2].BookingType,
	}
	// Booking type value descending: walk-in, emergency, advance
	want := []string{"walk-in", "emergency", "advance"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("waiting order = %v, want %v", got, want)
		}
	}
	if queues.WaitingPatients[1].ID != emergencyID {
		t.Errorf("emergency reservation out of place")
	}
}

func TestUpcomingQueueOrdersByAppointmentDate(t *testing.T) {
	env := newTestEnv(t)
	p1 := createPatient(t, env, "Lina Aswad", "0911111111")
	p2 := createPatient(t, env, "Omar Khalil", "0922222222")

	// Later date booked first
	book(t, env, p1.ID, "advance", "2025-07-15")
	queues := book(t, env, p2.ID, "advance", "2025-06-20")

	if len(queues.UpcomingPatients) != 2 {
		t.Fatalf("expected 2 upcoming reservations, got %d", len(queues.UpcomingPatients))
	}
	if queues.UpcomingPatients[0].AppointmentDate != "2025-06-20" ||
		queues.UpcomingPatients[1].AppointmentDate != "2025-07-15" {
		t.Errorf("upcoming not ordered by appointment date: %s, %s",
			queues.UpcomingPatients[0].AppointmentDate, queues.UpcomingPatients[1].AppointmentDate)
	}
}

func TestHistoryOrdersNewestCompletionFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p1 := createPatient(t, env, "Lina Aswad", "0911111111")
	p2 := createPatient(t, env, "Omar Khalil", "0922222222")

	queues := book(t, env, p1.ID, "walk-in", "2025-06-01")
	firstID := queues.WaitingPatients[0].ID
	startWaiting(t, env, firstID, false)
	if _, err := env.reservations.FinishTreatment(ctx, &dto.FinishTreatmentRequest{TreatmentNote: "first treatment"}); err != nil {
		t.Fatalf("finish first: %v", err)
	}

	queues = book(t, env, p2.ID, "walk-in", "2025-06-01")
	secondID := queues.WaitingPatients[0].ID
	startWaiting(t, env, secondID, false)
	queues, err := env.reservations.FinishTreatment(ctx, &dto.FinishTreatmentRequest{TreatmentNote: "second treatment"})
	if err != nil {
		t.Fatalf("finish second: %v", err)
	}

	if len(queues.TreatmentHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(queues.TreatmentHistory))
	}
	if queues.TreatmentHistory[0].ID != secondID || queues.TreatmentHistory[1].ID != firstID {
		t.Errorf("history not ordered newest completion first")
	}
}

func TestSingleCurrentInvariantAcrossTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ids := make([]string, 0, 3)
	for _, phone := range []string{"0911111111", "0922222222", "0933333333"} {
		patient := createPatient(t, env, "Patient "+phone, phone)
		queues := book(t, env, patient.ID, "walk-in", "2025-06-01")
		ids = append(ids, queues.WaitingPatients[len(queues.WaitingPatients)-1].ID)
	}

	startWaiting(t, env, ids[0], false)
	startWaiting(t, env, ids[1], true)
	startWaiting(t, env, ids[2], true)

	if got := countByStatus(t, env, entity.ReservationStatusCurrent); got != 1 {
		t.Fatalf("current count = %d, want 1", got)
	}

	if _, err := env.reservations.FinishTreatment(ctx, &dto.FinishTreatmentRequest{TreatmentNote: "final cleanup"}); err != nil {
		t.Fatalf("finish treatment: %v", err)
	}
	if got := countByStatus(t, env, entity.ReservationStatusCurrent); got != 0 {
		t.Fatalf("current count after finish = %d, want 0", got)
	}
}

// Two promoters that both observed an empty chair commit one after the other;
// the partial unique index over CURRENT rows must reject the second commit
// instead of seating two patients.
func TestChairUniqueIndexRejectsSecondPromotion(t *testing.T) {
	env := newTestEnv(t)
	p1 := createPatient(t, env, "Lina Aswad", "0911111111")
	p2 := createPatient(t, env, "Omar Khalil", "0922222222")

	queues := book(t, env, p1.ID, "walk-in", "2025-06-01")
	r1 := queues.WaitingPatients[0].ID
	startWaiting(t, env, r1, false)

	queues = book(t, env, p2.ID, "walk-in", "2025-06-01")
	r2 := queues.WaitingPatients[0].ID

	// Second promoter, racing past the current-occupant check.
	reservationRepo := repository.NewReservationRepository()
	if _, err := reservationRepo.Promote(env.db, r2); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("promotion into an occupied chair: got %v, want gorm.ErrDuplicatedKey", err)
	}

	if got := countByStatus(t, env, entity.ReservationStatusCurrent); got != 1 {
		t.Fatalf("current count = %d, want 1", got)
	}
}
