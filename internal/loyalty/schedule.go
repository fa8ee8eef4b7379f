package loyalty

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/repository"
	"github.com/google/uuid"
)

// ConflictScope decides which existing appointments can collide with a new one.
type ConflictScope string

const (
	// ConflictScopeClinic treats the clinic as a single chair.
	ConflictScopeClinic ConflictScope = "clinic"
	// ConflictScopeDoctor only compares appointments of the same doctor. Appointments without a
	// doctor share one calendar.
	ConflictScopeDoctor ConflictScope = "doctor"
)

func ParseConflictScope(s string) (ConflictScope, error) {
	switch ConflictScope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ConflictScopeClinic:
		return ConflictScopeClinic, nil
	case ConflictScopeDoctor:
		return ConflictScopeDoctor, nil
	}
	return "", fmt.Errorf("unknown appointment conflict scope %q", s)
}

var appointmentTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.AppointmentScheduled: {models.AppointmentConfirmed, models.AppointmentCancelled, models.AppointmentNoShow},
	models.AppointmentConfirmed: {models.AppointmentCompleted, models.AppointmentCancelled, models.AppointmentNoShow},
}

func knownAppointmentStatus(s models.AppointmentStatus) bool {
	switch s {
	case models.AppointmentScheduled, models.AppointmentConfirmed, models.AppointmentCancelled,
		models.AppointmentCompleted, models.AppointmentNoShow:
		return true
	}
	return false
}

// CanTransition reports whether an appointment may move from one status to another.
// CANCELLED, COMPLETED and NO_SHOW are terminal.
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type AppointmentRequest struct {
	ClinicID  uuid.UUID
	PatientID uuid.UUID
	DoctorID  *uuid.UUID
	Start     time.Time
	End       time.Time
	Type      string
	Notes     string
}

// ScheduleAppointment books a slot after checking it against every open appointment in the
// conflict scope.
func (e *Engine) ScheduleAppointment(ctx context.Context, req AppointmentRequest) (*Result, error) {
	return e.mutate(ctx, "ScheduleAppointment", &req.ClinicID, func(m *mutation) error {
		if req.Start.IsZero() || req.End.IsZero() || !req.Start.Before(req.End) {
			return fail(CodeValidation, "Appointment must start before it ends")
		}

		if _, err := m.tx.LockClinic(ctx, req.ClinicID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(CodeAuth, "Unknown clinic")
			}
			return fmt.Errorf("lock clinic: %w", err)
		}
		patient, err := e.loadPatient(ctx, m.tx, req.ClinicID, req.PatientID)
		if err != nil {
			return err
		}
		if req.DoctorID != nil {
			doctor, err := e.loadMember(ctx, m.tx, req.ClinicID, *req.DoctorID)
			if err != nil {
				return err
			}
			if doctor.Role == models.RolePatient {
				return fail(CodeAuth, "%s is not clinic staff", doctor.Name)
			}
		}

		open, err := m.tx.ListOpenAppointments(ctx, req.ClinicID, req.Start, req.End)
		if err != nil {
			return fmt.Errorf("list appointments: %w", err)
		}
		for _, existing := range open {
			if existing.Status == models.AppointmentCancelled || !e.sameCalendar(existing.DoctorID, req.DoctorID) {
				continue
			}
			if existing.Overlaps(req.Start, req.End) {
				return fail(CodeConflict, "Slot overlaps an appointment from %s to %s",
					existing.StartTime.In(e.loc).Format("15:04"), existing.EndTime.In(e.loc).Format("15:04"))
			}
		}

		kind := strings.TrimSpace(req.Type)
		if kind == "" {
			kind = "CONSULTATION"
		}
		appt := &models.Appointment{
			ID:        uuid.New(),
			ClinicID:  req.ClinicID,
			PatientID: patient.ID,
			DoctorID:  req.DoctorID,
			StartTime: req.Start,
			EndTime:   req.End,
			Status:    models.AppointmentScheduled,
			Type:      kind,
			Notes:     req.Notes,
		}
		if err := m.tx.CreateAppointment(ctx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return m.done("Appointment booked for %s", req.Start.In(e.loc).Format("2006-01-02 15:04"))
	})
}

func (e *Engine) sameCalendar(a, b *uuid.UUID) bool {
	if e.scope != ConflictScopeDoctor {
		return true
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// UpdateAppointmentStatus moves an appointment along its lifecycle.
func (e *Engine) UpdateAppointmentStatus(ctx context.Context, clinicID, appointmentID uuid.UUID, status models.AppointmentStatus) (*Result, error) {
	return e.mutate(ctx, "UpdateAppointmentStatus", &clinicID, func(m *mutation) error {
		if !knownAppointmentStatus(status) {
			return fail(CodeValidation, "Unknown appointment status %q", status)
		}
		appt, err := m.tx.GetAppointment(ctx, appointmentID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && appt.ClinicID != clinicID) {
			return fail(CodeNotFound, "Appointment not found")
		}
		if err != nil {
			return fmt.Errorf("load appointment: %w", err)
		}

		if appt.Status == status {
			return m.done("Appointment already %s", status)
		}
		if !CanTransition(appt.Status, status) {
			return fail(CodeValidation, "Appointment cannot move from %s to %s", appt.Status, status)
		}

		appt.Status = status
		if err := m.tx.UpdateAppointment(ctx, appt); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		return m.done("Appointment %s", strings.ToLower(string(status)))
	})
}
