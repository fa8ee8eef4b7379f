package models

import (
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClinicID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_clinic_start" json:"clinicId"`
	PatientID uuid.UUID         `gorm:"type:uuid;not null;index" json:"patientId"`
	DoctorID  *uuid.UUID        `gorm:"type:uuid;index" json:"doctorId,omitempty"`
	StartTime time.Time         `gorm:"not null;index:idx_appointments_clinic_start" json:"startTime"`
	EndTime   time.Time         `gorm:"not null" json:"endTime"`
	Status    AppointmentStatus `gorm:"size:20;not null;default:'SCHEDULED'" json:"status"`
	Type      string            `gorm:"size:50" json:"type"`
	Notes     string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Overlaps reports whether [start, end) intersects the appointment's interval.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return start.Before(a.EndTime) && end.After(a.StartTime)
}
