package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/loyalty"
	"github.com/google/uuid"
)

type TransactionRequest struct {
	PatientID uuid.UUID                 `json:"patientId"`
	Amount    float64                   `json:"amount"`
	Category  string                    `json:"category"`
	Type      string                    `json:"type"`
	CarePlan  *loyalty.CarePlanTemplate `json:"carePlan,omitempty"`
}

type AssignCarePlanRequest struct {
	PatientID uuid.UUID `json:"patientId"`
	loyalty.CarePlanTemplate
}

type ScheduleAppointmentRequest struct {
	PatientID uuid.UUID  `json:"patientId"`
	DoctorID  *uuid.UUID `json:"doctorId,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime"`
	Type      string     `json:"type"`
	Notes     string     `json:"notes"`
}

type AppointmentStatusRequest struct {
	Status string `json:"status"`
}

type LinkFamilyRequest struct {
	HeadUserID   uuid.UUID `json:"headUserId"`
	MemberMobile string    `json:"memberMobile"`
}

type AddFamilyMemberRequest struct {
	HeadUserID uuid.UUID `json:"headUserId"`
	Name       string    `json:"name"`
	Relation   string    `json:"relation"`
	Age        int       `json:"age"`
}

type WalletResponse struct {
	HeadUserID uuid.UUID `json:"headUserId"`
	WalletID   uuid.UUID `json:"walletId"`
	Balance    int64     `json:"balance"`
	Tier       string    `json:"tier"`
}
