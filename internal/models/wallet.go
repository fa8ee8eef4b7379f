package models

import (
	"time"

	"github.com/google/uuid"
)

type Wallet struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	ClinicID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"clinicId"`
	Balance           int64      `gorm:"not null;default:0;check:balance >= 0" json:"balance"`
	LastTransactionAt *time.Time `json:"lastTransactionAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Transaction is an immutable ledger entry. ClinicID is denormalized for tenant isolation.
type Transaction struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WalletID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"walletId"`
	ClinicID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"clinicId"`
	PatientID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"patientId"`
	AmountPaid   float64         `gorm:"not null;default:0" json:"amountPaid"`
	PointsEarned int64           `gorm:"not null" json:"pointsEarned"`
	Category     Category        `gorm:"size:20;not null" json:"category"`
	Type         TransactionType `gorm:"size:10;not null" json:"type"`
	Description  string          `gorm:"size:255" json:"description"`
	CarePlanID   *uuid.UUID      `gorm:"type:uuid" json:"carePlanId,omitempty"`
	CreatedAt    time.Time       `gorm:"index" json:"createdAt"`
}
