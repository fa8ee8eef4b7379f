package models

import (
	"time"

	"github.com/google/uuid"
)

// User belongs to exactly one clinic. LifetimeSpend and CurrentTier are only written by
// the ledger on EARN, and only on the effective household head.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClinicID      uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_users_clinic_mobile" json:"clinicId"`
	Role          Role       `gorm:"size:20;not null;default:'PATIENT'" json:"role"`
	Name          string     `gorm:"size:255" json:"name"`
	Mobile        *string    `gorm:"size:32;uniqueIndex:idx_users_clinic_mobile" json:"mobile,omitempty"`
	Email         string     `gorm:"size:255" json:"email,omitempty"`
	LifetimeSpend float64    `gorm:"not null;default:0" json:"lifetimeSpend"`
	CurrentTier   Tier       `gorm:"size:20;not null;default:'MEMBER'" json:"currentTier"`
	FamilyGroupID *uuid.UUID `gorm:"type:uuid;index" json:"familyGroupId,omitempty"`
	Relation      string     `gorm:"size:50" json:"relation,omitempty"`
	Age           int        `json:"age,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
