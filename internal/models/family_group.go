package models

import (
	"time"

	"github.com/google/uuid"
)

// FamilyGroup is a household. The head's wallet is the pooled wallet for every member.
type FamilyGroup struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClinicID   uuid.UUID `gorm:"type:uuid;not null;index" json:"clinicId"`
	Name       string    `gorm:"size:255" json:"name"`
	HeadUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"headUserId"`
	CreatedAt  time.Time `json:"createdAt"`
}
