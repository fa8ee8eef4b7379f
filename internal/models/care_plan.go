package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChecklistItem struct {
	ID        string `json:"id"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

// CarePlan is an assigned aftercare protocol. At most one plan per (user, clinic) is active.
type CarePlan struct {
	ID                 uuid.UUID                          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClinicID           uuid.UUID                          `gorm:"type:uuid;not null;index:idx_care_plans_clinic_user" json:"clinicId"`
	UserID             uuid.UUID                          `gorm:"type:uuid;not null;index:idx_care_plans_clinic_user" json:"userId"`
	TreatmentName      string                             `gorm:"size:255;not null" json:"treatmentName"`
	Category           Category                           `gorm:"size:20" json:"category"`
	Cost               float64                            `gorm:"default:0" json:"cost"`
	Instructions       datatypes.JSONSlice[string]        `gorm:"type:jsonb" json:"instructions"`
	Checklist          datatypes.JSONSlice[ChecklistItem] `gorm:"type:jsonb" json:"checklist"`
	IsActive           bool                               `gorm:"not null;default:true;index" json:"isActive"`
	Status             CarePlanStatus                     `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	AssignedAt         time.Time                          `json:"assignedAt"`
	Metadata           datatypes.JSONMap                  `gorm:"type:jsonb" json:"metadata,omitempty"`
	AdherenceRecord    datatypes.JSONType[map[string]int] `gorm:"type:jsonb" json:"adherenceRecord"`
	LastChecklistReset string                             `gorm:"size:10" json:"lastChecklistReset,omitempty"`
	UpdatedAt          time.Time                          `json:"updatedAt"`
}

// Adherence returns a mutable copy of the per-day adherence scores.
func (p *CarePlan) Adherence() map[string]int {
	out := make(map[string]int)
	for k, v := range p.AdherenceRecord.Data() {
		out[k] = v
	}
	return out
}
