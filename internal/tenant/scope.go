package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForClinic returns a GORM scope that filters by clinic_id.
func ForClinic(clinicID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("clinic_id = ?", clinicID)
	}
}
