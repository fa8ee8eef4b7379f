package models

import (
	"time"

	"github.com/google/uuid"
)

// Clinic is the tenant boundary. Slug is routed-to by the SPA and never changes after creation.
type Clinic struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name             string     `gorm:"size:255;not null" json:"name"`
	Slug             string     `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	PrimaryColor     string     `gorm:"size:20" json:"primaryColor,omitempty"`
	Texture          string     `gorm:"size:50" json:"texture,omitempty"`
	LogoURL          string     `gorm:"type:text" json:"logoUrl,omitempty"`
	SubscriptionTier string     `gorm:"size:20;not null;default:'FREE'" json:"subscriptionTier"`
	AdminUserID      *uuid.UUID `gorm:"type:uuid" json:"adminUserId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
