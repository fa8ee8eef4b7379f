package models

type Role string

const (
	RolePatient    Role = "PATIENT"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Tier is a loyalty status level. Ordering lives in the loyalty policy table.
type Tier string

const (
	TierMember   Tier = "MEMBER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

type Category string

const (
	CategoryHygiene  Category = "HYGIENE"
	CategoryGeneral  Category = "GENERAL"
	CategoryCosmetic Category = "COSMETIC"
	CategoryReward   Category = "REWARD"
)

type TransactionType string

const (
	TransactionEarn   TransactionType = "EARN"
	TransactionRedeem TransactionType = "REDEEM"
)

type CarePlanStatus string

const (
	CarePlanActive    CarePlanStatus = "ACTIVE"
	CarePlanCompleted CarePlanStatus = "COMPLETED"
	CarePlanCancelled CarePlanStatus = "CANCELLED"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentNoShow    AppointmentStatus = "NO_SHOW"
)
