package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence port of the loyalty engine.
//
// Lookups by primary key are unscoped so callers can tell "unknown" apart from "belongs to
// another clinic"; every list and snapshot query is scoped to a clinic at the query boundary.
// Inside Atomic, wallet and user reads take row locks where the backend supports them.
type Store interface {
	Atomic(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error

	GetClinic(ctx context.Context, id uuid.UUID) (*models.Clinic, error)
	GetClinicBySlug(ctx context.Context, slug string) (*models.Clinic, error)
	LockClinic(ctx context.Context, id uuid.UUID) (*models.Clinic, error)
	ListClinics(ctx context.Context) ([]models.Clinic, error)
	CreateClinic(ctx context.Context, clinic *models.Clinic) error
	UpdateClinic(ctx context.Context, clinic *models.Clinic) error
	DeleteClinic(ctx context.Context, id uuid.UUID) error

	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByMobile(ctx context.Context, clinicID uuid.UUID, mobile string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error

	GetWalletByUser(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	CreateWallet(ctx context.Context, wallet *models.Wallet) error
	UpdateWallet(ctx context.Context, wallet *models.Wallet) error
	AppendTransaction(ctx context.Context, entry *models.Transaction) error

	GetFamilyGroup(ctx context.Context, id uuid.UUID) (*models.FamilyGroup, error)
	GetFamilyGroupByHead(ctx context.Context, headUserID uuid.UUID) (*models.FamilyGroup, error)
	ListFamilyMembers(ctx context.Context, groupID uuid.UUID) ([]models.User, error)
	CreateFamilyGroup(ctx context.Context, group *models.FamilyGroup) error
	DeleteFamilyGroup(ctx context.Context, id uuid.UUID) error

	GetCarePlan(ctx context.Context, id uuid.UUID) (*models.CarePlan, error)
	// ListActiveCarePlans returns active plans in a clinic, optionally narrowed to one user.
	ListActiveCarePlans(ctx context.Context, clinicID uuid.UUID, userID *uuid.UUID) ([]models.CarePlan, error)
	CreateCarePlan(ctx context.Context, plan *models.CarePlan) error
	UpdateCarePlan(ctx context.Context, plan *models.CarePlan) error

	GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	// ListOpenAppointments returns non-cancelled appointments of a clinic whose interval
	// intersects [from, to).
	ListOpenAppointments(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]models.Appointment, error)
	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	UpdateAppointment(ctx context.Context, appt *models.Appointment) error

	// Snapshot returns the full state of one clinic, or of every clinic when clinicID is nil.
	Snapshot(ctx context.Context, clinicID *uuid.UUID) (*models.DatabaseState, error)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*memTx)(nil)
	_ Store = (*GormStore)(nil)
)
